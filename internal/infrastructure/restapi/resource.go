package restapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/fintree/backoffice/internal/core/domain"
	"github.com/fintree/backoffice/internal/core/session"
)

// envelopeKeys are the wrappers the lending API may put around a payload.
var envelopeKeys = []string{"data", "items", "results"}

// Resource is one REST collection, e.g. /departments. It implements
// ports.Collection.
type Resource[T any, D any] struct {
	client *Client
	path   string
	encode func(D, domain.Session) any
}

func NewResource[T any, D any](c *Client, path string, encode func(D, domain.Session) any) *Resource[T, D] {
	return &Resource[T, D]{client: c, path: path, encode: encode}
}

func (r *Resource[T, D]) List(ctx context.Context) ([]T, error) {
	raw, err := r.client.call(ctx, http.MethodGet, r.path, r.path, nil, nil)
	if err != nil {
		return nil, err
	}

	body := unwrapList(raw)
	out := []T{}
	if body == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return nil, r.decodeErr(http.MethodGet, r.path, err)
	}
	return out, nil
}

func (r *Resource[T, D]) Create(ctx context.Context, draft D, idempotencyKey string) (T, error) {
	var headers map[string]string
	if idempotencyKey != "" {
		headers = map[string]string{"Idempotency-Key": idempotencyKey}
	}
	return r.write(ctx, http.MethodPost, r.path, r.path, draft, headers)
}

func (r *Resource[T, D]) Update(ctx context.Context, id int64, draft D) (T, error) {
	return r.write(ctx, http.MethodPut, r.itemPath(id), r.path+"/{id}", draft, nil)
}

func (r *Resource[T, D]) Delete(ctx context.Context, id int64) error {
	_, err := r.client.call(ctx, http.MethodDelete, r.itemPath(id), r.path+"/{id}", nil, nil)
	return err
}

func (r *Resource[T, D]) write(ctx context.Context, method, path, route string, draft D, headers map[string]string) (T, error) {
	var zero T
	sess, _ := session.FromContext(ctx)

	raw, err := r.client.call(ctx, method, path, route, r.encode(draft, sess), headers)
	if err != nil {
		return zero, err
	}

	body := unwrapRecord(raw)
	var out T
	if body == "" {
		return zero, r.decodeErr(method, path, errors.New("empty response body"))
	}
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return zero, r.decodeErr(method, path, err)
	}
	return out, nil
}

func (r *Resource[T, D]) itemPath(id int64) string {
	return r.path + "/" + strconv.FormatInt(id, 10)
}

func (r *Resource[T, D]) decodeErr(method, path string, err error) error {
	return &domain.TransportError{Endpoint: method + " " + path, Err: fmt.Errorf("decode response: %w", err)}
}

// unwrapList returns the raw JSON array of a list response, looking inside
// the usual envelopes when the document itself is not an array.
func unwrapList(raw []byte) string {
	doc := gjson.ParseBytes(raw)
	if doc.IsArray() {
		return doc.Raw
	}
	for _, key := range envelopeKeys {
		if v := doc.Get(key); v.IsArray() {
			return v.Raw
		}
	}
	return doc.Raw
}

// unwrapRecord returns the raw JSON object of a single-record response. A
// document without an "id" is searched for an enveloped record.
func unwrapRecord(raw []byte) string {
	doc := gjson.ParseBytes(raw)
	if doc.IsObject() && !doc.Get("id").Exists() {
		for _, key := range envelopeKeys {
			if v := doc.Get(key); v.IsObject() {
				return v.Raw
			}
		}
	}
	return doc.Raw
}
