// Package restapi talks to the external lending API on behalf of a session.
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fintree/backoffice/internal/core/domain"
	"github.com/fintree/backoffice/internal/core/session"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 4 << 20
	maxErrorBody   = 512
)

// Config captures how to reach the lending API.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// Transport overrides the instrumented default transport (tests).
	Transport http.RoundTripper
}

// Observer receives the outcome of every call; status is 0 when no response arrived.
type Observer func(method, route string, status int, elapsed time.Duration)

// Client sends JSON requests with the session's bearer token.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
	observe Observer
}

func NewClient(cfg Config, log zerolog.Logger, observe Observer) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		return nil, errors.New("restapi: base url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := cfg.Transport
	if transport == nil {
		transport = otelhttp.NewTransport(http.DefaultTransport)
	}
	if observe == nil {
		observe = func(string, string, int, time.Duration) {}
	}

	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: timeout, Transport: transport},
		log:     log,
		observe: observe,
	}, nil
}

// call performs an authenticated request. route is the path template used
// for metrics ("/departments/{id}").
func (c *Client) call(ctx context.Context, method, path, route string, body any, headers map[string]string) ([]byte, error) {
	sess, ok := session.FromContext(ctx)
	if !ok || sess.AccessToken == "" {
		return nil, fmt.Errorf("%s %s: %w", method, path, domain.ErrSessionMissing)
	}
	return c.send(ctx, method, path, route, sess.AccessToken, body, headers)
}

func (c *Client) send(ctx context.Context, method, path, route, token string, body any, headers map[string]string) ([]byte, error) {
	endpoint := method + " " + path

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, &domain.TransportError{Endpoint: endpoint, Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &domain.TransportError{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(method, route, 0, time.Since(start))
		return nil, &domain.TransportError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.observe(method, route, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, &domain.TransportError{Endpoint: endpoint, Err: fmt.Errorf("read response: %w", err)}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("%s: %w", endpoint, domain.ErrUnauthorized)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		c.log.Debug().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Str("body", truncate(raw, maxErrorBody)).
			Msg("lending api error response")
		return nil, &domain.RequestError{
			Endpoint: endpoint,
			Status:   resp.StatusCode,
			Body:     truncate(raw, maxErrorBody),
		}
	}
	return raw, nil
}

func truncate(b []byte, n int) string {
	s := strings.TrimSpace(string(b))
	if len(s) > n {
		return s[:n]
	}
	return s
}
