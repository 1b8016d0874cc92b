// Package table implements the dashboard's entity tables: one generic engine
// that loads a remote collection, renders it searchable, sortable and paged,
// and round-trips add, edit and delete dialogs against the same endpoint.
package table

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fintree/backoffice/internal/core/domain"
	"github.com/fintree/backoffice/internal/core/ports"
	"github.com/fintree/backoffice/internal/core/session"
)

// Options carries the optional collaborators of an Engine.
type Options struct {
	PageSize int
	Guard    ports.SubmissionGuard
	Audit    ports.AuditRepository
	Logger   zerolog.Logger
}

// Confirmation is the delete prompt shown before a record is removed.
type Confirmation struct {
	ID     int64  `json:"id"`
	Label  string `json:"label"`
	Prompt string `json:"prompt"`
}

// Engine is one table instance. It exclusively owns the records it fetched;
// two engines for the same entity never share state.
type Engine[T any, D any] struct {
	schema   Schema[T, D]
	remote   ports.Collection[T, D]
	validate *Validator
	guard    ports.SubmissionGuard
	audit    ports.AuditRepository
	log      zerolog.Logger
	pageSize int

	mu            sync.Mutex
	records       []T
	loaded        bool
	query         string
	sort          SortState
	page          int
	pendingDelete *Confirmation

	// issued counts list requests, applied is the newest one whose answer
	// was kept; an older answer arriving late is dropped.
	issued  uint64
	applied uint64
}

func New[T any, D any](schema Schema[T, D], remote ports.Collection[T, D], v *Validator, opts Options) *Engine[T, D] {
	size := opts.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	return &Engine[T, D]{
		schema:   schema,
		remote:   remote,
		validate: v,
		guard:    opts.Guard,
		audit:    opts.Audit,
		log:      opts.Logger.With().Str("table", schema.Entity).Logger(),
		pageSize: size,
		page:     1,
	}
}

// List fetches the collection and replaces the snapshot. On any error the
// previous snapshot is kept.
func (e *Engine[T, D]) List(ctx context.Context) error {
	action := "load " + e.schema.Plural

	e.mu.Lock()
	e.issued++
	seq := e.issued
	e.mu.Unlock()

	records, err := e.remote.List(ctx)
	if err != nil {
		e.logFailure(action, err)
		return &domain.OperationError{Action: action, Err: err}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if seq < e.applied {
		e.log.Debug().Uint64("seq", seq).Uint64("applied", e.applied).Msg("dropping stale list response")
		return nil
	}
	e.applied = seq
	e.records = records
	e.loaded = true
	return nil
}

// Create validates draft, posts it and appends the server's record before
// refreshing the whole list.
func (e *Engine[T, D]) Create(ctx context.Context, draft D) (domain.Alert, error) {
	action := "add " + e.schema.Entity

	if err := e.check(0, draft); err != nil {
		return domain.Alert{}, err
	}

	release, err := e.acquire(ctx, "create", 0, draft)
	if err != nil {
		return domain.Alert{}, &domain.OperationError{Action: action, Err: err}
	}
	defer release()

	created, err := e.remote.Create(ctx, draft, uuid.NewString())
	if err != nil {
		e.logFailure(action, err)
		e.record(ctx, action, 0, err)
		return domain.Alert{}, &domain.OperationError{Action: action, Err: err}
	}

	e.mu.Lock()
	e.records = append(e.records, created)
	e.mu.Unlock()

	id := e.schema.ID(created)
	e.record(ctx, action, id, nil)

	if err := e.refresh(ctx); err != nil {
		return domain.Alert{}, err
	}
	return domain.SuccessAlert("Success", e.schema.Label(created)+" added successfully!"), nil
}

// Update validates draft and applies it to the record with the given id,
// remotely or in memory depending on the schema.
func (e *Engine[T, D]) Update(ctx context.Context, id int64, draft D) (domain.Alert, error) {
	action := "update " + e.schema.Entity

	if e.schema.UpdateMode == ModeUnsupported {
		return domain.Alert{}, &domain.OperationError{Action: action, Err: domain.ErrUnsupported}
	}
	if err := e.check(id, draft); err != nil {
		return domain.Alert{}, err
	}

	var updated T
	switch e.schema.UpdateMode {
	case ModeLocal:
		e.mu.Lock()
		idx := e.indexOf(id)
		if idx < 0 {
			e.mu.Unlock()
			return domain.Alert{}, &domain.OperationError{Action: action, Err: domain.ErrNotFound}
		}
		updated = e.schema.Apply(e.records[idx], draft)
		e.records[idx] = updated
		e.mu.Unlock()
		e.record(ctx, action, id, nil)

	default:
		release, err := e.acquire(ctx, "update", id, draft)
		if err != nil {
			return domain.Alert{}, &domain.OperationError{Action: action, Err: err}
		}
		defer release()

		updated, err = e.remote.Update(ctx, id, draft)
		if err != nil {
			e.logFailure(action, err)
			e.record(ctx, action, id, err)
			return domain.Alert{}, &domain.OperationError{Action: action, Err: err}
		}

		e.mu.Lock()
		if idx := e.indexOf(id); idx >= 0 {
			e.records[idx] = updated
		}
		e.mu.Unlock()
		e.record(ctx, action, id, nil)

		if err := e.refresh(ctx); err != nil {
			return domain.Alert{}, err
		}
	}

	return domain.SuccessAlert("Updated", e.schema.Label(updated)+" updated successfully!"), nil
}

// RequestDelete opens the confirmation for the record with the given id.
func (e *Engine[T, D]) RequestDelete(id int64) (Confirmation, error) {
	action := "delete " + e.schema.Entity
	if e.schema.DeleteMode == ModeUnsupported {
		return Confirmation{}, &domain.OperationError{Action: action, Err: domain.ErrUnsupported}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.indexOf(id)
	if idx < 0 {
		return Confirmation{}, &domain.OperationError{Action: action, Err: domain.ErrNotFound}
	}
	if e.schema.CanDelete != nil {
		if err := e.schema.CanDelete(e.records, id); err != nil {
			return Confirmation{}, &domain.OperationError{Action: action, Err: err}
		}
	}

	label := e.schema.Label(e.records[idx])
	c := Confirmation{
		ID:     id,
		Label:  label,
		Prompt: fmt.Sprintf("Are you sure you want to delete %s? This action cannot be undone.", label),
	}
	e.pendingDelete = &c
	return c, nil
}

// CancelDelete closes the confirmation without deleting anything.
func (e *Engine[T, D]) CancelDelete() {
	e.mu.Lock()
	e.pendingDelete = nil
	e.mu.Unlock()
}

// Delete removes the record whose deletion was confirmed. Removing an id that
// has already left the list leaves the list untouched.
func (e *Engine[T, D]) Delete(ctx context.Context, id int64) (domain.Alert, error) {
	action := "delete " + e.schema.Entity

	e.mu.Lock()
	pending := e.pendingDelete
	e.mu.Unlock()
	if pending == nil || pending.ID != id {
		return domain.Alert{}, &domain.OperationError{Action: action, Err: domain.ErrNotConfirmed}
	}

	if e.schema.DeleteMode == ModeRemote {
		if err := e.remote.Delete(ctx, id); err != nil {
			e.logFailure(action, err)
			e.record(ctx, action, id, err)
			return domain.Alert{}, &domain.OperationError{Action: action, Err: err}
		}
	}

	e.mu.Lock()
	if idx := e.indexOf(id); idx >= 0 {
		e.records = slices.Delete(e.records, idx, idx+1)
	}
	e.pendingDelete = nil
	e.mu.Unlock()

	e.record(ctx, action, id, nil)
	return domain.SuccessAlert("Deleted", pending.Label+" deleted successfully!"), nil
}

// Search sets the search box and returns to the first page.
func (e *Engine[T, D]) Search(query string) View {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.query = query
	e.page = 1
	return e.viewLocked()
}

// Sort advances the sort state of the clicked header.
func (e *Engine[T, D]) Sort(key string) (View, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.schema.column(e.records, key); !ok {
		return View{}, fmt.Errorf("%w: %q", domain.ErrUnknownColumn, key)
	}
	e.sort = e.sort.Next(key)
	return e.viewLocked(), nil
}

// Paginate moves to page p, clamped to the available pages.
func (e *Engine[T, D]) Paginate(p int) View {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.page = p
	return e.viewLocked()
}

func (e *Engine[T, D]) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewLocked()
}

// Snapshot returns a copy of the loaded records.
func (e *Engine[T, D]) Snapshot() []T {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.records)
}

// Loaded reports whether at least one list call succeeded.
func (e *Engine[T, D]) Loaded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loaded
}

func (e *Engine[T, D]) viewLocked() View {
	cols := e.schema.Columns(e.records)

	rows := Filter(e.records, e.schema.searchable(cols), e.query)
	if e.sort.Key != "" {
		for _, c := range cols {
			if c.Key == e.sort.Key {
				rows = Sort(rows, c, e.sort.Direction)
				break
			}
		}
	}

	pageRows, info := Paginate(rows, e.page, e.pageSize)
	e.page = info.Page

	keys := make([]string, len(cols))
	for i, c := range cols {
		keys[i] = c.Key
	}

	rendered := make([]Row, len(pageRows))
	for i, r := range pageRows {
		row := make(Row, len(cols))
		for _, c := range cols {
			row[c.Key] = Display(c.Value(r))
		}
		rendered[i] = row
	}

	return View{
		Entity:  e.schema.Entity,
		Columns: keys,
		Rows:    rendered,
		Query:   e.query,
		Sort:    e.sort,
		Paging:  info,
		Loaded:  len(e.records),
	}
}

func (e *Engine[T, D]) indexOf(id int64) int {
	return slices.IndexFunc(e.records, func(r T) bool { return e.schema.ID(r) == id })
}

func (e *Engine[T, D]) check(id int64, draft D) error {
	if err := e.validate.Check(draft); err != nil {
		return err
	}
	if e.schema.Check == nil {
		return nil
	}
	e.mu.Lock()
	snapshot := slices.Clone(e.records)
	e.mu.Unlock()
	return e.schema.Check(snapshot, id, draft)
}

// refresh reloads the list after a mutation. Only an expired session is
// reported; other failures keep the mutation's success.
func (e *Engine[T, D]) refresh(ctx context.Context) error {
	err := e.List(ctx)
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrUnauthorized) {
		return err
	}
	e.log.Warn().Err(err).Msg("refresh after mutation failed")
	return nil
}

// acquire takes the in-flight slot for an identical submission. A guard that
// cannot be reached does not block the user.
func (e *Engine[T, D]) acquire(ctx context.Context, op string, id int64, draft D) (func(), error) {
	if e.guard == nil {
		return func() {}, nil
	}

	key := e.submissionKey(ctx, op, id, draft)
	ok, err := e.guard.Acquire(ctx, key)
	if err != nil {
		e.log.Warn().Err(err).Str("op", op).Msg("submission guard unavailable")
		return func() {}, nil
	}
	if !ok {
		return nil, domain.ErrInFlight
	}

	return func() {
		if err := e.guard.Release(context.WithoutCancel(ctx), key); err != nil {
			e.log.Warn().Err(err).Str("op", op).Msg("submission guard release failed")
		}
	}, nil
}

func (e *Engine[T, D]) submissionKey(ctx context.Context, op string, id int64, draft D) string {
	sess, _ := session.FromContext(ctx)
	payload, _ := json.Marshal(draft)
	sum := sha256.Sum256(payload)
	return fmt.Sprintf("%s:%s:%s:%d:%s", sess.ID, e.schema.Entity, op, id, hex.EncodeToString(sum[:8]))
}

func (e *Engine[T, D]) record(ctx context.Context, action string, id int64, failure error) {
	if e.audit == nil {
		return
	}

	sess, _ := session.FromContext(ctx)
	entry := &domain.AuditEntry{
		SessionID: sess.ID,
		CompanyID: sess.CompanyID,
		Entity:    e.schema.Entity,
		Action:    action,
		Outcome:   domain.AuditSucceeded,
		At:        time.Now().UTC(),
	}
	if id > 0 {
		entry.RecordID = strconv.FormatInt(id, 10)
	}
	if failure != nil {
		entry.Outcome = domain.AuditFailed
		entry.Detail = failure.Error()
	}

	if err := e.audit.InsertEntry(context.WithoutCancel(ctx), entry); err != nil {
		e.log.Warn().Err(err).Str("action", action).Msg("audit write failed")
	}
}

func (e *Engine[T, D]) logFailure(action string, err error) {
	var te *domain.TransportError
	if errors.As(err, &te) {
		e.log.Error().Err(err).Str("action", action).Msg("lending api unreachable")
		return
	}
	e.log.Warn().Err(err).Str("action", action).Msg("lending api call failed")
}
