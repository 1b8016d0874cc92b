package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/fintree/backoffice/internal/core/department"
	"github.com/fintree/backoffice/internal/core/domain"
	"github.com/fintree/backoffice/internal/core/ports"
	"github.com/fintree/backoffice/internal/core/review"
	"github.com/fintree/backoffice/internal/core/table"
)

const defaultIdleTTL = 30 * time.Minute

// Collections are the remote collections every workspace reads and writes.
type Collections struct {
	Companies   ports.Collection[domain.Company, domain.CompanyDraft]
	Departments ports.Collection[domain.Department, domain.DepartmentDraft]
	Roles       ports.Collection[domain.Role, domain.RoleDraft]
	Users       ports.Collection[domain.User, domain.UserDraft]
	Pages       ports.Collection[domain.Page, domain.PageDraft]
}

// WorkspaceConfig tunes the tables built for each session.
type WorkspaceConfig struct {
	PageSize         int
	DepartmentDelete department.DeletePolicy
	DepartmentUpdate table.Mode
	ReviewTabs       []domain.ReviewTab
	IdleTTL          time.Duration
}

// Workspace is the dashboard state of one session: one table per entity and
// the reviews opened so far.
type Workspace struct {
	Companies   *table.Engine[domain.Company, domain.CompanyDraft]
	Departments *department.Table
	Roles       *table.Engine[domain.Role, domain.RoleDraft]
	Users       *UserTable
	Pages       *table.Engine[domain.Page, domain.PageDraft]

	newReview func(applicationID string) (*review.TabSet, error)

	mu       sync.Mutex
	reviews  map[string]*review.TabSet
	lastSeen time.Time
}

// Review returns the review of applicationID, starting it on first access.
func (w *Workspace) Review(applicationID string) (*review.TabSet, error) {
	if applicationID == "" {
		return nil, fmt.Errorf("application id: %w", domain.ErrNotFound)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if ts, ok := w.reviews[applicationID]; ok {
		return ts, nil
	}
	ts, err := w.newReview(applicationID)
	if err != nil {
		return nil, err
	}
	w.reviews[applicationID] = ts
	return ts, nil
}

func (w *Workspace) touch(now time.Time) {
	w.mu.Lock()
	w.lastSeen = now
	w.mu.Unlock()
}

func (w *Workspace) idleSince() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastSeen
}

// WorkspaceService keeps one Workspace per live session. Workspaces go away
// when their session ends or after IdleTTL without a request.
type WorkspaceService struct {
	colls     Collections
	cfg       WorkspaceConfig
	validator *table.Validator
	guard     ports.SubmissionGuard
	audit     ports.AuditRepository
	log       zerolog.Logger
	now       func() time.Time

	mu     sync.Mutex
	spaces map[string]*Workspace
}

func NewWorkspaceService(
	colls Collections,
	cfg WorkspaceConfig,
	guard ports.SubmissionGuard,
	audit ports.AuditRepository,
	log zerolog.Logger,
) *WorkspaceService {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = defaultIdleTTL
	}
	if cfg.DepartmentDelete == "" {
		cfg.DepartmentDelete = department.DeleteOrphan
	}
	return &WorkspaceService{
		colls:     colls,
		cfg:       cfg,
		validator: table.NewValidator(),
		guard:     guard,
		audit:     audit,
		log:       log,
		now:       time.Now,
		spaces:    make(map[string]*Workspace),
	}
}

// For returns the workspace of sessionID, creating it on first use.
func (s *WorkspaceService) For(sessionID string) *Workspace {
	now := s.now()

	s.mu.Lock()
	w, ok := s.spaces[sessionID]
	if !ok {
		w = s.build(sessionID)
		s.spaces[sessionID] = w
	}
	s.mu.Unlock()

	w.touch(now)
	return w
}

// Drop forgets the workspace of sessionID. It is registered as a session end hook.
func (s *WorkspaceService) Drop(sessionID string) {
	s.mu.Lock()
	delete(s.spaces, sessionID)
	s.mu.Unlock()
}

func (s *WorkspaceService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.spaces)
}

// EvictIdle drops every workspace unused for longer than IdleTTL and returns
// how many went away.
func (s *WorkspaceService) EvictIdle() int {
	cutoff := s.now().Add(-s.cfg.IdleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for id, w := range s.spaces {
		if w.idleSince().Before(cutoff) {
			delete(s.spaces, id)
			evicted++
		}
	}
	return evicted
}

// Run evicts idle workspaces every interval until ctx is cancelled.
func (s *WorkspaceService) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.EvictIdle(); n > 0 {
				s.log.Info().Int("evicted", n).Int("remaining", s.Len()).Msg("idle workspaces evicted")
			}
		}
	}
}

func (s *WorkspaceService) build(sessionID string) *Workspace {
	log := s.log.With().Str("session_id", sessionID).Logger()
	opts := table.Options{
		PageSize: s.cfg.PageSize,
		Guard:    s.guard,
		Audit:    s.audit,
		Logger:   log,
	}

	refs := &userRefs{}
	users := &UserTable{
		Engine:      table.New(userSchema(refs), s.colls.Users, s.validator, opts),
		departments: s.colls.Departments,
		roles:       s.colls.Roles,
		refs:        refs,
	}

	tabs := s.cfg.ReviewTabs
	audit := s.audit

	return &Workspace{
		Companies: table.New(companySchema(), s.colls.Companies, s.validator, opts),
		Departments: department.NewTable(table.New(
			department.NewSchema(s.cfg.DepartmentDelete, s.cfg.DepartmentUpdate),
			s.colls.Departments, s.validator, opts,
		)),
		Roles: table.New(roleSchema(), s.colls.Roles, s.validator, opts),
		Users: users,
		Pages: table.New(pageSchema(), s.colls.Pages, s.validator, opts),
		newReview: func(applicationID string) (*review.TabSet, error) {
			return review.NewTabSet(applicationID, tabs, audit, log)
		},
		reviews: make(map[string]*review.TabSet),
	}
}
