package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fintree/backoffice/internal/core/domain"
	"github.com/fintree/backoffice/internal/core/ports"
)

// LoginInput is what the tenant login form submits.
type LoginInput struct {
	Email     string
	Password  string
	ThemeCode string
}

// SessionService implements login, logout and session expiry. Expire is the single
// place a rejected token is handled; everything that keeps per-session state
// registers an OnEnd hook instead of clearing it by itself.
type SessionService struct {
	auth  ports.Authenticator
	store ports.SessionStore
	log   zerolog.Logger
	now   func() time.Time

	mu    sync.RWMutex
	hooks []func(sessionID string)
}

func NewSessionService(auth ports.Authenticator, store ports.SessionStore, log zerolog.Logger) *SessionService {
	return &SessionService{
		auth:  auth,
		store: store,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// OnEnd registers fn to run whenever a session ends, by logout or expiry.
func (s *SessionService) OnEnd(fn func(sessionID string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, fn)
}

func (s *SessionService) Login(ctx context.Context, in LoginInput) (domain.Session, error) {
	email := strings.TrimSpace(in.Email)

	fields := make(map[string]string)
	if email == "" {
		fields["email"] = "Email is required"
	}
	if in.Password == "" {
		fields["password"] = "Password is required"
	}
	if len(fields) > 0 {
		return domain.Session{}, &domain.ValidationError{Fields: fields}
	}

	creds, err := s.auth.Login(ctx, email, in.Password)
	if err != nil {
		return domain.Session{}, err
	}
	if creds.AccessToken == "" {
		return domain.Session{}, &domain.OperationError{Action: "sign in", Err: domain.ErrNoAccessToken}
	}

	sess := domain.Session{
		ID:          uuid.NewString(),
		AccessToken: creds.AccessToken,
		CompanyID:   creds.CompanyID,
		ThemeCode:   in.ThemeCode,
		Role:        creds.Role,
		CreatedAt:   s.now(),
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return domain.Session{}, fmt.Errorf("save session: %w", err)
	}

	s.log.Info().
		Str("session_id", sess.ID).
		Str("company_id", sess.CompanyID).
		Str("theme_code", sess.ThemeCode).
		Msg("session started")
	return sess, nil
}

// Resolve loads the session behind a cookie value.
func (s *SessionService) Resolve(ctx context.Context, id string) (domain.Session, error) {
	if id == "" {
		return domain.Session{}, domain.ErrSessionMissing
	}
	return s.store.Get(ctx, id)
}

func (s *SessionService) Logout(ctx context.Context, id string) error {
	return s.end(ctx, id, "logout")
}

// Expire wipes a session whose token the lending API rejected.
func (s *SessionService) Expire(ctx context.Context, id string) error {
	return s.end(ctx, id, "expired")
}

func (s *SessionService) end(ctx context.Context, id, reason string) error {
	if id == "" {
		return nil
	}

	err := s.store.Delete(ctx, id)

	s.mu.RLock()
	hooks := append([]func(string){}, s.hooks...)
	s.mu.RUnlock()
	for _, fn := range hooks {
		fn(id)
	}

	s.log.Info().Str("session_id", id).Str("reason", reason).Msg("session ended")
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
