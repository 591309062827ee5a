package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/meridian-labs/heimdall/core"
	"github.com/meridian-labs/heimdall/ports"
)

const (
	// DefaultSessionTTL is the sliding expiration window of a session.
	DefaultSessionTTL = 21 * 24 * time.Hour

	// MaxDeviceLength bounds the client-supplied device label.
	MaxDeviceLength = 500

	bearerPrefix = "Bearer "
)

// SessionService creates sessions, resolves them with sliding-expiration
// renewal, and authenticates callers from bearer tokens.
type SessionService struct {
	store     ports.SessionStore
	tokenizer ports.SessionTokenizer
	log       *zap.Logger

	ttl time.Duration
	now func() time.Time
}

// NewSessionService creates a new session service.
func NewSessionService(store ports.SessionStore, tokenizer ports.SessionTokenizer, log *zap.Logger) *SessionService {
	return &SessionService{
		store:     store,
		tokenizer: tokenizer,
		log:       log,
		ttl:       DefaultSessionTTL,
		now:       time.Now,
	}
}

// Create persists a new session for the user.
func (s *SessionService) Create(ctx context.Context, user, device, userAgent string) (core.Session, error) {
	if userAgent == "" {
		return core.Session{}, core.ErrMissingUserAgent
	}
	if device == "" || len(device) > MaxDeviceLength {
		return core.Session{}, core.ErrInvalidDevice
	}

	now := s.now()
	session := core.Session{
		ID:         uuid.NewString(),
		User:       user,
		Device:     device,
		UserAgent:  userAgent,
		CreatedAt:  now,
		AccessedAt: now,
		ExpiresAt:  now.Add(s.ttl),
	}

	if err := s.store.CreateSession(ctx, session); err != nil {
		return core.Session{}, fmt.Errorf("persist session: %w", err)
	}

	s.log.Debug("session created",
		zap.String("session_id", session.ID),
		zap.String("user", user))

	return session, nil
}

// Get loads a session by id. An expired session is indistinguishable from a
// missing one.
func (s *SessionService) Get(ctx context.Context, id string) (core.Session, error) {
	session, err := s.store.GetSession(ctx, id)
	if err != nil {
		return core.Session{}, err
	}

	if !s.now().Before(session.ExpiresAt) {
		return core.Session{}, core.ErrSessionNotFound
	}

	return session, nil
}

// GetAndBump loads a session and, on a hit, renews its sliding expiration:
// AccessedAt moves to now and ExpiresAt to now + TTL. Concurrent bumps may
// race; the last write wins.
func (s *SessionService) GetAndBump(ctx context.Context, id string) (core.Session, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return core.Session{}, err
	}

	now := s.now()
	updated, err := s.store.UpdateSessionAccess(ctx, session.ID, now, now.Add(s.ttl))
	if err != nil {
		return core.Session{}, err
	}

	return updated, nil
}

// AuthenticateCurrent resolves and renews the session referenced by an
// Authorization header value.
func (s *SessionService) AuthenticateCurrent(ctx context.Context, authHeader string) (core.Session, error) {
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return core.Session{}, core.ErrUnauthorized
	}

	token := strings.TrimPrefix(authHeader, bearerPrefix)
	sid, ok := s.tokenizer.TokenToSessionID(token)
	if !ok {
		return core.Session{}, core.ErrInvalidToken
	}

	return s.GetAndBump(ctx, sid)
}

// Delete removes a session, ending it before its natural expiry.
func (s *SessionService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
