package store

import (
	"context"
	"sync"
	"time"

	"github.com/meridian-labs/heimdall/core"
)

// MemoryStore is an in-memory implementation of the ChallengeStore,
// SessionStore and UserStore interfaces. Primarily intended for testing.
type MemoryStore struct {
	mu         sync.RWMutex
	challenges map[string]core.ChallengeCode
	sessions   map[string]core.Session
	users      map[string]core.User // keyed by public key
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		challenges: make(map[string]core.ChallengeCode),
		sessions:   make(map[string]core.Session),
		users:      make(map[string]core.User),
	}
}

// CreateChallenge persists a challenge code.
func (s *MemoryStore) CreateChallenge(_ context.Context, challenge core.ChallengeCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.challenges[challenge.Code] = challenge
	return nil
}

// GetChallenge loads a challenge code.
func (s *MemoryStore) GetChallenge(_ context.Context, code string) (core.ChallengeCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	challenge, ok := s.challenges[code]
	if !ok {
		return core.ChallengeCode{}, core.ErrChallengeNotFound
	}

	return challenge, nil
}

// ConsumeChallenge deletes a challenge code under the lock, so exactly one
// concurrent caller observes true.
func (s *MemoryStore) ConsumeChallenge(_ context.Context, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.challenges[code]; !ok {
		return false, nil
	}

	delete(s.challenges, code)
	return true, nil
}

// CreateSession persists a session.
func (s *MemoryStore) CreateSession(_ context.Context, session core.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.ID] = session
	return nil
}

// GetSession loads a session by id.
func (s *MemoryStore) GetSession(_ context.Context, id string) (core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return core.Session{}, core.ErrSessionNotFound
	}

	return session, nil
}

// UpdateSessionAccess renews a session's access and expiry timestamps.
func (s *MemoryStore) UpdateSessionAccess(_ context.Context, id string, accessedAt, expiresAt time.Time) (core.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return core.Session{}, core.ErrSessionNotFound
	}

	session.AccessedAt = accessedAt
	session.ExpiresAt = expiresAt
	s.sessions[id] = session

	return session, nil
}

// DeleteSession removes a session.
func (s *MemoryStore) DeleteSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

// FindUserByPublicKey returns the user owning the public key.
func (s *MemoryStore) FindUserByPublicKey(_ context.Context, publicKey string) (core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[publicKey]
	if !ok {
		return core.User{}, core.ErrUserNotFound
	}

	return user, nil
}

// TouchLastLogin records a successful login on the user.
func (s *MemoryStore) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, user := range s.users {
		if user.ID == id {
			user.LastLoggedIn = &at
			s.users[key] = user
			return nil
		}
	}

	return core.ErrUserNotFound
}

// PutUser seeds a user. Useful for tests and local development.
func (s *MemoryStore) PutUser(user core.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[user.PublicKey] = user
}

// Clear removes all data from the store, resetting it between tests.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.challenges = make(map[string]core.ChallengeCode)
	s.sessions = make(map[string]core.Session)
	s.users = make(map[string]core.User)
}
