package ports

import (
	"context"
	"time"

	"github.com/meridian-labs/heimdall/core"
)

// ChallengeStore persists single-use challenge codes.
type ChallengeStore interface {
	// CreateChallenge persists a freshly issued challenge code.
	CreateChallenge(ctx context.Context, challenge core.ChallengeCode) error

	// GetChallenge loads a challenge code, returning core.ErrChallengeNotFound
	// when no row exists.
	GetChallenge(ctx context.Context, code string) (core.ChallengeCode, error)

	// ConsumeChallenge deletes a challenge code and reports whether this call
	// performed the deletion. Under concurrent consumption of the same code
	// at most one caller observes true.
	ConsumeChallenge(ctx context.Context, code string) (bool, error)
}

// SessionStore persists sessions.
type SessionStore interface {
	// CreateSession persists a new session.
	CreateSession(ctx context.Context, session core.Session) error

	// GetSession loads a session by id, returning core.ErrSessionNotFound
	// when no row exists. Expiry is not evaluated here; the service owns it.
	GetSession(ctx context.Context, id string) (core.Session, error)

	// UpdateSessionAccess sets the access and expiry timestamps of a session
	// and returns the updated row, or core.ErrSessionNotFound.
	UpdateSessionAccess(ctx context.Context, id string, accessedAt, expiresAt time.Time) (core.Session, error)

	// DeleteSession removes a session. Deleting a missing session is not an error.
	DeleteSession(ctx context.Context, id string) error
}

// UserStore resolves user identities. Owned by a collaborator; the auth core
// only reads identities and touches the last-login timestamp.
type UserStore interface {
	// FindUserByPublicKey returns the user owning the given public key,
	// or core.ErrUserNotFound.
	FindUserByPublicKey(ctx context.Context, publicKey string) (core.User, error)

	// TouchLastLogin records a successful login on the user.
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}
