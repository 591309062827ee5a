package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-labs/heimdall/core"
)

// PostgresStore implements the ChallengeStore, SessionStore and UserStore
// interfaces on top of a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// CreateChallenge persists a challenge code.
func (s *PostgresStore) CreateChallenge(ctx context.Context, challenge core.ChallengeCode) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO challenge_codes (code, flow, auth_type, created_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		challenge.Code, challenge.Flow, challenge.AuthType, challenge.CreatedAt, challenge.ExpiresAt)
	if err != nil {
		return fmt.Errorf("insert challenge: %w", err)
	}

	return nil
}

// GetChallenge loads a challenge code.
func (s *PostgresStore) GetChallenge(ctx context.Context, code string) (core.ChallengeCode, error) {
	var challenge core.ChallengeCode
	err := s.pool.QueryRow(ctx,
		`SELECT code, flow, auth_type, created_at, expires_at
		 FROM challenge_codes WHERE code = $1`,
		code).Scan(&challenge.Code, &challenge.Flow, &challenge.AuthType, &challenge.CreatedAt, &challenge.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return core.ChallengeCode{}, core.ErrChallengeNotFound
		}
		return core.ChallengeCode{}, fmt.Errorf("select challenge: %w", err)
	}

	return challenge, nil
}

// ConsumeChallenge deletes a challenge code. The row count of the DELETE is
// the single-winner primitive: only the request whose delete removed the
// row treats verification as successful.
func (s *PostgresStore) ConsumeChallenge(ctx context.Context, code string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM challenge_codes WHERE code = $1`, code)
	if err != nil {
		return false, fmt.Errorf("delete challenge: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// CreateSession persists a session.
func (s *PostgresStore) CreateSession(ctx context.Context, session core.Session) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO sessions (id, user_id, device, user_agent, created_at, accessed_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		session.ID, session.User, session.Device, session.UserAgent,
		session.CreatedAt, session.AccessedAt, session.ExpiresAt)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	return nil
}

// GetSession loads a session by id.
func (s *PostgresStore) GetSession(ctx context.Context, id string) (core.Session, error) {
	var session core.Session
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, device, user_agent, created_at, accessed_at, expires_at
		 FROM sessions WHERE id = $1`,
		id).Scan(&session.ID, &session.User, &session.Device, &session.UserAgent,
		&session.CreatedAt, &session.AccessedAt, &session.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return core.Session{}, core.ErrSessionNotFound
		}
		return core.Session{}, fmt.Errorf("select session: %w", err)
	}

	return session, nil
}

// UpdateSessionAccess renews a session's access and expiry timestamps.
func (s *PostgresStore) UpdateSessionAccess(ctx context.Context, id string, accessedAt, expiresAt time.Time) (core.Session, error) {
	var session core.Session
	err := s.pool.QueryRow(ctx,
		`UPDATE sessions SET accessed_at = $2, expires_at = $3 WHERE id = $1
		 RETURNING id, user_id, device, user_agent, created_at, accessed_at, expires_at`,
		id, accessedAt, expiresAt).Scan(&session.ID, &session.User, &session.Device, &session.UserAgent,
		&session.CreatedAt, &session.AccessedAt, &session.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return core.Session{}, core.ErrSessionNotFound
		}
		return core.Session{}, fmt.Errorf("update session access: %w", err)
	}

	return session, nil
}

// DeleteSession removes a session. Missing rows are not an error.
func (s *PostgresStore) DeleteSession(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

// FindUserByPublicKey returns the user owning the public key.
func (s *PostgresStore) FindUserByPublicKey(ctx context.Context, publicKey string) (core.User, error) {
	var user core.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, public_key, namespace, profile, permissions, last_logged_in
		 FROM users WHERE public_key = $1`,
		publicKey).Scan(&user.ID, &user.PublicKey, &user.Namespace,
		&user.Profile, &user.Permissions, &user.LastLoggedIn)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return core.User{}, core.ErrUserNotFound
		}
		return core.User{}, fmt.Errorf("select user: %w", err)
	}

	return user, nil
}

// TouchLastLogin records a successful login on the user.
func (s *PostgresStore) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	tag, err := s.pool.Exec(ctx, `UPDATE users SET last_logged_in = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrUserNotFound
	}

	return nil
}
