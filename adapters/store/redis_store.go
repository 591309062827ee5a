package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/meridian-labs/heimdall/core"
)

// RedisChallengeStore keeps challenge codes in Redis, one hash per code. The
// key TTL tracks the challenge expiry, so stale codes are reclaimed without
// a sweeper.
type RedisChallengeStore struct {
	client *redis.Client
	prefix string
}

// NewRedisChallengeStore creates a Redis-backed challenge store.
func NewRedisChallengeStore(client *redis.Client) *RedisChallengeStore {
	return &RedisChallengeStore{
		client: client,
		prefix: "heimdall:challenge:",
	}
}

func (s *RedisChallengeStore) key(code string) string {
	return s.prefix + code
}

// CreateChallenge persists a challenge code with a TTL matching its expiry.
func (s *RedisChallengeStore) CreateChallenge(ctx context.Context, challenge core.ChallengeCode) error {
	key := s.key(challenge.Code)

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"flow":       challenge.Flow,
		"auth_type":  challenge.AuthType,
		"created_at": challenge.CreatedAt.UTC().Format(time.RFC3339Nano),
		"expires_at": challenge.ExpiresAt.UTC().Format(time.RFC3339Nano),
	})
	pipe.ExpireAt(ctx, key, challenge.ExpiresAt)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("create challenge: %w", err)
	}

	return nil
}

// GetChallenge loads a challenge code.
func (s *RedisChallengeStore) GetChallenge(ctx context.Context, code string) (core.ChallengeCode, error) {
	values, err := s.client.HGetAll(ctx, s.key(code)).Result()
	if err != nil {
		return core.ChallengeCode{}, fmt.Errorf("get challenge: %w", err)
	}
	if len(values) == 0 {
		return core.ChallengeCode{}, core.ErrChallengeNotFound
	}

	createdAt, err := time.Parse(time.RFC3339Nano, values["created_at"])
	if err != nil {
		return core.ChallengeCode{}, fmt.Errorf("parse created_at: %w", err)
	}
	expiresAt, err := time.Parse(time.RFC3339Nano, values["expires_at"])
	if err != nil {
		return core.ChallengeCode{}, fmt.Errorf("parse expires_at: %w", err)
	}

	return core.ChallengeCode{
		Code:      code,
		Flow:      values["flow"],
		AuthType:  values["auth_type"],
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
	}, nil
}

// ConsumeChallenge deletes a challenge code. DEL reports how many keys it
// removed, so exactly one concurrent caller observes true.
func (s *RedisChallengeStore) ConsumeChallenge(ctx context.Context, code string) (bool, error) {
	n, err := s.client.Del(ctx, s.key(code)).Result()
	if err != nil {
		return false, fmt.Errorf("consume challenge: %w", err)
	}

	return n > 0, nil
}
