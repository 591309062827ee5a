package store

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/meridian-labs/heimdall/core"
)

func newRedisChallengeStoreForTest(t *testing.T) (*RedisChallengeStore, *miniredis.Miniredis) {
	t.Helper()

	mini := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisChallengeStore(client), mini
}

func testChallenge(ttl time.Duration) core.ChallengeCode {
	now := time.Now().UTC()
	return core.ChallengeCode{
		Code:      "fb7b8f7a-1111-4222-8333-444455556666",
		Flow:      core.FlowLogin,
		AuthType:  core.AuthTypeMnemonic,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func TestRedisChallengeRoundTrip(t *testing.T) {
	s, _ := newRedisChallengeStoreForTest(t)
	ctx := context.Background()

	challenge := testChallenge(10 * time.Minute)
	require.NoError(t, s.CreateChallenge(ctx, challenge))

	got, err := s.GetChallenge(ctx, challenge.Code)
	require.NoError(t, err)
	require.Equal(t, challenge.Code, got.Code)
	require.Equal(t, challenge.Flow, got.Flow)
	require.Equal(t, challenge.AuthType, got.AuthType)
	require.True(t, got.CreatedAt.Equal(challenge.CreatedAt))
	require.True(t, got.ExpiresAt.Equal(challenge.ExpiresAt))
}

func TestRedisChallengeMissing(t *testing.T) {
	s, _ := newRedisChallengeStoreForTest(t)

	_, err := s.GetChallenge(context.Background(), "no-such-code")
	require.ErrorIs(t, err, core.ErrChallengeNotFound)
}

func TestRedisChallengeConsumeOnce(t *testing.T) {
	s, _ := newRedisChallengeStoreForTest(t)
	ctx := context.Background()

	challenge := testChallenge(10 * time.Minute)
	require.NoError(t, s.CreateChallenge(ctx, challenge))

	deleted, err := s.ConsumeChallenge(ctx, challenge.Code)
	require.NoError(t, err)
	require.True(t, deleted)

	deleted, err = s.ConsumeChallenge(ctx, challenge.Code)
	require.NoError(t, err)
	require.False(t, deleted)

	_, err = s.GetChallenge(ctx, challenge.Code)
	require.ErrorIs(t, err, core.ErrChallengeNotFound)
}

func TestRedisChallengeExpiresWithKey(t *testing.T) {
	s, mini := newRedisChallengeStoreForTest(t)
	ctx := context.Background()

	challenge := testChallenge(10 * time.Minute)
	require.NoError(t, s.CreateChallenge(ctx, challenge))

	mini.FastForward(10*time.Minute + time.Second)

	_, err := s.GetChallenge(ctx, challenge.Code)
	require.ErrorIs(t, err, core.ErrChallengeNotFound)
}
