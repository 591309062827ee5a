package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/meridian-labs/heimdall/adapters/store"
	"github.com/meridian-labs/heimdall/adapters/tokenizer"
	"github.com/meridian-labs/heimdall/core"
	"github.com/meridian-labs/heimdall/ports"
)

type recordingPublisher struct {
	mu      sync.Mutex
	logins  []string
	logouts []string
}

func (p *recordingPublisher) PublishLogin(_ context.Context, _, sessionID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logins = append(p.logins, sessionID)
	return nil
}

func (p *recordingPublisher) PublishLogout(_ context.Context, _, sessionID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logouts = append(p.logouts, sessionID)
	return nil
}

type authFixture struct {
	auth     *AuthService
	sessions *SessionService
	codec    ports.SessionTokenizer
	store    *store.MemoryStore
	events   *recordingPublisher
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	mem := store.NewMemoryStore()
	codec := tokenizer.NewHS256Tokenizer("test-secret")
	log := zap.NewNop()
	events := &recordingPublisher{}

	challenges := NewChallengeService(mem, log)
	sessions := NewSessionService(mem, codec, log)
	auth := NewAuthService(challenges, sessions, mem, codec, events, log)

	return &authFixture{auth: auth, sessions: sessions, codec: codec, store: mem, events: events}
}

func seedUser(f *authFixture, publicKey string) core.User {
	user := core.User{
		ID:          "user-1",
		PublicKey:   publicKey,
		Namespace:   "main",
		Profile:     json.RawMessage(`{"name":"tester"}`),
		Permissions: json.RawMessage(`[]`),
	}
	f.store.PutUser(user)
	return user
}

func TestStartLoginUnknownKey(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.auth.StartLogin(context.Background(), "unknown-key")
	require.ErrorIs(t, err, core.ErrUserNotFound)
}

func TestCompleteLoginEndToEnd(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	pub, priv := newTestKeypair(t)
	user := seedUser(f, pub)

	challenge, err := f.auth.StartLogin(ctx, pub)
	require.NoError(t, err)
	require.Equal(t, core.FlowLogin, challenge.Flow)
	require.Equal(t, core.AuthTypeMnemonic, challenge.AuthType)

	result, err := f.auth.CompleteLogin(ctx, pub, challenge.Code, signCode(priv, challenge.Code), "desktop", "test-agent")
	require.NoError(t, err)
	require.Equal(t, user.ID, result.User.ID)
	require.Equal(t, user.ID, result.Session.User)
	require.Equal(t, "desktop", result.Session.Device)
	require.Equal(t, "test-agent", result.Session.UserAgent)
	require.NotEmpty(t, result.Token)

	// The token decodes back to the session id.
	sid, ok := f.codec.TokenToSessionID(result.Token)
	require.True(t, ok)
	require.Equal(t, result.Session.ID, sid)

	// The login was recorded on the user and published.
	stored, err := f.store.FindUserByPublicKey(ctx, pub)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLoggedIn)
	require.Equal(t, []string{result.Session.ID}, f.events.logins)

	// Authenticating with the token bumps the session.
	f.sessions.now = func() time.Time { return result.Session.AccessedAt.Add(time.Minute) }
	bumped, err := f.sessions.AuthenticateCurrent(ctx, "Bearer "+result.Token)
	require.NoError(t, err)
	require.True(t, bumped.AccessedAt.After(result.Session.AccessedAt))
	require.True(t, bumped.ExpiresAt.Equal(bumped.AccessedAt.Add(DefaultSessionTTL)))

	// The challenge code is spent.
	err = f.auth.challenges.VerifyChallengeCode(ctx, challenge.Code, pub, signCode(priv, challenge.Code), core.FlowLogin, core.AuthTypeMnemonic)
	require.ErrorIs(t, err, core.ErrChallengeNotFound)
}

func TestCompleteLoginRejectsRegistrationCode(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	pub, priv := newTestKeypair(t)
	seedUser(f, pub)

	challenge, err := f.auth.StartRegistration(ctx)
	require.NoError(t, err)
	require.Equal(t, core.FlowRegistration, challenge.Flow)

	_, err = f.auth.CompleteLogin(ctx, pub, challenge.Code, signCode(priv, challenge.Code), "desktop", "test-agent")
	require.ErrorIs(t, err, core.ErrChallengeMismatch)
}

func TestCompleteLoginUnknownUser(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	pub, priv := newTestKeypair(t)

	// The key signs correctly but belongs to nobody.
	challenge, err := f.auth.challenges.CreateChallengeCode(ctx, core.FlowLogin, core.AuthTypeMnemonic)
	require.NoError(t, err)

	_, err = f.auth.CompleteLogin(ctx, pub, challenge.Code, signCode(priv, challenge.Code), "desktop", "test-agent")
	require.ErrorIs(t, err, core.ErrUserNotFound)
}

func TestLogoutEndsSession(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	pub, priv := newTestKeypair(t)
	seedUser(f, pub)

	challenge, err := f.auth.StartLogin(ctx, pub)
	require.NoError(t, err)

	result, err := f.auth.CompleteLogin(ctx, pub, challenge.Code, signCode(priv, challenge.Code), "desktop", "test-agent")
	require.NoError(t, err)

	require.NoError(t, f.auth.Logout(ctx, result.Session))
	require.Equal(t, []string{result.Session.ID}, f.events.logouts)

	_, err = f.sessions.AuthenticateCurrent(ctx, "Bearer "+result.Token)
	require.ErrorIs(t, err, core.ErrSessionNotFound)

	// Logout is idempotent.
	require.NoError(t, f.auth.Logout(ctx, result.Session))
}
