package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/meridian-labs/heimdall/core"
	"github.com/meridian-labs/heimdall/ports"
)

// AuthService composes challenge verification, user lookup, session creation
// and token issuance into the login contract consumed by request handlers.
type AuthService struct {
	challenges *ChallengeService
	sessions   *SessionService
	users      ports.UserStore
	tokenizer  ports.SessionTokenizer
	events     ports.EventPublisher
	log        *zap.Logger

	now func() time.Time
}

// LoginResult is what a completed login hands back to the client.
type LoginResult struct {
	User    core.User
	Session core.Session
	Token   string
}

// NewAuthService creates a new authentication facade.
func NewAuthService(
	challenges *ChallengeService,
	sessions *SessionService,
	users ports.UserStore,
	tokenizer ports.SessionTokenizer,
	events ports.EventPublisher,
	log *zap.Logger,
) *AuthService {
	return &AuthService{
		challenges: challenges,
		sessions:   sessions,
		users:      users,
		tokenizer:  tokenizer,
		events:     events,
		log:        log,
		now:        time.Now,
	}
}

// StartLogin checks that the public key belongs to a known user, then issues
// a login challenge.
func (s *AuthService) StartLogin(ctx context.Context, publicKey string) (core.ChallengeCode, error) {
	if _, err := s.users.FindUserByPublicKey(ctx, publicKey); err != nil {
		return core.ChallengeCode{}, err
	}

	return s.challenges.CreateChallengeCode(ctx, core.FlowLogin, core.AuthTypeMnemonic)
}

// StartRegistration issues a registration challenge. No user exists yet, so
// there is nothing to look up.
func (s *AuthService) StartRegistration(ctx context.Context) (core.ChallengeCode, error) {
	return s.challenges.CreateChallengeCode(ctx, core.FlowRegistration, core.AuthTypeMnemonic)
}

// CompleteLogin verifies a signed login challenge and, on success, records
// the login, creates a session and issues a bearer token.
func (s *AuthService) CompleteLogin(ctx context.Context, publicKey, code, signature, device, userAgent string) (LoginResult, error) {
	if err := s.challenges.VerifyChallengeCode(ctx, code, publicKey, signature, core.FlowLogin, core.AuthTypeMnemonic); err != nil {
		return LoginResult{}, err
	}

	user, err := s.users.FindUserByPublicKey(ctx, publicKey)
	if err != nil {
		return LoginResult{}, err
	}

	if err := s.users.TouchLastLogin(ctx, user.ID, s.now()); err != nil {
		return LoginResult{}, fmt.Errorf("update last login: %w", err)
	}

	session, err := s.sessions.Create(ctx, user.ID, device, userAgent)
	if err != nil {
		return LoginResult{}, err
	}

	token, err := s.tokenizer.SessionToToken(&session)
	if err != nil {
		return LoginResult{}, err
	}

	if s.events != nil {
		if err := s.events.PublishLogin(ctx, user.ID, session.ID); err != nil {
			// The session is already live; the event is best effort.
			s.log.Warn("publish login event failed", zap.Error(err))
		}
	}

	s.log.Info("login completed",
		zap.String("user", user.ID),
		zap.String("session_id", session.ID))

	return LoginResult{User: user, Session: session, Token: token}, nil
}

// Logout ends a session. Idempotent: logging out an already-deleted session
// succeeds.
func (s *AuthService) Logout(ctx context.Context, session core.Session) error {
	if err := s.sessions.Delete(ctx, session.ID); err != nil {
		return err
	}

	if s.events != nil {
		if err := s.events.PublishLogout(ctx, session.User, session.ID); err != nil {
			s.log.Warn("publish logout event failed", zap.Error(err))
		}
	}

	return nil
}
