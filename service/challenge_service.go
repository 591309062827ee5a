package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/meridian-labs/heimdall/core"
	"github.com/meridian-labs/heimdall/internal/keysig"
	"github.com/meridian-labs/heimdall/ports"
)

// DefaultChallengeTTL is how long an issued challenge code stays verifiable.
const DefaultChallengeTTL = 10 * time.Minute

// ChallengeService issues and consumes single-use challenge codes.
type ChallengeService struct {
	store ports.ChallengeStore
	log   *zap.Logger

	ttl time.Duration
	now func() time.Time
}

// NewChallengeService creates a new challenge service.
func NewChallengeService(store ports.ChallengeStore, log *zap.Logger) *ChallengeService {
	return &ChallengeService{
		store: store,
		log:   log,
		ttl:   DefaultChallengeTTL,
		now:   time.Now,
	}
}

// CreateChallengeCode issues a fresh challenge code for the given flow and
// auth type and persists it.
func (s *ChallengeService) CreateChallengeCode(ctx context.Context, flow, authType string) (core.ChallengeCode, error) {
	now := s.now()
	challenge := core.ChallengeCode{
		Code:      uuid.NewString(),
		Flow:      flow,
		AuthType:  authType,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.store.CreateChallenge(ctx, challenge); err != nil {
		return core.ChallengeCode{}, fmt.Errorf("persist challenge code: %w", err)
	}

	s.log.Debug("challenge code issued",
		zap.String("flow", flow),
		zap.String("auth_type", authType),
		zap.Time("expires_at", challenge.ExpiresAt))

	return challenge, nil
}

// VerifyChallengeCode checks a signed challenge response and consumes the
// code on success. The signed message is the literal code string.
//
// Consumption is single-winner: when two callers verify the same code
// concurrently, only the one whose delete removed the row succeeds; the
// other observes core.ErrChallengeNotFound. Mismatch and expiry failures do
// not consume the code.
func (s *ChallengeService) VerifyChallengeCode(ctx context.Context, code, publicKey, signature, flow, authType string) error {
	challenge, err := s.store.GetChallenge(ctx, code)
	if err != nil {
		return err
	}

	if challenge.Flow != flow || challenge.AuthType != authType {
		return core.ErrChallengeMismatch
	}

	if !s.now().Before(challenge.ExpiresAt) {
		return core.ErrChallengeExpired
	}

	if !keysig.Verify(code, publicKey, signature) {
		return core.ErrInvalidSignature
	}

	deleted, err := s.store.ConsumeChallenge(ctx, code)
	if err != nil {
		return fmt.Errorf("consume challenge code: %w", err)
	}
	if !deleted {
		// Lost the race: another request spent this code first.
		return core.ErrChallengeNotFound
	}

	return nil
}
