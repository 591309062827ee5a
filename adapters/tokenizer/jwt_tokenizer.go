package tokenizer

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/meridian-labs/heimdall/core"
	"github.com/meridian-labs/heimdall/ports"
)

// HS256Tokenizer implements the SessionTokenizer interface with symmetric
// HMAC-SHA256 JWTs.
type HS256Tokenizer struct {
	secret []byte
}

// NewHS256Tokenizer creates a tokenizer signing with the given secret.
func NewHS256Tokenizer(secret string) ports.SessionTokenizer {
	return &HS256Tokenizer{secret: []byte(secret)}
}

// SessionToToken produces a signed bearer token carrying the session id.
func (t *HS256Tokenizer) SessionToToken(session *core.Session) (string, error) {
	if len(t.secret) == 0 {
		return "", core.ErrSecretNotConfigured
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{SID: session.ID})

	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}

	return signed, nil
}

// TokenToSessionID verifies a bearer token and extracts the session id. Any
// failure (malformed token, wrong signature, wrong algorithm, missing
// secret) is reported as absence.
func (t *HS256Tokenizer) TokenToSessionID(tokenStr string) (string, bool) {
	if len(t.secret) == 0 {
		return "", false
	}

	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))

	if err != nil || !token.Valid || claims.SID == "" {
		return "", false
	}

	return claims.SID, true
}
