package tokenizer

import "github.com/golang-jwt/jwt/v5"

// SessionClaims binds a session id to the token. The token carries no expiry
// of its own; liveness is delegated to the referenced session row.
type SessionClaims struct {
	jwt.RegisteredClaims
	SID string `json:"sid"`
}
