package core

import (
	"encoding/json"
	"time"
)

// Flows a challenge code can be issued for. A code is only valid for the
// exact (flow, auth type) pair it was created with.
const (
	FlowLogin        = "login"
	FlowRegistration = "registration"
)

// AuthTypeMnemonic identifies keypairs derived from a mnemonic phrase.
const AuthTypeMnemonic = "mnemonic"

// ChallengeCode is a single-use code a client must sign with its private key
// to prove possession. Consumed (deleted) on first successful verification.
type ChallengeCode struct {
	Code      string    // Unguessable identifier, also the exact message that gets signed
	Flow      string    // Business context the code was issued for
	AuthType  string    // Authentication method the code was issued for
	CreatedAt time.Time // When the code was created
	ExpiresAt time.Time // When the code stops being verifiable
}

// Session is an authenticated user session with sliding expiration: every
// successful authenticated access pushes ExpiresAt out by the full TTL.
type Session struct {
	ID         string    // Unique session identifier, carried inside the bearer token
	User       string    // Identifier of the user the session belongs to
	Device     string    // Client-supplied device label
	UserAgent  string    // User agent the session was created from
	CreatedAt  time.Time // When the session was created
	AccessedAt time.Time // Last successful authenticated access
	ExpiresAt  time.Time // AccessedAt + session TTL
}

// User is the identity view resolved by public key during login.
type User struct {
	ID           string
	PublicKey    string
	Namespace    string
	Profile      json.RawMessage
	Permissions  json.RawMessage
	LastLoggedIn *time.Time
}
