package ports

import "github.com/meridian-labs/heimdall/core"

// SessionTokenizer converts between sessions and bearer tokens.
type SessionTokenizer interface {
	// SessionToToken produces a signed bearer token referencing the session.
	SessionToToken(session *core.Session) (string, error)

	// TokenToSessionID verifies a bearer token and extracts the session id.
	// Any verification failure is reported as absence, not an error: a bad
	// token is simply no credential.
	TokenToSessionID(token string) (string, bool)
}
