package core

import "errors"

var (
	// ErrChallengeNotFound is returned when a challenge code does not exist,
	// has already been consumed, or was lost to a concurrent verification.
	ErrChallengeNotFound = errors.New("challenge code not found")

	// ErrChallengeMismatch is returned when a code is presented for a
	// different flow or auth type than it was issued for.
	ErrChallengeMismatch = errors.New("challenge flow or auth type mismatch")

	// ErrChallengeExpired is returned when a challenge code is past its expiry.
	ErrChallengeExpired = errors.New("challenge code expired")

	// ErrInvalidSignature is returned when the signature does not verify
	// against the claimed public key, or when key/signature decoding fails.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrMissingUserAgent is returned when a session is created without a user agent.
	ErrMissingUserAgent = errors.New("no user agent provided")

	// ErrInvalidDevice is returned when the device label is empty or too long.
	ErrInvalidDevice = errors.New("invalid device label")

	// ErrUnauthorized is returned when the Authorization header is missing
	// or not a Bearer credential.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidToken is returned when a bearer token fails verification.
	ErrInvalidToken = errors.New("invalid token")

	// ErrSessionNotFound is returned when a session does not exist or has
	// expired. The two cases are deliberately indistinguishable.
	ErrSessionNotFound = errors.New("session not found or expired")

	// ErrUserNotFound is returned when no user matches the claimed public key.
	ErrUserNotFound = errors.New("user cannot be found")

	// ErrSecretNotConfigured is returned when token operations are attempted
	// without a symmetric secret.
	ErrSecretNotConfigured = errors.New("crypto secret is not set")

	// ErrStoreOperationFailed is returned when the durable store fails.
	ErrStoreOperationFailed = errors.New("store operation failed")
)
