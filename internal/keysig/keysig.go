// Package keysig verifies detached Ed25519 signatures whose keys and
// signatures arrive as loosely encoded base64 strings.
package keysig

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"strings"
)

const (
	// PublicKeySize is the exact decoded length of an accepted public key.
	PublicKeySize = ed25519.PublicKeySize

	// SignatureSize is the exact decoded length of an accepted signature.
	SignatureSize = ed25519.SignatureSize
)

// Decode accepts standard or URL-safe base64, padded or not, and enforces
// the exact decoded length. Anything else fails closed.
func Decode(s string, size int) ([]byte, error) {
	s = strings.ReplaceAll(s, "-", "+")
	s = strings.ReplaceAll(s, "_", "/")
	if m := len(s) % 4; m != 0 {
		s += strings.Repeat("=", 4-m)
	}

	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	if len(raw) != size {
		return nil, fmt.Errorf("decoded length is %d, want %d", len(raw), size)
	}

	return raw, nil
}

// Verify checks a detached Ed25519 signature over the UTF-8 bytes of msg.
// Returns false on any decode failure.
func Verify(msg, publicKey, signature string) bool {
	pub, err := Decode(publicKey, PublicKeySize)
	if err != nil {
		return false
	}

	sig, err := Decode(signature, SignatureSize)
	if err != nil {
		return false
	}

	return ed25519.Verify(ed25519.PublicKey(pub), []byte(msg), sig)
}
