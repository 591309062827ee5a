package keysig

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeEncodingVariants(t *testing.T) {
	raw := make([]byte, PublicKeySize)
	_, err := rand.Read(raw)
	require.NoError(t, err)

	for name, encoded := range map[string]string{
		"standard":     base64.StdEncoding.EncodeToString(raw),
		"standard raw": base64.RawStdEncoding.EncodeToString(raw),
		"url-safe":     base64.URLEncoding.EncodeToString(raw),
		"url-safe raw": base64.RawURLEncoding.EncodeToString(raw),
	} {
		decoded, err := Decode(encoded, PublicKeySize)
		require.NoError(t, err, name)
		require.Equal(t, raw, decoded, name)
	}
}

func TestDecodeRejectsWrongLength(t *testing.T) {
	short := base64.StdEncoding.EncodeToString(make([]byte, PublicKeySize-1))
	_, err := Decode(short, PublicKeySize)
	require.Error(t, err)

	long := base64.StdEncoding.EncodeToString(make([]byte, SignatureSize+1))
	_, err = Decode(long, SignatureSize)
	require.Error(t, err)
}

func TestDecodeRejectsInvalidBase64(t *testing.T) {
	_, err := Decode("!!not base64!!", PublicKeySize)
	require.Error(t, err)
}

func TestVerify(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	const msg = "4ac9e5d3-8d4c-4d9e-b5a0-2f1c6a7b8c9d"
	sig := ed25519.Sign(priv, []byte(msg))

	pubStr := base64.StdEncoding.EncodeToString(pub)
	sigStr := base64.StdEncoding.EncodeToString(sig)

	require.True(t, Verify(msg, pubStr, sigStr))
	require.False(t, Verify("different message", pubStr, sigStr))
	require.False(t, Verify(msg, pubStr, base64.StdEncoding.EncodeToString(make([]byte, SignatureSize))))
	require.False(t, Verify(msg, "bad key", sigStr))
	require.False(t, Verify(msg, pubStr, "bad signature"))
}
