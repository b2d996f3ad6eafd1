package keysigner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewGeneratesAndPersists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "0")

	first, err := New(path)
	require.NoError(t, err)
	require.NotEmpty(t, first.PublicKey())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, content, 64) // 32 bytes hex-encoded

	second, err := New(path)
	require.NoError(t, err)
	require.Equal(t, first.PublicKey(), second.PublicKey())
}

func TestSignBufferDeterministic(t *testing.T) {
	dir := t.TempDir()
	signer, err := New(filepath.Join(dir, "0"))
	require.NoError(t, err)

	sig1, err := signer.SignBuffer([]byte("hello"))
	require.NoError(t, err)
	sig2, err := signer.SignBuffer([]byte("hello"))
	require.NoError(t, err)
	require.Equal(t, sig1, sig2)

	sig3, err := signer.SignBuffer([]byte("other"))
	require.NoError(t, err)
	require.NotEqual(t, sig1, sig3)
}

func TestNewFromSecretRoundTrip(t *testing.T) {
	secret := make([]byte, 32)
	for i := range secret {
		secret[i] = byte(i + 1)
	}
	a, err := NewFromSecret(secret)
	require.NoError(t, err)
	b, err := NewFromSecret(secret)
	require.NoError(t, err)
	require.Equal(t, a.PublicKey(), b.PublicKey())
}
