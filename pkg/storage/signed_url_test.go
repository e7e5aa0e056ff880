package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignedURLRoundTrip(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)

	token, expires, err := signer.Generate("uploads/u-1/notes.pdf")
	require.NoError(t, err)
	require.True(t, expires.After(time.Now()))

	ref, err := signer.Parse(token)
	require.NoError(t, err)
	require.Equal(t, "uploads/u-1/notes.pdf", ref)
}

func TestSignedURLRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)

	token, _, err := signer.Generate("uploads/u-1/notes.pdf")
	require.NoError(t, err)

	_, err = signer.Parse(token + "x")
	require.Error(t, err)

	other := NewSignedURLSigner("other-secret", time.Minute)
	_, err = other.Parse(token)
	require.Error(t, err)
}

func TestSignedURLRejectsExpired(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)
	signer.ttl = -time.Minute

	token, _, err := signer.Generate("uploads/u-1/notes.pdf")
	require.NoError(t, err)

	_, err = signer.Parse(token)
	require.Error(t, err)
}
