package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var devSecret = []byte("test-secret")

func TestDevVerifierRoundTrip(t *testing.T) {
	claims := &Claims{
		Subject: "sub123",
		Email:   "user@example.com",
		Name:    "Test User",
		Picture: "https://example.com/avatar.png",
		Issuer:  "accounts.google.com",
	}
	token, err := MintDevToken(devSecret, claims, time.Hour)
	require.NoError(t, err)

	got, err := NewDevVerifier(devSecret).Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, claims, got)
}

func TestDevVerifierWrongSecret(t *testing.T) {
	token, err := MintDevToken(devSecret, &Claims{Subject: "sub123"}, time.Hour)
	require.NoError(t, err)

	_, err = NewDevVerifier([]byte("other-secret")).Verify(context.Background(), token)
	assert.Error(t, err)
}

func TestDevVerifierExpired(t *testing.T) {
	token, err := MintDevToken(devSecret, &Claims{Subject: "sub123"}, -time.Minute)
	require.NoError(t, err)

	_, err = NewDevVerifier(devSecret).Verify(context.Background(), token)
	assert.Error(t, err)
}

func TestDevVerifierGarbage(t *testing.T) {
	_, err := NewDevVerifier(devSecret).Verify(context.Background(), "not-a-jwt")
	assert.Error(t, err)
}

func TestDevVerifierMissingSubject(t *testing.T) {
	token, err := MintDevToken(devSecret, &Claims{Email: "user@example.com"}, time.Hour)
	require.NoError(t, err)

	_, err = NewDevVerifier(devSecret).Verify(context.Background(), token)
	assert.Error(t, err)
}

func TestValidIssuer(t *testing.T) {
	assert.True(t, ValidIssuer("accounts.google.com"))
	assert.True(t, ValidIssuer("https://accounts.google.com"))
	assert.False(t, ValidIssuer("https://invalid.example.com"))
	assert.False(t, ValidIssuer(""))
}
