package social_test

import (
	"testing"
	"time"

	"github.com/lpuqa/go-identity/social"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedStateRoundTrip(t *testing.T) {
	sm := social.NewSignedStateManager([]byte("state-secret"), 10*time.Minute)

	token, err := sm.Encode(&social.OAuthState{Provider: "google"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	decoded, err := sm.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "google", decoded.Provider)
	assert.NotEmpty(t, decoded.Nonce)
	assert.NotZero(t, decoded.IssuedAt)
	assert.NotZero(t, decoded.ExpiresAt)
}

func TestSignedStateRejectsTampering(t *testing.T) {
	sm := social.NewSignedStateManager([]byte("state-secret"), 10*time.Minute)

	token, err := sm.Encode(&social.OAuthState{Provider: "google"})
	require.NoError(t, err)

	tampered := "A" + token[1:]

	_, err = sm.Decode(tampered)
	require.Error(t, err)
}

func TestSignedStateRejectsWrongKey(t *testing.T) {
	sm := social.NewSignedStateManager([]byte("state-secret"), 10*time.Minute)
	other := social.NewSignedStateManager([]byte("other-secret"), 10*time.Minute)

	token, err := sm.Encode(&social.OAuthState{Provider: "google"})
	require.NoError(t, err)

	_, err = other.Decode(token)
	require.Error(t, err)
	assert.True(t, hasTextCode(err, social.TextCodeInvalidState))
}

func TestSignedStateExpires(t *testing.T) {
	sm := social.NewSignedStateManager([]byte("state-secret"), 10*time.Minute)

	token, err := sm.Encode(&social.OAuthState{
		Provider:  "google",
		IssuedAt:  time.Now().Add(-time.Hour).Unix(),
		ExpiresAt: time.Now().Add(-30 * time.Minute).Unix(),
	})
	require.NoError(t, err)

	_, err = sm.Decode(token)
	require.Error(t, err)
	assert.True(t, hasTextCode(err, social.TextCodeStateExpired))
}

func TestSignedStateRejectsGarbage(t *testing.T) {
	sm := social.NewSignedStateManager([]byte("state-secret"), 10*time.Minute)

	_, err := sm.Decode("not-base64!!")
	require.Error(t, err)

	_, err = sm.Decode("c2hvcnQ=")
	require.Error(t, err)
}
