package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	tests := []struct {
		name      string
		uid       string
		anonymous bool
	}{
		{"registered user", "user-1", false},
		{"anonymous user", "anon-1", true},
	}

	signer := NewSigner("secret")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := signer.Issue(tt.uid, tt.anonymous, time.Hour)
			require.NoError(t, err)

			claims, err := signer.Parse(token)
			require.NoError(t, err)
			assert.Equal(t, tt.uid, claims.UID)
			assert.Equal(t, tt.anonymous, claims.Anonymous)
		})
	}
}

func TestIssueRequiresUID(t *testing.T) {
	_, err := NewSigner("secret").Issue("", false, time.Hour)
	assert.Error(t, err)
}

func TestParseRejects(t *testing.T) {
	signer := NewSigner("secret")

	expired, err := signer.Issue("user-1", false, -time.Minute)
	require.NoError(t, err)

	foreign, err := NewSigner("other").Issue("user-1", false, time.Hour)
	require.NoError(t, err)

	noUID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "x"}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"expired", expired},
		{"wrong secret", foreign},
		{"missing uid", noUID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := signer.Parse(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
