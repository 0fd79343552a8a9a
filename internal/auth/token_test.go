package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSigner(t *testing.T) {
	tests := []struct {
		name      string
		secret    string
		algorithm string
		wantErr   bool
	}{
		{name: "default algorithm", secret: "s3cret", algorithm: ""},
		{name: "hs256", secret: "s3cret", algorithm: "HS256"},
		{name: "hs384", secret: "s3cret", algorithm: "HS384"},
		{name: "hs512 lowercase", secret: "s3cret", algorithm: "hs512"},
		{name: "missing secret", secret: "", algorithm: "HS256", wantErr: true},
		{name: "asymmetric algorithm rejected", secret: "s3cret", algorithm: "RS256", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSigner(tt.secret, tt.algorithm)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIssueVerifyRoundtrip(t *testing.T) {
	signer, err := NewSigner("s3cret", "HS256")
	require.NoError(t, err)

	token, err := signer.Issue("alice", 42, "user", TokenTTL)
	require.NoError(t, err)

	claims, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, 42, claims.UserID)
	assert.Equal(t, "user", claims.Role)
}

func TestVerifyExpiredToken(t *testing.T) {
	signer, err := NewSigner("s3cret", "HS256")
	require.NoError(t, err)

	token, err := signer.Issue("alice", 42, "user", -time.Minute)
	require.NoError(t, err)

	_, err = signer.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyWrongSecret(t *testing.T) {
	signer, err := NewSigner("s3cret", "HS256")
	require.NoError(t, err)
	other, err := NewSigner("another", "HS256")
	require.NoError(t, err)

	token, err := signer.Issue("alice", 42, "user", TokenTTL)
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyMissingClaims(t *testing.T) {
	signer, err := NewSigner("s3cret", "HS256")
	require.NoError(t, err)

	sign := func(claims jwt.Claims) string {
		token, signErr := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("s3cret"))
		require.NoError(t, signErr)
		return token
	}

	expiry := jwt.NewNumericDate(time.Now().Add(time.Hour))

	tests := []struct {
		name  string
		token string
	}{
		{
			name: "missing subject",
			token: sign(Claims{
				UserID:           42,
				Role:             "user",
				RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: expiry},
			}),
		},
		{
			name: "missing user id",
			token: sign(Claims{
				Role:             "user",
				RegisteredClaims: jwt.RegisteredClaims{Subject: "alice", ExpiresAt: expiry},
			}),
		},
		{
			name: "missing role",
			token: sign(Claims{
				UserID:           42,
				RegisteredClaims: jwt.RegisteredClaims{Subject: "alice", ExpiresAt: expiry},
			}),
		},
		{
			name: "missing expiry",
			token: sign(Claims{
				UserID:           42,
				Role:             "user",
				RegisteredClaims: jwt.RegisteredClaims{Subject: "alice"},
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, verifyErr := signer.Verify(tt.token)
			assert.ErrorIs(t, verifyErr, ErrInvalidToken)
		})
	}
}
