// Package auth issues and verifies the signed session tokens used by both
// front ends. Tokens are not persisted; validity is purely cryptographic and
// time-based.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the fixed lifetime of a session token issued at login.
const TokenTTL = 30 * time.Minute

// ErrInvalidToken is returned when a token fails verification for any
// reason: bad signature, expiry, or a missing claim.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the session claim set: subject is the username, ID and Role
// carry the numeric user id and authorization role.
type Claims struct {
	UserID int    `json:"id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Signer issues and verifies HMAC-signed session tokens.
type Signer struct {
	secret []byte
	method jwt.SigningMethod
}

// NewSigner builds a Signer for the given secret and algorithm name.
// Supported algorithms are HS256, HS384 and HS512.
func NewSigner(secret, algorithm string) (*Signer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt secret is required")
	}

	var method jwt.SigningMethod
	switch strings.ToUpper(strings.TrimSpace(algorithm)) {
	case "", "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("unsupported jwt algorithm: %s", algorithm)
	}

	return &Signer{secret: []byte(secret), method: method}, nil
}

// Issue produces a signed token embedding the identity claims with an
// absolute expiry ttl from now.
func (s *Signer) Issue(username string, userID int, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(s.method, claims)
	return token.SignedString(s.secret)
}

// Verify parses and validates a token, returning its claims. It fails with
// ErrInvalidToken when the signature is invalid, the token is expired, or
// any required claim is absent.
func (s *Signer) Verify(tokenString string) (Claims, error) {
	claims := Claims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" || claims.UserID < 1 || claims.Role == "" {
		return Claims{}, ErrInvalidToken
	}
	if claims.ExpiresAt == nil {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}
