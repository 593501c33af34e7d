package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for tokens that fail verification
var ErrInvalidToken = errors.New("invalid token")

// Claims identifies the caller of a request
type Claims struct {
	UID       string `json:"uid"`
	Anonymous bool   `json:"anonymous"`
	jwt.RegisteredClaims
}

// Signer issues and verifies HS256 tokens
type Signer struct {
	secret []byte
}

// NewSigner creates a signer for the shared secret
func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Issue creates a token for uid valid for ttl
func (s *Signer) Issue(uid string, anonymous bool, ttl time.Duration) (string, error) {
	if uid == "" {
		return "", errors.New("uid required")
	}

	now := time.Now()
	claims := Claims{
		UID:       uid,
		Anonymous: anonymous,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// Parse verifies the token and returns its claims
func (s *Signer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.UID == "" {
		return nil, fmt.Errorf("%w: missing uid", ErrInvalidToken)
	}

	return claims, nil
}
