// Package auth mints and verifies the public API keys callers present in the
// "apikey" metadata header.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/puffkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Role is the privilege carried by an API key.
type Role string

const (
	RoleAnon    Role = "anon"
	RoleService Role = "service"
)

// ParseRole validates s.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAnon, RoleService:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Claims are the registered claims plus the key's role.
type Claims struct {
	jwt.RegisteredClaims
	Role Role
}

// GenerateAPIKey signs an HS256 key for role. A zero validity yields a key
// that never expires.
func GenerateAPIKey(role Role, secretKey []byte, validity time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   "puffkeeper",
			IssuedAt: jwt.NewNumericDate(now),
		},
		Role: role,
	}
	if validity != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(validity))
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secretKey)
}

// ParseAPIKey verifies tokenString and returns its role.
func ParseAPIKey(tokenString string, secretKey []byte) (Role, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	if _, err := ParseRole(string(claims.Role)); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	return claims.Role, nil
}
