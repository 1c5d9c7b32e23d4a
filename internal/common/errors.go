// Package common defines shared constants and sentinel errors used across
// client and server layers of puffkeeper. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors.
	ErrInvalidDoseType = errors.New("invalid dose type")
	ErrInvalidID       = errors.New("invalid id")
	ErrUnknownTable    = errors.New("unknown table")

	// Auth errors (invalid or malformed api key).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
