package model

import "errors"

var (
	// ErrNotFound is returned by stores when no row matches.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a non-deleted account already uses the email.
	ErrConflict = errors.New("user with this email already exists")

	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrEmailNotVerified      = errors.New("email is not verified")
	ErrInvalidRefreshToken   = errors.New("invalid refresh token")
	ErrTokenReuseDetected    = errors.New("refresh token reuse detected")
	ErrTokenInvalidOrExpired = errors.New("token is invalid or has expired")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
)
