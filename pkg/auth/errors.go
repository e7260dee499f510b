package auth

import "errors"

var (
	ErrMissingSecret   = errors.New("auth: signing secret is required")
	ErrMissingToken    = errors.New("auth: missing token")
	ErrInvalidToken    = errors.New("auth: invalid token")
	ErrExpiredToken    = errors.New("auth: token is expired")
	ErrMissingSubject  = errors.New("auth: token has no recipient")
	ErrNoAuthenticated = errors.New("auth: no authenticated recipient in context")
)
