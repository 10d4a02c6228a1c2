package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrNotFound           = errors.New("not found")
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotImplemented     = errors.New("not implemented")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrSessionNotActive   = errors.New("session is not active")
	ErrSessionPaused      = errors.New("session is not paused")
	ErrSessionOpen        = errors.New("session is not completed")
	ErrNoMoreSteps        = errors.New("no more steps in recipe")
	ErrFirstStep          = errors.New("already at the first step")
)
