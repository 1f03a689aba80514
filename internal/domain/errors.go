package domain

import "errors"

var (
	ErrInvalidParams     = errors.New("invalid chat params")
	ErrHandshakeRejected = errors.New("chat handshake rejected")
	ErrSessionNotFound   = errors.New("chat session not found")
	ErrSessionNotActive  = errors.New("chat session not active")
	ErrSessionClosed     = errors.New("chat session closed")
	ErrProfileNotFound   = errors.New("profile not found")
)
