package server

import "errors"

// Server-specific errors
var (
	ErrServerClosed         = errors.New("server is closed")
	ErrServerAlreadyRunning = errors.New("server is already running")
	ErrPlayerNotFound       = errors.New("player not found")
	ErrHandlerExists        = errors.New("handler already registered")
	ErrPeerQueueFull        = errors.New("peer outbound queue is full")
	ErrPeerClosed           = errors.New("peer is closed")
	ErrRateLimited          = errors.New("rate limit exceeded")
	ErrInvalidConfig        = errors.New("invalid server configuration")
	ErrListenerFailed       = errors.New("failed to create listener")
)
