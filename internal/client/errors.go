package client

import "errors"

// Client-specific errors
var (
	ErrQueueFull       = errors.New("outgoing queue is full")
	ErrPipelineClosed  = errors.New("pipeline is closed")
	ErrPipelineRunning = errors.New("pipeline is already running")
	ErrInvalidConfig   = errors.New("invalid client configuration")
)
