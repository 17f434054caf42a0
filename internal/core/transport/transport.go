// Package transport provides the reliable, ordered byte streams the framed
// protocol runs over. TCP is the default; QUIC and WebSocket carry exactly the
// same length-prefixed frames.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/elyria/elyria/internal/core/observability/log"
)

// Type names a transport in configuration.
type Type string

const (
	TypeTCP       Type = "tcp"
	TypeQUIC      Type = "quic"
	TypeWebSocket Type = "websocket"
)

var (
	ErrTransportNotSupported = errors.New("transport not supported")
	ErrListenerClosed        = errors.New("listener is closed")
)

// Stream is one bidirectional connection. Close releases both halves.
type Stream interface {
	io.ReadWriteCloser
	LocalAddr() net.Addr
	RemoteAddr() net.Addr
}

// Listener yields accepted streams until closed.
type Listener interface {
	Accept(ctx context.Context) (Stream, error)
	Addr() net.Addr
	Close() error
}

// Transport opens listeners and dials streams.
type Transport interface {
	Type() Type
	Listen(ctx context.Context, addr string) (Listener, error)
	Dial(ctx context.Context, addr string) (Stream, error)
}

// New returns the transport registered under t. The empty type is TCP.
func New(t Type, logger log.Log) (Transport, error) {
	if logger == nil {
		logger = log.Provide()
	}
	switch t {
	case "", TypeTCP:
		return NewTCP(logger), nil
	case TypeQUIC:
		return NewQUIC(DefaultQUICConfig(), logger), nil
	case TypeWebSocket:
		return NewWebSocket(DefaultWebSocketConfig(), logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrTransportNotSupported, t)
	}
}

// UnmarshalText validates transport names in YAML configs.
func (t *Type) UnmarshalText(text []byte) error {
	switch v := Type(text); v {
	case "", TypeTCP, TypeQUIC, TypeWebSocket:
		*t = v
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrTransportNotSupported, v)
	}
}
