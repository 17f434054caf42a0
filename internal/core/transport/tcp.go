package transport

import (
	"context"
	"errors"
	"net"

	"github.com/elyria/elyria/internal/core/observability/log"
)

// TCP is the default transport: plain TCP with Nagle disabled.
type TCP struct {
	logger log.Log
}

func NewTCP(logger log.Log) *TCP {
	return &TCP{logger: logger.With(log.String("transport", string(TypeTCP)))}
}

func (t *TCP) Type() Type { return TypeTCP }

func (t *TCP) Listen(ctx context.Context, addr string) (Listener, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		t.logger.Error("Failed to listen", log.String("addr", addr), log.Error(err))
		return nil, err
	}
	t.logger.Info("TCP listener created", log.String("addr", ln.Addr().String()))
	return &tcpListener{ln: ln.(*net.TCPListener)}, nil
}

func (t *TCP) Dial(ctx context.Context, addr string) (Stream, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	tuneTCP(conn)
	t.logger.Debug("TCP connection established", log.String("remote_addr", conn.RemoteAddr().String()))
	return conn, nil
}

type tcpListener struct {
	ln *net.TCPListener
}

// Accept waits for the next connection. Cancelling ctx unblocks it by closing
// the listener, matching how the server shuts down.
func (l *tcpListener) Accept(ctx context.Context) (Stream, error) {
	stop := context.AfterFunc(ctx, func() { _ = l.ln.Close() })
	defer stop()

	conn, err := l.ln.AcceptTCP()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, net.ErrClosed) {
			return nil, ErrListenerClosed
		}
		return nil, err
	}
	tuneTCP(conn)
	return conn, nil
}

func (l *tcpListener) Addr() net.Addr { return l.ln.Addr() }

func (l *tcpListener) Close() error {
	err := l.ln.Close()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

func tuneTCP(conn net.Conn) {
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
	}
}
