package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/elyria/elyria/internal/core/observability/log"
	"github.com/quic-go/quic-go"
)

// QUICConfig holds QUIC-specific configuration
type QUICConfig struct {
	MaxIdleTimeout       time.Duration
	KeepAlivePeriod      time.Duration
	HandshakeIdleTimeout time.Duration

	// ServerTLS is generated on Listen when nil.
	ServerTLS *tls.Config
	// ClientTLS defaults to InsecureClientTLSConfig.
	ClientTLS *tls.Config
}

// DefaultQUICConfig returns default QUIC configuration
func DefaultQUICConfig() QUICConfig {
	return QUICConfig{
		MaxIdleTimeout:       30 * time.Second,
		KeepAlivePeriod:      10 * time.Second,
		HandshakeIdleTimeout: 10 * time.Second,
	}
}

// QUIC carries a session over a single bidirectional stream. The server opens
// the stream and is always the first to write on it, so the client sees it as
// soon as the connected message arrives.
type QUIC struct {
	config QUICConfig
	logger log.Log
}

func NewQUIC(config QUICConfig, logger log.Log) *QUIC {
	return &QUIC{
		config: config,
		logger: logger.With(log.String("transport", string(TypeQUIC))),
	}
}

func (t *QUIC) Type() Type { return TypeQUIC }

func (t *QUIC) quicConfig() *quic.Config {
	return &quic.Config{
		MaxIdleTimeout:       t.config.MaxIdleTimeout,
		KeepAlivePeriod:      t.config.KeepAlivePeriod,
		HandshakeIdleTimeout: t.config.HandshakeIdleTimeout,
	}
}

func (t *QUIC) Listen(_ context.Context, addr string) (Listener, error) {
	tlsConfig := t.config.ServerTLS
	if tlsConfig == nil {
		generated, err := SelfSignedTLSConfig()
		if err != nil {
			return nil, err
		}
		tlsConfig = generated
	}

	ln, err := quic.ListenAddr(addr, tlsConfig, t.quicConfig())
	if err != nil {
		t.logger.Error("Failed to create QUIC listener", log.String("addr", addr), log.Error(err))
		return nil, err
	}

	t.logger.Info("QUIC listener created", log.String("addr", ln.Addr().String()))
	return &quicListener{ln: ln, logger: t.logger}, nil
}

func (t *QUIC) Dial(ctx context.Context, addr string) (Stream, error) {
	tlsConfig := t.config.ClientTLS
	if tlsConfig == nil {
		tlsConfig = InsecureClientTLSConfig()
	}
	tlsConfig = tlsConfig.Clone()
	if tlsConfig.ServerName == "" {
		if host, _, err := net.SplitHostPort(addr); err == nil {
			tlsConfig.ServerName = host
		}
	}

	conn, err := quic.DialAddr(ctx, addr, tlsConfig, t.quicConfig())
	if err != nil {
		return nil, err
	}

	stream, err := conn.AcceptStream(ctx)
	if err != nil {
		_ = conn.CloseWithError(0, "no stream")
		return nil, err
	}

	t.logger.Debug("QUIC connection established", log.String("remote_addr", conn.RemoteAddr().String()))
	return newQUICStream(conn, stream), nil
}

type quicListener struct {
	ln     *quic.Listener
	logger log.Log
}

func (l *quicListener) Accept(ctx context.Context) (Stream, error) {
	conn, err := l.ln.Accept(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, quic.ErrServerClosed) {
			return nil, ErrListenerClosed
		}
		return nil, err
	}

	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		_ = conn.CloseWithError(0, "failed to open stream")
		return nil, err
	}
	return newQUICStream(conn, stream), nil
}

func (l *quicListener) Addr() net.Addr { return l.ln.Addr() }

func (l *quicListener) Close() error {
	err := l.ln.Close()
	if errors.Is(err, quic.ErrServerClosed) {
		return nil
	}
	return err
}

type quicStream struct {
	conn   *quic.Conn
	stream *quic.Stream
	once   sync.Once
}

func newQUICStream(conn *quic.Conn, stream *quic.Stream) *quicStream {
	return &quicStream{conn: conn, stream: stream}
}

func (s *quicStream) Read(p []byte) (int, error)  { return s.stream.Read(p) }
func (s *quicStream) Write(p []byte) (int, error) { return s.stream.Write(p) }
func (s *quicStream) LocalAddr() net.Addr         { return s.conn.LocalAddr() }
func (s *quicStream) RemoteAddr() net.Addr        { return s.conn.RemoteAddr() }

// Close tears down the whole connection; one stream is one session.
func (s *quicStream) Close() error {
	var err error
	s.once.Do(func() {
		_ = s.stream.Close()
		err = s.conn.CloseWithError(0, "closed")
	})
	return err
}
