package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/elyria/elyria/internal/core/observability/log"
	"github.com/gorilla/websocket"
)

// WebSocketConfig holds WebSocket-specific configuration
type WebSocketConfig struct {
	Path             string
	ReadBufferSize   int
	WriteBufferSize  int
	HandshakeTimeout time.Duration
	// AcceptBacklog bounds upgraded connections waiting for Accept.
	AcceptBacklog int
}

func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		Path:             "/ws",
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		HandshakeTimeout: 10 * time.Second,
		AcceptBacklog:    64,
	}
}

// WebSocket sends every frame as one binary message. Reads treat the sequence
// of binary messages as a continuous byte stream, so the framing layer on top
// does not depend on message boundaries.
type WebSocket struct {
	config WebSocketConfig
	logger log.Log
}

func NewWebSocket(config WebSocketConfig, logger log.Log) *WebSocket {
	if config.Path == "" {
		config.Path = "/ws"
	}
	return &WebSocket{
		config: config,
		logger: logger.With(log.String("transport", string(TypeWebSocket))),
	}
}

func (t *WebSocket) Type() Type { return TypeWebSocket }

func (t *WebSocket) Listen(ctx context.Context, addr string) (Listener, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		t.logger.Error("Failed to listen", log.String("addr", addr), log.Error(err))
		return nil, err
	}

	l := &wsListener{
		ln:     ln,
		conns:  make(chan *websocket.Conn, t.config.AcceptBacklog),
		closed: make(chan struct{}),
		logger: t.logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:   t.config.ReadBufferSize,
			WriteBufferSize:  t.config.WriteBufferSize,
			HandshakeTimeout: t.config.HandshakeTimeout,
			CheckOrigin:      func(*http.Request) bool { return true },
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc(t.config.Path, l.handleUpgrade)
	l.server = &http.Server{Handler: mux, ReadHeaderTimeout: t.config.HandshakeTimeout}

	go func() {
		if err := l.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.logger.Error("WebSocket server stopped", log.Error(err))
		}
	}()

	t.logger.Info("WebSocket listener created",
		log.String("addr", ln.Addr().String()),
		log.String("path", t.config.Path))
	return l, nil
}

func (t *WebSocket) Dial(ctx context.Context, addr string) (Stream, error) {
	dialer := websocket.Dialer{
		ReadBufferSize:   t.config.ReadBufferSize,
		WriteBufferSize:  t.config.WriteBufferSize,
		HandshakeTimeout: t.config.HandshakeTimeout,
	}
	conn, _, err := dialer.DialContext(ctx, "ws://"+addr+t.config.Path, nil)
	if err != nil {
		return nil, err
	}
	t.logger.Debug("WebSocket connection established", log.String("remote_addr", conn.RemoteAddr().String()))
	return newWSStream(conn), nil
}

type wsListener struct {
	ln       net.Listener
	server   *http.Server
	upgrader websocket.Upgrader
	conns    chan *websocket.Conn
	closed   chan struct{}
	once     sync.Once
	logger   log.Log
}

func (l *wsListener) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		l.logger.Warn("WebSocket upgrade failed", log.String("remote_addr", r.RemoteAddr), log.Error(err))
		return
	}
	select {
	case l.conns <- conn:
		// Close may have drained the queue before this send landed.
		select {
		case <-l.closed:
			l.drain()
		default:
		}
	case <-l.closed:
		_ = conn.Close()
	}
}

// drain closes upgraded connections nobody accepted.
func (l *wsListener) drain() {
	for {
		select {
		case conn := <-l.conns:
			_ = conn.Close()
		default:
			return
		}
	}
}

func (l *wsListener) Accept(ctx context.Context) (Stream, error) {
	select {
	case conn := <-l.conns:
		return newWSStream(conn), nil
	case <-l.closed:
		return nil, ErrListenerClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *wsListener) Addr() net.Addr { return l.ln.Addr() }

func (l *wsListener) Close() error {
	var err error
	l.once.Do(func() {
		close(l.closed)
		err = l.server.Close()
		l.drain()
	})
	return err
}

type wsStream struct {
	conn *websocket.Conn

	readMu sync.Mutex
	reader io.Reader

	writeMu sync.Mutex
}

func newWSStream(conn *websocket.Conn) *wsStream {
	return &wsStream{conn: conn}
}

func (s *wsStream) Read(p []byte) (int, error) {
	s.readMu.Lock()
	defer s.readMu.Unlock()

	for {
		if s.reader == nil {
			messageType, r, err := s.conn.NextReader()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					return 0, io.EOF
				}
				return 0, err
			}
			if messageType != websocket.BinaryMessage {
				continue
			}
			s.reader = r
		}

		n, err := s.reader.Read(p)
		if errors.Is(err, io.EOF) {
			s.reader = nil
			if n > 0 {
				return n, nil
			}
			continue
		}
		return n, err
	}
}

func (s *wsStream) Write(p []byte) (int, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (s *wsStream) LocalAddr() net.Addr  { return s.conn.LocalAddr() }
func (s *wsStream) RemoteAddr() net.Addr { return s.conn.RemoteAddr() }

// Close does not take writeMu: WriteControl is safe alongside a pending
// WriteMessage, and a writer stuck on a stalled peer must not block Close.
func (s *wsStream) Close() error {
	closeMessage := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = s.conn.WriteControl(websocket.CloseMessage, closeMessage, time.Now().Add(time.Second))
	return s.conn.Close()
}
