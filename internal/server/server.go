package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/elyria/elyria/internal/core/ecs"
	"github.com/elyria/elyria/internal/core/observability/log"
	"github.com/elyria/elyria/internal/core/protocol"
	"github.com/elyria/elyria/internal/core/transport"
	"github.com/elyria/elyria/internal/game"
	"github.com/elyria/elyria/pkg/concurrent"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Server accepts sessions, owns the authoritative world and relays player
// state between peers.
type Server struct {
	config    Config
	logger    log.Log
	transport transport.Transport
	handlers  *Handlers
	directory *Directory

	// worldMu guards world for onboarding, every handler and teardown.
	worldMu sync.Mutex
	world   *ecs.World

	stats Stats

	listener  transport.Listener
	adminLn   net.Listener
	admin     *http.Server
	ready     chan struct{}
	readyOnce sync.Once

	mu       sync.Mutex
	cancel   context.CancelFunc
	running  atomic.Bool
	closed   atomic.Bool
	sessions sync.WaitGroup
}

// Stats are the server-wide counters reported on /stats.
type Stats struct {
	MessagesIn      atomic.Uint64
	MessagesDropped atomic.Uint64
	FramesDropped   atomic.Uint64
}

func New(config Config, logger log.Log, tr transport.Transport) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Provide()
	}
	if tr == nil {
		var err error
		if tr, err = transport.New(config.Transport, logger); err != nil {
			return nil, err
		}
	}

	s := &Server{
		config:    config,
		logger:    logger.With(log.String("component", "server")),
		transport: tr,
		handlers:  NewHandlers(),
		directory: NewDirectory(),
		world:     ecs.NewWorld(),
		ready:     make(chan struct{}),
	}
	ecs.Register[game.Transform](s.world)
	ecs.Register[game.NetworkIdentity](s.world)

	if err := s.handlers.Register(protocol.ActionPlayerMove, PlayerMoveHandler{}); err != nil {
		return nil, err
	}
	return s, nil
}

// Handlers exposes the action registry so callers can add actions before Serve.
func (s *Server) Handlers() *Handlers { return s.handlers }

func (s *Server) Directory() *Directory { return s.directory }

// Ready is closed once the listeners are bound.
func (s *Server) Ready() <-chan struct{} { return s.ready }

// Addr returns the bound game address, or nil before Ready.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// AdminAddr returns the bound admin address, or nil when disabled.
func (s *Server) AdminAddr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.adminLn == nil {
		return nil
	}
	return s.adminLn.Addr()
}

// Serve binds the listeners and blocks until ctx is cancelled or Close is
// called. Sessions are torn down before it returns.
func (s *Server) Serve(ctx context.Context) error {
	if s.closed.Load() {
		return ErrServerClosed
	}
	if !s.running.CompareAndSwap(false, true) {
		return ErrServerAlreadyRunning
	}
	defer s.running.Store(false)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	listener, err := s.transport.Listen(ctx, s.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrListenerFailed, err)
	}
	var adminLn net.Listener
	if s.config.AdminAddr != "" {
		if adminLn, err = net.Listen("tcp", s.config.AdminAddr); err != nil {
			_ = listener.Close()
			return fmt.Errorf("%w: admin: %w", ErrListenerFailed, err)
		}
	}

	s.mu.Lock()
	s.listener = listener
	s.adminLn = adminLn
	s.cancel = cancel
	s.mu.Unlock()
	s.readyOnce.Do(func() { close(s.ready) })

	s.logger.Info("Server started",
		log.String("addr", listener.Addr().String()),
		log.String("transport", string(s.transport.Type())))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.acceptSessions(gctx, listener) })
	if adminLn != nil {
		s.admin = &http.Server{Handler: s.adminHandler(), ReadHeaderTimeout: 5 * time.Second}
		g.Go(func() error {
			s.logger.Info("Admin server started", log.String("addr", adminLn.Addr().String()))
			if err := s.admin.Serve(adminLn); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("admin server: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		s.shutdown()
		return nil
	})

	err = g.Wait()
	s.sessions.Wait()
	s.logger.Info("Server stopped")
	return err
}

// Close stops a running Serve. A server cannot be restarted after Close.
func (s *Server) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrServerClosed
	}
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	return nil
}

func (s *Server) shutdown() {
	if err := s.listener.Close(); err != nil {
		s.logger.Debug("Listener close failed", log.Error(err))
	}
	if s.admin != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = s.admin.Shutdown(ctx)
		cancel()
	}
	// Closing every peer unblocks its session loop, which then tears down.
	// Sessions still onboarding are refused by the closed directory.
	_ = concurrent.Each(s.directory.Close(), func(p *Peer) error {
		return p.Close()
	})
}

func (s *Server) acceptSessions(ctx context.Context, listener transport.Listener) error {
	for {
		stream, err := listener.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, transport.ErrListenerClosed) {
				return nil
			}
			s.logger.Error("Failed to accept connection", log.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(100 * time.Millisecond):
			}
			continue
		}

		s.sessions.Add(1)
		go func() {
			defer s.sessions.Done()
			s.handleSession(stream)
		}()
	}
}

// handleSession runs one connection from onboarding to teardown. Its errors
// never reach the acceptor.
func (s *Server) handleSession(stream transport.Stream) {
	id := uuid.New()
	logger := s.logger.With(
		log.Stringer("session_id", id),
		log.String("remote_addr", stream.RemoteAddr().String()))

	peer := newPeer(id, stream, s.config.OutboundQueueSize, logger, &s.stats)
	go peer.run()

	if s.closed.Load() {
		_ = peer.Close()
		return
	}

	entity, err := s.onboard(peer)
	if err != nil {
		if errors.Is(err, ErrServerClosed) {
			logger.Debug("Refusing session during shutdown")
		} else {
			logger.Error("Onboarding failed", log.Error(err))
		}
		_ = peer.Close()
		return
	}
	logger.Info("Client connected")
	defer s.teardown(peer, entity, logger)

	var limiter *rate.Limiter
	if s.config.MessagesPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(s.config.MessagesPerSecond), s.config.Burst)
	}

	decoder := protocol.NewDecoderSize(stream, s.config.MaxMessageSize)
	for {
		msg, err := decoder.Decode()
		if err != nil {
			if errors.Is(err, protocol.ErrConnectionClosed) {
				logger.Debug("Session closed", log.Error(err))
			} else {
				logger.Warn("Closing session on bad frame", log.Error(err))
			}
			return
		}
		s.stats.MessagesIn.Add(1)

		if limiter != nil && !limiter.Allow() {
			s.stats.MessagesDropped.Add(1)
			logger.Warn("Dropping message", log.String("action", msg.Action()), log.Error(ErrRateLimited))
			continue
		}

		if err := s.dispatch(id, msg, logger); err != nil {
			s.stats.MessagesDropped.Add(1)
			logger.Warn("Dropping message", log.String("action", msg.Action()), log.Error(err))
		}
	}
}

func (s *Server) dispatch(id uuid.UUID, msg protocol.Message, logger log.Log) error {
	action := msg.Action()
	handler, ok := s.handlers.Lookup(action)
	if !ok {
		return protocol.NewProtocolError(protocol.ErrorCodeUnknownAction,
			fmt.Sprintf("no handler for action %q", action), nil)
	}

	s.worldMu.Lock()
	defer s.worldMu.Unlock()
	return handler.Handle(&HandlerContext{
		Message:   msg,
		World:     s.world,
		Directory: s.directory,
		SessionID: id,
		Logger:    logger.With(log.String("action", action)),
	})
}

// onboard spawns the session's entity, queues its connected message, registers
// the peer and announces it. All of it happens under the world lock, so every
// other peer sees the newcomer in exactly one way: either in its own snapshot
// or through new_distant_player.
func (s *Server) onboard(peer *Peer) (ecs.Entity, error) {
	s.worldMu.Lock()
	defer s.worldMu.Unlock()

	var spawn mgl32.Vec3
	snapshot := s.snapshot()

	entity := s.world.NewEntity()
	ecs.Add(s.world, entity, game.NewTransform(spawn))
	ecs.Add(s.world, entity, game.NetworkIdentity{
		SessionID: peer.ID(),
		Direction: protocol.DirectionDown,
		State:     protocol.StateIdle,
	})

	connected, err := protocol.Connected{PlayerID: peer.ID(), ExistingPlayers: snapshot}.Message()
	if err != nil {
		s.world.RemoveEntity(entity)
		return 0, err
	}
	if err := peer.Send(connected); err != nil {
		s.world.RemoveEntity(entity)
		return 0, err
	}
	if err := s.directory.Add(peer); err != nil {
		s.world.RemoveEntity(entity)
		return 0, err
	}

	announce, err := protocol.Frame(protocol.NewDistantPlayer{
		PlayerID: peer.ID(),
		Position: spawn,
		Speed:    s.config.PlayerSpeed,
	}.Message())
	if err != nil {
		return entity, err
	}
	s.directory.Broadcast(announce, peer.ID())
	return entity, nil
}

// teardown forgets the session and tells everyone who is left.
func (s *Server) teardown(peer *Peer, entity ecs.Entity, logger log.Log) {
	s.worldMu.Lock()
	s.directory.Remove(peer.ID())
	s.world.RemoveEntity(entity)
	frame, err := protocol.Frame(protocol.PlayerDisconnected{PlayerID: peer.ID()}.Message())
	if err == nil {
		s.directory.Broadcast(frame, peer.ID())
	}
	s.worldMu.Unlock()

	_ = peer.Close()
	logger.Info("Client disconnected", log.Uint64("frames_dropped", peer.Dropped()))
}

// snapshot lists every player in the world. Callers hold worldMu.
func (s *Server) snapshot() []protocol.PlayerInfo {
	players := make([]protocol.PlayerInfo, 0, ecs.Count[game.NetworkIdentity](s.world))
	for e, identity := range ecs.Each[game.NetworkIdentity](s.world) {
		t, ok := ecs.Get[game.Transform](s.world, e)
		if !ok {
			continue
		}
		players = append(players, protocol.PlayerInfo{
			ID: identity.SessionID,
			X:  t.Position.X(),
			Y:  t.Position.Y(),
			Z:  t.Position.Z(),
		})
	}
	return players
}
