package server

import (
	"sync"
	"sync/atomic"

	"github.com/elyria/elyria/internal/core/observability/log"
	"github.com/elyria/elyria/internal/core/protocol"
	"github.com/elyria/elyria/internal/core/transport"
	"github.com/google/uuid"
)

// Peer is the write half of a session. Frames are queued without blocking and
// written in order by a single goroutine, the only writer of the stream.
type Peer struct {
	id      uuid.UUID
	stream  transport.Stream
	encoder *protocol.Encoder
	queue   chan []byte
	done    chan struct{}
	exited  chan struct{}
	logger  log.Log
	stats   *Stats

	closeOnce sync.Once
	closed    atomic.Bool
	dropped   atomic.Uint64
}

func newPeer(id uuid.UUID, stream transport.Stream, queueSize int, logger log.Log, stats *Stats) *Peer {
	if stats == nil {
		stats = &Stats{}
	}
	return &Peer{
		id:      id,
		stream:  stream,
		encoder: protocol.NewEncoder(stream),
		queue:   make(chan []byte, queueSize),
		done:    make(chan struct{}),
		exited:  make(chan struct{}),
		logger:  logger,
		stats:   stats,
	}
}

func (p *Peer) ID() uuid.UUID { return p.id }

// Dropped returns how many frames this peer discarded on a full queue.
func (p *Peer) Dropped() uint64 { return p.dropped.Load() }

// Enqueue hands a serialized frame to the writer. A full queue drops the frame.
func (p *Peer) Enqueue(frame []byte) error {
	if p.closed.Load() {
		return ErrPeerClosed
	}
	select {
	case p.queue <- frame:
		return nil
	default:
		p.dropped.Add(1)
		p.stats.FramesDropped.Add(1)
		p.logger.Warn("Outbound queue full, dropping frame",
			log.Int("queue_size", cap(p.queue)))
		return ErrPeerQueueFull
	}
}

// Send frames msg and enqueues it.
func (p *Peer) Send(msg protocol.Message) error {
	frame, err := protocol.Frame(msg)
	if err != nil {
		return err
	}
	return p.Enqueue(frame)
}

// run writes queued frames until the peer is closed or a write fails.
func (p *Peer) run() {
	defer close(p.exited)
	for {
		select {
		case <-p.done:
			return
		case frame := <-p.queue:
			if err := p.encoder.WriteFrame(frame); err != nil {
				p.logger.Debug("Peer write failed", log.Error(err))
				p.Close()
				return
			}
		}
	}
}

// Close stops the writer and closes the stream. Safe to call more than once.
func (p *Peer) Close() error {
	var err error
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.done)
		err = p.stream.Close()
	})
	return err
}
