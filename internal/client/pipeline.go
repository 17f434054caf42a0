package client

import (
	"context"
	"sync/atomic"

	"github.com/elyria/elyria/internal/core/observability/log"
	"github.com/elyria/elyria/internal/core/protocol"
	"github.com/elyria/elyria/internal/core/transport"
)

// Event is one message received from the server.
type Event struct {
	Action  string
	Message protocol.Message
}

// Pipeline owns the stream to the server. Run moves outgoing messages onto the
// wire and incoming frames onto the events channel until either side fails.
type Pipeline struct {
	stream   transport.Stream
	maxSize  int
	outgoing chan protocol.Message
	events   chan Event
	done     chan struct{}
	logger   log.Log

	running atomic.Bool
}

func NewPipeline(stream transport.Stream, config Config, logger log.Log) *Pipeline {
	return &Pipeline{
		stream:   stream,
		maxSize:  config.MaxMessageSize,
		outgoing: make(chan protocol.Message, config.OutgoingQueueSize),
		events:   make(chan Event, config.IncomingQueueSize),
		done:     make(chan struct{}),
		logger:   logger.With(log.String("component", "pipeline")),
	}
}

// Events is closed when Run returns.
func (p *Pipeline) Events() <-chan Event { return p.events }

// Done is closed when Run returns.
func (p *Pipeline) Done() <-chan struct{} { return p.done }

// Send queues msg without blocking. A full queue returns ErrQueueFull and the
// message is dropped.
func (p *Pipeline) Send(msg protocol.Message) error {
	select {
	case <-p.done:
		return ErrPipelineClosed
	default:
	}
	select {
	case p.outgoing <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run serves both directions until ctx is cancelled or the stream fails. The
// stream is closed on return.
func (p *Pipeline) Run(ctx context.Context) error {
	if !p.running.CompareAndSwap(false, true) {
		return ErrPipelineRunning
	}
	defer close(p.done)
	defer close(p.events)

	stop := make(chan struct{})
	reads := make(chan protocol.Message)
	readErr := make(chan error, 1)
	go p.read(reads, readErr, stop)

	defer func() {
		close(stop)
		_ = p.stream.Close()
	}()

	encoder := protocol.NewEncoder(p.stream)
	for {
		select {
		case <-ctx.Done():
			p.logger.Debug("Pipeline cancelled")
			return ctx.Err()

		case msg := <-p.outgoing:
			if err := encoder.Encode(msg); err != nil {
				p.logger.Warn("Write failed, closing pipeline", log.Error(err))
				return err
			}

		case msg := <-reads:
			select {
			case p.events <- Event{Action: msg.Action(), Message: msg}:
			case <-ctx.Done():
				return ctx.Err()
			}

		case err := <-readErr:
			p.logger.Info("Connection closed", log.Error(err))
			return err
		}
	}
}

func (p *Pipeline) read(out chan<- protocol.Message, errc chan<- error, stop <-chan struct{}) {
	decoder := protocol.NewDecoderSize(p.stream, p.maxSize)
	for {
		msg, err := decoder.Decode()
		if err != nil {
			errc <- err
			return
		}
		select {
		case out <- msg:
		case <-stop:
			return
		}
	}
}
