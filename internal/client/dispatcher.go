package client

import (
	"errors"

	"github.com/elyria/elyria/internal/core/events/bus"
	"github.com/elyria/elyria/internal/core/observability/log"
	"github.com/elyria/elyria/internal/game"
)

// Dispatcher drains received events once per frame and publishes each one on
// the bus under its action. It runs on the game loop, so handlers may touch the
// world freely.
type Dispatcher struct {
	events <-chan Event
	bus    bus.EventBus[Event]
	logger log.Log
	closed bool
}

func NewDispatcher(events <-chan Event, eventBus bus.EventBus[Event], logger log.Log) *Dispatcher {
	return &Dispatcher{
		events: events,
		bus:    eventBus,
		logger: logger.With(log.String("system", "dispatch")),
	}
}

func (d *Dispatcher) Name() string { return "dispatch" }

// Update handles every event available right now and returns without waiting
// for more.
func (d *Dispatcher) Update(*game.Frame) error {
	if d.closed {
		return nil
	}
	for {
		select {
		case ev, ok := <-d.events:
			if !ok {
				d.closed = true
				d.logger.Info("Event stream closed")
				return nil
			}
			d.Dispatch(ev)
		default:
			return nil
		}
	}
}

// Closed reports whether the event stream has ended.
func (d *Dispatcher) Closed() bool { return d.closed }

// Dispatch publishes one event. Unrouted actions and handler errors are logged
// and never stop the frame.
func (d *Dispatcher) Dispatch(ev Event) {
	err := d.bus.Publish(ev.Action, ev)
	switch {
	case err == nil:
	case errors.Is(err, bus.ErrNoSubscribers):
		d.logger.Warn("No handler for action", log.String("action", ev.Action))
	default:
		d.logger.Warn("Handler failed", log.String("action", ev.Action), log.Error(err))
	}
}
