package client

import (
	"errors"
	"testing"

	"github.com/elyria/elyria/internal/core/events/bus"
	"github.com/elyria/elyria/internal/core/observability/log"
	"github.com/elyria/elyria/internal/core/protocol"
	"github.com/elyria/elyria/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func event(action string) Event {
	return Event{Action: action, Message: protocol.NewMessage(action)}
}

func TestDispatcher_DrainsAvailableEvents(t *testing.T) {
	events := make(chan Event, 8)
	b := bus.New[Event]()
	var seen []string
	_, err := b.Subscribe("ping", func(ev Event) error {
		seen = append(seen, ev.Action)
		return nil
	})
	require.NoError(t, err)

	d := NewDispatcher(events, b, log.Nop())
	require.NoError(t, d.Update(&game.Frame{}), "empty channel returns at once")

	events <- event("ping")
	events <- event("ping")
	events <- event("ping")
	require.NoError(t, d.Update(&game.Frame{}))
	assert.Len(t, seen, 3)
	assert.Empty(t, events)
}

func TestDispatcher_LogsUnroutedAndFailures(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	events := make(chan Event, 8)
	b := bus.New[Event]()
	_, err := b.Subscribe("broken", func(Event) error { return errors.New("boom") })
	require.NoError(t, err)

	d := NewDispatcher(events, b, log.NewWithCore(core))
	events <- event("unknown")
	events <- event("broken")
	require.NoError(t, d.Update(&game.Frame{}))

	assert.Equal(t, 1, logs.FilterMessage("No handler for action").Len())
	assert.Equal(t, 1, logs.FilterMessage("Handler failed").Len())
}

func TestDispatcher_ClosedStream(t *testing.T) {
	events := make(chan Event)
	close(events)
	d := NewDispatcher(events, bus.New[Event](), log.Nop())

	require.NoError(t, d.Update(&game.Frame{}))
	assert.True(t, d.Closed())
	require.NoError(t, d.Update(&game.Frame{}))
}
