package game

import (
	"errors"
	"testing"

	"github.com/elyria/elyria/internal/core/ecs"
	"github.com/elyria/elyria/internal/core/observability/log"
	"github.com/elyria/elyria/internal/core/protocol"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSampler_FiresAtMostOncePerCall(t *testing.T) {
	s := &Sampler{Interval: 0.05}

	assert.False(t, s.Due(0.03))
	assert.True(t, s.Due(0.03))  // 0.06 -> 0.01
	assert.False(t, s.Due(0.03)) // 0.04
	assert.True(t, s.Due(0.2))   // 0.24 -> 0.19, only once
	assert.True(t, s.Due(0))     // carry-over still due
}

func TestSampler_AverageRate(t *testing.T) {
	s := NewSampler(20)
	fired := 0
	for range 600 {
		if s.Due(1.0 / 60) {
			fired++
		}
	}
	// ten simulated seconds
	assert.InDelta(t, 200, fired, 1)
}

type recordingSender struct {
	sent []protocol.Message
	err  error
}

func (r *recordingSender) Send(msg protocol.Message) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func localWorld(id uuid.UUID) (*ecs.World, ecs.Entity) {
	w := ecs.NewWorld()
	ecs.Add(w, w.NewEntity(), Session{PlayerID: id})
	e := w.NewEntity()
	ecs.Add(w, e, NewTransform(mgl32.Vec3{10, 20, 0}))
	ecs.Add(w, e, LocalPlayer{Speed: 100, Direction: protocol.DirectionRight, State: protocol.StateWalk})
	return w, e
}

func TestTickSystem_SendsPlayerMove(t *testing.T) {
	id := uuid.New()
	w, _ := localWorld(id)
	sender := &recordingSender{}
	sys := NewTickSystem(&Sampler{Interval: 0.05}, sender, log.Nop())

	require.NoError(t, sys.Update(&Frame{World: w, Delta: 0.01}))
	assert.Empty(t, sender.sent)

	require.NoError(t, sys.Update(&Frame{World: w, Delta: 0.05}))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, protocol.Message{
		"action":    "player_move",
		"player_id": id.String(),
		"x":         "10",
		"y":         "20",
		"z":         "0",
		"direction": "right",
		"state":     "walk",
	}, sender.sent[0])
}

func TestTickSystem_WaitsForSession(t *testing.T) {
	w, _ := localWorld(uuid.Nil)
	sender := &recordingSender{}
	sys := NewTickSystem(&Sampler{Interval: 0.05}, sender, log.Nop())

	require.NoError(t, sys.Update(&Frame{World: w, Delta: 1}))
	assert.Empty(t, sender.sent)
}

func TestTickSystem_LogsAndDropsOnSendFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	w, _ := localWorld(uuid.New())
	sender := &recordingSender{err: errors.New("queue full")}
	sys := NewTickSystem(&Sampler{Interval: 0.05}, sender, log.NewWithCore(core))

	assert.NoError(t, sys.Update(&Frame{World: w, Delta: 0.05}))
	assert.Equal(t, 1, logs.FilterMessage("Dropping tick update").Len())
}
