package game

import (
	"github.com/elyria/elyria/internal/core/ecs"
	"github.com/elyria/elyria/internal/core/observability/log"
	"github.com/elyria/elyria/internal/core/protocol"
	"github.com/google/uuid"
)

// DefaultTickRate is how many position reports a client sends per second.
const DefaultTickRate = 20

// Sampler fires at a fixed interval driven by frame deltas. Leftover time
// carries over, so the average rate is exact even with uneven frames.
type Sampler struct {
	Interval float32
	elapsed  float32
}

// NewSampler returns a sampler firing rate times per second.
func NewSampler(rate int) *Sampler {
	if rate <= 0 {
		rate = DefaultTickRate
	}
	return &Sampler{Interval: 1 / float32(rate)}
}

// Due accumulates dt and reports whether an interval has elapsed. It fires at
// most once per call, consuming one interval.
func (s *Sampler) Due(dt float32) bool {
	s.elapsed += dt
	if s.elapsed < s.Interval {
		return false
	}
	s.elapsed -= s.Interval
	return true
}

// Sender enqueues an outgoing message without blocking.
type Sender interface {
	Send(msg protocol.Message) error
}

// TickSystem packages the local player's position into a player_move message
// at the sampler's rate. A full outgoing queue drops the update.
type TickSystem struct {
	sampler *Sampler
	sender  Sender
	logger  log.Log
}

func NewTickSystem(sampler *Sampler, sender Sender, logger log.Log) *TickSystem {
	return &TickSystem{
		sampler: sampler,
		sender:  sender,
		logger:  logger.With(log.String("system", "tick")),
	}
}

func (s *TickSystem) Name() string { return "tick" }

func (s *TickSystem) Update(frame *Frame) error {
	if !s.sampler.Due(frame.Delta) {
		return nil
	}

	msg, ok := LocalMove(frame.World)
	if !ok {
		return nil
	}
	if err := s.sender.Send(msg); err != nil {
		s.logger.Warn("Dropping tick update", log.Error(err))
	}
	return nil
}

// LocalMove builds the player_move message for the local player. It reports
// false until the connected message has assigned a player id.
func LocalMove(w *ecs.World) (protocol.Message, bool) {
	_, session, ok := ecs.Find(w, func(ecs.Entity, *Session) bool { return true })
	if !ok || session.PlayerID == uuid.Nil {
		return nil, false
	}

	for e := range ecs.Each[LocalPlayer](w) {
		player, t, ok := ecs.GetPair[LocalPlayer, Transform](w, e)
		if !ok {
			continue
		}
		return protocol.PlayerMove{
			PlayerID:  session.PlayerID,
			Position:  t.Position,
			Direction: player.Direction,
			State:     player.State,
		}.Message(), true
	}
	return nil, false
}
