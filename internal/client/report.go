package client

import (
	"github.com/elyria/elyria/internal/core/ecs"
	"github.com/elyria/elyria/internal/core/observability/log"
	"github.com/elyria/elyria/internal/game"
)

// ReportSystem logs every remote player's position at a fixed rate.
type ReportSystem struct {
	sampler *game.Sampler
	logger  log.Log
}

// NewReportSystem logs once every interval seconds.
func NewReportSystem(interval float32, logger log.Log) *ReportSystem {
	return &ReportSystem{
		sampler: &game.Sampler{Interval: interval},
		logger:  logger.With(log.String("system", "report")),
	}
}

func (s *ReportSystem) Name() string { return "report" }

func (s *ReportSystem) Update(frame *game.Frame) error {
	if !s.sampler.Due(frame.Delta) {
		return nil
	}
	for e, remote := range ecs.Each[game.RemotePlayer](frame.World) {
		t, ok := ecs.Get[game.Transform](frame.World, e)
		if !ok {
			continue
		}
		s.logger.Info("Remote player",
			log.Stringer("player_id", remote.PlayerID),
			log.Float32("x", t.Position.X()),
			log.Float32("y", t.Position.Y()),
			log.String("state", remote.State.String()),
			log.String("direction", remote.Direction.String()))
	}
	return nil
}
