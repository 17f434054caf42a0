package game

import (
	"context"
	"sync"
	"time"

	"github.com/elyria/elyria/internal/core/ecs"
	"github.com/elyria/elyria/internal/core/observability/log"
)

// DefaultFrameRate is the simulation rate of a headless client.
const DefaultFrameRate = 60

// Loop runs systems in registration order at a fixed frame rate. The world is
// only touched from the goroutine calling Run or Step.
type Loop struct {
	world     *ecs.World
	systems   []System
	frameRate int
	input     func() Input
	logger    log.Log

	frame uint64

	mu      sync.Mutex
	metrics map[string]*Metrics
}

func NewLoop(world *ecs.World, frameRate int, logger log.Log, systems ...System) *Loop {
	if frameRate <= 0 {
		frameRate = DefaultFrameRate
	}
	metrics := make(map[string]*Metrics, len(systems))
	for _, s := range systems {
		metrics[s.Name()] = &Metrics{}
	}
	return &Loop{
		world:     world,
		systems:   systems,
		frameRate: frameRate,
		input:     func() Input { return Input{} },
		logger:    logger.With(log.String("component", "game_loop")),
		metrics:   metrics,
	}
}

// SetInput installs the source sampled at the start of every frame.
func (l *Loop) SetInput(source func() Input) {
	if source != nil {
		l.input = source
	}
}

func (l *Loop) World() *ecs.World { return l.world }

// Step runs one frame with the given delta in seconds. System errors are
// logged and never stop the frame.
func (l *Loop) Step(dt float32) {
	frame := &Frame{World: l.world, Delta: dt, Input: l.input(), Number: l.frame}
	l.frame++

	for _, s := range l.systems {
		start := time.Now()
		err := s.Update(frame)
		elapsed := time.Since(start)

		l.mu.Lock()
		l.metrics[s.Name()].observe(elapsed, err)
		l.mu.Unlock()

		if err != nil {
			l.logger.Warn("System update failed",
				log.String("system", s.Name()),
				log.Uint64("frame", frame.Number),
				log.Error(err))
		}
	}
}

// Run steps the loop until ctx is cancelled, measuring real elapsed time
// between frames.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(l.frameRate))
	defer ticker.Stop()

	l.logger.Info("Game loop started", log.Int("frame_rate", l.frameRate))
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Game loop stopped", log.Uint64("frames", l.frame))
			return ctx.Err()
		case now := <-ticker.C:
			dt := float32(now.Sub(last).Seconds())
			last = now
			l.Step(dt)
		}
	}
}

// Metrics returns a snapshot of per-system metrics.
func (l *Loop) Metrics() map[string]Metrics {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]Metrics, len(l.metrics))
	for name, m := range l.metrics {
		out[name] = *m
	}
	return out
}
