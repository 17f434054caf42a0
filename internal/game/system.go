package game

import (
	"time"

	"github.com/elyria/elyria/internal/core/ecs"
)

// System represents a game logic processor run once per frame.
type System interface {
	Name() string
	Update(frame *Frame) error
}

// Input is the snapshot of movement keys for one frame.
type Input struct {
	Up, Down, Left, Right bool
}

// Frame is what every system sees during one update.
type Frame struct {
	World *ecs.World
	// Delta is the elapsed time since the previous frame, in seconds.
	Delta float32
	Input Input
	// Number counts frames from zero.
	Number uint64
}

// Metrics provides runtime metrics for a system
type Metrics struct {
	ExecutionCount     uint64
	TotalExecutionTime time.Duration
	MaxExecutionTime   time.Duration
	ErrorCount         uint64
	LastError          error
}

func (m *Metrics) observe(elapsed time.Duration, err error) {
	m.ExecutionCount++
	m.TotalExecutionTime += elapsed
	if elapsed > m.MaxExecutionTime {
		m.MaxExecutionTime = elapsed
	}
	if err != nil {
		m.ErrorCount++
		m.LastError = err
	}
}

// AverageExecutionTime is zero before the first run.
func (m Metrics) AverageExecutionTime() time.Duration {
	if m.ExecutionCount == 0 {
		return 0
	}
	return m.TotalExecutionTime / time.Duration(m.ExecutionCount)
}
