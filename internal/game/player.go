package game

import (
	"github.com/elyria/elyria/internal/core/ecs"
	"github.com/elyria/elyria/internal/core/protocol"
	"github.com/go-gl/mathgl/mgl32"
)

// LocalPlayerSystem moves the locally controlled player from the frame input.
type LocalPlayerSystem struct{}

func (LocalPlayerSystem) Name() string { return "local_player" }

func (LocalPlayerSystem) Update(frame *Frame) error {
	for e := range ecs.Each[LocalPlayer](frame.World) {
		player, t, ok := ecs.GetPair[LocalPlayer, Transform](frame.World, e)
		if !ok {
			continue
		}
		if !Drive(player, t, frame.Input, frame.Delta) {
			continue
		}
		if anim, ok := ecs.Get[Animation](frame.World, e); ok {
			anim.Play(protocol.AnimationName(player.State, player.Direction))
		}
	}
	return nil
}

// Drive applies one frame of input. Horizontal keys override vertical ones for
// the facing; diagonal movement is normalized so it is not faster. It reports
// whether facing or state changed.
func Drive(p *LocalPlayer, t *Transform, in Input, dt float32) bool {
	var velocity mgl32.Vec3
	direction := p.Direction
	if direction == "" {
		direction = protocol.DirectionDown
	}

	if in.Up {
		velocity[1] = 1
		direction = protocol.DirectionUp
	}
	if in.Down {
		velocity[1] = -1
		direction = protocol.DirectionDown
	}
	if in.Left {
		velocity[0] = -1
		direction = protocol.DirectionLeft
	}
	if in.Right {
		velocity[0] = 1
		direction = protocol.DirectionRight
	}

	state := protocol.StateIdle
	if velocity.LenSqr() > 0 {
		state = protocol.StateWalk
		t.Position = t.Position.Add(velocity.Normalize().Mul(p.Speed * dt))
	}

	changed := state != p.State || direction != p.Direction
	p.State, p.Direction = state, direction
	return changed
}
