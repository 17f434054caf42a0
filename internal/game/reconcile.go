package game

import (
	"github.com/elyria/elyria/internal/core/ecs"
	"github.com/elyria/elyria/internal/core/protocol"
	"github.com/go-gl/mathgl/mgl32"
)

// Facing derives the sprite facing from a movement vector. The dominant axis
// wins; when |x| and |y| are equal the vertical axis wins. Positive y is up.
func Facing(delta mgl32.Vec3) protocol.Direction {
	dx, dy := delta.X(), delta.Y()
	if abs(dx) > abs(dy) {
		if dx >= 0 {
			return protocol.DirectionRight
		}
		return protocol.DirectionLeft
	}
	if dy >= 0 {
		return protocol.DirectionUp
	}
	return protocol.DirectionDown
}

// Step moves t toward r.Target by at most r.Speed*dt. Reaching the target
// within the budget snaps onto it exactly, clears the target and goes idle
// keeping the last facing. It reports whether facing or state changed.
func Step(t *Transform, r *RemotePlayer, dt float32) bool {
	if r.Target == nil {
		return false
	}

	target := *r.Target
	delta := target.Sub(t.Position)
	distance := delta.Len()
	budget := r.Speed * dt

	state, direction := r.State, r.Direction
	if distance <= budget {
		t.Position = target
		r.Target = nil
		state = protocol.StateIdle
	} else {
		t.Position = t.Position.Add(delta.Mul(budget / distance))
		state = protocol.StateWalk
		direction = Facing(delta)
	}

	changed := state != r.State || direction != r.Direction
	r.State, r.Direction = state, direction
	return changed
}

// ReconcileSystem chases every remote player toward its last known position.
type ReconcileSystem struct{}

func (ReconcileSystem) Name() string { return "reconcile" }

func (ReconcileSystem) Update(frame *Frame) error {
	Reconcile(frame.World, frame.Delta)
	return nil
}

// Reconcile runs Step for every entity with both RemotePlayer and Transform,
// playing "{state}_{direction}" on entities whose animation state changed.
func Reconcile(w *ecs.World, dt float32) {
	for e := range ecs.Each[RemotePlayer](w) {
		t, r, ok := ecs.GetPair[Transform, RemotePlayer](w, e)
		if !ok {
			continue
		}
		if !Step(t, r, dt) {
			continue
		}
		if anim, ok := ecs.Get[Animation](w, e); ok {
			anim.Play(protocol.AnimationName(r.State, r.Direction))
		}
	}
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
