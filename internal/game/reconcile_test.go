package game

import (
	"testing"

	"github.com/elyria/elyria/internal/core/ecs"
	"github.com/elyria/elyria/internal/core/protocol"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFacing(t *testing.T) {
	cases := []struct {
		delta mgl32.Vec3
		want  protocol.Direction
	}{
		{mgl32.Vec3{5, 1, 0}, protocol.DirectionRight},
		{mgl32.Vec3{1, 5, 0}, protocol.DirectionUp},
		{mgl32.Vec3{-5, 1, 0}, protocol.DirectionLeft},
		{mgl32.Vec3{1, -5, 0}, protocol.DirectionDown},
		// ties go vertical
		{mgl32.Vec3{3, 3, 0}, protocol.DirectionUp},
		{mgl32.Vec3{-3, -3, 0}, protocol.DirectionDown},
		{mgl32.Vec3{3, -3, 0}, protocol.DirectionDown},
		{mgl32.Vec3{0, 0, 7}, protocol.DirectionUp},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Facing(c.delta), "delta %v", c.delta)
	}
}

func TestStep_ConvergesWithoutOvershoot(t *testing.T) {
	cases := []struct {
		from, to mgl32.Vec3
		speed    float32
		dt       float32
	}{
		{mgl32.Vec3{0, 0, 0}, mgl32.Vec3{10, 20, 0}, 100, 1.0 / 60},
		{mgl32.Vec3{-50, 3, 1}, mgl32.Vec3{7, -13, 1}, 35, 0.05},
		{mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1000, 0, 0}, 100, 0.5},
		{mgl32.Vec3{1, 1, 1}, mgl32.Vec3{1, 1, 1}, 10, 0.1},
	}
	for _, c := range cases {
		target := c.to
		tr := NewTransform(c.from)
		r := NewRemotePlayer(uuid.New(), c.speed)
		r.Target = &target

		previous := target.Sub(tr.Position).Len()
		steps := 0
		for r.Target != nil {
			Step(&tr, &r, c.dt)
			d := target.Sub(tr.Position).Len()
			require.LessOrEqual(t, d, previous+1e-4, "distance grew at step %d", steps)
			previous = d
			steps++
			require.Less(t, steps, 100000, "never converged")
		}

		assert.Equal(t, target, tr.Position, "snapped exactly")
		assert.Equal(t, protocol.StateIdle, r.State)
	}
}

func TestStep_SnapWithinBudget(t *testing.T) {
	target := mgl32.Vec3{3, 4, 0}
	tr := NewTransform(mgl32.Vec3{})
	r := NewRemotePlayer(uuid.New(), 100)
	r.Target = &target

	// distance 5, budget 100*0.05 = 5
	Step(&tr, &r, 0.05)
	assert.Equal(t, target, tr.Position)
	assert.Nil(t, r.Target)
	assert.Equal(t, protocol.StateIdle, r.State)
}

func TestStep_WalksAndFaces(t *testing.T) {
	target := mgl32.Vec3{100, 20, 0}
	tr := NewTransform(mgl32.Vec3{})
	r := NewRemotePlayer(uuid.New(), 10)
	r.Target = &target

	changed := Step(&tr, &r, 0.1)
	assert.True(t, changed)
	assert.Equal(t, protocol.StateWalk, r.State)
	assert.Equal(t, protocol.DirectionRight, r.Direction)
	assert.InDelta(t, 1.0, tr.Position.Len(), 1e-5)
	require.NotNil(t, r.Target)

	assert.False(t, Step(&tr, &r, 0.1), "same state and facing")
}

func TestStep_NoTarget(t *testing.T) {
	tr := NewTransform(mgl32.Vec3{1, 2, 3})
	r := NewRemotePlayer(uuid.New(), 10)
	assert.False(t, Step(&tr, &r, 1))
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, tr.Position)
}

func TestReconcile_PlaysAnimationOnChange(t *testing.T) {
	w := ecs.NewWorld()
	e := w.NewEntity()
	target := mgl32.Vec3{0, 50, 0}
	r := NewRemotePlayer(uuid.New(), 100)
	r.Target = &target
	ecs.Add(w, e, NewTransform(mgl32.Vec3{}))
	ecs.Add(w, e, r)
	ecs.Add(w, e, Animation{Current: "idle_down"})

	Reconcile(w, 0.1)
	anim, _ := ecs.Get[Animation](w, e)
	assert.Equal(t, "walk_up", anim.Current)
	assert.Equal(t, 1, anim.Changes)

	Reconcile(w, 0.1)
	assert.Equal(t, 1, anim.Changes, "no change while walking the same way")

	Reconcile(w, 1)
	assert.Equal(t, "idle_up", anim.Current)
	assert.Equal(t, 2, anim.Changes)

	tr, _ := ecs.Get[Transform](w, e)
	assert.Equal(t, target, tr.Position)
}

func TestReconcile_SkipsEntitiesWithoutTransform(t *testing.T) {
	w := ecs.NewWorld()
	e := w.NewEntity()
	target := mgl32.Vec3{1, 0, 0}
	r := NewRemotePlayer(uuid.New(), 1)
	r.Target = &target
	ecs.Add(w, e, r)

	assert.NotPanics(t, func() { Reconcile(w, 1) })
	got, _ := ecs.Get[RemotePlayer](w, e)
	assert.NotNil(t, got.Target)
}
