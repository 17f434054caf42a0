package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type position struct{ X, Y float32 }

type velocity struct{ DX, DY float32 }

type tag struct{ Name string }

func TestWorld_NewEntityNeverReused(t *testing.T) {
	w := NewWorld()

	a := w.NewEntity()
	b := w.NewEntity()
	Add(w, a, tag{Name: "a"})
	w.RemoveEntity(a)
	c := w.NewEntity()

	assert.Equal(t, Entity(0), a)
	assert.Equal(t, Entity(1), b)
	assert.Equal(t, Entity(2), c)
}

func TestWorld_AddOverwrites(t *testing.T) {
	w := NewWorld()
	e := w.NewEntity()

	Add(w, e, position{X: 1})
	Add(w, e, position{X: 2})

	p, ok := Get[position](w, e)
	require.True(t, ok)
	assert.Equal(t, float32(2), p.X)
	assert.Equal(t, 1, Count[position](w))
}

func TestWorld_GetIsMutable(t *testing.T) {
	w := NewWorld()
	e := w.NewEntity()
	Add(w, e, position{X: 1, Y: 1})

	p, ok := Get[position](w, e)
	require.True(t, ok)
	p.X = 42

	again, _ := Get[position](w, e)
	assert.Equal(t, float32(42), again.X)
}

func TestWorld_UnregisteredKind(t *testing.T) {
	w := NewWorld()
	e := w.NewEntity()

	p, ok := Get[position](w, e)
	assert.False(t, ok)
	assert.Nil(t, p)

	_, _, ok = GetPair[position, velocity](w, e)
	assert.False(t, ok)

	assert.NotPanics(t, func() { Remove[position](w, e) })

	n := 0
	for range Each[position](w) {
		n++
	}
	assert.Zero(t, n)
}

func TestWorld_RegisterIsIdempotent(t *testing.T) {
	w := NewWorld()

	t1 := Register[position](w)
	t1.Set(w.NewEntity(), position{X: 3})
	t2 := Register[position](w)

	assert.Same(t, t1, t2)
	assert.Equal(t, 1, t2.Len())
}

func TestGetPair_SameKindFails(t *testing.T) {
	w := NewWorld()
	e := w.NewEntity()
	Add(w, e, position{X: 1})

	a, b, ok := GetPair[position, position](w, e)
	assert.False(t, ok)
	assert.Nil(t, a)
	assert.Nil(t, b)
}

func TestGetPair_NoCrossContamination(t *testing.T) {
	w := NewWorld()
	e1 := w.NewEntity()
	e2 := w.NewEntity()
	Add(w, e1, position{X: 1, Y: 1})
	Add(w, e1, velocity{DX: 1, DY: 1})
	Add(w, e2, position{X: 10, Y: 10})
	Add(w, e2, velocity{DX: 10, DY: 10})

	p, v, ok := GetPair[position, velocity](w, e1)
	require.True(t, ok)
	p.X, p.Y = 100, 200
	v.DX, v.DY = -1, -2

	p1, _ := Get[position](w, e1)
	v1, _ := Get[velocity](w, e1)
	assert.Equal(t, position{X: 100, Y: 200}, *p1)
	assert.Equal(t, velocity{DX: -1, DY: -2}, *v1)

	p2, _ := Get[position](w, e2)
	v2, _ := Get[velocity](w, e2)
	assert.Equal(t, position{X: 10, Y: 10}, *p2)
	assert.Equal(t, velocity{DX: 10, DY: 10}, *v2)
}

func TestGetPair_MissingComponent(t *testing.T) {
	w := NewWorld()
	e := w.NewEntity()
	Add(w, e, position{})
	Register[velocity](w)

	_, _, ok := GetPair[position, velocity](w, e)
	assert.False(t, ok)
}

func TestWorld_RemoveEntitySweepsAllKinds(t *testing.T) {
	w := NewWorld()
	e := w.NewEntity()
	other := w.NewEntity()
	Add(w, e, position{})
	Add(w, e, velocity{})
	Add(w, e, tag{Name: "gone"})
	Add(w, other, tag{Name: "kept"})

	require.True(t, w.Exists(e))
	assert.True(t, w.RemoveEntity(e))

	assert.False(t, w.Exists(e))
	assert.False(t, Has[position](w, e))
	assert.False(t, Has[velocity](w, e))
	assert.False(t, Has[tag](w, e))
	assert.True(t, Has[tag](w, other))

	assert.False(t, w.RemoveEntity(e))
}

func TestEach_AscendingAndRemovalSafe(t *testing.T) {
	w := NewWorld()
	for i := range 5 {
		Add(w, w.NewEntity(), tag{Name: string(rune('a' + i))})
	}

	var seen []Entity
	for e := range Each[tag](w) {
		seen = append(seen, e)
		if e == 1 {
			w.RemoveEntity(2)
		}
	}
	assert.Equal(t, []Entity{0, 1, 3, 4}, seen)
}

func TestFind(t *testing.T) {
	w := NewWorld()
	Add(w, w.NewEntity(), tag{Name: "a"})
	b := w.NewEntity()
	Add(w, b, tag{Name: "b"})

	e, c, ok := Find(w, func(_ Entity, c *tag) bool { return c.Name == "b" })
	require.True(t, ok)
	assert.Equal(t, b, e)
	assert.Equal(t, "b", c.Name)

	_, _, ok = Find(w, func(_ Entity, c *tag) bool { return c.Name == "z" })
	assert.False(t, ok)
}

func TestWorld_Kinds(t *testing.T) {
	w := NewWorld()
	Add(w, w.NewEntity(), velocity{})
	Add(w, w.NewEntity(), position{})
	Add(w, w.NewEntity(), position{})

	kinds := w.Kinds()
	require.Len(t, kinds, 2)
	assert.Contains(t, kinds[0].Type, "ecs.position")
	assert.Equal(t, 2, kinds[0].Count)
	assert.Equal(t, KindOf[position](), kinds[0].Kind)
	assert.Contains(t, kinds[1].Type, "ecs.velocity")
}

func TestKindOf_StableAndDistinct(t *testing.T) {
	assert.Equal(t, KindOf[position](), KindOf[position]())
	assert.NotEqual(t, KindOf[position](), KindOf[velocity]())
	assert.NotEqual(t, KindOf[position](), KindOf[*position]())
	assert.Equal(t, "github.com/elyria/elyria/internal/core/ecs.position",
		typeNameOf[position]())
}

func typeNameOf[K any]() string {
	var tbl = newTable[K]()
	return typeName(tbl.componentType())
}
