// Package ecs is the entity-component store shared by the server's authoritative
// world and every client's local copy of it.
//
// Components of one type live in a single Table keyed by entity. The World keeps
// the tables behind a type-erased interface so that operations touching every
// kind (RemoveEntity, Exists) work without knowing the concrete types, and the
// generic accessors recover the concrete table with a checked type assertion.
//
// A World is not safe for concurrent use. The server serializes access with a
// single lock; clients only touch it from the simulation loop.
package ecs

import (
	"fmt"
	"iter"
	"maps"
	"reflect"
	"slices"
)

// Entity is an opaque, densely allocated identifier. Identifiers are never reused.
type Entity uint32

// table is the type-erased view of a Table[K].
type table interface {
	componentType() reflect.Type
	removeEntity(e Entity) bool
	has(e Entity) bool
	len() int
}

// Table holds every component of one kind.
type Table[K any] struct {
	kind  Kind
	typ   reflect.Type
	items map[Entity]*K
}

func newTable[K any]() *Table[K] {
	return &Table[K]{
		kind:  KindOf[K](),
		typ:   reflect.TypeFor[K](),
		items: make(map[Entity]*K),
	}
}

func (t *Table[K]) componentType() reflect.Type { return t.typ }

func (t *Table[K]) removeEntity(e Entity) bool {
	if _, ok := t.items[e]; !ok {
		return false
	}
	delete(t.items, e)
	return true
}

func (t *Table[K]) has(e Entity) bool {
	_, ok := t.items[e]
	return ok
}

func (t *Table[K]) len() int { return len(t.items) }

// Kind returns the kind this table stores.
func (t *Table[K]) Kind() Kind { return t.kind }

// Set inserts or overwrites the component of e.
func (t *Table[K]) Set(e Entity, c K) {
	t.items[e] = &c
}

// Get returns a mutable pointer to the component of e.
func (t *Table[K]) Get(e Entity) (*K, bool) {
	c, ok := t.items[e]
	return c, ok
}

// Delete removes the component of e, if any.
func (t *Table[K]) Delete(e Entity) {
	delete(t.items, e)
}

// Len returns the number of entities carrying this kind.
func (t *Table[K]) Len() int { return len(t.items) }

// All iterates the table in ascending entity order. Entities removed during
// iteration are skipped.
func (t *Table[K]) All() iter.Seq2[Entity, *K] {
	return func(yield func(Entity, *K) bool) {
		for _, e := range slices.Sorted(maps.Keys(t.items)) {
			c, ok := t.items[e]
			if !ok {
				continue
			}
			if !yield(e, c) {
				return
			}
		}
	}
}

// World owns the entity counter and one table per registered kind.
type World struct {
	nextEntity Entity
	tables     map[Kind]table
}

func NewWorld() *World {
	return &World{
		tables: make(map[Kind]table),
	}
}

// NewEntity returns the next identifier.
func (w *World) NewEntity() Entity {
	e := w.nextEntity
	w.nextEntity++
	return e
}

// RemoveEntity deletes every component of e across all kinds. It reports whether
// anything was removed.
func (w *World) RemoveEntity(e Entity) bool {
	removed := false
	for _, t := range w.tables {
		if t.removeEntity(e) {
			removed = true
		}
	}
	return removed
}

// Exists reports whether at least one table has an entry for e.
func (w *World) Exists(e Entity) bool {
	for _, t := range w.tables {
		if t.has(e) {
			return true
		}
	}
	return false
}

// Kinds lists registered kinds with their component type names, sorted by name.
func (w *World) Kinds() []KindInfo {
	out := make([]KindInfo, 0, len(w.tables))
	for k, t := range w.tables {
		out = append(out, KindInfo{Kind: k, Type: typeName(t.componentType()), Count: t.len()})
	}
	slices.SortFunc(out, func(a, b KindInfo) int {
		switch {
		case a.Type < b.Type:
			return -1
		case a.Type > b.Type:
			return 1
		default:
			return 0
		}
	})
	return out
}

// KindInfo describes one registered table.
type KindInfo struct {
	Kind  Kind
	Type  string
	Count int
}

// Register creates the table for K if needed and returns it. Registering twice
// returns the same table. It panics if another type already occupies K's kind.
func Register[K any](w *World) *Table[K] {
	kind := KindOf[K]()
	if existing, ok := w.tables[kind]; ok {
		t, ok := existing.(*Table[K])
		if !ok {
			panic(fmt.Sprintf("ecs: kind %#x of %s already taken by %s",
				uint64(kind), reflect.TypeFor[K](), existing.componentType()))
		}
		return t
	}
	t := newTable[K]()
	w.tables[kind] = t
	return t
}

// Lookup returns the table for K without creating it.
func Lookup[K any](w *World) (*Table[K], bool) {
	existing, ok := w.tables[KindOf[K]()]
	if !ok {
		return nil, false
	}
	t, ok := existing.(*Table[K])
	return t, ok
}

// Add attaches c to e, registering K on first use and overwriting any previous
// component of the same kind.
func Add[K any](w *World, e Entity, c K) {
	Register[K](w).Set(e, c)
}

// Get returns a mutable pointer to e's component of kind K.
func Get[K any](w *World, e Entity) (*K, bool) {
	t, ok := Lookup[K](w)
	if !ok {
		return nil, false
	}
	return t.Get(e)
}

// Has reports whether e carries a component of kind K.
func Has[K any](w *World, e Entity) bool {
	_, ok := Get[K](w, e)
	return ok
}

// Remove detaches e's component of kind K.
func Remove[K any](w *World, e Entity) {
	if t, ok := Lookup[K](w); ok {
		t.Delete(e)
	}
}

// GetPair returns e's components of two different kinds at once. It reports
// false when K1 and K2 are the same kind, when either kind is unregistered, or
// when e lacks either component. The two pointers never alias: kinds occupy
// separate tables and every component is its own allocation.
func GetPair[K1, K2 any](w *World, e Entity) (*K1, *K2, bool) {
	if KindOf[K1]() == KindOf[K2]() {
		return nil, nil, false
	}
	t1, ok := Lookup[K1](w)
	if !ok {
		return nil, nil, false
	}
	t2, ok := Lookup[K2](w)
	if !ok {
		return nil, nil, false
	}
	c1, ok := t1.Get(e)
	if !ok {
		return nil, nil, false
	}
	c2, ok := t2.Get(e)
	if !ok {
		return nil, nil, false
	}
	return c1, c2, true
}

// Each iterates every component of kind K in ascending entity order. An
// unregistered kind yields nothing.
func Each[K any](w *World) iter.Seq2[Entity, *K] {
	t, ok := Lookup[K](w)
	if !ok {
		return func(func(Entity, *K) bool) {}
	}
	return t.All()
}

// Find returns the first entity, in ascending order, whose K component matches.
func Find[K any](w *World, match func(Entity, *K) bool) (Entity, *K, bool) {
	for e, c := range Each[K](w) {
		if match(e, c) {
			return e, c, true
		}
	}
	return 0, nil, false
}

// Count returns how many entities carry kind K.
func Count[K any](w *World) int {
	t, ok := Lookup[K](w)
	if !ok {
		return 0
	}
	return t.Len()
}
