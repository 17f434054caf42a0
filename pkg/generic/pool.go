package generic

import "sync"

// Pool is a typed wrapper over sync.Pool.
type Pool[T any] struct {
	pool sync.Pool
}

func NewPool[T any](generate func() T) *Pool[T] {
	return &Pool[T]{
		pool: sync.Pool{
			New: func() any {
				return generate()
			},
		},
	}
}

// NewHotPool returns a pool already holding warm values, so the first Gets
// under load do not allocate.
func NewHotPool[T any](generate func() T, warm int) *Pool[T] {
	p := NewPool(generate)
	for range warm {
		p.pool.Put(generate())
	}
	return p
}

func (p *Pool[T]) Get() T {
	return p.pool.Get().(T)
}

func (p *Pool[T]) Put(value T) {
	p.pool.Put(value)
}
