package bus

import (
	"errors"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// subscription implements Subscription interface.
type subscription[T any] struct {
	id        string
	eventType string
	handler   EventHandler[T]
	active    atomic.Bool
	cancel    func()
}

func (s *subscription[T]) ID() string        { return s.id }
func (s *subscription[T]) EventType() string { return s.eventType }
func (s *subscription[T]) IsActive() bool    { return s.active.Load() }
func (s *subscription[T]) Cancel() error {
	if s.active.CompareAndSwap(true, false) && s.cancel != nil {
		s.cancel()
	}
	return nil
}

// inMemoryBus is a thread-safe implementation of EventBus.
type inMemoryBus[T any] struct {
	mu sync.RWMutex
	// handlers: eventType -> subscriptions in registration order
	handlers map[string][]*subscription[T]

	published atomic.Uint64
	delivered atomic.Uint64
	errs      atomic.Uint64
	unrouted  atomic.Uint64
}

// New creates a new EventBus instance.
func New[T any]() EventBus[T] {
	return &inMemoryBus[T]{
		handlers: make(map[string][]*subscription[T]),
	}
}

func (b *inMemoryBus[T]) Subscribe(eventType string, handler EventHandler[T]) (Subscription, error) {
	if handler == nil {
		return nil, errors.New("nil handler")
	}
	s := &subscription[T]{id: uuid.NewString(), eventType: eventType, handler: handler}
	s.active.Store(true)
	s.cancel = func() { b.remove(s) }

	b.mu.Lock()
	b.handlers[eventType] = append(b.handlers[eventType], s)
	b.mu.Unlock()
	return s, nil
}

func (b *inMemoryBus[T]) remove(s *subscription[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := slices.DeleteFunc(b.handlers[s.eventType], func(o *subscription[T]) bool { return o == s })
	if len(subs) == 0 {
		delete(b.handlers, s.eventType)
		return
	}
	b.handlers[s.eventType] = subs
}

func (b *inMemoryBus[T]) Unsubscribe(sub Subscription) error {
	if sub == nil {
		return nil
	}
	return sub.Cancel()
}

func (b *inMemoryBus[T]) Publish(eventType string, event T) error {
	b.published.Add(1)

	b.mu.RLock()
	subs := slices.Clone(b.handlers[eventType])
	b.mu.RUnlock()

	if len(subs) == 0 {
		b.unrouted.Add(1)
		return ErrNoSubscribers
	}

	var all error
	for _, s := range subs {
		if !s.IsActive() {
			continue
		}
		b.delivered.Add(1)
		if err := s.handler(event); err != nil {
			all = errors.Join(all, err)
		}
	}
	if all != nil {
		b.errs.Add(1)
	}
	return all
}

func (b *inMemoryBus[T]) HasSubscribers(eventType string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[eventType]) > 0
}

func (b *inMemoryBus[T]) EventTypes() []string {
	b.mu.RLock()
	out := make([]string, 0, len(b.handlers))
	for t := range b.handlers {
		out = append(out, t)
	}
	b.mu.RUnlock()
	slices.Sort(out)
	return out
}

func (b *inMemoryBus[T]) GetMetrics() Metrics {
	b.mu.RLock()
	var active uint64
	for _, subs := range b.handlers {
		active += uint64(len(subs))
	}
	b.mu.RUnlock()

	return Metrics{
		Published:         b.published.Load(),
		DeliveredHandlers: b.delivered.Load(),
		Errors:            b.errs.Load(),
		Unrouted:          b.unrouted.Load(),
		SubscribersActive: active,
	}
}
