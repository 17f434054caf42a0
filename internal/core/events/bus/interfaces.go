package bus

import "errors"

// ErrNoSubscribers is returned by Publish when nothing listens to the event type.
var ErrNoSubscribers = errors.New("no subscribers for event type")

// EventBus defines a thread-safe, in-process pub/sub event bus.
//
// Key characteristics:
// - Type-based fan-out: handlers subscribe by an event type string (the
//   network action name on the client).
// - Synchronous delivery: Publish calls handlers in the caller goroutine, in
//   subscription order.
// - Error aggregation: multiple handler errors are joined and returned from Publish.
//
// Handlers should be quick; on the client they run inside the frame update.
type EventBus[T any] interface {
	// Publish delivers event to every active subscriber of eventType. It returns
	// ErrNoSubscribers when there are none, or the joined handler errors.
	Publish(eventType string, event T) error
	// Subscribe registers a handler for eventType and returns a Subscription
	// handle that can be used to cancel later.
	Subscribe(eventType string, handler EventHandler[T]) (Subscription, error)
	// Unsubscribe cancels the given Subscription. It is safe to call with nil; does nothing.
	Unsubscribe(Subscription) error

	// HasSubscribers reports whether eventType currently has a handler.
	HasSubscribers(eventType string) bool
	// EventTypes returns a sorted snapshot of event types with subscribers.
	EventTypes() []string
	// GetMetrics returns a snapshot of accumulated counters.
	GetMetrics() Metrics
}

// EventHandler is a user callback invoked per delivered event.
type EventHandler[T any] func(event T) error

// Subscription represents a registered handler bound to an event type.
// Use Cancel or EventBus.Unsubscribe to stop receiving events.
type Subscription interface {
	// ID is a unique identifier for this subscription.
	ID() string
	// EventType returns the event type this subscription listens to.
	EventType() string
	// IsActive reports whether this subscription is still registered.
	IsActive() bool
	// Cancel de-registers the handler from the bus. Multiple calls are safe.
	Cancel() error
}

// Metrics is a minimal set of counters.
type Metrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	Unrouted          uint64
	SubscribersActive uint64
}
