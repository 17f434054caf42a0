package server

import (
	"fmt"
	"sort"
	"sync"

	"github.com/elyria/elyria/internal/core/ecs"
	"github.com/elyria/elyria/internal/core/observability/log"
	"github.com/elyria/elyria/internal/core/protocol"
	"github.com/google/uuid"
)

// HandlerContext is what a handler sees. The world lock is held for the whole
// invocation.
type HandlerContext struct {
	Message   protocol.Message
	World     *ecs.World
	Directory *Directory
	SessionID uuid.UUID
	Logger    log.Log
}

type Handler interface {
	Handle(ctx *HandlerContext) error
}

type HandlerFunc func(ctx *HandlerContext) error

func (f HandlerFunc) Handle(ctx *HandlerContext) error { return f(ctx) }

// Handlers is the action registry. Lookups take the read lock.
type Handlers struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewHandlers() *Handlers {
	return &Handlers{handlers: make(map[string]Handler)}
}

func (h *Handlers) Register(action string, handler Handler) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.handlers[action]; ok {
		return fmt.Errorf("%w: %q", ErrHandlerExists, action)
	}
	h.handlers[action] = handler
	return nil
}

func (h *Handlers) Lookup(action string) (Handler, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	handler, ok := h.handlers[action]
	return handler, ok
}

// Actions lists the registered actions in sorted order.
func (h *Handlers) Actions() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, 0, len(h.handlers))
	for action := range h.handlers {
		out = append(out, action)
	}
	sort.Strings(out)
	return out
}
