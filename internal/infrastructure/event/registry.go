package event

import (
	"sync"

	"github.com/flowi/backend/internal/domain/shared"
)

// wildcardKey collects handlers that receive every event type
const wildcardKey = "*"

// HandlerRegistry keeps which handlers listen to which event types.
// Handlers are returned in registration order and registering the same
// handler twice for a type has no effect.
type HandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[string][]shared.EventHandler
}

// NewHandlerRegistry creates a new handler registry
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{handlers: make(map[string][]shared.EventHandler)}
}

// Register adds handler for eventTypes. No types means every event.
func (r *HandlerRegistry) Register(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = []string{wildcardKey}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range eventTypes {
		if !containsHandler(r.handlers[t], handler) {
			r.handlers[t] = append(r.handlers[t], handler)
		}
	}
}

// Unregister removes handler from every event type
func (r *HandlerRegistry) Unregister(handler shared.EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for t, list := range r.handlers {
		kept := list[:0:0]
		for _, h := range list {
			if h != handler {
				kept = append(kept, h)
			}
		}
		if len(kept) == 0 {
			delete(r.handlers, t)
		} else {
			r.handlers[t] = kept
		}
	}
}

// GetHandlers returns the handlers for eventType followed by the wildcard
// handlers, each at most once
func (r *HandlerRegistry) GetHandlers(eventType string) []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	specific := r.handlers[eventType]
	wildcard := r.handlers[wildcardKey]
	out := make([]shared.EventHandler, 0, len(specific)+len(wildcard))
	out = append(out, specific...)
	for _, h := range wildcard {
		if !containsHandler(out, h) {
			out = append(out, h)
		}
	}
	return out
}

// Count returns the number of distinct registered handlers
func (r *HandlerRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[shared.EventHandler]struct{})
	for _, list := range r.handlers {
		for _, h := range list {
			seen[h] = struct{}{}
		}
	}
	return len(seen)
}

func containsHandler(list []shared.EventHandler, h shared.EventHandler) bool {
	for _, x := range list {
		if x == h {
			return true
		}
	}
	return false
}
