// Package callback provides an ordered fan-out of events to subscriber handles.
package callback

import (
	"context"
	"fmt"
	"slices"
	"sync"

	slogctx "github.com/veqryn/slog-context"
)

// Handle identifies a subscriber. Two handles are the same subscriber only if
// they are the same pointer, regardless of the function they wrap.
type Handle[T any] struct {
	name string
	fn   func(context.Context, T)
}

// NewHandle wraps fn into a new subscriber handle. The name is only used in logs.
func NewHandle[T any](name string, fn func(context.Context, T)) *Handle[T] {
	return &Handle[T]{name: name, fn: fn}
}

func (h *Handle[T]) String() string {
	return h.name
}

// Registry keeps subscriber handles in insertion order.
type Registry[T any] struct {
	mu       sync.Mutex
	handles  []*Handle[T]
	eventTag string
}

func NewRegistry[T any](eventTag string) *Registry[T] {
	return &Registry[T]{eventTag: eventTag}
}

// Subscribe appends h unless it is already subscribed. It reports whether h was added.
func (r *Registry[T]) Subscribe(h *Handle[T]) bool {
	if h == nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if slices.Contains(r.handles, h) {
		return false
	}
	r.handles = append(r.handles, h)

	return true
}

// Unsubscribe removes h. It reports whether h was subscribed.
func (r *Registry[T]) Unsubscribe(h *Handle[T]) bool {
	if h == nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := slices.Index(r.handles, h)
	if i < 0 {
		return false
	}
	r.handles = slices.Delete(r.handles, i, i+1)

	return true
}

// Len returns the number of subscribed handles.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.handles)
}

// Broadcast delivers event to the handles subscribed when it was called.
// Changes to the registry made by subscribers while the broadcast runs only
// affect later broadcasts. A panicking subscriber does not stop delivery.
func (r *Registry[T]) Broadcast(ctx context.Context, event T) {
	r.mu.Lock()
	snapshot := slices.Clone(r.handles)
	r.mu.Unlock()

	for _, h := range snapshot {
		r.deliver(ctx, h, event)
	}
}

func (r *Registry[T]) deliver(ctx context.Context, h *Handle[T], event T) {
	defer func() {
		if p := recover(); p != nil {
			slogctx.Error(ctx, "Subscriber failed to handle event",
				"event", r.eventTag,
				"subscriber", h.name,
				"error", fmt.Sprint(p),
			)
		}
	}()

	if h.fn != nil {
		h.fn(ctx, event)
	}
}
