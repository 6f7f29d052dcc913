package callback_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkcm/profile-session/pkg/callback"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) handle(name string) *callback.Handle[int] {
	return callback.NewHandle(name, func(_ context.Context, ev int) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.events = append(r.events, name)
	})
}

func (r *recorder) got() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func TestRegistry_SubscribeUnsubscribe(t *testing.T) {
	rec := &recorder{}
	reg := callback.NewRegistry[int]("test")
	a, b := rec.handle("a"), rec.handle("b")

	assert.True(t, reg.Subscribe(a))
	assert.True(t, reg.Subscribe(b))
	assert.False(t, reg.Subscribe(a), "same handle must not be added twice")
	assert.False(t, reg.Subscribe(nil))
	assert.Equal(t, 2, reg.Len())

	reg.Broadcast(t.Context(), 1)
	assert.Equal(t, []string{"a", "b"}, rec.got())

	assert.True(t, reg.Unsubscribe(a))
	assert.False(t, reg.Unsubscribe(a))
	assert.False(t, reg.Unsubscribe(nil))

	reg.Broadcast(t.Context(), 2)
	assert.Equal(t, []string{"a", "b", "b"}, rec.got())
}

func TestRegistry_IdentityNotEquality(t *testing.T) {
	var calls int
	fn := func(context.Context, int) { calls++ }

	reg := callback.NewRegistry[int]("test")
	first := callback.NewHandle("same", fn)
	second := callback.NewHandle("same", fn)

	require.True(t, reg.Subscribe(first))
	require.True(t, reg.Subscribe(second))

	// removing one of two look-alike handles keeps the other
	require.True(t, reg.Unsubscribe(first))
	reg.Broadcast(t.Context(), 0)
	assert.Equal(t, 1, calls)
}

func TestRegistry_ResubscribeDeliversOnce(t *testing.T) {
	rec := &recorder{}
	reg := callback.NewRegistry[int]("test")
	h := rec.handle("h")

	reg.Subscribe(h)
	reg.Subscribe(h)
	reg.Broadcast(t.Context(), 1)

	assert.Equal(t, []string{"h"}, rec.got())
}

func TestRegistry_BroadcastUsesSnapshot(t *testing.T) {
	rec := &recorder{}
	reg := callback.NewRegistry[int]("test")

	late := rec.handle("late")
	b := rec.handle("b")
	a := callback.NewHandle("a", func(ctx context.Context, ev int) {
		rec.mu.Lock()
		rec.events = append(rec.events, "a")
		rec.mu.Unlock()

		// mutate the registry mid broadcast
		reg.Unsubscribe(b)
		reg.Subscribe(late)
	})

	reg.Subscribe(a)
	reg.Subscribe(b)

	reg.Broadcast(t.Context(), 1)
	assert.Equal(t, []string{"a", "b"}, rec.got())

	reg.Broadcast(t.Context(), 2)
	assert.Equal(t, []string{"a", "b", "a", "late"}, rec.got())
}

func TestRegistry_PanickingSubscriberDoesNotAbort(t *testing.T) {
	rec := &recorder{}
	reg := callback.NewRegistry[int]("test")

	reg.Subscribe(rec.handle("before"))
	reg.Subscribe(callback.NewHandle("boom", func(context.Context, int) { panic("boom") }))
	reg.Subscribe(rec.handle("after"))

	assert.NotPanics(t, func() { reg.Broadcast(t.Context(), 1) })
	assert.Equal(t, []string{"before", "after"}, rec.got())
}

func TestRegistry_ConcurrentUse(t *testing.T) {
	reg := callback.NewRegistry[int]("test")

	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() {
			h := callback.NewHandle("h", func(context.Context, int) {})
			reg.Subscribe(h)
			reg.Broadcast(t.Context(), 1)
			reg.Unsubscribe(h)
		})
	}
	wg.Wait()

	assert.Equal(t, 0, reg.Len())
}

func TestHandle_String(t *testing.T) {
	h := callback.NewHandle("printer", func(context.Context, string) {})
	assert.Equal(t, "printer", h.String())
}
