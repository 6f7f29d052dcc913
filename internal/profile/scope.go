package profile

import (
	"context"
	"sync"
)

// Scope owns the goroutines started by a Repository. Closing it cancels the
// in-flight operations; they deliver no callbacks afterwards.
type Scope struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScope(parent context.Context) *Scope {
	ctx, cancel := context.WithCancel(parent)
	return &Scope{ctx: ctx, cancel: cancel}
}

// Context returns the context the operations of the scope run with.
func (s *Scope) Context() context.Context {
	return s.ctx
}

// Go runs fn in a new goroutine unless the scope is already closed.
func (s *Scope) Go(fn func(ctx context.Context)) {
	if s.ctx.Err() != nil {
		return
	}

	s.wg.Go(func() {
		fn(s.ctx)
	})
}

// Done reports whether the scope has been torn down.
func (s *Scope) Done() bool {
	return s.ctx.Err() != nil
}

// Wait blocks until all started operations returned.
func (s *Scope) Wait() {
	s.wg.Wait()
}

// Close cancels the scope and waits for the running operations to return.
func (s *Scope) Close() {
	s.cancel()
	s.wg.Wait()
}
