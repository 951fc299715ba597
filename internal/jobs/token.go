package jobs

import (
	"context"
	"sync"
	"sync/atomic"
)

// Token controls one polling sequence. Cancel stops future ticks and discards
// any response still in flight; Done closes once the sequence has ended for
// any reason.
type Token struct {
	handle    Handle
	cancelled atomic.Bool
	stopOnce  sync.Once
	stop      chan struct{}
	doneOnce  sync.Once
	done      chan struct{}

	mu       sync.Mutex
	final    Status
	hasFinal bool
	err      error
}

func newToken(handle Handle) *Token {
	return &Token{
		handle: handle,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Handle returns the job this token polls.
func (t *Token) Handle() Handle {
	return t.handle
}

// Cancel stops polling. Calling it more than once, or after the job reached a
// terminal state, has no effect.
func (t *Token) Cancel() {
	t.cancelled.Store(true)
	t.stopOnce.Do(func() { close(t.stop) })
}

// Cancelled reports whether Cancel was called.
func (t *Token) Cancelled() bool {
	return t.cancelled.Load()
}

// Done is closed when polling ends.
func (t *Token) Done() <-chan struct{} {
	return t.done
}

// Active reports whether polling is still running.
func (t *Token) Active() bool {
	select {
	case <-t.done:
		return false
	default:
		return true
	}
}

// Final returns the terminal status once the job succeeded or failed.
func (t *Token) Final() (Status, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.final, t.hasFinal
}

// Err returns why polling ended without a terminal status: ErrCancelled or
// the context error. It is nil while polling runs and after a terminal status.
func (t *Token) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Wait blocks until polling ends or ctx is done.
func (t *Token) Wait(ctx context.Context) (Status, error) {
	select {
	case <-t.done:
	case <-ctx.Done():
		return Status{}, ctx.Err()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.hasFinal {
		return t.final, nil
	}
	return Status{}, t.err
}

func (t *Token) finish(status Status, hasFinal bool, err error) {
	t.doneOnce.Do(func() {
		t.mu.Lock()
		t.final = status
		t.hasFinal = hasFinal
		t.err = err
		t.mu.Unlock()
		close(t.done)
	})
}
