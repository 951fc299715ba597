package jobs

import (
	"fmt"
	"sync"
)

// Tracker holds the single job a process may follow at a time.
type Tracker struct {
	mu    sync.Mutex
	token *Token
}

// Begin records token as the active job. It fails with ErrJobAlreadyRunning
// while a previously recorded token is still active.
func (t *Tracker) Begin(token *Token) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.token != nil && t.token.Active() {
		return fmt.Errorf("%w: %s", ErrJobAlreadyRunning, t.token.Handle().JobID)
	}
	t.token = token
	return nil
}

// Active returns the active token, if any.
func (t *Tracker) Active() (*Token, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.token == nil || !t.token.Active() {
		return nil, false
	}
	return t.token, true
}

// Cancel stops the active job, if any, and reports whether one was running.
func (t *Tracker) Cancel() bool {
	token, ok := t.Active()
	if ok {
		token.Cancel()
	}
	return ok
}
