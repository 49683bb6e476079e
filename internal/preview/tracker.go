package preview

import (
	"context"
	"sync"
)

// Tracker implements last-request-wins for preview fetches. Each Begin
// supersedes the previous request: its context is cancelled and its ticket
// stops being current, so a late result can be recognised and discarded.
type Tracker struct {
	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// Ticket identifies one started request
type Ticket struct {
	tracker *Tracker
	gen     uint64
}

// Begin starts a new request generation derived from parent
func (t *Tracker) Begin(parent context.Context) (context.Context, Ticket) {
	ctx, cancel := context.WithCancel(parent)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
	}
	t.gen++
	t.cancel = cancel
	return ctx, Ticket{tracker: t, gen: t.gen}
}

// Invalidate makes every outstanding ticket stale, e.g. when the input was cleared
func (t *Tracker) Invalidate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.gen++
}

// Current reports whether no newer request has started since this ticket
func (k Ticket) Current() bool {
	if k.tracker == nil {
		return false
	}
	k.tracker.mu.Lock()
	defer k.tracker.mu.Unlock()
	return k.tracker.gen == k.gen
}

// Done releases the ticket's context if it is still the current one
func (k Ticket) Done() {
	if k.tracker == nil {
		return
	}
	k.tracker.mu.Lock()
	defer k.tracker.mu.Unlock()
	if k.tracker.gen == k.gen && k.tracker.cancel != nil {
		k.tracker.cancel()
		k.tracker.cancel = nil
	}
}
