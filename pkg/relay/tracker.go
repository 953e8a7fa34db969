package relay

import (
	"context"
	"sync"
)

// Tracker keeps a handle on every live call so shutdown can cancel the
// streams and wait for their watchers to drain.
type Tracker struct {
	mu    sync.Mutex
	calls map[string]*trackedCall
	wg    sync.WaitGroup
}

type trackedCall struct {
	cancel func()
	once   sync.Once
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{calls: make(map[string]*trackedCall)}
}

// Register tracks a live call. The returned func unregisters it and is safe
// to call more than once. Registering the same call id again supersedes the
// previous handle.
func (t *Tracker) Register(callID string, cancel func()) (unregister func()) {
	if t == nil {
		return func() {}
	}

	entry := &trackedCall{cancel: cancel}

	t.mu.Lock()
	old := t.calls[callID]
	t.calls[callID] = entry
	t.wg.Add(1)
	t.mu.Unlock()

	if old != nil {
		t.unregister(callID, old)
	}
	return func() { t.unregister(callID, entry) }
}

func (t *Tracker) unregister(callID string, entry *trackedCall) {
	entry.once.Do(func() {
		t.mu.Lock()
		if t.calls[callID] == entry {
			delete(t.calls, callID)
		}
		t.mu.Unlock()
		t.wg.Done()
	})
}

// Count returns the number of live calls.
func (t *Tracker) Count() int {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.calls)
}

// CancelAll cancels every live call, returning how many were signalled.
func (t *Tracker) CancelAll() (canceled int) {
	if t == nil {
		return 0
	}
	var cancels []func()
	t.mu.Lock()
	for _, entry := range t.calls {
		if entry.cancel != nil {
			cancels = append(cancels, entry.cancel)
		}
	}
	t.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
		canceled++
	}
	return canceled
}

// Wait blocks until every tracked call unregisters or the context expires.
// It reports whether the tracker fully drained.
func (t *Tracker) Wait(ctx context.Context) bool {
	if t == nil {
		return true
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		t.wg.Wait()
	}()
	select {
	case <-done:
		return true
	case <-ctx.Done():
		return false
	}
}
