// Package pairing bridges the asynchronous arrival of a pairing code to the
// synchronous create-session caller. Each session gets a single-slot
// notification that is filled at most once; the caller blocks on it with a
// deadline.
package pairing

import (
	"context"
	"sync"
	"time"

	"github.com/chatbridge/go-wa-gateway/internal/errors"
	"github.com/chatbridge/go-wa-gateway/messaging"
)

// Result is what a waiting caller receives: either a pairing code to scan,
// or confirmation that stored credentials resumed straight to Connected.
type Result struct {
	Code      string
	Connected bool
	Identity  messaging.Identity
}

// Waiter holds one notification slot per session id.
type Waiter struct {
	mu    sync.Mutex
	slots map[string]chan Result
}

func NewWaiter() *Waiter {
	return &Waiter{
		slots: make(map[string]chan Result),
	}
}

// Register creates (or replaces) the slot for a session. Must be called
// before the link that will publish into it is dialed.
func (w *Waiter) Register(sessionID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.slots[sessionID] = make(chan Result, 1)
}

// Publish fills the session's slot. Only the first publish per registration
// is observed; later publishes and publishes for unknown sessions are
// dropped, so event-loop callers never block here.
func (w *Waiter) Publish(sessionID string, result Result) {
	w.mu.Lock()
	slot, ok := w.slots[sessionID]
	w.mu.Unlock()
	if !ok {
		return
	}
	select {
	case slot <- result:
	default:
	}
}

// Wait blocks until the session's slot is filled, the deadline elapses, or
// the caller's context is cancelled. On timeout the underlying connection
// attempt keeps running; only the wait is abandoned.
func (w *Waiter) Wait(ctx context.Context, sessionID string, deadline time.Duration) (Result, error) {
	w.mu.Lock()
	slot, ok := w.slots[sessionID]
	w.mu.Unlock()
	if !ok {
		return Result{}, errors.Wrapf(errors.ErrSessionNotFound, "pairing.Wait %q", sessionID)
	}

	timer := time.NewTimer(deadline)
	defer timer.Stop()

	select {
	case result := <-slot:
		return result, nil
	case <-timer.C:
		return Result{}, errors.ErrPairingTimeout
	case <-ctx.Done():
		return Result{}, errors.Wrapf(ctx.Err(), "pairing.Wait %q", sessionID)
	}
}

// Discard drops the session's slot. Late publishes become no-ops.
func (w *Waiter) Discard(sessionID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.slots, sessionID)
}
