// Package guard provides a scoped, non-blocking reentrancy lock for ledger
// entry points that may synchronously invoke third-party observers.
package guard

import (
	"sync/atomic"

	"tokengate/pkg/platform/sentinel"
)

// Guard is a scoped execution lock. A call entering a guarded region while
// the lock is held fails immediately with sentinel.ErrReentrant instead of
// blocking: re-entry from an observer callback would otherwise observe the
// ledger in a half-updated state.
//
// The lock is per instance, not per call stack. Two concurrent guarded calls
// reject each other even when neither is a true re-entry; concurrent supply
// operations are rejected, not queued, and callers retry.
//
// The zero value is ready to use.
type Guard struct {
	held atomic.Bool
}

// Do runs fn with the lock held. The lock is released on every exit path,
// including panics. Entry while the lock is already held returns
// sentinel.ErrReentrant without invoking fn.
func (g *Guard) Do(fn func() error) error {
	if !g.held.CompareAndSwap(false, true) {
		return sentinel.ErrReentrant
	}
	defer g.held.Store(false)
	return fn()
}

// Held reports whether the guarded region is currently executing.
func (g *Guard) Held() bool {
	return g.held.Load()
}
