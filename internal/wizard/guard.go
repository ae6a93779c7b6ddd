package wizard

import "sync/atomic"

// SubmitGuard ensures a save action produces at most one in-flight save.
// The flag is claimed with a synchronous compare-and-swap before the save
// does any blocking work, so two near-simultaneous invocations can never
// both pass the check, and it is released in a defer so a failed save
// re-arms the guard for retry.
type SubmitGuard struct {
	inFlight atomic.Bool
}

// Do runs fn unless another invocation is already in flight. The first
// return reports whether fn ran; a skipped invocation is a silent no-op.
func (g *SubmitGuard) Do(fn func() error) (bool, error) {
	if !g.inFlight.CompareAndSwap(false, true) {
		return false, nil
	}
	defer g.inFlight.Store(false)

	return true, fn()
}

// InFlight reports whether a save is currently running (used to disable
// the save control while one is in progress)
func (g *SubmitGuard) InFlight() bool {
	return g.inFlight.Load()
}
