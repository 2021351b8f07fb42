package runtime

import "sync"

// Future is the result slot of a nowait-spawned task. The producer completes
// it exactly once; consumers block on first access. There is no cancellation:
// a spawned task always runs to completion.
type Future struct {
	done chan struct{}

	mu  sync.Mutex
	val Value
	err error
	set bool
}

// NewFuture creates an unresolved future.
func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Complete resolves the future with a value or an error. Completing twice is
// an internal invariant violation.
func (f *Future) Complete(v Value, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.set {
		panic("runtime: future completed twice")
	}
	f.val = v
	f.err = err
	f.set = true
	close(f.done)
}

// Wait blocks until the future resolves and returns its result. Subsequent
// calls return the cached result immediately.
func (f *Future) Wait() (Value, error) {
	<-f.done
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.val, f.err
}

// Ready reports whether the future has resolved, without blocking.
func (f *Future) Ready() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}
