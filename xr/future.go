package xr

import "sync"

// Future is the result of an asynchronous device request.
//
// The device resolves a Future from any goroutine; the frame loop observes
// the outcome by polling Ready and Result on a later frame. A Future can be
// discarded by its requester, in which case a late value is handed to the
// discard cleanup instead of being observed.
type Future[T any] struct {
	mu        sync.Mutex
	done      bool
	val       T
	err       error
	discarded bool
	cleanup   func(T)
}

// NewFuture returns an unresolved Future.
func NewFuture[T any]() *Future[T] {
	return &Future[T]{}
}

// Resolved returns a Future already completed with v.
func Resolved[T any](v T) *Future[T] {
	return &Future[T]{done: true, val: v}
}

// Failed returns a Future already completed with err.
func Failed[T any](err error) *Future[T] {
	return &Future[T]{done: true, err: err}
}

// Resolve completes the Future with v. It returns false if the Future was
// already completed. If the Future was discarded, the discard cleanup
// receives v.
func (f *Future[T]) Resolve(v T) bool {
	f.mu.Lock()
	if f.done {
		f.mu.Unlock()
		return false
	}
	f.done = true
	f.val = v
	cleanup := f.takeCleanupLocked()
	f.mu.Unlock()

	if cleanup != nil {
		cleanup(v)
	}
	return true
}

// Reject completes the Future with err. It returns false if the Future was
// already completed.
func (f *Future[T]) Reject(err error) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.done {
		return false
	}
	f.done = true
	f.err = err
	f.cleanup = nil
	return true
}

// Ready reports whether the Future has completed and was not discarded.
func (f *Future[T]) Ready() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.done && !f.discarded
}

// Result returns the completed value or error. Before completion it returns
// the zero value and nil.
func (f *Future[T]) Result() (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.val, f.err
}

// Discard abandons the Future. If it already holds a value, cleanup runs
// immediately; otherwise cleanup runs when the value arrives. Rejections
// never reach cleanup. After Discard, Ready always reports false.
func (f *Future[T]) Discard(cleanup func(T)) {
	f.mu.Lock()
	if f.discarded {
		f.mu.Unlock()
		return
	}
	f.discarded = true
	if !f.done {
		f.cleanup = cleanup
		f.mu.Unlock()
		return
	}
	v, err := f.val, f.err
	f.mu.Unlock()

	if err == nil && cleanup != nil {
		cleanup(v)
	}
}

func (f *Future[T]) takeCleanupLocked() func(T) {
	if !f.discarded {
		return nil
	}
	c := f.cleanup
	f.cleanup = nil
	return c
}
