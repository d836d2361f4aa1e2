// Package oneshot provides a single-use completion cell that bridges
// callback-style asynchronous producers to blocking consumers. A producer
// fills the cell exactly once from any goroutine; consumers poll, block with
// a deadline, or select on the cell's done channel.
package oneshot

import (
	"sync"
	"time"
)

// Cell is a one-shot handoff slot. It transitions exactly once from empty to
// filled and can be read any number of times afterwards. The zero value is
// not usable, construct cells with NewCell.
type Cell[T any] struct {
	once sync.Once
	done chan struct{}
	val  T
}

// NewCell returns an empty cell.
func NewCell[T any]() *Cell[T] {
	return &Cell[T]{done: make(chan struct{})}
}

// Complete stores v and wakes every waiter. Only the first call takes
// effect; later calls return false and their value is dropped. Calling
// Complete after all waiters have timed out is allowed, the value simply has
// no observer.
func (c *Cell[T]) Complete(v T) bool {
	won := false
	c.once.Do(func() {
		c.val = v
		won = true
		close(c.done)
	})
	return won
}

// TryGet returns the stored value without blocking. The second return is
// false while the cell is still empty.
func (c *Cell[T]) TryGet() (T, bool) {
	select {
	case <-c.done:
		return c.val, true
	default:
		var zero T
		return zero, false
	}
}

// Await blocks until the cell is filled or d has elapsed, whichever comes
// first. It reports true when a value is available.
func (c *Cell[T]) Await(d time.Duration) (T, bool) {
	// Fast path, skip the timer when the value is already there.
	if v, ok := c.TryGet(); ok {
		return v, true
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-c.done:
		return c.val, true
	case <-t.C:
		// Completion and deadline can race; prefer the value if it landed.
		return c.TryGet()
	}
}

// Get blocks until the cell is filled and returns the value. Use Await when
// the wait must be bounded.
func (c *Cell[T]) Get() T {
	<-c.done
	return c.val
}

// Done returns a channel that is closed once the cell has been filled.
func (c *Cell[T]) Done() <-chan struct{} {
	return c.done
}

// Filled reports whether the cell has been completed yet.
func (c *Cell[T]) Filled() bool {
	_, ok := c.TryGet()
	return ok
}
