// Package eventloop implements the cooperative wait used while an
// asynchronous provider completes. Interactive sign-in surfaces dispatch
// their completion through a host event queue, so the goroutine that
// initiated the call has to keep servicing that queue or the completion
// never runs. Loop models the queue, WaitPump is the degenerate form for
// hosts that have no queue at all.
package eventloop

import (
	"sync"
	"time"
)

// Pump waits for an asynchronous completion while keeping the host event
// source serviced. PumpUntil reports true once done is closed and false once
// d has elapsed, never both. Implementations must bound the wait even when
// no event ever arrives.
type Pump interface {
	PumpUntil(done <-chan struct{}, d time.Duration) bool
}

// WaitPump is a plain bounded wait with no event queue behind it. Silent
// flows and headless hosts use this.
type WaitPump struct{}

func (WaitPump) PumpUntil(done <-chan struct{}, d time.Duration) bool {
	if closed(done) {
		return true
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-done:
		return true
	case <-t.C:
		// Both cases can be ready at once; prefer ready over timed out.
		return closed(done)
	}
}

// Loop is an unbounded dispatch queue drained by whichever goroutine is
// pumping it. Producers hand work to Post from any goroutine and never
// block. Work posted while nobody pumps stays queued until the next
// PumpUntil call, which is how a completion that fires after its waiter
// gave up still gets delivered, and discarded, later.
type Loop struct {
	mu    sync.Mutex
	queue []func()
	wake  chan struct{}
}

// NewLoop returns an empty loop ready to accept work.
func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post enqueues fn and nudges the pumping goroutine. Nil functions are
// ignored.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}

	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	// Single-token wake channel; a pending token already covers this post.
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Pending reports how many units of work are waiting to run.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// PumpUntil drains the queue one unit at a time until done is closed or d
// elapses. Readiness is checked before every blocking fetch: a provider can
// complete without ever posting work (fast failure), and committing to a
// fetch first would hang on an empty queue. The deadline uses its own timer
// so the check does not depend on another event arriving.
func (l *Loop) PumpUntil(done <-chan struct{}, d time.Duration) bool {
	if closed(done) {
		return true
	}

	t := time.NewTimer(d)
	defer t.Stop()

	for {
		for {
			fn, ok := l.take()
			if !ok {
				break
			}
			fn()
			// The unit just serviced may be the completion itself.
			if closed(done) {
				return true
			}
		}

		select {
		case <-done:
			return true
		case <-l.wake:
			// New work arrived, go back and drain it.
		case <-t.C:
			return closed(done)
		}
	}
}

func (l *Loop) take() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.queue) == 0 {
		return nil, false
	}

	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn, true
}

func closed(done <-chan struct{}) bool {
	select {
	case <-done:
		return true
	default:
		return false
	}
}
