package eventloop_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/keybridge-labs/keybridge/pkg/eventloop"
	"github.com/stretchr/testify/require"
)

func TestWaitPumpReady(t *testing.T) {
	done := make(chan struct{})
	go func() {
		time.Sleep(10 * time.Millisecond)
		close(done)
	}()

	require.True(t, eventloop.WaitPump{}.PumpUntil(done, 5*time.Second))
}

func TestWaitPumpAlreadyDone(t *testing.T) {
	done := make(chan struct{})
	close(done)

	// Zero deadline must not matter when completion already happened.
	require.True(t, eventloop.WaitPump{}.PumpUntil(done, 0))
}

func TestWaitPumpTimesOut(t *testing.T) {
	done := make(chan struct{})

	start := time.Now()
	ready := eventloop.WaitPump{}.PumpUntil(done, 30*time.Millisecond)

	require.False(t, ready)
	require.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestLoopRunsPostedWork(t *testing.T) {
	loop := eventloop.NewLoop()
	done := make(chan struct{})

	var ran atomic.Int32
	loop.Post(func() { ran.Add(1) })
	loop.Post(func() {
		ran.Add(1)
		close(done)
	})

	require.True(t, loop.PumpUntil(done, 5*time.Second))
	require.Equal(t, int32(2), ran.Load())
	require.Zero(t, loop.Pending())
}

func TestLoopCompletionPostedFromAnotherGoroutine(t *testing.T) {
	loop := eventloop.NewLoop()
	done := make(chan struct{})

	// Producer posts the completion after the pump has gone idle.
	go func() {
		time.Sleep(20 * time.Millisecond)
		loop.Post(func() { close(done) })
	}()

	require.True(t, loop.PumpUntil(done, 5*time.Second))
}

func TestLoopFastFailWithoutAnyWork(t *testing.T) {
	loop := eventloop.NewLoop()
	done := make(chan struct{})
	close(done)

	// Completion fired before anything was posted. The pump must notice
	// before committing to a fetch on the empty queue.
	require.True(t, loop.PumpUntil(done, 5*time.Second))
}

func TestLoopDeadlineFiresWhileIdle(t *testing.T) {
	loop := eventloop.NewLoop()
	done := make(chan struct{})

	start := time.Now()
	ready := loop.PumpUntil(done, 30*time.Millisecond)

	// No event ever arrives; the deadline still has to wake the pump.
	require.False(t, ready)
	require.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestLoopWorkLeftAfterTimeoutRunsOnNextPump(t *testing.T) {
	loop := eventloop.NewLoop()
	abandoned := make(chan struct{})

	require.False(t, loop.PumpUntil(abandoned, 10*time.Millisecond))

	// A completion that fires after its waiter gave up sits in the queue.
	var ran atomic.Bool
	loop.Post(func() { ran.Store(true) })
	require.Equal(t, 1, loop.Pending())

	// The next operation's pump delivers it.
	next := make(chan struct{})
	go func() {
		time.Sleep(10 * time.Millisecond)
		loop.Post(func() { close(next) })
	}()

	require.True(t, loop.PumpUntil(next, 5*time.Second))
	require.True(t, ran.Load())
}

func TestLoopNilPostIgnored(t *testing.T) {
	loop := eventloop.NewLoop()
	loop.Post(nil)
	require.Zero(t, loop.Pending())
}
