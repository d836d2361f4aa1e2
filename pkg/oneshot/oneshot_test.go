package oneshot_test

import (
	"sync"
	"testing"
	"time"

	"github.com/keybridge-labs/keybridge/pkg/oneshot"
	"github.com/stretchr/testify/require"
)

func TestCompleteOnlyFirstWins(t *testing.T) {
	c := oneshot.NewCell[string]()

	require.True(t, c.Complete("first"))
	require.False(t, c.Complete("second"), "second completion should be dropped")

	v, ok := c.TryGet()
	require.True(t, ok)
	require.Equal(t, "first", v)
}

func TestTryGetEmpty(t *testing.T) {
	c := oneshot.NewCell[int]()

	v, ok := c.TryGet()
	require.False(t, ok)
	require.Zero(t, v)
	require.False(t, c.Filled())
}

func TestAwaitReturnsWhenCompleted(t *testing.T) {
	c := oneshot.NewCell[int]()

	go func() {
		time.Sleep(10 * time.Millisecond)
		c.Complete(42)
	}()

	v, ok := c.Await(5 * time.Second)
	require.True(t, ok)
	require.Equal(t, 42, v)
}

func TestAwaitAlreadyCompleted(t *testing.T) {
	c := oneshot.NewCell[int]()
	c.Complete(7)

	// Even a zero deadline must succeed when the value is already in place.
	v, ok := c.Await(0)
	require.True(t, ok)
	require.Equal(t, 7, v)
}

func TestAwaitTimesOut(t *testing.T) {
	c := oneshot.NewCell[int]()

	start := time.Now()
	_, ok := c.Await(30 * time.Millisecond)

	require.False(t, ok)
	require.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestLateCompletionAccepted(t *testing.T) {
	c := oneshot.NewCell[string]()

	_, ok := c.Await(10 * time.Millisecond)
	require.False(t, ok)

	// The producer fires after every waiter gave up. Nothing should panic
	// and the value stays readable for anyone who still asks.
	require.True(t, c.Complete("late"))

	v, ok := c.TryGet()
	require.True(t, ok)
	require.Equal(t, "late", v)
}

func TestConcurrentCompleteExactlyOneWins(t *testing.T) {
	c := oneshot.NewCell[int]()

	const producers = 32
	var wins sync.Map
	var wg sync.WaitGroup

	wg.Add(producers)
	for i := range producers {
		go func() {
			defer wg.Done()
			if c.Complete(i) {
				wins.Store(i, true)
			}
		}()
	}
	wg.Wait()

	count := 0
	winner := -1
	wins.Range(func(k, _ any) bool {
		count++
		winner = k.(int)
		return true
	})
	require.Equal(t, 1, count, "exactly one producer should win")

	v, ok := c.TryGet()
	require.True(t, ok)
	require.Equal(t, winner, v)
}

func TestDoneClosesOnComplete(t *testing.T) {
	c := oneshot.NewCell[struct{}]()

	select {
	case <-c.Done():
		t.Fatal("done channel closed before completion")
	default:
	}

	c.Complete(struct{}{})

	select {
	case <-c.Done():
	case <-time.After(time.Second):
		t.Fatal("done channel never closed")
	}
	require.True(t, c.Filled())
}

func TestGetBlocksUntilCompleted(t *testing.T) {
	c := oneshot.NewCell[string]()

	go func() {
		time.Sleep(10 * time.Millisecond)
		c.Complete("done")
	}()

	require.Equal(t, "done", c.Get())
}
