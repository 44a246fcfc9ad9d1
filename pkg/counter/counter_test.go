package counter

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ib-77/gridsum/pkg/types"
)

func TestStart_InvalidInterval(t *testing.T) {
	t.Parallel()

	_, err := Start(context.Background(), 0)
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
}

func TestCounter_CountsUp(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var ticks []int64
	c, err := Start(context.Background(), time.Millisecond, WithStart(5), WithOnTick(func(v int64) {
		mu.Lock()
		ticks = append(ticks, v)
		mu.Unlock()
	}))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(ticks) >= 4
	}, 2*time.Second, time.Millisecond)
	c.Stop()

	mu.Lock()
	defer mu.Unlock()
	for i, v := range ticks {
		assert.Equal(t, int64(5+i), v)
	}
	assert.Equal(t, ticks[len(ticks)-1], c.Value())
}

func TestCounter_Down(t *testing.T) {
	t.Parallel()

	c, err := Start(context.Background(), time.Millisecond)
	require.NoError(t, err)
	defer c.Stop()

	require.Eventually(t, func() bool { return c.Value() >= 3 }, 2*time.Second, time.Millisecond)
	c.Down()
	require.Eventually(t, func() bool { return c.Value() < 0 }, 2*time.Second, time.Millisecond)
	c.Up()
	require.Eventually(t, func() bool { return c.Value() >= 0 }, 2*time.Second, time.Millisecond)
}

func TestCounter_ValuesChannel(t *testing.T) {
	t.Parallel()

	c, err := Start(context.Background(), time.Millisecond)
	require.NoError(t, err)

	prev := int64(-1)
	for range 3 {
		select {
		case v := <-c.Values():
			assert.Greater(t, v, prev)
			prev = v
		case <-time.After(2 * time.Second):
			t.Fatal("no value published")
		}
	}

	c.Stop()
	for range c.Values() {
	}
}

func TestCounter_StopIsIdempotent(t *testing.T) {
	t.Parallel()

	c, err := Start(context.Background(), time.Hour)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Stop()
		}()
	}
	wg.Wait()
	c.Stop()

	select {
	case <-c.Done():
	default:
		t.Fatal("counter still running")
	}

	// direction changes after stop must not block
	c.Up()
	c.Down()
}

func TestCounter_ContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	c, err := Start(ctx, time.Hour)
	require.NoError(t, err)

	cancel()
	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("counter ignored cancellation")
	}
	assert.Equal(t, int64(0), c.Value())
}

func TestCounter_StopFromOnTick(t *testing.T) {
	t.Parallel()

	handle := make(chan *Counter, 1)
	c, err := Start(context.Background(), time.Millisecond, WithOnTick(func(v int64) {
		if v < 3 {
			return
		}
		select {
		case c := <-handle:
			go c.Down()
			go c.Stop()
		default:
		}
	}))
	require.NoError(t, err)
	handle <- c

	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("counter did not stop from its tick callback")
	}
	c.Stop()
}

func TestCounter_WithDirection(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var got []int64
	c, err := Start(context.Background(), time.Millisecond,
		WithStart(10),
		WithDirection(Down),
		WithOnTick(func(v int64) {
			mu.Lock()
			got = append(got, v)
			mu.Unlock()
		}))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) >= 3
	}, 2*time.Second, time.Millisecond)
	c.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int64{10, 9, 8}, got[:3])
}
