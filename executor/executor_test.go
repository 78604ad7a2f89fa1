package executor

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/fortytw2/leaktest"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRuntime(t *testing.T) (*Runtime, *clock.Mock) {
	t.Helper()
	clk := clock.NewMock()
	rt := New(clk, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(rt.Shutdown)
	return rt, clk
}

func ticker(period time.Duration, count *int) Func {
	return func(t *T) error {
		for {
			*count++
			t.Sleep(period)
		}
	}
}

func TestRunUntilPeriodicCounts(t *testing.T) {
	defer leaktest.CheckTimeout(t, time.Second)()

	rt, clk := newTestRuntime(t)
	start := clk.Now()

	var fast, slow int
	pool := rt.Pool("tick", 2)
	require.NoError(t, pool.Spawn("fast", ticker(15*time.Millisecond, &fast)))
	require.NoError(t, pool.Spawn("slow", ticker(time.Second, &slow)))

	require.NoError(t, rt.RunUntil(context.Background(), start.Add(3*time.Second)))
	assert.Equal(t, 200, fast)
	assert.Equal(t, 3, slow)
	assert.Equal(t, start.Add(3*time.Second), clk.Now())
	assert.Equal(t, start.Add(3*time.Second), rt.Now())

	// Stepping again continues where it left off.
	require.NoError(t, rt.RunUntil(context.Background(), start.Add(4*time.Second)))
	assert.Equal(t, 4, slow)

	rt.Shutdown()
}

func TestRunUntilPartialPeriod(t *testing.T) {
	rt, clk := newTestRuntime(t)
	start := clk.Now()

	var n int
	require.NoError(t, rt.Pool("tick", 1).Spawn("slow", ticker(time.Second, &n)))

	// Runs at 0s and 1s fall inside the window, 2s does not.
	require.NoError(t, rt.RunUntil(context.Background(), start.Add(1500*time.Millisecond)))
	assert.Equal(t, 2, n)

	require.NoError(t, rt.RunUntil(context.Background(), start.Add(2*time.Second)))
	assert.Equal(t, 2, n)
}

func TestTiesAreRoundRobin(t *testing.T) {
	rt, clk := newTestRuntime(t)

	var order []string
	step := func(name string) Func {
		return func(t *T) error {
			for {
				order = append(order, name)
				t.Sleep(10 * time.Millisecond)
			}
		}
	}

	pool := rt.Pool("step", 3)
	require.NoError(t, pool.Spawn("a", step("a")))
	require.NoError(t, pool.Spawn("b", step("b")))
	require.NoError(t, pool.Spawn("c", step("c")))

	require.NoError(t, rt.RunUntil(context.Background(), clk.Now().Add(30*time.Millisecond)))
	assert.Equal(t, []string{"a", "b", "c", "a", "b", "c", "a", "b", "c"}, order)
}

func TestYieldLetsOthersRun(t *testing.T) {
	rt, clk := newTestRuntime(t)

	var order []string
	pool := rt.Pool("yield", 2)
	require.NoError(t, pool.Spawn("a", func(t *T) error {
		order = append(order, "a1")
		t.Yield()
		order = append(order, "a2")
		return nil
	}))
	require.NoError(t, pool.Spawn("b", func(t *T) error {
		order = append(order, "b1")
		return nil
	}))

	require.NoError(t, rt.RunUntil(context.Background(), clk.Now().Add(time.Millisecond)))
	assert.Equal(t, []string{"a1", "b1", "a2"}, order)
	assert.Equal(t, 0, pool.Active())
}

func TestOnlyOneTaskRuns(t *testing.T) {
	rt, clk := newTestRuntime(t)

	var running, maxRunning int
	busy := func(t *T) error {
		for {
			running++
			if running > maxRunning {
				maxRunning = running
			}
			time.Sleep(10 * time.Microsecond)
			running--
			t.Sleep(time.Millisecond)
		}
	}

	pool := rt.Pool("busy", 4)
	for _, name := range []string{"a", "b", "c", "d"} {
		require.NoError(t, pool.Spawn(name, busy))
	}

	require.NoError(t, rt.RunUntil(context.Background(), clk.Now().Add(50*time.Millisecond)))
	assert.Equal(t, 1, maxRunning)
}

func TestPoolExhausted(t *testing.T) {
	rt, clk := newTestRuntime(t)

	counts := make([]int, 5)
	pool := rt.Pool("button", 4)
	for i := 0; i < 4; i++ {
		require.NoError(t, pool.Spawn("b", ticker(100*time.Millisecond, &counts[i])))
	}

	err := pool.Spawn("b5", ticker(100*time.Millisecond, &counts[4]))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPoolExhausted))
	assert.Equal(t, 4, pool.Active())
	assert.Equal(t, 4, pool.Cap())

	require.NoError(t, rt.RunUntil(context.Background(), clk.Now().Add(time.Second)))
	assert.Equal(t, []int{10, 10, 10, 10, 0}, counts)
}

func TestFailingTaskDoesNotStopOthers(t *testing.T) {
	rt, clk := newTestRuntime(t)

	var n int
	pool := rt.Pool("mixed", 3)
	require.NoError(t, pool.Spawn("ticker", ticker(10*time.Millisecond, &n)))
	require.NoError(t, pool.Spawn("panics", func(t *T) error {
		t.Sleep(20 * time.Millisecond)
		panic("strip unplugged")
	}))
	require.NoError(t, pool.Spawn("fails", func(t *T) error {
		return errors.New("broken")
	}))

	require.NoError(t, rt.RunUntil(context.Background(), clk.Now().Add(100*time.Millisecond)))
	assert.Equal(t, 10, n)
	assert.Equal(t, 1, pool.Active())

	// The freed slots can be reused.
	require.NoError(t, pool.Spawn("again", func(t *T) error { return nil }))
}

func TestSpawnFromTask(t *testing.T) {
	rt, clk := newTestRuntime(t)
	start := clk.Now()

	var child int
	var spawnedAt time.Time
	pool := rt.Pool("tree", 2)
	require.NoError(t, pool.Spawn("parent", func(t *T) error {
		t.Sleep(50 * time.Millisecond)
		spawnedAt = t.Now()
		return pool.Spawn("child", ticker(10*time.Millisecond, &child))
	}))

	require.NoError(t, rt.RunUntil(context.Background(), start.Add(100*time.Millisecond)))
	assert.Equal(t, start.Add(50*time.Millisecond), spawnedAt)
	assert.Equal(t, 5, child)
}

func TestShutdownReleasesTasks(t *testing.T) {
	defer leaktest.CheckTimeout(t, time.Second)()

	rt, clk := newTestRuntime(t)
	var n int
	pool := rt.Pool("tick", 2)
	require.NoError(t, pool.Spawn("never-run", ticker(time.Millisecond, &n)))
	rt.Shutdown()

	assert.ErrorIs(t, rt.RunUntil(context.Background(), clk.Now().Add(time.Second)), ErrStopped)
	assert.ErrorIs(t, pool.Spawn("late", ticker(time.Millisecond, &n)), ErrStopped)
	assert.Equal(t, 0, n)
}

func TestRunWallClock(t *testing.T) {
	defer leaktest.CheckTimeout(t, time.Second)()

	rt := New(nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	var n int
	require.NoError(t, rt.Pool("tick", 1).Spawn("tick", ticker(5*time.Millisecond, &n)))

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	err := rt.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Greater(t, n, 1)
}

func TestRunIdlesWithoutTasks(t *testing.T) {
	rt, _ := newTestRuntime(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, rt.Run(ctx), context.DeadlineExceeded)
}
