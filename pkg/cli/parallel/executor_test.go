package parallel_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/devantler-tech/ekscli/pkg/cli/parallel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errStackFailed  = errors.New("stack failed")
	errStackMissing = errors.New("stack missing")
)

func TestDefaultMaxConcurrency(t *testing.T) {
	t.Parallel()

	maxConcurrency := parallel.DefaultMaxConcurrency()
	assert.GreaterOrEqual(t, maxConcurrency, int64(2), "should be at least 2")
	assert.LessOrEqual(t, maxConcurrency, int64(8), "should be capped at 8")
}

func TestExecutor_Execute_NoTasks(t *testing.T) {
	t.Parallel()

	require.NoError(t, parallel.NewExecutor(4).Execute(context.Background()))
}

func TestExecutor_Execute_RunsEveryTask(t *testing.T) {
	t.Parallel()

	var counter atomic.Int32

	tasks := make([]parallel.Task, 5)
	for i := range tasks {
		tasks[i] = func(_ context.Context) error {
			counter.Add(1)

			return nil
		}
	}

	require.NoError(t, parallel.NewExecutor(0).Execute(context.Background(), tasks...))
	assert.Equal(t, int32(5), counter.Load())
}

func TestExecutor_Execute_FirstErrorCancelsRemaining(t *testing.T) {
	t.Parallel()

	executor := parallel.NewExecutor(4)

	err := executor.Execute(
		context.Background(),
		func(_ context.Context) error { return errStackFailed },
		func(ctx context.Context) error {
			<-ctx.Done()

			return fmt.Errorf("canceled: %w", ctx.Err())
		},
	)

	require.ErrorIs(t, err, errStackFailed)
}

func TestExecutor_Execute_LimitsConcurrency(t *testing.T) {
	t.Parallel()

	executor := parallel.NewExecutor(2)

	var (
		running atomic.Int32
		peak    atomic.Int32
	)

	tasks := make([]parallel.Task, 6)
	for i := range tasks {
		tasks[i] = func(_ context.Context) error {
			current := running.Add(1)
			defer running.Add(-1)

			for {
				observed := peak.Load()
				if current <= observed || peak.CompareAndSwap(observed, current) {
					break
				}
			}

			time.Sleep(10 * time.Millisecond)

			return nil
		}
	}

	require.NoError(t, executor.Execute(context.Background(), tasks...))
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestExecutor_ExecuteAll_CollectsEveryError(t *testing.T) {
	t.Parallel()

	var completed atomic.Int32

	err := parallel.NewExecutor(4).ExecuteAll(
		context.Background(),
		func(_ context.Context) error { return errStackFailed },
		func(_ context.Context) error {
			completed.Add(1)

			return nil
		},
		func(_ context.Context) error { return errStackMissing },
	)

	require.ErrorIs(t, err, errStackFailed)
	require.ErrorIs(t, err, errStackMissing)
	assert.Equal(t, int32(1), completed.Load())
}

func TestExecutor_ExecuteAll_NoErrors(t *testing.T) {
	t.Parallel()

	err := parallel.NewExecutor(1).ExecuteAll(
		context.Background(),
		func(_ context.Context) error { return nil },
	)

	require.NoError(t, err)
}

func TestMap_PreservesOrder(t *testing.T) {
	t.Parallel()

	names := []string{"Workers", "GPU", "Apps"}

	out, err := parallel.Map(
		context.Background(),
		parallel.NewExecutor(3),
		names,
		func(_ context.Context, name string) (string, error) {
			return "demo-NodeGroup-" + name, nil
		},
	)

	require.NoError(t, err)
	assert.Equal(t, []string{"demo-NodeGroup-Workers", "demo-NodeGroup-GPU", "demo-NodeGroup-Apps"}, out)
}

func TestMap_ReturnsError(t *testing.T) {
	t.Parallel()

	_, err := parallel.Map(
		context.Background(),
		parallel.NewExecutor(2),
		[]int{1, 2},
		func(_ context.Context, item int) (int, error) {
			if item == 2 {
				return 0, errStackMissing
			}

			return item, nil
		},
	)

	require.ErrorIs(t, err, errStackMissing)
}

func TestSyncWriter_ThreadSafe(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	writer := parallel.NewSyncWriter(&buf)

	var wg sync.WaitGroup

	for range 20 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, _ = writer.Write([]byte("x"))
		}()
	}

	wg.Wait()

	assert.Equal(t, 20, buf.Len())
}

func TestResults_ThreadSafe(t *testing.T) {
	t.Parallel()

	results := parallel.NewResults[int]()

	var wg sync.WaitGroup

	for i := range 10 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			results.Add(i)

			if i%2 == 0 {
				results.AddError(errStackFailed)
			}
		}()
	}

	wg.Wait()

	assert.Len(t, results.Values(), 10)
	assert.Len(t, results.Errors(), 5)
}
