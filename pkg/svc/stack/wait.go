package stack

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/devantler-tech/ekscli/pkg/cli/parallel"
	"github.com/sirupsen/logrus"
	"k8s.io/apimachinery/pkg/util/wait"
)

// DefaultPollInterval is the interval between status checks while waiting.
const DefaultPollInterval = 10 * time.Second

// Waiter polls batches of stacks until they settle.
type Waiter struct {
	interval time.Duration
	executor *parallel.Executor
	logger   logrus.FieldLogger
}

// NewWaiter creates a Waiter. A non-positive interval selects DefaultPollInterval.
func NewWaiter(interval time.Duration, logger logrus.FieldLogger) *Waiter {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Waiter{
		interval: interval,
		executor: parallel.NewExecutor(0),
		logger:   logger,
	}
}

// AwaitAll blocks until no handle reports an in-progress creation status. Each tick
// logs how many stacks are still pending. Cancelling ctx aborts the wait.
func (w *Waiter) AwaitAll(ctx context.Context, handles ...*Handle) error {
	if len(handles) == 0 {
		return nil
	}

	err := wait.PollUntilContextCancel(ctx, w.interval, true, func(ctx context.Context) (bool, error) {
		pending, err := parallel.Map(ctx, w.executor, handles, func(ctx context.Context, handle *Handle) (bool, error) {
			return handle.Pending(ctx)
		})
		if err != nil {
			return false, err
		}

		remaining := 0

		for _, isPending := range pending {
			if isPending {
				remaining++
			}
		}

		if remaining == 0 {
			return true, nil
		}

		w.logger.WithField("pending", remaining).
			Infof("%d stacks out of %d are still being created", remaining, len(handles))

		return false, nil
	})
	if err != nil {
		return fmt.Errorf("await stacks: %w", err)
	}

	return nil
}

// Deletion is an issued stack deletion that may be awaited.
type Deletion struct {
	handle *Handle
}

// Handle returns the handle of the stack being deleted.
func (d *Deletion) Handle() *Handle {
	return d.handle
}

// Wait polls until the stack is gone. A DELETE_FAILED status aborts with ErrStackFailed.
func (d *Deletion) Wait(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	err := wait.PollUntilContextCancel(ctx, interval, true, func(ctx context.Context) (bool, error) {
		status, err := d.handle.Status(ctx)
		if errors.Is(err, ErrStackNotFound) {
			return true, nil
		}

		if err != nil {
			return false, err
		}

		switch status {
		case types.StackStatusDeleteComplete:
			return true, nil
		case types.StackStatusDeleteFailed:
			return false, fmt.Errorf("%w: %s is %s", ErrStackFailed, d.handle.Name(), status)
		default:
			d.handle.logger.WithField("status", status).Debug("waiting for stack deletion")

			return false, nil
		}
	})
	if err != nil {
		return fmt.Errorf("await deletion of %s: %w", d.handle.Name(), err)
	}

	return nil
}
