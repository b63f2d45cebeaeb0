package readiness

import (
	"context"
	"errors"
	"fmt"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
)

// DefaultPollInterval is the interval between readiness checks.
const DefaultPollInterval = 2 * time.Second

// PollForReadiness polls condition every DefaultPollInterval until it returns true.
// A zero deadline waits until ctx is cancelled.
func PollForReadiness(ctx context.Context, deadline time.Duration, condition wait.ConditionWithContextFunc) error {
	return PollEvery(ctx, DefaultPollInterval, deadline, condition)
}

// PollEvery polls condition on interval until it returns true, returns an error, the
// deadline passes or ctx is cancelled.
func PollEvery(
	ctx context.Context,
	interval time.Duration,
	deadline time.Duration,
	condition wait.ConditionWithContextFunc,
) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	var err error
	if deadline > 0 {
		err = wait.PollUntilContextTimeout(ctx, interval, deadline, true, condition)
	} else {
		err = wait.PollUntilContextCancel(ctx, interval, true, condition)
	}

	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return fmt.Errorf("failed to poll for readiness: %w", ErrTimeoutExceeded)
	}

	return fmt.Errorf("failed to poll for readiness: %w", err)
}
