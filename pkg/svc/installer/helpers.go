package installer

import (
	"context"
	"fmt"
	"time"
)

// DefaultInstallTimeout is the default timeout (5 minutes) for installing a set of add-ons.
const DefaultInstallTimeout = 5 * time.Minute

// InstallAll runs the installers in order under a shared timeout and stops at the first failure.
// A non-positive timeout selects DefaultInstallTimeout.
func InstallAll(ctx context.Context, timeout time.Duration, installers ...Installer) error {
	if timeout <= 0 {
		timeout = DefaultInstallTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for i, inst := range installers {
		err := inst.Install(ctx)
		if err != nil {
			return fmt.Errorf("failed to install add-on %d of %d: %w", i+1, len(installers), err)
		}
	}

	return nil
}
