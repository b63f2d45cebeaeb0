package di

import (
	"fmt"

	"github.com/devantler-tech/ekscli/pkg/io/configmanager"
	"github.com/devantler-tech/ekscli/pkg/utils/timer"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

// Dependency resolvers.

// ResolveTimer retrieves the timer dependency from the injector with consistent error handling.
func ResolveTimer(injector Injector) (timer.Timer, error) {
	tmr, err := do.Invoke[timer.Timer](injector)
	if err != nil {
		return nil, fmt.Errorf("resolve timer dependency: %w", err)
	}

	return tmr, nil
}

// ResolveSettings retrieves the loaded settings from the injector.
func ResolveSettings(injector Injector) (*configmanager.Settings, error) {
	settings, err := do.Invoke[*configmanager.Settings](injector)
	if err != nil {
		return nil, fmt.Errorf("resolve settings dependency: %w", err)
	}

	return settings, nil
}

// ResolveServicesFactory retrieves the services factory from the injector.
func ResolveServicesFactory(injector Injector) (ServicesFactory, error) {
	factory, err := do.Invoke[ServicesFactory](injector)
	if err != nil {
		return nil, fmt.Errorf("resolve services factory dependency: %w", err)
	}

	return factory, nil
}

// Handler decorators.

// WithTimer decorates a handler to automatically resolve the timer dependency.
func WithTimer(
	handler func(cmd *cobra.Command, injector Injector, tmr timer.Timer) error,
) func(cmd *cobra.Command, injector Injector) error {
	return func(cmd *cobra.Command, injector Injector) error {
		tmr, err := ResolveTimer(injector)
		if err != nil {
			return err
		}

		return handler(cmd, injector, tmr)
	}
}
