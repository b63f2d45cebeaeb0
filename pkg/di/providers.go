package di

import (
	"github.com/devantler-tech/ekscli/pkg/io/configmanager"
	"github.com/devantler-tech/ekscli/pkg/utils/timer"
	"github.com/samber/do/v2"
)

// Dependency providers.

// NewRuntime constructs the shared runtime container used by the root command.
// It registers the timer, the settings loaded through manager and the AWS-backed
// services factory.
func NewRuntime(manager configmanager.ConfigManager[configmanager.Settings]) *Runtime {
	return New(
		ProvideTimer,
		ProvideSettings(manager),
		provideServicesFactory,
	)
}

// ProvideTimer registers the timer dependency with the injector.
func ProvideTimer(i Injector) error {
	do.Provide(i, func(Injector) (timer.Timer, error) {
		return timer.New(), nil
	})

	return nil
}

// ProvideSettings registers the settings loaded through manager. Loading is deferred
// until a handler resolves them, after flags are parsed.
func ProvideSettings(manager configmanager.ConfigManager[configmanager.Settings]) Module {
	return func(i Injector) error {
		do.Provide(i, func(Injector) (*configmanager.Settings, error) {
			return manager.Load(configmanager.LoadOptions{})
		})

		return nil
	}
}

// ProvideServicesFactory registers a fixed services factory, replacing the AWS-backed default.
func ProvideServicesFactory(factory ServicesFactory) Module {
	return func(i Injector) error {
		do.Override(i, func(Injector) (ServicesFactory, error) {
			return factory, nil
		})

		return nil
	}
}

// provideServicesFactory registers the AWS-backed services factory.
func provideServicesFactory(i Injector) error {
	do.Provide(i, func(injector Injector) (ServicesFactory, error) {
		settings, err := ResolveSettings(injector)
		if err != nil {
			return nil, err
		}

		return NewServicesFactory(settings), nil
	})

	return nil
}
