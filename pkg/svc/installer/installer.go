package installer

import "context"

// Installer defines methods for installing and uninstalling cluster add-ons.
type Installer interface {
	// Install installs the add-on. Installing twice converges to the same result.
	Install(ctx context.Context) error

	// Uninstall removes the add-on.
	Uninstall(ctx context.Context) error
}
