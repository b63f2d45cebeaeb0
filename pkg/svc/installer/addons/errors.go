package addons

import "errors"

var (
	// ErrInvalidWarmIPTarget is returned when the CNI warm IP target is not positive.
	ErrInvalidWarmIPTarget = errors.New("warm ip target must be greater than zero")
	// ErrContainerNotFound is returned when a workload lacks the container an add-on patches.
	ErrContainerNotFound = errors.New("container not found")
	// ErrMissingRegistryCredentials is returned when registry username or password is empty.
	ErrMissingRegistryCredentials = errors.New("registry username and password are required")
)
