package clustererr

import "errors"

var (
	// ErrClusterNotFound is returned when a cluster operation is attempted on a non-existent cluster.
	ErrClusterNotFound = errors.New("cluster not found")

	// ErrProviderNotSet is returned when an operation needs an infrastructure provider and none is set.
	ErrProviderNotSet = errors.New("infrastructure provider not set")
)
