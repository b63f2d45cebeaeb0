package state

import "errors"

var (
	// ErrLayerNotFound is returned by a Backend when a layer has never been written.
	ErrLayerNotFound = errors.New("configuration layer not found")

	// ErrNotBootstrapped is returned when a cluster is read before it has been bootstrapped.
	ErrNotBootstrapped = errors.New("cluster configuration not bootstrapped")

	// ErrInvalidClusterName is returned when a cluster name contains path traversal characters.
	ErrInvalidClusterName = errors.New(
		"invalid cluster name: must be non-empty and must not contain path separators or '..'",
	)

	// ErrInvalidNodegroupName is returned when a nodegroup update has no group name.
	ErrInvalidNodegroupName = errors.New("bad nodegroup name")

	// ErrGroupNotFound is returned when a nodegroup is not defined in the groups layer.
	ErrGroupNotFound = errors.New("nodegroup not found")

	// ErrSubnetIndexOutOfRange is returned when a nodegroup references a subnet the cluster does not have.
	ErrSubnetIndexOutOfRange = errors.New("subnet index out of range")

	// ErrInvalidLayer is returned when a layer document does not match its schema.
	ErrInvalidLayer = errors.New("invalid configuration layer")

	// ErrUnknownLayer is returned for a layer name other than config, state or groups.
	ErrUnknownLayer = errors.New("unknown configuration layer")
)
