package nodegroup

import "errors"

var (
	// ErrAMINotFound is returned when no AMI is known for a Kubernetes version and region.
	ErrAMINotFound = errors.New("no AMI found")

	// ErrStackNotFound is returned when a nodegroup in the configuration has no live stack.
	ErrStackNotFound = errors.New("could not find stack")

	// ErrInvalidBounds is returned when a scale request has min greater than max.
	ErrInvalidBounds = errors.New("invalid nodegroup bounds")

	// ErrStackFailed is returned when a nodegroup stack settles in a failed state.
	ErrStackFailed = errors.New("nodegroup stack failed")
)
