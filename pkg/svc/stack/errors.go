package stack

import "errors"

var (
	// ErrStackNotFound is returned when CloudFormation has no stack with the requested name or id.
	ErrStackNotFound = errors.New("stack not found")

	// ErrOutputNotFound is returned when a stack has no output with the requested key.
	ErrOutputNotFound = errors.New("stack output not found")

	// ErrResourceNotFound is returned when a stack has no resource with the requested logical id.
	ErrResourceNotFound = errors.New("stack resource not found")

	// ErrStackFailed is returned when a stack settled in a status other than a successful one.
	ErrStackFailed = errors.New("stack did not complete successfully")
)
