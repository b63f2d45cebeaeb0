package configmanager

import "errors"

// Static errors for settings validation.
var (
	// ErrUnknownBackend is returned when state.backend names no known backend.
	ErrUnknownBackend = errors.New("unknown state backend")

	// ErrMissingBucket is returned when an object store backend has no bucket.
	ErrMissingBucket = errors.New("state bucket is required for object store backends")

	// ErrMissingEndpoint is returned when the minio backend has no endpoint.
	ErrMissingEndpoint = errors.New("state endpoint is required for the minio backend")

	// ErrInvalidPollInterval is returned when poll_interval is not positive.
	ErrInvalidPollInterval = errors.New("poll interval must be positive")

	// ErrInvalidReadinessSuccesses is returned when readiness_successes is below one.
	ErrInvalidReadinessSuccesses = errors.New("readiness successes must be at least 1")

	// ErrInvalidLogFormat is returned when log_format is neither text nor json.
	ErrInvalidLogFormat = errors.New("invalid log format")
)
