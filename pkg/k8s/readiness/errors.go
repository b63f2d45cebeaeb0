package readiness

import "errors"

// ErrTimeoutExceeded is returned when a deadline passes before the condition holds.
var ErrTimeoutExceeded = errors.New("timeout exceeded")
