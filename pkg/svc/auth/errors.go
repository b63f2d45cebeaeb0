package auth

import "errors"

// ErrNoWorkerRole is returned when a settled worker stack does not publish its node instance role.
var ErrNoWorkerRole = errors.New("nodegroup stack has no worker role")
