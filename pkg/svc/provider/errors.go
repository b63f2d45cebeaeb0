package provider

import "errors"

// ErrProviderUnavailable is returned when the provider is not available.
var ErrProviderUnavailable = errors.New("provider is not available")
