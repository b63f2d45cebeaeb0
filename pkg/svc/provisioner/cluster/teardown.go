package clusterprovisioner

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidTeardownPolicy is returned when a teardown policy name is not recognized.
var ErrInvalidTeardownPolicy = errors.New("invalid teardown policy")

// TeardownPolicy decides what a multi-step teardown does when a step fails.
type TeardownPolicy string

const (
	// TeardownContinue runs every remaining step and reports all failures at the end.
	TeardownContinue TeardownPolicy = "continue"
	// TeardownStop aborts at the first failing step.
	TeardownStop TeardownPolicy = "stop"
)

// ValidTeardownPolicies returns the accepted policy names.
func ValidTeardownPolicies() []TeardownPolicy {
	return []TeardownPolicy{TeardownContinue, TeardownStop}
}

// ParseTeardownPolicy parses a policy name. An empty name selects TeardownContinue.
func ParseTeardownPolicy(name string) (TeardownPolicy, error) {
	switch TeardownPolicy(strings.ToLower(strings.TrimSpace(name))) {
	case "", TeardownContinue:
		return TeardownContinue, nil
	case TeardownStop:
		return TeardownStop, nil
	default:
		return "", fmt.Errorf("%w: %q (valid: %s, %s)", ErrInvalidTeardownPolicy, name, TeardownContinue, TeardownStop)
	}
}

// String implements fmt.Stringer.
func (p TeardownPolicy) String() string {
	return string(p)
}

// Set implements pflag.Value.
func (p *TeardownPolicy) Set(value string) error {
	parsed, err := ParseTeardownPolicy(value)
	if err != nil {
		return err
	}

	*p = parsed

	return nil
}

// Type implements pflag.Value.
func (p *TeardownPolicy) Type() string {
	return "TeardownPolicy"
}
