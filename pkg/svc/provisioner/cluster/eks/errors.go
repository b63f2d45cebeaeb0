package eksprovisioner

import "errors"

// Static errors for the EKS provisioner package.
var (
	// ErrTeardownFailed is returned when one or more teardown steps failed.
	ErrTeardownFailed = errors.New("EKS cluster teardown failed")

	// ErrEKSCreateFailed is returned when the cluster network stack does not settle successfully.
	ErrEKSCreateFailed = errors.New("EKS cluster creation failed")

	// ErrNetworkNotCreated is returned when an operation needs the cluster VPC before it exists.
	ErrNetworkNotCreated = errors.New("cluster network not created: run eks create-cluster first")

	// ErrServiceNotExposed is returned when a service has no load balancer hostname.
	ErrServiceNotExposed = errors.New("service has no load balancer hostname")

	// ErrInvalidCIDR is returned when the cluster CIDR cannot hold three subnets.
	ErrInvalidCIDR = errors.New("invalid cluster cidr")
)
