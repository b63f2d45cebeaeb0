package k8s

import "errors"

var (
	// ErrKubeconfigPathEmpty is returned when kubeconfig path is empty.
	ErrKubeconfigPathEmpty = errors.New("kubeconfig path is empty")

	// ErrEndpointEmpty is returned when a cluster has no API endpoint yet.
	ErrEndpointEmpty = errors.New("cluster endpoint is empty")
)
