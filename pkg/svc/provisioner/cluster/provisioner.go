package clusterprovisioner

import (
	"context"

	"github.com/devantler-tech/ekscli/pkg/svc/provider"
)

// ClusterProvisioner defines methods for managing Kubernetes clusters.
// Provisioners handle cluster lifecycle operations while delegating infrastructure
// discovery to a Provider.
type ClusterProvisioner interface {
	// Create creates the named Kubernetes cluster from its bootstrapped configuration.
	Create(ctx context.Context, name string) error

	// Delete tears down the named Kubernetes cluster and its persisted configuration.
	Delete(ctx context.Context, name string) error

	// List lists all Kubernetes clusters.
	List(ctx context.Context) ([]string, error)

	// Exists checks if the named Kubernetes cluster exists.
	Exists(ctx context.Context, name string) (bool, error)
}

// ProviderAware is an optional interface for provisioners that can use a provider
// for infrastructure discovery.
type ProviderAware interface {
	// SetProvider sets the infrastructure provider used to discover clusters.
	SetProvider(p provider.Provider)
}
