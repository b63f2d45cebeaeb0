package provider

import (
	"context"
	"fmt"
)

// NodeInfo contains information about a worker node backing a cluster.
type NodeInfo struct {
	// Name is the unique identifier of the node (instance id).
	Name string

	// ClusterName is the name of the cluster this node belongs to.
	ClusterName string

	// NodeGroup is the nodegroup the node was launched for.
	NodeGroup string

	// PrivateDNSName is the node name the kubelet registers with.
	PrivateDNSName string

	// InstanceType is the machine type of the node.
	InstanceType string

	// State is the current state of the node (pending, running, stopped, etc.)
	State string
}

// Provider defines the interface for infrastructure providers.
// Providers report what exists on the cloud side independent of the local configuration.
type Provider interface {
	// ListNodes returns all nodes for a specific cluster, optionally restricted to one nodegroup.
	ListNodes(ctx context.Context, clusterName, nodeGroup string) ([]NodeInfo, error)

	// ListAllClusters returns the names of all clusters managed by this provider.
	ListAllClusters(ctx context.Context) ([]string, error)
}

// NodesExist returns true if nodes exist for the given cluster name.
func NodesExist(ctx context.Context, prov Provider, clusterName string) (bool, error) {
	if prov == nil {
		return false, ErrProviderUnavailable
	}

	nodes, err := prov.ListNodes(ctx, clusterName, "")
	if err != nil {
		return false, fmt.Errorf("failed to list nodes: %w", err)
	}

	return len(nodes) > 0, nil
}

// ClusterExists returns true if the provider reports a cluster with the given name.
func ClusterExists(ctx context.Context, prov Provider, clusterName string) (bool, error) {
	if prov == nil {
		return false, ErrProviderUnavailable
	}

	clusters, err := prov.ListAllClusters(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list clusters: %w", err)
	}

	for _, name := range clusters {
		if name == clusterName {
			return true, nil
		}
	}

	return false, nil
}
