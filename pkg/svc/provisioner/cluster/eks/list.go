package eksprovisioner

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/devantler-tech/ekscli/pkg/svc/provider"
	"github.com/devantler-tech/ekscli/pkg/svc/provisioner/cluster/clustererr"
	"github.com/devantler-tech/ekscli/pkg/svc/stack"
)

// ClusterSummary is a cluster discovered from its network stack.
type ClusterSummary struct {
	Name        string
	StackStatus types.StackStatus
	// ControlPlane reports whether EKS knows a control plane of that name.
	ControlPlane bool
}

// Clusters returns the clusters whose network stack exists, sorted by name.
func (p *Provisioner) Clusters(ctx context.Context) ([]ClusterSummary, error) {
	handles, err := stack.ListTagged(ctx, p.stacks, p.logger, stack.TagCluster, "")
	if err != nil {
		return nil, err
	}

	controlPlanes, err := p.controlPlaneNames(ctx)
	if err != nil {
		return nil, err
	}

	var summaries []ClusterSummary

	for _, handle := range handles {
		suffix := "-" + stack.KindCluster
		if !strings.HasSuffix(handle.Name(), suffix) {
			continue
		}

		name, ok, err := handle.Tag(ctx, stack.TagCluster)
		if err != nil {
			return nil, err
		}

		if !ok || name+suffix != handle.Name() {
			continue
		}

		status, err := handle.Status(ctx)
		if err != nil {
			return nil, err
		}

		summaries = append(summaries, ClusterSummary{
			Name:         name,
			StackStatus:  status,
			ControlPlane: slices.Contains(controlPlanes, name),
		})
	}

	slices.SortFunc(summaries, func(a, b ClusterSummary) int {
		return strings.Compare(a.Name, b.Name)
	})

	return summaries, nil
}

// List returns the names of all clusters.
func (p *Provisioner) List(ctx context.Context) ([]string, error) {
	summaries, err := p.Clusters(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(summaries))
	for _, summary := range summaries {
		names = append(names, summary.Name)
	}

	return names, nil
}

// Exists reports whether the cluster has a network stack or a control plane.
func (p *Provisioner) Exists(ctx context.Context, name string) (bool, error) {
	_, err := stack.Find(ctx, p.stacks, p.logger, stack.ClusterStackName(name))
	if err == nil {
		return true, nil
	}

	if !errors.Is(err, stack.ErrStackNotFound) {
		return false, err
	}

	exists := false

	err = clustererr.RunProviderOp(ctx, p.provider, name, "look up",
		func(ctx context.Context, prov provider.Provider, clusterName string) error {
			var lookupErr error

			exists, lookupErr = provider.ClusterExists(ctx, prov, clusterName)

			return lookupErr
		})
	if errors.Is(err, clustererr.ErrProviderNotSet) {
		return false, nil
	}

	return exists, err
}

// controlPlaneNames lists EKS control planes through the provider. Without a provider
// no control plane is reported.
func (p *Provisioner) controlPlaneNames(ctx context.Context) ([]string, error) {
	var names []string

	err := clustererr.RunProviderOp(ctx, p.provider, "*", "list",
		func(ctx context.Context, prov provider.Provider, _ string) error {
			var listErr error

			names, listErr = prov.ListAllClusters(ctx)

			return listErr
		})
	if errors.Is(err, clustererr.ErrProviderNotSet) {
		return nil, nil
	}

	return names, err
}
