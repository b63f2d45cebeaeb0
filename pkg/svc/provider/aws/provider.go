package aws

import (
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/devantler-tech/ekscli/pkg/svc/provider"
)

// Instance tags set on worker nodes.
const (
	ClusterOwnershipTagPrefix = "kubernetes.io/cluster/"
	NodegroupTag              = "eks-nodegroup"
)

// Provider implements provider.Provider for EKS clusters and their EC2 worker nodes.
type Provider struct {
	eks EKSAPI
	ec2 EC2API
}

var _ provider.Provider = (*Provider)(nil)

// NewProvider creates a new AWS provider.
func NewProvider(eksClient EKSAPI, ec2Client EC2API) *Provider {
	return &Provider{eks: eksClient, ec2: ec2Client}
}

// ListAllClusters returns the names of all EKS clusters in the region.
func (p *Provider) ListAllClusters(ctx context.Context) ([]string, error) {
	if p.eks == nil {
		return nil, provider.ErrProviderUnavailable
	}

	return (&ControlPlane{client: p.eks}).List(ctx)
}

// ListNodes returns the non-terminated instances owned by the cluster, optionally
// restricted to one nodegroup.
func (p *Provider) ListNodes(ctx context.Context, clusterName, nodeGroup string) ([]provider.NodeInfo, error) {
	if p.ec2 == nil {
		return nil, provider.ErrProviderUnavailable
	}

	filters := []ec2types.Filter{
		{Name: sdkaws.String("tag:" + ClusterOwnershipTagPrefix + clusterName), Values: []string{"owned"}},
		{
			Name:   sdkaws.String("instance-state-name"),
			Values: []string{"pending", "running", "stopping", "stopped"},
		},
	}

	if nodeGroup != "" {
		filters = append(filters, ec2types.Filter{
			Name:   sdkaws.String("tag:" + NodegroupTag),
			Values: []string{nodeGroup},
		})
	}

	var (
		nodes []provider.NodeInfo
		token *string
	)

	for {
		out, err := p.ec2.DescribeInstances(ctx, &ec2.DescribeInstancesInput{Filters: filters, NextToken: token})
		if err != nil {
			return nil, fmt.Errorf("failed to list instances: %w", err)
		}

		for _, reservation := range out.Reservations {
			for _, instance := range reservation.Instances {
				nodes = append(nodes, nodeInfo(clusterName, instance))
			}
		}

		if sdkaws.ToString(out.NextToken) == "" {
			return nodes, nil
		}

		token = out.NextToken
	}
}

func nodeInfo(clusterName string, instance ec2types.Instance) provider.NodeInfo {
	info := provider.NodeInfo{
		Name:           sdkaws.ToString(instance.InstanceId),
		ClusterName:    clusterName,
		PrivateDNSName: sdkaws.ToString(instance.PrivateDnsName),
		InstanceType:   string(instance.InstanceType),
	}

	if instance.State != nil {
		info.State = string(instance.State.Name)
	}

	for _, tag := range instance.Tags {
		if sdkaws.ToString(tag.Key) == NodegroupTag {
			info.NodeGroup = sdkaws.ToString(tag.Value)
		}
	}

	return info
}
