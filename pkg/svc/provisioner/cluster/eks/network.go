package eksprovisioner

import (
	"context"
	"fmt"
	"slices"

	awsprovider "github.com/devantler-tech/ekscli/pkg/svc/provider/aws"
	"github.com/devantler-tech/ekscli/pkg/svc/state"
)

// SecurityGroup creates the cluster network security group in the cluster VPC and
// records its id. Empty openPorts selects the open ports of the configuration.
func (p *Provisioner) SecurityGroup(ctx context.Context, name string, openPorts []int) (string, error) {
	cfg, err := p.store.Cluster(ctx, name)
	if err != nil {
		return "", err
	}

	if cfg.VpcID == "" {
		return "", fmt.Errorf("%w: %s has no vpc", ErrNetworkNotCreated, name)
	}

	if len(openPorts) == 0 {
		openPorts = cfg.OpenPorts
	}

	return p.ensureSecurityGroup(ctx, name, cfg.VpcID, openPorts)
}

func (p *Provisioner) ensureSecurityGroup(ctx context.Context, name, vpcID string, openPorts []int) (string, error) {
	groupID, err := p.network.EnsureClusterSecurityGroup(ctx, name, vpcID, openPorts)
	if err != nil {
		return "", err
	}

	err = p.store.Write(ctx, name, state.StateLayer{NetworkSGID: groupID})
	if err != nil {
		return "", err
	}

	p.clusterLogger(name).WithField("network_sg_id", groupID).Info("cluster security group ready")

	return groupID, nil
}

// PeerVPC peers the cluster VPC with another VPC, routes between them and lets the
// peer security group accept traffic from the cluster nodes. The peering connection
// id is recorded so teardown can remove it.
func (p *Provisioner) PeerVPC(ctx context.Context, name, peerVPCID, peerSGID string) (string, error) {
	cfg, err := p.store.Cluster(ctx, name)
	if err != nil {
		return "", err
	}

	if cfg.VpcID == "" || cfg.NodesSGID == "" {
		return "", fmt.Errorf("%w: %s has no vpc or node security group", ErrNetworkNotCreated, name)
	}

	peeringID, err := p.network.PeerVPCs(ctx, awsprovider.PeeringRequest{
		Cluster:      name,
		ClusterVPCID: cfg.VpcID,
		NodesSGID:    cfg.NodesSGID,
		PeerVPCID:    peerVPCID,
		PeerSGID:     peerSGID,
	})
	if err != nil {
		return "", err
	}

	peerings := cfg.PeeringConnectionIDs
	if !slices.Contains(peerings, peeringID) {
		peerings = append(slices.Clone(peerings), peeringID)
	}

	err = p.store.Write(ctx, name, state.StateLayer{PeeringConnectionIDs: peerings})
	if err != nil {
		return "", err
	}

	return peeringID, nil
}
