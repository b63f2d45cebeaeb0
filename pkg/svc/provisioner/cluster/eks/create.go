package eksprovisioner

import (
	"context"
	"fmt"
	"strings"

	"github.com/devantler-tech/ekscli/pkg/k8s"
	"github.com/devantler-tech/ekscli/pkg/k8s/readiness"
	"github.com/devantler-tech/ekscli/pkg/svc/installer"
	awsprovider "github.com/devantler-tech/ekscli/pkg/svc/provider/aws"
	"github.com/devantler-tech/ekscli/pkg/svc/stack"
	"github.com/devantler-tech/ekscli/pkg/svc/state"
	"github.com/sirupsen/logrus"
)

// Create provisions the network stack and control plane of a bootstrapped cluster,
// refreshes its kubeconfig entry and runs the optional post-create steps selected by
// CreateOptions. Every step adopts resources left over from a previous partial run.
func (p *Provisioner) Create(ctx context.Context, name string) error {
	logger := p.clusterLogger(name)

	cfg, err := p.applyOverrides(ctx, name)
	if err != nil {
		return err
	}

	network, err := p.createNetwork(ctx, cfg)
	if err != nil {
		return err
	}

	roleARN := cfg.EKSRoleARN
	if roleARN == "" {
		roleARN, err = p.roles.EnsureClusterRole(ctx, name)
		if err != nil {
			return err
		}

		err = p.store.Write(ctx, name, state.StateLayer{EKSRoleARN: roleARN})
		if err != nil {
			return err
		}
	}

	_, err = p.controlPlane.Create(ctx, awsprovider.ClusterSpec{
		Name:              name,
		RoleARN:           roleARN,
		KubernetesVersion: cfg.KubernetesVersion,
		SubnetIDs:         network.Subnets,
		SecurityGroupIDs:  []string{network.ControlPlaneSGID},
		Tags:              map[string]string{stack.TagCluster: name},
	})
	if err != nil {
		return err
	}

	info, err := p.controlPlane.AwaitActive(ctx, name)
	if err != nil {
		return err
	}

	err = p.store.Write(ctx, name, state.StateLayer{ClusterARN: info.ARN})
	if err != nil {
		return err
	}

	err = p.writeKubeconfig(cfg.Region, info)
	if err != nil {
		return err
	}

	err = p.postCreate(ctx, name, network.VpcID, cfg)
	if err != nil {
		return err
	}

	logger.WithField("cluster_arn", info.ARN).Info("cluster created")

	return nil
}

func (p *Provisioner) applyOverrides(ctx context.Context, name string) (*state.ClusterConfig, error) {
	doc := bootstrapOverrides(p.create.Overrides)
	if len(doc) > 0 {
		err := p.store.WriteLayer(ctx, name, state.LayerConfig, doc)
		if err != nil {
			return nil, err
		}
	}

	return p.store.Cluster(ctx, name)
}

// createNetwork creates or adopts the network stack, waits for it to settle and
// records its outputs in the state layer.
func (p *Provisioner) createNetwork(ctx context.Context, cfg *state.ClusterConfig) (*state.StateLayer, error) {
	input, err := ClusterStackInput(cfg)
	if err != nil {
		return nil, err
	}

	handle, err := stack.Create(ctx, p.stacks, p.logger, input)
	if err != nil {
		return nil, err
	}

	err = p.waiter.AwaitAll(ctx, handle)
	if err != nil {
		return nil, err
	}

	err = handle.Succeeded(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEKSCreateFailed, err)
	}

	outputs := map[string]string{}

	for _, key := range []string{
		stack.OutputSecurityGroups,
		stack.OutputVpcID,
		stack.OutputSubnetIDs,
		stack.OutputNodesSecurityGroup,
	} {
		value, err := handle.Output(ctx, key)
		if err != nil {
			return nil, err
		}

		outputs[key] = value
	}

	network := state.StateLayer{
		VpcID:            outputs[stack.OutputVpcID],
		Subnets:          strings.Split(outputs[stack.OutputSubnetIDs], ","),
		ControlPlaneSGID: outputs[stack.OutputSecurityGroups],
		NodesSGID:        outputs[stack.OutputNodesSecurityGroup],
	}

	p.logger.WithFields(logrus.Fields{
		"stack":               handle.Name(),
		"vpc_id":              network.VpcID,
		"subnets":             network.Subnets,
		"control_plane_sg_id": network.ControlPlaneSGID,
		"nodes_sg_id":         network.NodesSGID,
	}).Info("cluster network ready")

	err = p.store.Write(ctx, cfg.ClusterName, network)
	if err != nil {
		return nil, err
	}

	return &network, nil
}

func (p *Provisioner) writeKubeconfig(region string, info *awsprovider.ClusterInfo) error {
	return k8s.WriteEKSKubeconfig(p.kubeconfig, k8s.EKSEntry{
		ClusterName:              info.Name,
		ClusterARN:               info.ARN,
		Endpoint:                 info.Endpoint,
		CertificateAuthorityData: info.CertificateAuthorityData,
		Region:                   region,
		Profile:                  p.profile,
	}, p.logger)
}

func (p *Provisioner) postCreate(ctx context.Context, name, vpcID string, cfg *state.ClusterConfig) error {
	opts := p.create

	if opts.Wait || !opts.AddOns.Empty() {
		clientset, err := p.clients(ctx, name)
		if err != nil {
			return err
		}

		if opts.Wait {
			p.clusterLogger(name).Info("waiting for cluster to respond")

			err = readiness.WaitForServices(ctx, clientset, opts.Readiness, p.clusterLogger(name))
			if err != nil {
				return fmt.Errorf("wait for cluster %s: %w", name, err)
			}

			p.clusterLogger(name).Info("cluster is up and running")
		}

		addOns := installer.NewFactory(clientset, p.clusterLogger(name)).DayOne(opts.AddOns)

		err = installer.InstallAll(ctx, 0, addOns...)
		if err != nil {
			return err
		}
	}

	if opts.NetworkSG {
		_, err := p.ensureSecurityGroup(ctx, name, vpcID, cfg.OpenPorts)
		if err != nil {
			return err
		}
	}

	return nil
}
