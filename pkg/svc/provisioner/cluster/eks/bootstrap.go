package eksprovisioner

import (
	"context"

	"github.com/devantler-tech/ekscli/pkg/svc/state"
)

// Bootstrap provisions the EKS service role of the cluster and resets its layered
// configuration to the defaults of region with overrides applied on top.
func (p *Provisioner) Bootstrap(ctx context.Context, name, region string, overrides state.BootstrapLayer) error {
	logger := p.clusterLogger(name).WithField("region", region)
	logger.Info("bootstrapping cluster configuration")

	roleARN, err := p.roles.EnsureClusterRole(ctx, name)
	if err != nil {
		return err
	}

	err = p.store.Bootstrap(ctx, name, state.NewBootstrapLayer(region))
	if err != nil {
		return err
	}

	doc := bootstrapOverrides(overrides)
	if len(doc) > 0 {
		err = p.store.WriteLayer(ctx, name, state.LayerConfig, doc)
		if err != nil {
			return err
		}
	}

	err = p.store.Write(ctx, name, state.StateLayer{EKSRoleARN: roleARN})
	if err != nil {
		return err
	}

	logger.WithField("role_arn", roleARN).Info("cluster configuration bootstrapped")

	return nil
}
