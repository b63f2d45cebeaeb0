package eksprovisioner

import (
	"context"

	"github.com/devantler-tech/ekscli/pkg/svc/state"
)

// UpdateKubeconfig rewrites the kubeconfig entry of the cluster from the live control
// plane and records its ARN.
func (p *Provisioner) UpdateKubeconfig(ctx context.Context, name string) error {
	cfg, err := p.store.Cluster(ctx, name)
	if err != nil {
		return err
	}

	info, err := p.controlPlane.Describe(ctx, name)
	if err != nil {
		return err
	}

	if cfg.ClusterARN != info.ARN {
		err = p.store.Write(ctx, name, state.StateLayer{ClusterARN: info.ARN})
		if err != nil {
			return err
		}
	}

	p.clusterLogger(name).WithField("kubeconfig", p.kubeconfig).Info("updating kubeconfig")

	return p.writeKubeconfig(cfg.Region, info)
}
