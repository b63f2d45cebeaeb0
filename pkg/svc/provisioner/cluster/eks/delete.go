package eksprovisioner

import (
	"context"
	"errors"
	"fmt"

	"github.com/devantler-tech/ekscli/pkg/k8s"
	"github.com/devantler-tech/ekscli/pkg/svc/nodegroup"
	clusterprovisioner "github.com/devantler-tech/ekscli/pkg/svc/provisioner/cluster"
	"github.com/devantler-tech/ekscli/pkg/svc/provisioner/cluster/clustererr"
	"github.com/devantler-tech/ekscli/pkg/svc/stack"
	"github.com/devantler-tech/ekscli/pkg/svc/state"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

type teardownStep struct {
	name string
	run  func(ctx context.Context, cfg *state.ClusterConfig) error
}

// Delete tears the cluster down in a fixed order: VPC peerings, load balancer services,
// nodegroups, the network security group, the control plane, the network stack, the
// persisted configuration and finally the kubeconfig entry. Under TeardownContinue every
// step runs and all failures are reported together; under TeardownStop the first failure
// ends the teardown.
func (p *Provisioner) Delete(ctx context.Context, name string) error {
	logger := p.clusterLogger(name)

	cfg, err := p.store.Cluster(ctx, name)
	if err != nil {
		if errors.Is(err, state.ErrNotBootstrapped) {
			return fmt.Errorf("%w: %s: %w", clustererr.ErrClusterNotFound, name, err)
		}

		return err
	}

	logger.WithField("teardown_policy", p.teardown).Info("deleting cluster")

	var errs []error

	for _, step := range p.teardownSteps() {
		stepLogger := logger.WithField("step", step.name)
		stepLogger.Debug("running teardown step")

		err := step.run(ctx, cfg)
		if err == nil {
			continue
		}

		stepLogger.WithError(err).Warn("teardown step failed")
		errs = append(errs, fmt.Errorf("%s: %w", step.name, err))

		if p.teardown == clusterprovisioner.TeardownStop {
			break
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s: %w", ErrTeardownFailed, name, errors.Join(errs...))
	}

	logger.Info("cluster deleted")

	return nil
}

func (p *Provisioner) teardownSteps() []teardownStep {
	return []teardownStep{
		{name: "delete vpc peerings", run: p.deletePeerings},
		{name: "delete load balancer services", run: p.deleteLoadBalancers},
		{name: "delete nodegroups", run: p.deleteNodeGroups},
		{name: "delete network security group", run: p.deleteSecurityGroup},
		{name: "delete control plane", run: p.deleteControlPlane},
		{name: "delete network stack", run: p.deleteNetworkStack},
		{name: "delete configuration", run: func(ctx context.Context, cfg *state.ClusterConfig) error {
			return p.store.Delete(ctx, cfg.ClusterName)
		}},
		{name: "clean up kubeconfig", run: p.cleanupKubeconfig},
	}
}

func (p *Provisioner) deletePeerings(ctx context.Context, cfg *state.ClusterConfig) error {
	var errs []error

	for _, peeringID := range cfg.PeeringConnectionIDs {
		err := p.network.DeletePeering(ctx, peeringID)
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// deleteLoadBalancers deletes every LoadBalancer service so their load balancers are
// released before the VPC goes away.
func (p *Provisioner) deleteLoadBalancers(ctx context.Context, cfg *state.ClusterConfig) error {
	clientset, err := p.clients(ctx, cfg.ClusterName)
	if err != nil {
		return err
	}

	services, err := clientset.CoreV1().Services(metav1.NamespaceAll).List(ctx, metav1.ListOptions{})
	if err != nil {
		return fmt.Errorf("list services: %w", err)
	}

	var errs []error

	for _, service := range services.Items {
		if service.Spec.Type != corev1.ServiceTypeLoadBalancer {
			continue
		}

		p.clusterLogger(cfg.ClusterName).
			WithField("service", service.Namespace+"/"+service.Name).
			Info("deleting load balancer service")

		err = clientset.CoreV1().Services(service.Namespace).Delete(ctx, service.Name, metav1.DeleteOptions{})
		if err != nil {
			errs = append(errs, fmt.Errorf("delete service %s/%s: %w", service.Namespace, service.Name, err))
		}
	}

	return errors.Join(errs...)
}

// deleteNodeGroups deletes every nodegroup and waits for the stacks to disappear, since
// their instances keep the network security groups and subnets in use.
func (p *Provisioner) deleteNodeGroups(ctx context.Context, cfg *state.ClusterConfig) error {
	groups, err := p.nodeGroups.GroupNames(ctx, cfg.ClusterName)
	if err != nil {
		return err
	}

	var (
		errs      []error
		deletions []*stack.Deletion
	)

	for _, group := range groups {
		deletion, err := p.nodeGroups.Delete(ctx, cfg.ClusterName, group)
		if errors.Is(err, nodegroup.ErrStackNotFound) {
			p.clusterLogger(cfg.ClusterName).WithField("nodegroup", group).Warn("nodegroup has no stack, skipping")

			continue
		}

		if err != nil {
			errs = append(errs, fmt.Errorf("nodegroup %s: %w", group, err))

			continue
		}

		deletions = append(deletions, deletion)
	}

	for _, deletion := range deletions {
		err := deletion.Wait(ctx, p.pollInterval)
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (p *Provisioner) deleteSecurityGroup(ctx context.Context, cfg *state.ClusterConfig) error {
	if cfg.NetworkSGID == "" {
		return nil
	}

	return p.network.DeleteSecurityGroup(ctx, cfg.NetworkSGID)
}

func (p *Provisioner) deleteControlPlane(ctx context.Context, cfg *state.ClusterConfig) error {
	err := p.controlPlane.Delete(ctx, cfg.ClusterName)
	if err != nil {
		return err
	}

	return p.controlPlane.AwaitDeleted(ctx, cfg.ClusterName)
}

// deleteNetworkStack issues the network stack deletion without waiting for it.
func (p *Provisioner) deleteNetworkStack(ctx context.Context, cfg *state.ClusterConfig) error {
	_, err := stack.New(p.stacks, p.logger, stack.ClusterStackName(cfg.ClusterName)).Delete(ctx)

	return err
}

func (p *Provisioner) cleanupKubeconfig(_ context.Context, cfg *state.ClusterConfig) error {
	if cfg.ClusterARN == "" {
		return nil
	}

	return k8s.CleanupKubeconfig(p.kubeconfig, cfg.ClusterARN, p.logger)
}
