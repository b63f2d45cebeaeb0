package cmd

import (
	"context"
	"time"

	"github.com/devantler-tech/ekscli/pkg/di"
	"github.com/devantler-tech/ekscli/pkg/k8s/readiness"
	"github.com/devantler-tech/ekscli/pkg/svc/installer"
	eksprovisioner "github.com/devantler-tech/ekscli/pkg/svc/provisioner/cluster/eks"
	"github.com/devantler-tech/ekscli/pkg/utils/notify"
	"github.com/devantler-tech/ekscli/pkg/utils/timer"
	"github.com/spf13/cobra"
)

const createClusterLongDesc = `Create a bootstrapped cluster.

Provisions the cluster VPC stack and the EKS control plane, records their outputs in
the state layer and writes a kubeconfig entry for the cluster. Resources left over
from an interrupted run are adopted.

Examples:
  # Create a cluster and wait until it answers
  eks create-cluster -c demo --wait

  # Create a cluster with GPU support and a default storage class
  eks create-cluster -c demo --gpu --default-storage-class`

// NewCreateClusterCmd creates the create-cluster command.
func NewCreateClusterCmd(runtimeContainer *di.Runtime) *cobra.Command {
	var (
		opts    eksprovisioner.CreateOptions
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:          "create-cluster",
		Short:        "Create the network and control plane of a cluster",
		Long:         createClusterLongDesc,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: runWithServices(runtimeContainer, serviceOptions{},
			func(cmd *cobra.Command, _ []string, services *di.Services, tmr timer.Timer) error {
				ctx := cmd.Context()

				if timeout > 0 {
					var cancel context.CancelFunc

					ctx, cancel = context.WithTimeout(ctx, timeout)
					defer cancel()
				}

				opts.AddOns.WarmIPTarget = opts.Overrides.WarmIPTarget
				opts.Readiness = readiness.ServicesOptions{
					RequiredSuccesses: services.Settings.ReadinessSuccesses,
					Interval:          services.Settings.PollInterval,
				}

				services.Provisioner.SetCreateOptions(opts)

				notify.Titlef(cmd.OutOrStdout(), "🚀", "Creating cluster %s...", services.Cluster)

				err := services.Provisioner.Create(ctx, services.Cluster)
				if err != nil {
					return err
				}

				notify.SuccessWithTimerf(cmd.OutOrStdout(), tmr, "cluster %s created", services.Cluster)

				return nil
			}),
	}

	addCreateFlags(cmd, &opts.Overrides.CIDR, &opts.Overrides.KubernetesVersion,
		&opts.Overrides.WarmIPTarget, &opts.Overrides.OpenPorts)
	addAddOnFlags(cmd, &opts.AddOns)

	cmd.Flags().BoolVar(&opts.NetworkSG, "network-sg", false, "create the cluster network security group")
	cmd.Flags().BoolVar(&opts.Wait, "wait", false, "wait until the API server answers service listings")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "abort creation after this duration (0 waits indefinitely)")

	return cmd
}

func addCreateFlags(cmd *cobra.Command, cidr, version *string, warmIPTarget *int, openPorts *[]int) {
	cmd.Flags().StringVar(cidr, "cidr", "", "CIDR block of the cluster VPC")
	cmd.Flags().StringVar(version, "kubernetes-version", "", "Kubernetes version")
	cmd.Flags().IntVar(warmIPTarget, "warm-ip-target", 0, "VPC CNI WARM_IP_TARGET, tuned after creation when set")
	cmd.Flags().IntSliceVar(openPorts, "open-ports", nil, "ports opened by the cluster security group")
}

func addAddOnFlags(cmd *cobra.Command, addOns *installer.Options) {
	cmd.Flags().BoolVar(&addOns.GPU, "gpu", false, "install the NVIDIA device plugin")
	cmd.Flags().BoolVar(&addOns.StorageClass, "default-storage-class", false, "create the default gp2 storage class")
	cmd.Flags().BoolVar(&addOns.DNSAutoscaler, "dns-autoscaler", false, "install the DNS autoscaler")
}
