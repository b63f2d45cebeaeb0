package cmd

import (
	"github.com/devantler-tech/ekscli/pkg/di"
	"github.com/devantler-tech/ekscli/pkg/svc/state"
	"github.com/devantler-tech/ekscli/pkg/utils/notify"
	"github.com/devantler-tech/ekscli/pkg/utils/timer"
	"github.com/spf13/cobra"
)

const bootstrapLongDesc = `Bootstrap the configuration of a cluster.

Creates the EKS service role of the cluster and resets its configuration layers:
the config layer is rewritten with the region defaults and the given overrides,
the state and groups layers are emptied.

Examples:
  # Bootstrap a cluster in us-west-2
  eks bootstrap -c demo --region us-west-2

  # Bootstrap with a custom CIDR and Kubernetes version
  eks bootstrap -c demo --region us-east-1 --cidr 10.0.0.0/16 --kubernetes-version 1.14`

// NewBootstrapCmd creates the bootstrap command.
func NewBootstrapCmd(runtimeContainer *di.Runtime) *cobra.Command {
	var (
		region    string
		overrides state.BootstrapLayer
	)

	cmd := &cobra.Command{
		Use:          "bootstrap",
		Short:        "Bootstrap the configuration of a cluster",
		Long:         bootstrapLongDesc,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: runWithServices(runtimeContainer, serviceOptions{region: &region},
			func(cmd *cobra.Command, _ []string, services *di.Services, tmr timer.Timer) error {
				notify.Titlef(cmd.OutOrStdout(), "🧰", "Bootstrapping cluster %s...", services.Cluster)

				err := services.Provisioner.Bootstrap(cmd.Context(), services.Cluster, region, overrides)
				if err != nil {
					return err
				}

				notify.SuccessWithTimerf(cmd.OutOrStdout(), tmr, "cluster %s bootstrapped in %s",
					services.Cluster, region)

				return nil
			}),
	}

	cmd.Flags().StringVar(&region, "region", "", "AWS region of the cluster")
	addCreateFlags(cmd, &overrides.CIDR, &overrides.KubernetesVersion, &overrides.WarmIPTarget, &overrides.OpenPorts)
	cmd.Flags().StringVar(&overrides.Subnet1AZ, "subnet1-az", "", "availability zone of the first subnet")
	cmd.Flags().StringVar(&overrides.Subnet2AZ, "subnet2-az", "", "availability zone of the second subnet")
	cmd.Flags().StringVar(&overrides.Subnet3AZ, "subnet3-az", "", "availability zone of the third subnet")

	_ = cmd.MarkFlagRequired("region")

	return cmd
}
