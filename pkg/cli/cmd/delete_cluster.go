package cmd

import (
	"errors"
	"fmt"

	"github.com/devantler-tech/ekscli/pkg/cli/ui/confirm"
	"github.com/devantler-tech/ekscli/pkg/di"
	"github.com/devantler-tech/ekscli/pkg/svc/provisioner/cluster/clustererr"
	"github.com/devantler-tech/ekscli/pkg/svc/stack"
	"github.com/devantler-tech/ekscli/pkg/svc/state"
	"github.com/devantler-tech/ekscli/pkg/utils/notify"
	"github.com/devantler-tech/ekscli/pkg/utils/timer"
	"github.com/spf13/cobra"
)

const deleteClusterLongDesc = `Delete a cluster and everything eks created for it.

Teardown deletes, in order: the VPC peering connections, the LoadBalancer services,
the nodegroups, the network security group, the EKS control plane, the cluster VPC
stack, the configuration layers and finally the kubeconfig entry.

With --teardown-policy continue (default) a failing step is reported and the remaining
steps still run. With --teardown-policy stop the first failure aborts the teardown.`

// NewDeleteClusterCmd creates the delete-cluster command.
func NewDeleteClusterCmd(runtimeContainer *di.Runtime) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:          "delete-cluster",
		Short:        "Delete a cluster",
		Long:         deleteClusterLongDesc,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: runWithServices(runtimeContainer, serviceOptions{},
			func(cmd *cobra.Command, _ []string, services *di.Services, tmr timer.Timer) error {
				ctx := cmd.Context()

				groups, err := services.Store.GroupNames(ctx, services.Cluster)
				if errors.Is(err, state.ErrNotBootstrapped) {
					return fmt.Errorf("%w: %s", clustererr.ErrClusterNotFound, services.Cluster)
				}

				if err != nil {
					return err
				}

				stacks := []string{stack.ClusterStackName(services.Cluster)}
				for _, group := range groups {
					stacks = append(stacks, stack.NodeGroupStackName(services.Cluster, group))
				}

				err = confirmDestructive(cmd, confirm.Preview{
					Action:     "Deleting cluster " + services.Cluster,
					Cluster:    services.Cluster,
					NodeGroups: groups,
					Stacks:     stacks,
				}, force)
				if err != nil {
					return err
				}

				notify.Titlef(cmd.OutOrStdout(), "🗑️", "Deleting cluster %s...", services.Cluster)

				err = services.Provisioner.Delete(ctx, services.Cluster)
				if err != nil {
					return err
				}

				notify.SuccessWithTimerf(cmd.OutOrStdout(), tmr, "cluster %s deleted", services.Cluster)

				return nil
			}),
	}

	cmd.Flags().BoolVarP(&force, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}
