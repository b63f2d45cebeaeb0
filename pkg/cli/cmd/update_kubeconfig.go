package cmd

import (
	"github.com/devantler-tech/ekscli/pkg/di"
	"github.com/devantler-tech/ekscli/pkg/utils/notify"
	"github.com/devantler-tech/ekscli/pkg/utils/timer"
	"github.com/spf13/cobra"
)

// NewUpdateKubeconfigCmd creates the update-kubeconfig command.
func NewUpdateKubeconfigCmd(runtimeContainer *di.Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "update-kubeconfig",
		Short: "Write the kubeconfig entry of a cluster",
		Long: `Write a cluster, context and user entry for the cluster into the kubeconfig file
and select it as the current context. The user authenticates with "aws eks get-token".`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: runWithServices(runtimeContainer, serviceOptions{},
			func(cmd *cobra.Command, _ []string, services *di.Services, tmr timer.Timer) error {
				err := services.Provisioner.UpdateKubeconfig(cmd.Context(), services.Cluster)
				if err != nil {
					return err
				}

				notify.SuccessWithTimerf(cmd.OutOrStdout(), tmr, "kubeconfig %s updated for cluster %s",
					services.Settings.Kubeconfig, services.Cluster)

				return nil
			}),
	}
}
