package cmd

import (
	"github.com/devantler-tech/ekscli/pkg/di"
	"github.com/devantler-tech/ekscli/pkg/utils/notify"
	"github.com/devantler-tech/ekscli/pkg/utils/timer"
	"github.com/spf13/cobra"
)

// NewUpdateAuthCmd creates the update-auth command.
func NewUpdateAuthCmd(runtimeContainer *di.Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "update-auth",
		Short: "Sync the aws-auth ConfigMap",
		Long: `Rebuild the aws-auth ConfigMap from the node roles of every nodegroup stack and the
IAM users recorded with add-iam-user, then apply it to the cluster.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: runWithServices(runtimeContainer, serviceOptions{},
			func(cmd *cobra.Command, _ []string, services *di.Services, tmr timer.Timer) error {
				err := services.Auth.Sync(cmd.Context(), services.Cluster)
				if err != nil {
					return err
				}

				notify.SuccessWithTimerf(cmd.OutOrStdout(), tmr, "aws-auth of cluster %s updated", services.Cluster)

				return nil
			}),
	}
}

// NewAddIAMUserCmd creates the add-iam-user command.
func NewAddIAMUserCmd(runtimeContainer *di.Runtime) *cobra.Command {
	var (
		username string
		groups   []string
	)

	cmd := &cobra.Command{
		Use:   "add-iam-user ARN",
		Short: "Grant an IAM user access to the cluster",
		Long: `Record an IAM user with its Kubernetes username and groups and sync the aws-auth
ConfigMap.

Examples:
  eks add-iam-user -c demo arn:aws:iam::123456789012:user/jane --username jane --groups system:masters`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: runWithServices(runtimeContainer, serviceOptions{},
			func(cmd *cobra.Command, args []string, services *di.Services, tmr timer.Timer) error {
				ctx := cmd.Context()
				arn := args[0]

				name := username
				if name == "" {
					name = arn
				}

				err := services.Store.AddUser(ctx, services.Cluster, arn, name, groups)
				if err != nil {
					return err
				}

				err = services.Auth.Sync(ctx, services.Cluster)
				if err != nil {
					return err
				}

				notify.SuccessWithTimerf(cmd.OutOrStdout(), tmr, "IAM user %s added to cluster %s", arn, services.Cluster)

				return nil
			}),
	}

	cmd.Flags().StringVar(&username, "username", "", "Kubernetes username (defaults to the ARN)")
	cmd.Flags().StringSliceVar(&groups, "groups", []string{"system:masters"}, "Kubernetes groups of the user")

	return cmd
}
