package cmd

import (
	"github.com/devantler-tech/ekscli/pkg/di"
	"github.com/devantler-tech/ekscli/pkg/utils/notify"
	"github.com/devantler-tech/ekscli/pkg/utils/timer"
	"github.com/spf13/cobra"
)

// NewDetachIAMPoliciesCmd creates the detach-iam-policies command.
func NewDetachIAMPoliciesCmd(runtimeContainer *di.Runtime) *cobra.Command {
	var (
		groups []string
		all    bool
	)

	cmd := &cobra.Command{
		Use:          "detach-iam-policies",
		Short:        "Detach the worker IAM policies from nodegroup roles",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: runWithServices(runtimeContainer, serviceOptions{},
			func(cmd *cobra.Command, _ []string, services *di.Services, tmr timer.Timer) error {
				selected, err := selectGroups(cmd, services, groups, all)
				if err != nil {
					return err
				}

				for _, group := range selected {
					err = services.NodeGroups.DetachIAMPolicies(cmd.Context(), services.Cluster, group)
					if err != nil {
						return err
					}
				}

				notify.SuccessWithTimerf(cmd.OutOrStdout(), tmr, "IAM policies detached from nodegroups %v", selected)

				return nil
			}),
	}

	addGroupFlags(cmd, &groups, &all)

	return cmd
}

// NewSetIAMPoliciesCmd creates the set-iam-policies command.
func NewSetIAMPoliciesCmd(runtimeContainer *di.Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "set-iam-policies POLICY...",
		Short: "Record the extra IAM policies of every nodegroup role",
		Long: `Record extra managed policies attached to every nodegroup role next to the baseline
worker policies. Policies are names (AmazonS3ReadOnlyAccess) or full ARNs. The policies
are attached when nodegroups are created.`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: runWithServices(runtimeContainer, serviceOptions{},
			func(cmd *cobra.Command, args []string, services *di.Services, tmr timer.Timer) error {
				err := services.Store.SetIAMPolicies(cmd.Context(), services.Cluster, args)
				if err != nil {
					return err
				}

				notify.SuccessWithTimerf(cmd.OutOrStdout(), tmr, "IAM policies of cluster %s set to %v",
					services.Cluster, args)

				return nil
			}),
	}
}
