package cmd

import (
	"github.com/devantler-tech/ekscli/pkg/di"
	"github.com/devantler-tech/ekscli/pkg/utils/notify"
	"github.com/devantler-tech/ekscli/pkg/utils/timer"
	"github.com/spf13/cobra"
)

// NewExportNodegroupCmd creates the export-nodegroup command.
func NewExportNodegroupCmd(runtimeContainer *di.Runtime) *cobra.Command {
	var (
		groups            []string
		all               bool
		exactInstanceType bool
	)

	cmd := &cobra.Command{
		Use:   "export-nodegroup",
		Short: "Export nodegroups to Spotinst",
		Long: `Import the autoscaling group of each nodegroup into a Spotinst elastigroup and
record the elastigroup in the groups layer. Credentials are read from
SPOTINST_ACCOUNT_ID and SPOTINST_API_TOKEN.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: runWithServices(runtimeContainer, serviceOptions{},
			func(cmd *cobra.Command, _ []string, services *di.Services, tmr timer.Timer) error {
				selected, err := selectGroups(cmd, services, groups, all)
				if err != nil {
					return err
				}

				for _, group := range selected {
					ref, err := services.NodeGroups.Export(cmd.Context(), services.Cluster, group, exactInstanceType)
					if err != nil {
						return err
					}

					notify.Successf(cmd.OutOrStdout(), "nodegroup %s exported to elastigroup %s", group, ref.ID)
				}

				notify.SuccessWithTimerf(cmd.OutOrStdout(), tmr, "nodegroups %v exported", selected)

				return nil
			}),
	}

	addGroupFlags(cmd, &groups, &all)
	cmd.Flags().BoolVar(&exactInstanceType, "exact-instance-type", false,
		"restrict the elastigroup to the nodegroup instance type")

	return cmd
}
