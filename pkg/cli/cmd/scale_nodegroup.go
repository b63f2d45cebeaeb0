package cmd

import (
	"errors"

	"github.com/devantler-tech/ekscli/pkg/di"
	"github.com/devantler-tech/ekscli/pkg/svc/nodegroup"
	"github.com/devantler-tech/ekscli/pkg/utils/notify"
	"github.com/devantler-tech/ekscli/pkg/utils/timer"
	"github.com/spf13/cobra"
)

// ErrNoScaleTarget is returned when scale-nodegroup selects neither --asg nor --spotinst.
var ErrNoScaleTarget = errors.New("select a capacity backend with --asg or --spotinst")

// NewScaleNodegroupCmd creates the scale-nodegroup command.
func NewScaleNodegroupCmd(runtimeContainer *di.Runtime) *cobra.Command {
	var (
		groups []string
		all    bool
		opts   nodegroup.ScaleOptions
	)

	cmd := &cobra.Command{
		Use:   "scale-nodegroup",
		Short: "Change the bounds of nodegroups",
		Long: `Update the minimum and maximum size of nodegroups on the autoscaling group (--asg)
and/or the Spotinst elastigroup (--spotinst), and record the bounds in the groups layer.

Examples:
  eks scale-nodegroup -c demo -g workers --min 2 --max 5 --asg`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: runWithServices(runtimeContainer, serviceOptions{},
			func(cmd *cobra.Command, _ []string, services *di.Services, tmr timer.Timer) error {
				if !opts.ASG && !opts.Spotinst {
					return ErrNoScaleTarget
				}

				selected, err := selectGroups(cmd, services, groups, all)
				if err != nil {
					return err
				}

				for _, group := range selected {
					notify.Activityf(cmd.OutOrStdout(), "scaling nodegroup %s to %d..%d", group, opts.Min, opts.Max)

					err = services.NodeGroups.Scale(cmd.Context(), services.Cluster, group, opts)
					if err != nil {
						return err
					}
				}

				notify.SuccessWithTimerf(cmd.OutOrStdout(), tmr, "nodegroups %v scaled", selected)

				return nil
			}),
	}

	addGroupFlags(cmd, &groups, &all)
	cmd.Flags().IntVar(&opts.Min, "min", 0, "minimum number of nodes")
	cmd.Flags().IntVar(&opts.Max, "max", 0, "maximum number of nodes")
	cmd.Flags().BoolVar(&opts.ASG, "asg", false, "scale the autoscaling group")
	cmd.Flags().BoolVar(&opts.Spotinst, "spotinst", false, "scale the Spotinst elastigroup")

	_ = cmd.MarkFlagRequired("min")
	_ = cmd.MarkFlagRequired("max")

	return cmd
}
