package cmd

import (
	"context"
	"io"
	"slices"
	"time"

	"github.com/devantler-tech/ekscli/pkg/cli/parallel"
	"github.com/devantler-tech/ekscli/pkg/cli/ui/confirm"
	"github.com/devantler-tech/ekscli/pkg/di"
	"github.com/devantler-tech/ekscli/pkg/svc/stack"
	"github.com/devantler-tech/ekscli/pkg/utils/notify"
	"github.com/devantler-tech/ekscli/pkg/utils/timer"
	"github.com/spf13/cobra"
)

// NewDeleteNodegroupCmd creates the delete-nodegroup command.
func NewDeleteNodegroupCmd(runtimeContainer *di.Runtime) *cobra.Command {
	var (
		groups []string
		all    bool
		force  bool
		wait   bool
	)

	cmd := &cobra.Command{
		Use:   "delete-nodegroup",
		Short: "Delete nodegroups",
		Long: `Detach the worker IAM policies, delete the Spotinst elastigroup when the nodegroup
was exported and issue the deletion of the nodegroup stack. With --wait the command
blocks until every stack is gone.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: runWithServices(runtimeContainer, serviceOptions{},
			func(cmd *cobra.Command, _ []string, services *di.Services, tmr timer.Timer) error {
				ctx := cmd.Context()

				selected, err := selectGroups(cmd, services, groups, all)
				if err != nil {
					return err
				}

				stacks := make([]string, 0, len(selected))
				for _, group := range selected {
					stacks = append(stacks, stack.NodeGroupStackName(services.Cluster, group))
				}

				err = confirmDestructive(cmd, confirm.Preview{
					Action:     "Deleting nodegroups",
					Cluster:    services.Cluster,
					NodeGroups: selected,
					Stacks:     stacks,
				}, force)
				if err != nil {
					return err
				}

				deletions := make([]*stack.Deletion, 0, len(selected))

				for _, group := range selected {
					notify.Activityf(cmd.OutOrStdout(), "deleting nodegroup %s", group)

					deletion, err := services.NodeGroups.Delete(ctx, services.Cluster, group)
					if err != nil {
						return err
					}

					deletions = append(deletions, deletion)
				}

				if wait {
					deleted, err := awaitDeletions(ctx, cmd.OutOrStdout(), selected, deletions,
						services.Settings.PollInterval)
					if err != nil {
						return err
					}

					notify.SuccessWithTimerf(cmd.OutOrStdout(), tmr, "nodegroups %v deleted", deleted)

					return nil
				}

				notify.SuccessWithTimerf(cmd.OutOrStdout(), tmr, "deletion of nodegroups %v issued", selected)

				return nil
			}),
	}

	addGroupFlags(cmd, &groups, &all)
	cmd.Flags().BoolVarP(&force, "yes", "y", false, "skip the confirmation prompt")
	cmd.Flags().BoolVar(&wait, "wait", false, "wait until the nodegroup stacks are deleted")

	return cmd
}

// awaitDeletions waits for all deletions concurrently, reporting each stack as it
// disappears, and returns the sorted groups whose stacks are gone.
func awaitDeletions(
	ctx context.Context,
	out io.Writer,
	groups []string,
	deletions []*stack.Deletion,
	interval time.Duration,
) ([]string, error) {
	writer := parallel.NewSyncWriter(out)
	deleted := parallel.NewResults[string]()
	tasks := make([]parallel.Task, 0, len(deletions))

	for i, deletion := range deletions {
		tasks = append(tasks, func(ctx context.Context) error {
			err := deletion.Wait(ctx, interval)
			if err != nil {
				return err
			}

			notify.Successf(writer, "stack %s deleted", deletion.Handle().Name())
			deleted.Add(groups[i])

			return nil
		})
	}

	err := parallel.NewExecutor(0).ExecuteAll(ctx, tasks...)

	names := deleted.Values()
	slices.Sort(names)

	return names, err
}
