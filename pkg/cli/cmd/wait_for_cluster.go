package cmd

import (
	"strings"
	"time"

	"github.com/devantler-tech/ekscli/pkg/di"
	"github.com/devantler-tech/ekscli/pkg/k8s/readiness"
	"github.com/devantler-tech/ekscli/pkg/utils/notify"
	"github.com/devantler-tech/ekscli/pkg/utils/timer"
	"github.com/spf13/cobra"
)

// NewWaitForClusterCmd creates the wait-for-cluster command.
func NewWaitForClusterCmd(runtimeContainer *di.Runtime) *cobra.Command {
	var (
		timeout time.Duration
		nodes   int
		group   string
	)

	cmd := &cobra.Command{
		Use:   "wait-for-cluster",
		Short: "Wait until the API server of a cluster answers",
		Long: `Poll the service listing of the cluster until it returned a non-empty result
--readiness-successes times. Failed listings are retried.

With --nodes the command then waits until that many nodes report Ready, optionally
restricted to the nodes of --group-name.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: runWithServices(runtimeContainer, serviceOptions{},
			func(cmd *cobra.Command, _ []string, services *di.Services, tmr timer.Timer) error {
				ctx := cmd.Context()

				clientset, err := services.KubeClients(ctx, services.Cluster)
				if err != nil {
					return err
				}

				notify.Activityf(cmd.OutOrStdout(), "waiting for cluster %s to respond", services.Cluster)

				err = readiness.WaitForServices(ctx, clientset, readiness.ServicesOptions{
					RequiredSuccesses: services.Settings.ReadinessSuccesses,
					Interval:          services.Settings.PollInterval,
					Deadline:          timeout,
				}, services.Logger)
				if err != nil {
					return err
				}

				if nodes > 0 {
					notify.Activityf(cmd.OutOrStdout(), "waiting for %d ready nodes", nodes)

					err = readiness.WaitForNodes(ctx, clientset, strings.ToLower(group), nodes, timeout, services.Logger)
					if err != nil {
						return err
					}
				}

				notify.SuccessWithTimerf(cmd.OutOrStdout(), tmr, "cluster %s is up and running", services.Cluster)

				return nil
			}),
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 0, "give up after this duration (0 waits indefinitely)")
	cmd.Flags().IntVar(&nodes, "nodes", 0, "also wait until this many nodes are Ready")
	cmd.Flags().StringVarP(&group, "group-name", "g", "", "count only the nodes of this nodegroup")

	return cmd
}
