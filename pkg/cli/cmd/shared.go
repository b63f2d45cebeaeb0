package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/devantler-tech/ekscli/pkg/cli/ui/confirm"
	"github.com/devantler-tech/ekscli/pkg/di"
	"github.com/devantler-tech/ekscli/pkg/utils/notify"
	"github.com/devantler-tech/ekscli/pkg/utils/timer"
	"github.com/spf13/cobra"
)

// ClusterNameFlag is the persistent flag selecting the cluster a command works on.
const ClusterNameFlag = "cluster-name"

// ErrClusterNameRequired is returned when a cluster scoped command runs without --cluster-name.
var ErrClusterNameRequired = errors.New("--cluster-name is required")

// ErrNoGroupsSelected is returned when a nodegroup command is given neither --all nor --group-name.
var ErrNoGroupsSelected = errors.New("select nodegroups with --group-name or --all")

// serviceHandler runs a command against the services of one cluster.
type serviceHandler func(cmd *cobra.Command, args []string, services *di.Services, tmr timer.Timer) error

// serviceOptions tunes how services are built for a command.
type serviceOptions struct {
	// clusterOptional lets the command run without --cluster-name.
	clusterOptional bool
	// region points at a command flag overriding the cluster region.
	region *string
}

// runWithServices adapts handler into a cobra RunE that resolves settings, builds the
// services of the --cluster-name cluster and starts the timer. The command output is
// wrapped so stage titles are separated by a blank line.
func runWithServices(
	runtimeContainer *di.Runtime,
	opts serviceOptions,
	handler serviceHandler,
) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cluster, err := cmd.Flags().GetString(ClusterNameFlag)
		if err != nil {
			return fmt.Errorf("read --%s: %w", ClusterNameFlag, err)
		}

		cluster = strings.TrimSpace(cluster)
		if cluster == "" && !opts.clusterOptional {
			return ErrClusterNameRequired
		}

		run := di.WithTimer(
			func(cmd *cobra.Command, injector di.Injector, tmr timer.Timer) error {
				settings, err := di.ResolveSettings(injector)
				if err != nil {
					return err
				}

				factory, err := di.ResolveServicesFactory(injector)
				if err != nil {
					return err
				}

				request := di.ServicesRequest{
					Cluster: cluster,
					Logger:  notify.NewLogger(cmd.ErrOrStderr(), settings.Verbose, settings.LogFormat),
				}
				if opts.region != nil {
					request.Region = *opts.region
				}

				services, err := factory(cmd.Context(), request)
				if err != nil {
					return err
				}

				cmd.SetOut(notify.NewStageSeparatingWriter(cmd.OutOrStdout()))
				tmr.Start()

				return handler(cmd, args, services, tmr)
			},
		)

		return runtimeContainer.Invoke(func(injector di.Injector) error {
			return run(cmd, injector)
		})
	}
}

// selectGroups resolves the nodegroups a command works on from --group-name and --all.
func selectGroups(cmd *cobra.Command, services *di.Services, groups []string, all bool) ([]string, error) {
	if len(groups) == 0 && !all {
		return nil, ErrNoGroupsSelected
	}

	if all {
		groups = nil
	}

	return services.NodeGroups.GroupNames(cmd.Context(), services.Cluster, groups...)
}

// confirmDestructive asks for confirmation unless force is set or stdin is not a terminal.
func confirmDestructive(cmd *cobra.Command, preview confirm.Preview, force bool) error {
	return confirm.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout()).Confirm(preview, force)
}

// addGroupFlags registers --group-name and --all.
func addGroupFlags(cmd *cobra.Command, groups *[]string, all *bool) {
	cmd.Flags().StringSliceVarP(groups, "group-name", "g", nil, "nodegroup to work on (repeatable)")
	cmd.Flags().BoolVar(all, "all", false, "work on every nodegroup of the cluster")
}
