package cmd

import (
	"context"
	"fmt"

	"github.com/devantler-tech/ekscli/pkg/cli/ui/confirm"
	"github.com/devantler-tech/ekscli/pkg/cli/ui/errorhandler"
	"github.com/devantler-tech/ekscli/pkg/di"
	"github.com/devantler-tech/ekscli/pkg/io/configmanager"
	"github.com/devantler-tech/ekscli/pkg/svc/provisioner/cluster/clustererr"
	"github.com/devantler-tech/ekscli/pkg/svc/state"
	"github.com/spf13/cobra"
)

// NewRootCmd creates and returns the root command with version info and subcommands.
func NewRootCmd(version, commit, date string) *cobra.Command {
	manager := configmanager.NewManager()

	return NewRootCmdWithRuntime(version, commit, date, manager, di.NewRuntime(manager))
}

// NewRootCmdWithRuntime creates the root command on top of an existing settings manager
// and runtime container. The settings flags are bound to manager.
func NewRootCmdWithRuntime(
	version, commit, date string,
	manager *configmanager.Manager,
	runtimeContainer *di.Runtime,
) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eks",
		Short: "eks provisions and maintains EKS clusters and their nodegroups",
		Long: `eks provisions and maintains EKS clusters and their nodegroups.

Cluster configuration is kept in three layers (config, state and groups) per cluster,
stored on the local filesystem or in an S3 compatible bucket.`,
		RunE:         handleRootRunE,
		SilenceUsage: true,
	}

	cmd.Version = fmt.Sprintf("%s (Built on %s from Git SHA %s)", version, date, commit)

	cmd.PersistentFlags().StringP(ClusterNameFlag, "c", "", "name of the cluster")
	manager.BindFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		NewBootstrapCmd(runtimeContainer),
		NewCreateClusterCmd(runtimeContainer),
		NewDeleteClusterCmd(runtimeContainer),
		NewListCmd(runtimeContainer),
		NewGetNodesCmd(runtimeContainer),
		NewShowConfigCmd(runtimeContainer),
		NewUpdateKubeconfigCmd(runtimeContainer),
		NewWaitForClusterCmd(runtimeContainer),
		NewCreateNodegroupCmd(runtimeContainer),
		NewDeleteNodegroupCmd(runtimeContainer),
		NewScaleNodegroupCmd(runtimeContainer),
		NewExportNodegroupCmd(runtimeContainer),
		NewDetachIAMPoliciesCmd(runtimeContainer),
		NewSetIAMPoliciesCmd(runtimeContainer),
		NewUpdateAuthCmd(runtimeContainer),
		NewAddIAMUserCmd(runtimeContainer),
		NewCreateClusterSecurityGroupCmd(runtimeContainer),
		NewSetInterVPCNetworkingCmd(runtimeContainer),
		NewUpdateDNSCmd(runtimeContainer),
		NewEnableGPUCmd(runtimeContainer),
		NewCreateDefaultStorageClassCmd(runtimeContainer),
		NewCreateDNSAutoscalerCmd(runtimeContainer),
		NewUpdateCNICmd(runtimeContainer),
		NewSetDockerRegistryCredentialsCmd(runtimeContainer),
		NewVersionCmd(),
	)

	return cmd
}

// Execute runs the provided root command under ctx and handles errors.
func Execute(ctx context.Context, cmd *cobra.Command) error {
	executor := errorhandler.NewExecutor(
		errorhandler.Hint{
			Target:  state.ErrNotBootstrapped,
			Message: "bootstrap the cluster first: eks bootstrap -c NAME --region REGION",
		},
		errorhandler.Hint{
			Target:  clustererr.ErrClusterNotFound,
			Message: "list the clusters of a region with: eks list --region REGION",
		},
		errorhandler.Hint{
			Target:  confirm.ErrCancelled,
			Message: "pass --yes to skip the confirmation prompt",
		},
		errorhandler.Hint{
			Target:  ErrNoGroupsSelected,
			Message: "show the defined nodegroups with: eks show-config -c NAME --layer groups",
		},
	)

	err := executor.Execute(ctx, cmd)
	if err != nil {
		return fmt.Errorf("command execution failed: %w", err)
	}

	return nil
}

// --- internals ---

// handleRootRunE handles the root command.
func handleRootRunE(cmd *cobra.Command, _ []string) error {
	// The err can safely be ignored, as it can never fail at runtime.
	_ = cmd.Help()

	return nil
}
