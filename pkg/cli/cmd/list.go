package cmd

import (
	"fmt"
	"io"

	"github.com/devantler-tech/ekscli/pkg/di"
	eksprovisioner "github.com/devantler-tech/ekscli/pkg/svc/provisioner/cluster/eks"
	"github.com/devantler-tech/ekscli/pkg/utils/timer"
	"github.com/spf13/cobra"
)

const listLongDesc = `List the clusters of a region.

Clusters are discovered from their VPC stacks. Each cluster is annotated with
whether EKS reports a control plane of the same name.

Examples:
  # List clusters in the default region
  eks list

  # List clusters in eu-west-1
  eks list --region eu-west-1`

// NewListCmd creates the list command.
func NewListCmd(runtimeContainer *di.Runtime) *cobra.Command {
	var region string

	cmd := &cobra.Command{
		Use:          "list",
		Short:        "List clusters",
		Long:         listLongDesc,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: runWithServices(runtimeContainer, serviceOptions{clusterOptional: true, region: &region},
			func(cmd *cobra.Command, _ []string, services *di.Services, _ timer.Timer) error {
				clusters, err := services.Provisioner.Clusters(cmd.Context())
				if err != nil {
					return err
				}

				displayClusters(cmd.OutOrStdout(), clusters)

				return nil
			}),
	}

	cmd.Flags().StringVar(&region, "region", "", "AWS region to list (default from the AWS configuration)")

	return cmd
}

func displayClusters(writer io.Writer, clusters []eksprovisioner.ClusterSummary) {
	if len(clusters) == 0 {
		_, _ = fmt.Fprintln(writer, "No clusters found.")

		return
	}

	for _, cluster := range clusters {
		controlPlane := "no control plane"
		if cluster.ControlPlane {
			controlPlane = "control plane"
		}

		_, _ = fmt.Fprintf(writer, "%s: %s, %s\n", cluster.Name, cluster.StackStatus, controlPlane)
	}
}
