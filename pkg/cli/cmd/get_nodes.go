package cmd

import (
	"fmt"

	"github.com/devantler-tech/ekscli/pkg/di"
	awsprovider "github.com/devantler-tech/ekscli/pkg/svc/provider/aws"
	"github.com/devantler-tech/ekscli/pkg/utils/timer"
	"github.com/spf13/cobra"
)

// NewGetNodesCmd creates the get-nodes command.
func NewGetNodesCmd(runtimeContainer *di.Runtime) *cobra.Command {
	var group string

	cmd := &cobra.Command{
		Use:          "get-nodes",
		Short:        "List the EC2 worker instances of a cluster",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: runWithServices(runtimeContainer, serviceOptions{},
			func(cmd *cobra.Command, _ []string, services *di.Services, _ timer.Timer) error {
				prov := awsprovider.NewProvider(services.Clients.EKS, services.Clients.EC2)

				nodes, err := prov.ListNodes(cmd.Context(), services.Cluster, group)
				if err != nil {
					return err
				}

				if len(nodes) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No nodes found.")

					return nil
				}

				for _, node := range nodes {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\t%s\n",
						node.Name, node.NodeGroup, node.InstanceType, node.PrivateDNSName, node.State)
				}

				return nil
			}),
	}

	cmd.Flags().StringVarP(&group, "group-name", "g", "", "only list nodes of this nodegroup")

	return cmd
}
