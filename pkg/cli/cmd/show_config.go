package cmd

import (
	"github.com/devantler-tech/ekscli/pkg/di"
	"github.com/devantler-tech/ekscli/pkg/svc/state"
	"github.com/devantler-tech/ekscli/pkg/utils/notify"
	"github.com/devantler-tech/ekscli/pkg/utils/timer"
	"github.com/spf13/cobra"
)

const showConfigLongDesc = `Print the configuration of a cluster as JSON.

Without flags the merged view of all three layers is printed. --layer prints one raw
layer (config, state or groups) and --group-name prints the resolved parameters of
one nodegroup, defaults included.`

// NewShowConfigCmd creates the show-config command.
func NewShowConfigCmd(runtimeContainer *di.Runtime) *cobra.Command {
	var group, layerName string

	cmd := &cobra.Command{
		Use:          "show-config",
		Short:        "Print the configuration of a cluster",
		Long:         showConfigLongDesc,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: runWithServices(runtimeContainer, serviceOptions{},
			func(cmd *cobra.Command, _ []string, services *di.Services, _ timer.Timer) error {
				ctx := cmd.Context()

				var (
					doc any
					err error
				)

				switch {
				case group != "":
					doc, err = services.Store.ForGroup(ctx, services.Cluster, group)
				case layerName != "":
					var layer state.Layer

					layer, err = state.ParseLayer(layerName)
					if err != nil {
						return err
					}

					doc, err = services.Store.ReadLayer(ctx, services.Cluster, layer)
				default:
					doc, err = services.Store.Read(ctx, services.Cluster)
				}

				if err != nil {
					return err
				}

				return notify.Documentf(cmd.OutOrStdout(), doc)
			}),
	}

	cmd.Flags().StringVarP(&group, "group-name", "g", "", "print the resolved parameters of this nodegroup")
	cmd.Flags().StringVar(&layerName, "layer", "", "print one layer (config, state, groups)")

	return cmd
}
