package cmd

import (
	"errors"
	"fmt"

	"github.com/devantler-tech/ekscli/pkg/di"
	"github.com/devantler-tech/ekscli/pkg/svc/state"
	"github.com/devantler-tech/ekscli/pkg/utils/notify"
	"github.com/devantler-tech/ekscli/pkg/utils/timer"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ErrDefinitionWithAll is returned when nodegroup definition flags are combined with --all.
var ErrDefinitionWithAll = errors.New("nodegroup definition flags can't be used with --all")

// ErrInvalidNodegroupBounds is returned when --min is greater than --max.
var ErrInvalidNodegroupBounds = errors.New("--min must not be greater than --max")

const createNodegroupLongDesc = `Define nodegroups and create their stacks.

With --group-name the given flags are written to the nodegroup definition in the groups
layer, creating the nodegroup when it does not exist yet. Stacks are only created with
--yes: all stacks are issued first and awaited together, then the worker IAM policies
are attached to each node role and the aws-auth ConfigMap is synced once. Stacks that
already exist are adopted.

Examples:
  # Define a nodegroup without creating it
  eks create-nodegroup -c demo -g workers --instance-type m5.large --min 1 --max 3

  # Define and create a nodegroup
  eks create-nodegroup -c demo -g workers --taints dedicated=critical:NoSchedule --yes

  # Create every nodegroup defined for the cluster
  eks create-nodegroup -c demo --all --yes`

// nodegroupDefinition holds the create-nodegroup flags describing a nodegroup.
type nodegroupDefinition struct {
	ami                string
	instanceType       string
	numSubnets         int
	subnets            []int
	sshKeyName         string
	volumeSize         int
	taints             string
	minSize            int
	maxSize            int
	enableDockerBridge bool
}

func (d *nodegroupDefinition) register(flags *pflag.FlagSet) {
	flags.StringVar(&d.ami, "ami", "", "AMI of the nodes, resolved from the Kubernetes version when unset")
	flags.StringVar(&d.instanceType, "instance-type", "", "EC2 instance type (m5.xlarge etc...)")
	flags.IntVar(&d.numSubnets, "num-subnets", 0, "number of subnets (AZs) to spread the nodegroup across")
	flags.IntSliceVar(&d.subnets, "subnets", nil, "1-based indices of the cluster subnets to use")
	flags.StringVar(&d.sshKeyName, "ssh-key-name", "", "name of the default SSH key of the nodes")
	flags.IntVar(&d.volumeSize, "volume-size", 0, "root volume size of the nodes in GiB")
	flags.StringVar(&d.taints, "taints", "", `Kubernetes taints of the nodes, e.g. "dedicated=critical:NoSchedule"`)
	flags.IntVar(&d.minSize, "min", 0, "minimum number of nodes")
	flags.IntVar(&d.maxSize, "max", 0, "maximum number of nodes")
	flags.BoolVar(&d.enableDockerBridge, "enable-docker-bridge", false, "enable the docker bridge on the nodes")
}

// definitionKeys maps the definition flags onto their groups layer keys.
//
//nolint:gochecknoglobals // static flag table
var definitionKeys = map[string]string{
	"ami":                  "ami",
	"instance-type":        "instance_type",
	"num-subnets":          "num_subnets",
	"subnets":              "subnets",
	"ssh-key-name":         "ssh_key_name",
	"volume-size":          "volume_size",
	"taints":               "taints",
	"min":                  "min",
	"max":                  "max",
	"enable-docker-bridge": "enable_docker_bridge",
}

// fields returns the groups layer document of the definition flags set on the command line.
func (d *nodegroupDefinition) fields(flags *pflag.FlagSet, group string) (state.Document, error) {
	if flags.Changed("min") && flags.Changed("max") && d.minSize > d.maxSize {
		return nil, fmt.Errorf("%w: min %d, max %d", ErrInvalidNodegroupBounds, d.minSize, d.maxSize)
	}

	values := map[string]any{
		"ami":                  d.ami,
		"instance-type":        d.instanceType,
		"num-subnets":          d.numSubnets,
		"subnets":              d.subnets,
		"ssh-key-name":         d.sshKeyName,
		"volume-size":          d.volumeSize,
		"taints":               d.taints,
		"min":                  d.minSize,
		"max":                  d.maxSize,
		"enable-docker-bridge": d.enableDockerBridge,
	}

	fields := state.Document{"group_name": group}

	for flag, key := range definitionKeys {
		if flags.Changed(flag) {
			fields[key] = values[flag]
		}
	}

	return fields, nil
}

func definitionChanged(flags *pflag.FlagSet) bool {
	for flag := range definitionKeys {
		if flags.Changed(flag) {
			return true
		}
	}

	return false
}

// NewCreateNodegroupCmd creates the create-nodegroup command.
func NewCreateNodegroupCmd(runtimeContainer *di.Runtime) *cobra.Command {
	var (
		groups     []string
		all        bool
		create     bool
		definition nodegroupDefinition
	)

	cmd := &cobra.Command{
		Use:          "create-nodegroup",
		Short:        "Define and create nodegroups",
		Long:         createNodegroupLongDesc,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: runWithServices(runtimeContainer, serviceOptions{},
			func(cmd *cobra.Command, _ []string, services *di.Services, tmr timer.Timer) error {
				ctx := cmd.Context()

				if all && definitionChanged(cmd.Flags()) {
					return ErrDefinitionWithAll
				}

				selected, err := selectGroups(cmd, services, groups, all)
				if err != nil {
					return err
				}

				if !all {
					for _, group := range selected {
						fields, err := definition.fields(cmd.Flags(), group)
						if err != nil {
							return err
						}

						err = services.Store.UpdateNodegroup(ctx, services.Cluster, fields)
						if err != nil {
							return err
						}

						notify.Successf(cmd.OutOrStdout(), "nodegroup %s defined", group)
					}
				}

				if !create {
					notify.Infof(cmd.OutOrStdout(), "pass --yes to create the stacks of %v", selected)

					return nil
				}

				notify.Titlef(cmd.OutOrStdout(), "📦", "Creating %d nodegroups of %s...",
					len(selected), services.Cluster)

				_, err = services.NodeGroups.CreateAll(ctx, services.Cluster, selected)
				if err != nil {
					return err
				}

				notify.SuccessWithTimerf(cmd.OutOrStdout(), tmr, "nodegroups %v created", selected)

				return nil
			}),
	}

	addGroupFlags(cmd, &groups, &all)
	definition.register(cmd.Flags())

	cmd.Flags().BoolVarP(&create, "yes", "y", false, "create the nodegroup stacks")

	return cmd
}
