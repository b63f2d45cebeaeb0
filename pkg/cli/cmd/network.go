package cmd

import (
	"github.com/devantler-tech/ekscli/pkg/di"
	eksprovisioner "github.com/devantler-tech/ekscli/pkg/svc/provisioner/cluster/eks"
	"github.com/devantler-tech/ekscli/pkg/utils/notify"
	"github.com/devantler-tech/ekscli/pkg/utils/timer"
	"github.com/spf13/cobra"
)

// NewCreateClusterSecurityGroupCmd creates the create-cluster-security-group command.
func NewCreateClusterSecurityGroupCmd(runtimeContainer *di.Runtime) *cobra.Command {
	var openPorts []int

	cmd := &cobra.Command{
		Use:   "create-cluster-security-group",
		Short: "Create the network security group of a cluster",
		Long: `Create the security group that opens the given ports to the world and attach it to
the cluster VPC. An existing group is reused.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: runWithServices(runtimeContainer, serviceOptions{},
			func(cmd *cobra.Command, _ []string, services *di.Services, tmr timer.Timer) error {
				groupID, err := services.Provisioner.SecurityGroup(cmd.Context(), services.Cluster, openPorts)
				if err != nil {
					return err
				}

				notify.SuccessWithTimerf(cmd.OutOrStdout(), tmr, "security group %s ready", groupID)

				return nil
			}),
	}

	cmd.Flags().IntSliceVar(&openPorts, "open-ports", nil, "TCP ports opened to the world")

	return cmd
}

// NewSetInterVPCNetworkingCmd creates the set-inter-vpc-networking command.
func NewSetInterVPCNetworkingCmd(runtimeContainer *di.Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "set-inter-vpc-networking TO_VPC TO_SG",
		Short: "Peer the cluster VPC with another VPC",
		Long: `Request and accept a peering connection between the cluster VPC and TO_VPC, route
both CIDR blocks over it and open the node security group to TO_SG.`,
		Args:         cobra.ExactArgs(2), //nolint:mnd
		SilenceUsage: true,
		RunE: runWithServices(runtimeContainer, serviceOptions{},
			func(cmd *cobra.Command, args []string, services *di.Services, tmr timer.Timer) error {
				peeringID, err := services.Provisioner.PeerVPC(cmd.Context(), services.Cluster, args[0], args[1])
				if err != nil {
					return err
				}

				notify.SuccessWithTimerf(cmd.OutOrStdout(), tmr, "peering connection %s active", peeringID)

				return nil
			}),
	}
}

// NewUpdateDNSCmd creates the update-dns command.
func NewUpdateDNSCmd(runtimeContainer *di.Runtime) *cobra.Command {
	var record eksprovisioner.DNSRecord

	cmd := &cobra.Command{
		Use:   "update-dns HOSTNAME SERVICE",
		Short: "Point a hostname at the load balancer of a service",
		Long: `Upsert a Route53 alias record from HOSTNAME to the load balancer fronting SERVICE.

Examples:
  eks update-dns -c demo api.example.com ingress --namespace ingress \
    --hosted-zone-id Z111 --elb-hosted-zone-id Z222`,
		Args:         cobra.ExactArgs(2), //nolint:mnd
		SilenceUsage: true,
		RunE: runWithServices(runtimeContainer, serviceOptions{},
			func(cmd *cobra.Command, args []string, services *di.Services, tmr timer.Timer) error {
				record.Hostname = args[0]
				record.Service = args[1]

				err := services.Provisioner.UpdateDNS(cmd.Context(), services.Cluster, record)
				if err != nil {
					return err
				}

				notify.SuccessWithTimerf(cmd.OutOrStdout(), tmr, "%s points at service %s", record.Hostname, record.Service)

				return nil
			}),
	}

	cmd.Flags().StringVar(&record.Namespace, "namespace", eksprovisioner.DefaultServiceNamespace,
		"namespace of the service")
	cmd.Flags().StringVar(&record.HostedZoneID, "hosted-zone-id", "", "hosted zone of the record")
	cmd.Flags().StringVar(&record.ELBHostedZoneID, "elb-hosted-zone-id", "", "hosted zone of the load balancer")

	_ = cmd.MarkFlagRequired("hosted-zone-id")
	_ = cmd.MarkFlagRequired("elb-hosted-zone-id")

	return cmd
}
