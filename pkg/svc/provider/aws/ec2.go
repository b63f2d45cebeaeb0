package aws

import (
	"context"
	"fmt"
	"strconv"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/sirupsen/logrus"
)

const (
	allProtocols = "-1"
	anywhereCIDR = "0.0.0.0/0"
)

// Network manages security groups and VPC peering.
type Network struct {
	client EC2API
	logger logrus.FieldLogger
}

// NewNetwork creates a Network wrapper.
func NewNetwork(client EC2API, logger logrus.FieldLogger) *Network {
	return &Network{client: client, logger: logger}
}

// SecurityGroupName returns the name of the cluster-wide network security group.
func SecurityGroupName(cluster string) string {
	return cluster + "-SG"
}

// EnsureClusterSecurityGroup returns the id of the cluster network security group in
// vpcID, creating it when missing. Members may talk to each other on every protocol and
// each open port accepts TCP from anywhere.
func (n *Network) EnsureClusterSecurityGroup(
	ctx context.Context,
	cluster, vpcID string,
	openPorts []int,
) (string, error) {
	name := SecurityGroupName(cluster)
	logger := n.logger.WithField("security_group", name)

	groupID, err := n.findSecurityGroup(ctx, vpcID, name)
	if err != nil {
		return "", err
	}

	if groupID == "" {
		logger.Info("creating security group")

		out, err := n.client.CreateSecurityGroup(ctx, &ec2.CreateSecurityGroupInput{
			GroupName:   sdkaws.String(name),
			Description: sdkaws.String("Cluster communication for EKS cluster " + cluster),
			VpcId:       sdkaws.String(vpcID),
			TagSpecifications: []ec2types.TagSpecification{{
				ResourceType: ec2types.ResourceTypeSecurityGroup,
				Tags:         []ec2types.Tag{{Key: sdkaws.String("eks-cluster"), Value: sdkaws.String(cluster)}},
			}},
		})
		if err != nil {
			return "", fmt.Errorf("create security group %s: %w", name, err)
		}

		groupID = sdkaws.ToString(out.GroupId)
	} else {
		logger.WithField("group_id", groupID).Warn("security group already exists, reusing it")
	}

	permissions := []ec2types.IpPermission{{
		IpProtocol: sdkaws.String(allProtocols),
		UserIdGroupPairs: []ec2types.UserIdGroupPair{{
			GroupId:     sdkaws.String(groupID),
			Description: sdkaws.String("Allow members of " + name + " to communicate"),
		}},
	}}

	for _, port := range openPorts {
		permissions = append(permissions, ec2types.IpPermission{
			IpProtocol: sdkaws.String("tcp"),
			FromPort:   sdkaws.Int32(int32(port)), //nolint:gosec // ports are validated by the caller
			ToPort:     sdkaws.Int32(int32(port)), //nolint:gosec // ports are validated by the caller
			IpRanges: []ec2types.IpRange{{
				CidrIp:      sdkaws.String(anywhereCIDR),
				Description: sdkaws.String("open port " + strconv.Itoa(port)),
			}},
		})
	}

	err = n.authorizeIngress(ctx, groupID, permissions)
	if err != nil {
		return "", err
	}

	logger.WithField("group_id", groupID).Info("security group ready")

	return groupID, nil
}

// DeleteSecurityGroup deletes a security group. A missing group is not an error.
func (n *Network) DeleteSecurityGroup(ctx context.Context, groupID string) error {
	n.logger.WithField("group_id", groupID).Info("deleting security group")

	_, err := n.client.DeleteSecurityGroup(ctx, &ec2.DeleteSecurityGroupInput{GroupId: sdkaws.String(groupID)})
	if err != nil && !hasErrorCode(err, "InvalidGroup.NotFound") {
		return fmt.Errorf("delete security group %s: %w", groupID, err)
	}

	return nil
}

// PeeringRequest describes peering the cluster VPC with another VPC.
type PeeringRequest struct {
	Cluster      string
	ClusterVPCID string
	NodesSGID    string
	PeerVPCID    string
	PeerSGID     string
}

// PeerVPCs creates and accepts a peering connection between the cluster VPC and the
// peer VPC, routes each VPC's route tables to the other's CIDR through it, and lets
// the peer security group accept all traffic from the cluster nodes. It returns the
// peering connection id.
func (n *Network) PeerVPCs(ctx context.Context, req PeeringRequest) (string, error) {
	logger := n.logger.WithField("vpc", req.ClusterVPCID).WithField("peer_vpc", req.PeerVPCID)
	logger.Info("creating VPC peering connection")

	created, err := n.client.CreateVpcPeeringConnection(ctx, &ec2.CreateVpcPeeringConnectionInput{
		VpcId:     sdkaws.String(req.ClusterVPCID),
		PeerVpcId: sdkaws.String(req.PeerVPCID),
	})
	if err != nil {
		return "", fmt.Errorf("create vpc peering connection: %w", err)
	}

	peeringID := sdkaws.ToString(created.VpcPeeringConnection.VpcPeeringConnectionId)
	logger = logger.WithField("peering_connection", peeringID)

	_, err = n.client.AcceptVpcPeeringConnection(ctx, &ec2.AcceptVpcPeeringConnectionInput{
		VpcPeeringConnectionId: sdkaws.String(peeringID),
	})
	if err != nil {
		return peeringID, fmt.Errorf("accept vpc peering connection %s: %w", peeringID, err)
	}

	logger.Info("peering connection accepted, updating route tables")

	err = n.routeThrough(ctx, req.PeerVPCID, req.ClusterVPCID, peeringID)
	if err != nil {
		return peeringID, err
	}

	err = n.routeThrough(ctx, req.ClusterVPCID, req.PeerVPCID, peeringID)
	if err != nil {
		return peeringID, err
	}

	logger.WithField("security_group", req.PeerSGID).Info("allowing traffic from cluster nodes")

	err = n.authorizeIngress(ctx, req.PeerSGID, []ec2types.IpPermission{{
		IpProtocol: sdkaws.String(allProtocols),
		UserIdGroupPairs: []ec2types.UserIdGroupPair{{
			GroupId:                sdkaws.String(req.NodesSGID),
			VpcId:                  sdkaws.String(req.ClusterVPCID),
			VpcPeeringConnectionId: sdkaws.String(peeringID),
			Description:            sdkaws.String("Accept all traffic from nodes on EKS cluster " + req.Cluster),
		}},
	}})
	if err != nil {
		return peeringID, err
	}

	return peeringID, nil
}

// DeletePeering deletes a peering connection. A missing connection is not an error.
func (n *Network) DeletePeering(ctx context.Context, peeringID string) error {
	n.logger.WithField("peering_connection", peeringID).Info("deleting VPC peering connection")

	_, err := n.client.DeleteVpcPeeringConnection(ctx, &ec2.DeleteVpcPeeringConnectionInput{
		VpcPeeringConnectionId: sdkaws.String(peeringID),
	})
	if err != nil && !hasErrorCode(err, "InvalidVpcPeeringConnectionID.NotFound") {
		return fmt.Errorf("delete vpc peering connection %s: %w", peeringID, err)
	}

	return nil
}

// routeThrough points every route table of fromVPC at the CIDR of toVPC via the peering connection.
func (n *Network) routeThrough(ctx context.Context, fromVPC, toVPC, peeringID string) error {
	cidr, err := n.vpcCIDR(ctx, toVPC)
	if err != nil {
		return err
	}

	tables, err := n.client.DescribeRouteTables(ctx, &ec2.DescribeRouteTablesInput{
		Filters: []ec2types.Filter{{Name: sdkaws.String("vpc-id"), Values: []string{fromVPC}}},
	})
	if err != nil {
		return fmt.Errorf("describe route tables of %s: %w", fromVPC, err)
	}

	for _, table := range tables.RouteTables {
		tableID := sdkaws.ToString(table.RouteTableId)

		_, err = n.client.CreateRoute(ctx, &ec2.CreateRouteInput{
			RouteTableId:           sdkaws.String(tableID),
			DestinationCidrBlock:   sdkaws.String(cidr),
			VpcPeeringConnectionId: sdkaws.String(peeringID),
		})
		if err != nil && !hasErrorCode(err, "RouteAlreadyExists") {
			return fmt.Errorf("create route in %s to %s: %w", tableID, cidr, err)
		}

		n.logger.WithField("route_table", tableID).WithField("destination", cidr).Debug("route set")
	}

	return nil
}

func (n *Network) vpcCIDR(ctx context.Context, vpcID string) (string, error) {
	out, err := n.client.DescribeVpcs(ctx, &ec2.DescribeVpcsInput{VpcIds: []string{vpcID}})
	if err != nil {
		return "", fmt.Errorf("describe vpc %s: %w", vpcID, err)
	}

	if len(out.Vpcs) == 0 {
		return "", fmt.Errorf("%w: %s", ErrVPCNotFound, vpcID)
	}

	return sdkaws.ToString(out.Vpcs[0].CidrBlock), nil
}

func (n *Network) findSecurityGroup(ctx context.Context, vpcID, name string) (string, error) {
	out, err := n.client.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{
		Filters: []ec2types.Filter{
			{Name: sdkaws.String("vpc-id"), Values: []string{vpcID}},
			{Name: sdkaws.String("group-name"), Values: []string{name}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("describe security groups: %w", err)
	}

	if len(out.SecurityGroups) == 0 {
		return "", nil
	}

	return sdkaws.ToString(out.SecurityGroups[0].GroupId), nil
}

// authorizeIngress adds ingress rules one by one, skipping rules that already exist.
func (n *Network) authorizeIngress(ctx context.Context, groupID string, permissions []ec2types.IpPermission) error {
	for _, permission := range permissions {
		_, err := n.client.AuthorizeSecurityGroupIngress(ctx, &ec2.AuthorizeSecurityGroupIngressInput{
			GroupId:       sdkaws.String(groupID),
			IpPermissions: []ec2types.IpPermission{permission},
		})
		if err != nil && !hasErrorCode(err, "InvalidPermission.Duplicate") {
			return fmt.Errorf("authorize ingress on %s: %w", groupID, err)
		}
	}

	return nil
}
