package awstest

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"
)

// Route is a route created through the fake.
type Route struct {
	RouteTableID string
	Destination  string
	PeeringID    string
}

// Ingress is an ingress rule authorized through the fake.
type Ingress struct {
	GroupID    string
	Permission ec2types.IpPermission
}

// EC2 is an in-memory EC2 client.
type EC2 struct {
	mu sync.Mutex

	// VPCs maps VPC ids to their CIDR.
	VPCs map[string]string
	// RouteTables maps VPC ids to their route table ids.
	RouteTables map[string][]string
	// Instances are returned by DescribeInstances regardless of filters.
	Instances []ec2types.Instance

	SecurityGroups   map[string]string
	Peerings         map[string]string
	Accepted         []string
	DeletedPeerings  []string
	DeletedGroups    []string
	Routes           []Route
	Ingress          []Ingress
	InstanceFilters  [][]ec2types.Filter
	nextSecurityID   int
	nextPeeringIndex int
}

// NewEC2 returns an empty fake.
func NewEC2() *EC2 {
	return &EC2{
		VPCs:           map[string]string{},
		RouteTables:    map[string][]string{},
		SecurityGroups: map[string]string{},
		Peerings:       map[string]string{},
	}
}

// CreateSecurityGroup implements aws.EC2API.
func (f *EC2) CreateSecurityGroup(
	_ context.Context,
	params *ec2.CreateSecurityGroupInput,
	_ ...func(*ec2.Options),
) (*ec2.CreateSecurityGroupOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextSecurityID++
	groupID := fmt.Sprintf("sg-%04d", f.nextSecurityID)
	f.SecurityGroups[groupID] = aws.ToString(params.VpcId) + "/" + aws.ToString(params.GroupName)

	return &ec2.CreateSecurityGroupOutput{GroupId: aws.String(groupID)}, nil
}

// DescribeSecurityGroups implements aws.EC2API by matching vpc-id and group-name filters.
func (f *EC2) DescribeSecurityGroups(
	_ context.Context,
	params *ec2.DescribeSecurityGroupsInput,
	_ ...func(*ec2.Options),
) (*ec2.DescribeSecurityGroupsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var vpcID, name string

	for _, filter := range params.Filters {
		switch aws.ToString(filter.Name) {
		case "vpc-id":
			vpcID = filter.Values[0]
		case "group-name":
			name = filter.Values[0]
		}
	}

	out := &ec2.DescribeSecurityGroupsOutput{}

	for groupID, key := range f.SecurityGroups {
		if key == vpcID+"/"+name {
			out.SecurityGroups = append(out.SecurityGroups, ec2types.SecurityGroup{GroupId: aws.String(groupID)})
		}
	}

	return out, nil
}

// DeleteSecurityGroup implements aws.EC2API.
func (f *EC2) DeleteSecurityGroup(
	_ context.Context,
	params *ec2.DeleteSecurityGroupInput,
	_ ...func(*ec2.Options),
) (*ec2.DeleteSecurityGroupOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	groupID := aws.ToString(params.GroupId)
	if _, ok := f.SecurityGroups[groupID]; !ok {
		return nil, &smithy.GenericAPIError{Code: "InvalidGroup.NotFound", Message: "no such group"}
	}

	delete(f.SecurityGroups, groupID)
	f.DeletedGroups = append(f.DeletedGroups, groupID)

	return &ec2.DeleteSecurityGroupOutput{}, nil
}

// AuthorizeSecurityGroupIngress implements aws.EC2API.
func (f *EC2) AuthorizeSecurityGroupIngress(
	_ context.Context,
	params *ec2.AuthorizeSecurityGroupIngressInput,
	_ ...func(*ec2.Options),
) (*ec2.AuthorizeSecurityGroupIngressOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, permission := range params.IpPermissions {
		f.Ingress = append(f.Ingress, Ingress{GroupID: aws.ToString(params.GroupId), Permission: permission})
	}

	return &ec2.AuthorizeSecurityGroupIngressOutput{}, nil
}

// CreateVpcPeeringConnection implements aws.EC2API.
func (f *EC2) CreateVpcPeeringConnection(
	_ context.Context,
	params *ec2.CreateVpcPeeringConnectionInput,
	_ ...func(*ec2.Options),
) (*ec2.CreateVpcPeeringConnectionOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextPeeringIndex++
	peeringID := fmt.Sprintf("pcx-%04d", f.nextPeeringIndex)
	f.Peerings[peeringID] = aws.ToString(params.VpcId) + "->" + aws.ToString(params.PeerVpcId)

	return &ec2.CreateVpcPeeringConnectionOutput{
		VpcPeeringConnection: &ec2types.VpcPeeringConnection{VpcPeeringConnectionId: aws.String(peeringID)},
	}, nil
}

// AcceptVpcPeeringConnection implements aws.EC2API.
func (f *EC2) AcceptVpcPeeringConnection(
	_ context.Context,
	params *ec2.AcceptVpcPeeringConnectionInput,
	_ ...func(*ec2.Options),
) (*ec2.AcceptVpcPeeringConnectionOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Accepted = append(f.Accepted, aws.ToString(params.VpcPeeringConnectionId))

	return &ec2.AcceptVpcPeeringConnectionOutput{}, nil
}

// DeleteVpcPeeringConnection implements aws.EC2API.
func (f *EC2) DeleteVpcPeeringConnection(
	_ context.Context,
	params *ec2.DeleteVpcPeeringConnectionInput,
	_ ...func(*ec2.Options),
) (*ec2.DeleteVpcPeeringConnectionOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	peeringID := aws.ToString(params.VpcPeeringConnectionId)
	if _, ok := f.Peerings[peeringID]; !ok {
		return nil, &smithy.GenericAPIError{Code: "InvalidVpcPeeringConnectionID.NotFound", Message: "not found"}
	}

	delete(f.Peerings, peeringID)
	f.DeletedPeerings = append(f.DeletedPeerings, peeringID)

	return &ec2.DeleteVpcPeeringConnectionOutput{}, nil
}

// DescribeVpcs implements aws.EC2API.
func (f *EC2) DescribeVpcs(
	_ context.Context,
	params *ec2.DescribeVpcsInput,
	_ ...func(*ec2.Options),
) (*ec2.DescribeVpcsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := &ec2.DescribeVpcsOutput{}

	for _, vpcID := range params.VpcIds {
		if cidr, ok := f.VPCs[vpcID]; ok {
			out.Vpcs = append(out.Vpcs, ec2types.Vpc{VpcId: aws.String(vpcID), CidrBlock: aws.String(cidr)})
		}
	}

	return out, nil
}

// DescribeRouteTables implements aws.EC2API by matching the vpc-id filter.
func (f *EC2) DescribeRouteTables(
	_ context.Context,
	params *ec2.DescribeRouteTablesInput,
	_ ...func(*ec2.Options),
) (*ec2.DescribeRouteTablesOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := &ec2.DescribeRouteTablesOutput{}

	for _, filter := range params.Filters {
		if aws.ToString(filter.Name) != "vpc-id" {
			continue
		}

		for _, vpcID := range filter.Values {
			for _, tableID := range f.RouteTables[vpcID] {
				out.RouteTables = append(out.RouteTables, ec2types.RouteTable{
					RouteTableId: aws.String(tableID),
					VpcId:        aws.String(vpcID),
				})
			}
		}
	}

	return out, nil
}

// CreateRoute implements aws.EC2API.
func (f *EC2) CreateRoute(
	_ context.Context,
	params *ec2.CreateRouteInput,
	_ ...func(*ec2.Options),
) (*ec2.CreateRouteOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Routes = append(f.Routes, Route{
		RouteTableID: aws.ToString(params.RouteTableId),
		Destination:  aws.ToString(params.DestinationCidrBlock),
		PeeringID:    aws.ToString(params.VpcPeeringConnectionId),
	})

	return &ec2.CreateRouteOutput{Return: aws.Bool(true)}, nil
}

// DescribeInstances implements aws.EC2API. Filters are recorded, not applied.
func (f *EC2) DescribeInstances(
	_ context.Context,
	params *ec2.DescribeInstancesInput,
	_ ...func(*ec2.Options),
) (*ec2.DescribeInstancesOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.InstanceFilters = append(f.InstanceFilters, params.Filters)

	return &ec2.DescribeInstancesOutput{
		Reservations: []ec2types.Reservation{{Instances: f.Instances}},
	}, nil
}
