package eksprovisioner

import (
	"fmt"
	"net"

	"github.com/apparentlymart/go-cidr/cidr"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/devantler-tech/ekscli/assets"
	"github.com/devantler-tech/ekscli/pkg/svc/stack"
	"github.com/devantler-tech/ekscli/pkg/svc/state"
)

// SubnetBlocks splits a VPC block into the three subnet blocks of a cluster: the first
// two quarters and the upper half, so 192.168.0.0/16 yields 192.168.0.0/18,
// 192.168.64.0/18 and 192.168.128.0/17.
func SubnetBlocks(vpcBlock string) ([3]string, error) {
	_, network, err := net.ParseCIDR(vpcBlock)
	if err != nil {
		return [3]string{}, fmt.Errorf("%w: %s: %w", ErrInvalidCIDR, vpcBlock, err)
	}

	ones, bits := network.Mask.Size()
	if bits-ones < 2 {
		return [3]string{}, fmt.Errorf("%w: %s is too small for three subnets", ErrInvalidCIDR, vpcBlock)
	}

	layout := []struct{ newBits, num int }{{2, 0}, {2, 1}, {1, 1}}

	var blocks [3]string

	for i, part := range layout {
		subnet, err := cidr.Subnet(network, part.newBits, part.num)
		if err != nil {
			return [3]string{}, fmt.Errorf("%w: %s: %w", ErrInvalidCIDR, vpcBlock, err)
		}

		blocks[i] = subnet.String()
	}

	return blocks, nil
}

// ClusterStackInput builds the network stack of a cluster from its configuration.
func ClusterStackInput(cfg *state.ClusterConfig) (stack.CreateInput, error) {
	blocks, err := SubnetBlocks(cfg.CIDR)
	if err != nil {
		return stack.CreateInput{}, err
	}

	body, err := assets.ClusterTemplate(assets.ClusterTemplateData{OpenPorts: cfg.OpenPorts})
	if err != nil {
		return stack.CreateInput{}, err
	}

	_, network, _ := net.ParseCIDR(cfg.CIDR)
	azs := cfg.SubnetAZs()

	return stack.CreateInput{
		Name:         stack.ClusterStackName(cfg.ClusterName),
		TemplateBody: body,
		Parameters: []stack.Parameter{
			{Key: "VpcBlock", Value: network.String()},
			{Key: "Subnet01Block", Value: blocks[0]},
			{Key: "Subnet02Block", Value: blocks[1]},
			{Key: "Subnet03Block", Value: blocks[2]},
			{Key: "Subnet01AZ", Value: azs[0]},
			{Key: "Subnet02AZ", Value: azs[1]},
			{Key: "Subnet03AZ", Value: azs[2]},
			{Key: "ClusterName", Value: cfg.ClusterName},
		},
		Tags:         []stack.Tag{{Key: stack.TagCluster, Value: cfg.ClusterName}},
		Capabilities: []types.Capability{types.CapabilityCapabilityNamedIam},
	}, nil
}

// bootstrapOverrides returns the non-zero fields of overrides as a config layer
// document. The region is fixed at bootstrap and never overridden.
func bootstrapOverrides(overrides state.BootstrapLayer) state.Document {
	doc := state.Document{}

	set := func(key, value string) {
		if value != "" {
			doc[key] = value
		}
	}

	set("kubernetes_version", overrides.KubernetesVersion)
	set("cidr", overrides.CIDR)
	set("subnet1_az", overrides.Subnet1AZ)
	set("subnet2_az", overrides.Subnet2AZ)
	set("subnet3_az", overrides.Subnet3AZ)

	if overrides.WarmIPTarget > 0 {
		doc["warm_ip_target"] = overrides.WarmIPTarget
	}

	if len(overrides.OpenPorts) > 0 {
		doc["open_ports"] = overrides.OpenPorts
	}

	return doc
}
