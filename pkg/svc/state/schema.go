package state

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// BootstrapLayer is the schema of the config layer.
type BootstrapLayer struct {
	Region            string `json:"region"`
	KubernetesVersion string `json:"kubernetes_version,omitempty"`
	CIDR              string `json:"cidr,omitempty"`
	Subnet1AZ         string `json:"subnet1_az,omitempty"`
	Subnet2AZ         string `json:"subnet2_az,omitempty"`
	Subnet3AZ         string `json:"subnet3_az,omitempty"`
	WarmIPTarget      int    `json:"warm_ip_target,omitempty"`
	OpenPorts         []int  `json:"open_ports,omitempty"`
}

// SubnetAZs returns the availability zones of the three cluster subnets.
func (b BootstrapLayer) SubnetAZs() []string {
	return []string{b.Subnet1AZ, b.Subnet2AZ, b.Subnet3AZ}
}

// User binds an IAM user to a Kubernetes username and groups.
type User struct {
	Username string   `json:"username"`
	Groups   []string `json:"groups"`
}

// StateLayer is the schema of the state layer.
type StateLayer struct {
	VpcID                string          `json:"vpc_id,omitempty"`
	Subnets              []string        `json:"subnets,omitempty"`
	ControlPlaneSGID     string          `json:"control_plane_sg_id,omitempty"`
	NodesSGID            string          `json:"nodes_sg_id,omitempty"`
	ClusterARN           string          `json:"cluster_arn,omitempty"`
	EKSRoleARN           string          `json:"eks_role_arn,omitempty"`
	IAMPolicies          []string        `json:"iam_policies,omitempty"`
	Users                map[string]User `json:"users,omitempty"`
	NetworkSGID          string          `json:"network_sg_id,omitempty"`
	PeeringConnectionIDs []string        `json:"peering_connection_ids,omitempty"`
}

// SpotinstRef identifies the elastigroup a nodegroup was exported to.
type SpotinstRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// NodeGroup is one entry of the groups layer.
type NodeGroup struct {
	GroupName          string       `json:"group_name"`
	InstanceType       string       `json:"instance_type,omitempty"`
	AMI                string       `json:"ami,omitempty"`
	Min                int          `json:"min,omitempty"`
	Max                int          `json:"max,omitempty"`
	Desired            int          `json:"desired,omitempty"`
	VolumeSize         int          `json:"volume_size,omitempty"`
	SSHKeyName         string       `json:"ssh_key_name,omitempty"`
	Taints             string       `json:"taints,omitempty"`
	NumSubnets         int          `json:"num_subnets,omitempty"`
	Subnets            []int        `json:"subnets,omitempty"`
	EnableDockerBridge bool         `json:"enable_docker_bridge,omitempty"`
	Spotinst           *SpotinstRef `json:"spotinst,omitempty"`
}

// GroupsLayer is the schema of the groups layer.
type GroupsLayer struct {
	Groups map[string]NodeGroup `json:"groups,omitempty"`
}

// ClusterConfig is the typed merged view of all layers.
type ClusterConfig struct {
	ClusterName string `json:"cluster_name"`

	BootstrapLayer `json:",squash"`
	StateLayer     `json:",squash"`
	GroupsLayer    `json:",squash"`
}

// decode converts a loosely typed document into out, rejecting unknown keys.
func decode(input any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}

	err = decoder.Decode(input)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidLayer, err)
	}

	return nil
}

// validateLayer checks doc against the schema of layer.
func validateLayer(layer Layer, doc Document) error {
	var target any

	switch layer {
	case LayerConfig:
		target = &BootstrapLayer{}
	case LayerState:
		target = &StateLayer{}
	case LayerGroups:
		target = &GroupsLayer{}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownLayer, layer)
	}

	err := decode(doc, target)
	if err != nil {
		return fmt.Errorf("%s: %w", layer, err)
	}

	return nil
}
