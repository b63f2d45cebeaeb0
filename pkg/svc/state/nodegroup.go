package state

import (
	"context"
	"fmt"
	"strings"
)

// Nodegroup defaults applied by ForGroup when the stored group omits a field.
const (
	DefaultInstanceType = "m5.xlarge"
	DefaultVolumeSize   = 100
	DefaultMinSize      = 1
	DefaultMaxSize      = 1
	DefaultNumSubnets   = 3
)

// nodegroupFields is the set of keys UpdateNodegroup accepts.
//
//nolint:gochecknoglobals // static whitelist
var nodegroupFields = map[string]struct{}{
	"group_name":           {},
	"ami":                  {},
	"instance_type":        {},
	"num_subnets":          {},
	"subnets":              {},
	"ssh_key_name":         {},
	"volume_size":          {},
	"taints":               {},
	"min":                  {},
	"max":                  {},
	"desired":              {},
	"enable_docker_bridge": {},
	"spotinst":             {},
}

// NodeGroupSpec is a nodegroup with defaults applied, cluster-wide fields inherited,
// and its subnet indices resolved to subnet ids.
type NodeGroupSpec struct {
	NodeGroup

	ClusterName       string   `json:"cluster_name"`
	Region            string   `json:"region"`
	KubernetesVersion string   `json:"kubernetes_version,omitempty"`
	VpcID             string   `json:"vpc_id,omitempty"`
	ControlPlaneSGID  string   `json:"control_plane_sg_id,omitempty"`
	NodesSGID         string   `json:"nodes_sg_id,omitempty"`
	SubnetIDs         []string `json:"subnet_ids"`
	IAMPolicies       []string `json:"iam_policies,omitempty"`
}

// JoinedSubnetIDs returns the resolved subnet ids as a comma separated list.
func (s *NodeGroupSpec) JoinedSubnetIDs() string {
	return strings.Join(s.SubnetIDs, ",")
}

func nodegroupDefaults() Document {
	return Document{
		"instance_type": DefaultInstanceType,
		"volume_size":   float64(DefaultVolumeSize),
		"min":           float64(DefaultMinSize),
		"max":           float64(DefaultMaxSize),
		"num_subnets":   float64(DefaultNumSubnets),
	}
}

// Group returns a nodegroup with defaults applied and the cluster-wide fields
// inherited. Unlike ForGroup it leaves the subnets unresolved, so it works on
// clusters whose network was never created.
func (s *Store) Group(ctx context.Context, cluster, group string) (*NodeGroupSpec, error) {
	spec, _, err := s.group(ctx, cluster, group)

	return spec, err
}

// ForGroup returns the group-scoped view of a nodegroup.
// It fails with ErrGroupNotFound when the group is not defined.
func (s *Store) ForGroup(ctx context.Context, cluster, group string) (*NodeGroupSpec, error) {
	spec, subnets, err := s.group(ctx, cluster, group)
	if err != nil {
		return nil, err
	}

	spec.SubnetIDs, err = resolveSubnets(spec.NodeGroup, subnets)
	if err != nil {
		return nil, fmt.Errorf("nodegroup %s: %w", group, err)
	}

	return spec, nil
}

func (s *Store) group(ctx context.Context, cluster, group string) (*NodeGroupSpec, []string, error) {
	doc, err := s.Read(ctx, cluster)
	if err != nil {
		return nil, nil, err
	}

	groups, _ := doc["groups"].(Document)

	stored, ok := groups[group].(Document)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q in cluster %s", ErrGroupNotFound, group, cluster)
	}

	var cfg ClusterConfig

	err = decode(doc, &cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("cluster %s: %w", cluster, err)
	}

	spec := &NodeGroupSpec{
		ClusterName:       cluster,
		Region:            cfg.Region,
		KubernetesVersion: cfg.KubernetesVersion,
		VpcID:             cfg.VpcID,
		ControlPlaneSGID:  cfg.ControlPlaneSGID,
		NodesSGID:         cfg.NodesSGID,
		IAMPolicies:       cfg.IAMPolicies,
	}

	err = decode(DeepMerge(nodegroupDefaults(), stored), &spec.NodeGroup)
	if err != nil {
		return nil, nil, fmt.Errorf("nodegroup %s: %w", group, err)
	}

	if spec.GroupName == "" {
		spec.GroupName = group
	}

	if spec.Desired == 0 {
		spec.Desired = spec.Min
	}

	return spec, cfg.Subnets, nil
}

// resolveSubnets maps 1-based subnet indices onto the cluster's subnet ids.
// Without explicit indices the first NumSubnets subnets are used.
func resolveSubnets(group NodeGroup, subnetIDs []string) ([]string, error) {
	indices := group.Subnets
	if len(indices) == 0 {
		for i := 1; i <= group.NumSubnets; i++ {
			indices = append(indices, i)
		}
	}

	resolved := make([]string, 0, len(indices))

	for _, index := range indices {
		if index < 1 || index > len(subnetIDs) {
			return nil, fmt.Errorf(
				"%w: %d (cluster has %d subnets)",
				ErrSubnetIndexOutOfRange,
				index,
				len(subnetIDs),
			)
		}

		resolved = append(resolved, subnetIDs[index-1])
	}

	return resolved, nil
}

// UpdateNodegroup writes the recognized keys of fields under groups.<group_name>.
// Unrecognized keys and nil values are dropped. It fails with
// ErrInvalidNodegroupName before persisting anything when group_name is missing or empty.
func (s *Store) UpdateNodegroup(ctx context.Context, cluster string, fields Document) error {
	name, _ := fields["group_name"].(string)
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: %q", ErrInvalidNodegroupName, name)
	}

	filtered := Document{}

	for key, value := range fields {
		if _, ok := nodegroupFields[key]; !ok || value == nil {
			continue
		}

		filtered[key] = value
	}

	return s.WriteLayer(ctx, cluster, LayerGroups, Document{
		"groups": Document{name: filtered},
	})
}
