package nodegroup

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	awsprovider "github.com/devantler-tech/ekscli/pkg/svc/provider/aws"
	"github.com/devantler-tech/ekscli/pkg/svc/stack"
	"github.com/devantler-tech/ekscli/pkg/svc/state"
)

// amiTable maps a Kubernetes minor version and a region to an EKS optimized AMI.
type amiTable map[string]map[string]string

//nolint:gochecknoglobals // static lookup table
var amis = amiTable{
	"1.12": {
		"us-west-2": "ami-0923e4b35a30a5f53",
		"us-east-1": "ami-0abcb9f9190e867ab",
		"us-east-2": "ami-04ea7cb66af82ae4a",
		"us-west-1": "ami-03612357ac9da2c7d",
	},
	"1.13": {
		"us-west-2": "ami-089d3b6350c1769a6",
		"us-east-1": "ami-08c4955bcc43b124e",
		"us-east-2": "ami-07ebcae043cf995aa",
	},
}

//nolint:gochecknoglobals // static lookup table
var gpuAMIs = amiTable{
	"1.12": {
		"us-west-2": "ami-0bebf2322fd52a42e",
		"us-east-1": "ami-0cb7959f92429410a",
		"us-east-2": "ami-0118b61dc2312dee2",
		"us-west-1": "ami-047637529a86c7237",
	},
	"1.13": {
		"us-west-2": "ami-08e5329e1dbf22c6a",
		"us-east-1": "ami-02af865c0f3b337f2",
		"us-east-2": "ami-01f82bb66c17faf20",
	},
}

//nolint:gochecknoglobals // static list
var gpuInstancePrefixes = []string{"p2.", "p3."}

// BaselinePolicies are attached to every worker role.
//
//nolint:gochecknoglobals // static list
var BaselinePolicies = []string{
	"AmazonEKSWorkerNodePolicy",
	"AmazonEKS_CNI_Policy",
	"AmazonEC2ContainerRegistryReadOnly",
}

// parameterNames maps resolved nodegroup fields to nodegroup template parameters.
// Fields without an entry are not template inputs.
//
//nolint:gochecknoglobals // static lookup table
var parameterNames = []struct {
	field     string
	parameter string
}{
	{field: "cluster_name", parameter: "ClusterName"},
	{field: "control_plane_sg_id", parameter: "ClusterControlPlaneSecurityGroup"},
	{field: "nodes_sg_id", parameter: "ClusterSecurityGroup"},
	{field: "min", parameter: "NodeAutoScalingGroupMinSize"},
	{field: "max", parameter: "NodeAutoScalingGroupMaxSize"},
	{field: "desired", parameter: "NodeAutoScalingGroupDesiredCapacity"},
	{field: "instance_type", parameter: "NodeInstanceType"},
	{field: "ami", parameter: "NodeImageId"},
	{field: "volume_size", parameter: "NodeVolumeSize"},
	{field: "ssh_key_name", parameter: "KeyName"},
	{field: "vpc_id", parameter: "VpcId"},
	{field: "subnets", parameter: "Subnets"},
	{field: "group_name", parameter: "NodeGroupName"},
	{field: "iam_policies", parameter: "NodeGroupIAMPolicies"},
	{field: "bootstrap_args", parameter: "BootstrapArguments"},
}

// IsGPUInstance reports whether instanceType belongs to a GPU instance family.
func IsGPUInstance(instanceType string) bool {
	for _, prefix := range gpuInstancePrefixes {
		if strings.HasPrefix(instanceType, prefix) {
			return true
		}
	}

	return false
}

// ResolveAMI returns the EKS optimized AMI for the Kubernetes version and region,
// choosing the GPU variant for GPU instance types. Patch versions are ignored.
func ResolveAMI(kubernetesVersion, region, instanceType string) (string, error) {
	version, err := semver.NewVersion(kubernetesVersion)
	if err != nil {
		return "", fmt.Errorf("%w: invalid kubernetes version %q: %w", ErrAMINotFound, kubernetesVersion, err)
	}

	minor := fmt.Sprintf("%d.%d", version.Major(), version.Minor())

	table := amis
	if IsGPUInstance(instanceType) {
		table = gpuAMIs
	}

	ami, ok := table[minor][region]
	if !ok {
		return "", fmt.Errorf(
			"%w for kubernetes %s in region %s (instance type %s)",
			ErrAMINotFound,
			minor,
			region,
			instanceType,
		)
	}

	return ami, nil
}

// BootstrapArguments returns the arguments passed to the node bootstrap script.
func BootstrapArguments(group state.NodeGroup) string {
	kubeletFlags := "--node-labels=kubernetes.io/role=node,eks/node-group=" + strings.ToLower(group.GroupName)
	if group.Taints != "" {
		kubeletFlags += " --register-with-taints=" + group.Taints
	}

	args := fmt.Sprintf("--kubelet-extra-args %q", kubeletFlags)
	if group.EnableDockerBridge {
		args += " --enable-docker-bridge true"
	}

	return args
}

// PolicyARNs returns the baseline worker policies followed by extra, expanded to ARNs.
func PolicyARNs(extra []string) []string {
	policies := make([]string, 0, len(BaselinePolicies)+len(extra))

	for _, policy := range append(append([]string{}, BaselinePolicies...), extra...) {
		policies = append(policies, awsprovider.PolicyARN(policy))
	}

	return policies
}

// Fields returns the resolved nodegroup fields keyed by their configuration names.
func Fields(spec *state.NodeGroupSpec) (map[string]string, error) {
	ami := spec.AMI
	if ami == "" {
		var err error

		ami, err = ResolveAMI(spec.KubernetesVersion, spec.Region, spec.InstanceType)
		if err != nil {
			return nil, err
		}
	}

	return map[string]string{
		"cluster_name":        spec.ClusterName,
		"control_plane_sg_id": spec.ControlPlaneSGID,
		"nodes_sg_id":         spec.NodesSGID,
		"min":                 strconv.Itoa(spec.Min),
		"max":                 strconv.Itoa(spec.Max),
		"desired":             strconv.Itoa(spec.Desired),
		"instance_type":       spec.InstanceType,
		"ami":                 ami,
		"volume_size":         strconv.Itoa(spec.VolumeSize),
		"ssh_key_name":        spec.SSHKeyName,
		"vpc_id":              spec.VpcID,
		"subnets":             spec.JoinedSubnetIDs(),
		"group_name":          spec.GroupName,
		"num_subnets":         strconv.Itoa(spec.NumSubnets),
		"taints":              spec.Taints,
		"iam_policies":        strings.Join(PolicyARNs(spec.IAMPolicies), ","),
		"bootstrap_args":      BootstrapArguments(spec.NodeGroup),
	}, nil
}

// MapParameters converts fields into template parameters in template order.
// Fields without a template parameter and empty values are dropped.
func MapParameters(fields map[string]string) []stack.Parameter {
	params := make([]stack.Parameter, 0, len(parameterNames))

	for _, entry := range parameterNames {
		value, ok := fields[entry.field]
		if !ok || value == "" {
			continue
		}

		params = append(params, stack.Parameter{Key: entry.parameter, Value: value})
	}

	return params
}

// Tags returns the tags identifying a nodegroup stack.
func Tags(cluster, group string) []stack.Tag {
	return []stack.Tag{
		{Key: stack.TagNodegroup, Value: group},
		{Key: stack.TagCluster, Value: cluster},
	}
}
