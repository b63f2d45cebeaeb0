package stack

import "fmt"

// Stack kinds used in deterministic stack names.
const (
	KindCluster   = "EKS"
	KindNodeGroup = "NodeGroup"
)

// Outputs and logical resources shared by the cluster and nodegroup templates.
const (
	OutputSecurityGroups     = "SecurityGroups"
	OutputVpcID              = "VpcId"
	OutputSubnetIDs          = "SubnetIds"
	OutputNodesSecurityGroup = "NodeGroupsInClusterSecurityGroup"
	OutputNodeInstanceRole   = "NodeInstanceRole"
	ResourceAutoScalingGroup = "NodeGroup"
)

// Name returns the stack name {cluster}-{kind}[-{qualifier}].
func Name(cluster, kind, qualifier string) string {
	if qualifier == "" {
		return fmt.Sprintf("%s-%s", cluster, kind)
	}

	return fmt.Sprintf("%s-%s-%s", cluster, kind, qualifier)
}

// ClusterStackName returns the name of the cluster's network stack.
func ClusterStackName(cluster string) string {
	return Name(cluster, KindCluster, "")
}

// NodeGroupStackName returns the name of a nodegroup's stack.
func NodeGroupStackName(cluster, group string) string {
	return Name(cluster, KindNodeGroup, group)
}
