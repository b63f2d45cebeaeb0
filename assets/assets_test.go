package assets_test

import (
	"testing"

	"github.com/devantler-tech/ekscli/assets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClusterTemplate_RendersOpenPorts(t *testing.T) {
	t.Parallel()

	body, err := assets.ClusterTemplate(assets.ClusterTemplateData{OpenPorts: []int{22, 8080}})
	require.NoError(t, err)

	assert.Contains(t, body, "  OpenPort22Ingress:\n")
	assert.Contains(t, body, "  OpenPort8080Ingress:\n")
	assert.Contains(t, body, "      FromPort: 8080\n      ToPort: 8080\n")
}

func TestClusterTemplate_WithoutOpenPorts(t *testing.T) {
	t.Parallel()

	body, err := assets.ClusterTemplate(assets.ClusterTemplateData{})
	require.NoError(t, err)

	assert.NotContains(t, body, "OpenPort")
	assert.Contains(t, body, "\nOutputs:\n")
	assert.Contains(t, body, "  NodeGroupsInClusterSecurityGroup:\n")
}

func TestNodeGroupTemplate_DeclaresParametersAndOutputs(t *testing.T) {
	t.Parallel()

	body := assets.NodeGroupTemplate()

	for _, key := range []string{
		"ClusterName", "ClusterControlPlaneSecurityGroup", "ClusterSecurityGroup",
		"NodeAutoScalingGroupMinSize", "NodeAutoScalingGroupMaxSize",
		"NodeAutoScalingGroupDesiredCapacity", "NodeInstanceType", "NodeImageId",
		"NodeVolumeSize", "KeyName", "VpcId", "Subnets", "NodeGroupName",
		"NodeGroupIAMPolicies", "BootstrapArguments",
	} {
		assert.Contains(t, body, "\n  "+key+":\n    Type:")
	}

	assert.Contains(t, body, "\n  NodeGroup:\n    Type: AWS::AutoScaling::AutoScalingGroup")
	assert.Contains(t, body, "\n  NodeInstanceRole:\n    Description:")
}
