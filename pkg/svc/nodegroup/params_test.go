package nodegroup_test

import (
	"testing"

	"github.com/devantler-tech/ekscli/pkg/svc/nodegroup"
	"github.com/devantler-tech/ekscli/pkg/svc/stack"
	"github.com/devantler-tech/ekscli/pkg/svc/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAMI(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		version      string
		region       string
		instanceType string
		want         string
		wantErr      bool
	}{
		{name: "minor version", version: "1.13", region: "us-west-2", instanceType: "m5.xlarge", want: "ami-089d3b6350c1769a6"},
		{name: "patch version", version: "1.13.7", region: "us-west-2", instanceType: "m5.xlarge", want: "ami-089d3b6350c1769a6"},
		{name: "gpu p3", version: "1.13", region: "us-east-1", instanceType: "p3.2xlarge", want: "ami-02af865c0f3b337f2"},
		{name: "gpu p2", version: "1.12", region: "us-west-1", instanceType: "p2.xlarge", want: "ami-047637529a86c7237"},
		{name: "older version", version: "1.12", region: "us-east-2", instanceType: "c5.large", want: "ami-04ea7cb66af82ae4a"},
		{name: "unknown region", version: "1.13", region: "us-west-1", instanceType: "m5.xlarge", wantErr: true},
		{name: "unknown version", version: "1.20", region: "us-west-2", instanceType: "m5.xlarge", wantErr: true},
		{name: "invalid version", version: "latest", region: "us-west-2", instanceType: "m5.xlarge", wantErr: true},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			ami, err := nodegroup.ResolveAMI(testCase.version, testCase.region, testCase.instanceType)
			if testCase.wantErr {
				require.ErrorIs(t, err, nodegroup.ErrAMINotFound)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, testCase.want, ami)
		})
	}
}

func TestIsGPUInstance(t *testing.T) {
	t.Parallel()

	assert.True(t, nodegroup.IsGPUInstance("p2.xlarge"))
	assert.True(t, nodegroup.IsGPUInstance("p3.16xlarge"))
	assert.False(t, nodegroup.IsGPUInstance("m5.xlarge"))
	assert.False(t, nodegroup.IsGPUInstance("g4dn.xlarge"))
}

func TestBootstrapArguments(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		`--kubelet-extra-args "--node-labels=kubernetes.io/role=node,eks/node-group=workers"`,
		nodegroup.BootstrapArguments(state.NodeGroup{GroupName: "Workers"}),
	)

	assert.Equal(t,
		`--kubelet-extra-args "--node-labels=kubernetes.io/role=node,eks/node-group=gpu `+
			`--register-with-taints=dedicated=gpu:NoSchedule" --enable-docker-bridge true`,
		nodegroup.BootstrapArguments(state.NodeGroup{
			GroupName:          "GPU",
			Taints:             "dedicated=gpu:NoSchedule",
			EnableDockerBridge: true,
		}),
	)
}

func TestPolicyARNs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{
		"arn:aws:iam::aws:policy/AmazonEKSWorkerNodePolicy",
		"arn:aws:iam::aws:policy/AmazonEKS_CNI_Policy",
		"arn:aws:iam::aws:policy/AmazonEC2ContainerRegistryReadOnly",
		"arn:aws:iam::aws:policy/CloudWatchAgentServerPolicy",
		"arn:aws:iam::123456789012:policy/custom",
	}, nodegroup.PolicyARNs([]string{
		"CloudWatchAgentServerPolicy",
		"arn:aws:iam::123456789012:policy/custom",
	}))

	assert.Len(t, nodegroup.PolicyARNs(nil), len(nodegroup.BaselinePolicies))
}

func TestMapParameters_DropsUnknownAndEmptyFields(t *testing.T) {
	t.Parallel()

	params := nodegroup.MapParameters(map[string]string{
		"group_name":   "Workers",
		"min":          "1",
		"ssh_key_name": "",
		"num_subnets":  "3",
		"taints":       "dedicated=x:NoSchedule",
		"cluster_name": "demo",
	})

	assert.Equal(t, []stack.Parameter{
		{Key: "ClusterName", Value: "demo"},
		{Key: "NodeAutoScalingGroupMinSize", Value: "1"},
		{Key: "NodeGroupName", Value: "Workers"},
	}, params)
}

func TestTags(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []stack.Tag{
		{Key: "eks-nodegroup", Value: "Workers"},
		{Key: "eks-cluster", Value: "demo"},
	}, nodegroup.Tags("demo", "Workers"))
}
