package nodegroup_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/devantler-tech/ekscli/pkg/svc/nodegroup"
	awsprovider "github.com/devantler-tech/ekscli/pkg/svc/provider/aws"
	"github.com/devantler-tech/ekscli/pkg/svc/provider/aws/awstest"
	"github.com/devantler-tech/ekscli/pkg/svc/stack"
	"github.com/devantler-tech/ekscli/pkg/svc/stack/stacktest"
	"github.com/devantler-tech/ekscli/pkg/svc/state"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testCluster   = "demo"
	workersStack  = "demo-NodeGroup-Workers"
	workersRole   = "demo-NodeGroup-Workers-NodeInstanceRole"
	workersASG    = "demo-NodeGroup-Workers-NodeGroup-ASG"
	elastigroupID = "sig-1234"
)

var errBoom = errors.New("boom")

type capacityMock struct {
	mock.Mock
}

func (m *capacityMock) ImportGroup(
	ctx context.Context,
	region, autoScalingGroup string,
	instanceTypes []string,
) (*state.SpotinstRef, error) {
	args := m.Called(ctx, region, autoScalingGroup, instanceTypes)

	ref, _ := args.Get(0).(*state.SpotinstRef)

	return ref, args.Error(1)
}

func (m *capacityMock) UpdateCapacity(ctx context.Context, groupID string, minSize, maxSize, target int) error {
	return m.Called(ctx, groupID, minSize, maxSize, target).Error(0)
}

func (m *capacityMock) DeleteGroup(ctx context.Context, groupID string) error {
	return m.Called(ctx, groupID).Error(0)
}

type authRecorder struct {
	mu       sync.Mutex
	clusters []string
}

func (a *authRecorder) Sync(_ context.Context, cluster string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.clusters = append(a.clusters, cluster)

	return nil
}

func (a *authRecorder) calls() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	return append([]string{}, a.clusters...)
}

type fixture struct {
	store        *state.Store
	cf           *stacktest.CloudFormation
	iam          *awstest.IAM
	asg          *awstest.AutoScaling
	capacity     *capacityMock
	auth         *authRecorder
	orchestrator *nodegroup.Orchestrator
}

func discardLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return logger
}

func newFixture(t *testing.T, groups ...string) *fixture {
	t.Helper()

	ctx := context.Background()
	logger := discardLogger()

	store := state.NewStore(state.NewMemoryBackend(), logger)
	require.NoError(t, store.Bootstrap(ctx, testCluster, state.NewBootstrapLayer("us-west-2")))
	require.NoError(t, store.Write(ctx, testCluster, state.StateLayer{
		VpcID:            "vpc-1",
		Subnets:          []string{"subnet-1", "subnet-2", "subnet-3"},
		ControlPlaneSGID: "sg-cp",
		NodesSGID:        "sg-nodes",
	}))

	for _, group := range groups {
		require.NoError(t, store.UpdateNodegroup(ctx, testCluster, state.Document{
			"group_name": group,
			"min":        1,
			"max":        3,
		}))
	}

	cf := stacktest.NewCloudFormation()
	cf.Outputs = func(name string) map[string]string {
		return map[string]string{
			stack.OutputNodeInstanceRole: "arn:aws:iam::123456789012:role/" + name + "-NodeInstanceRole",
		}
	}
	cf.Resources = func(name string) map[string]string {
		return map[string]string{stack.ResourceAutoScalingGroup: name + "-NodeGroup-ASG"}
	}

	fix := &fixture{
		store:    store,
		cf:       cf,
		iam:      awstest.NewIAM(),
		asg:      awstest.NewAutoScaling(),
		capacity: &capacityMock{},
		auth:     &authRecorder{},
	}

	fix.orchestrator = nodegroup.New(nodegroup.Options{
		Store:    store,
		Stacks:   cf,
		Policies: awsprovider.NewIAM(fix.iam, logger),
		Scaler:   awsprovider.NewAutoScaling(fix.asg, logger),
		Capacity: fix.capacity,
		Auth:     fix.auth,
		Waiter:   stack.NewWaiter(time.Millisecond, logger),
		Template: "nodegroup-template",
		Logger:   logger,
	})

	return fix
}

func baselineARNs() []string {
	return []string{
		"arn:aws:iam::aws:policy/AmazonEC2ContainerRegistryReadOnly",
		"arn:aws:iam::aws:policy/AmazonEKSWorkerNodePolicy",
		"arn:aws:iam::aws:policy/AmazonEKS_CNI_Policy",
	}
}

func TestCreateInput(t *testing.T) {
	t.Parallel()

	fix := newFixture(t, "Workers")

	input, err := fix.orchestrator.CreateInput(context.Background(), testCluster, "Workers")
	require.NoError(t, err)

	assert.Equal(t, workersStack, input.Name)
	assert.Equal(t, "nodegroup-template", input.TemplateBody)
	assert.Equal(t, []types.Capability{types.CapabilityCapabilityIam}, input.Capabilities)
	assert.Equal(t, nodegroup.Tags(testCluster, "Workers"), input.Tags)

	params := map[string]string{}
	for _, param := range input.Parameters {
		params[param.Key] = param.Value
	}

	assert.Equal(t, map[string]string{
		"ClusterName":                         testCluster,
		"ClusterControlPlaneSecurityGroup":    "sg-cp",
		"ClusterSecurityGroup":                "sg-nodes",
		"NodeAutoScalingGroupMinSize":         "1",
		"NodeAutoScalingGroupMaxSize":         "3",
		"NodeAutoScalingGroupDesiredCapacity": "1",
		"NodeInstanceType":                    "m5.xlarge",
		"NodeImageId":                         "ami-089d3b6350c1769a6",
		"NodeVolumeSize":                      "100",
		"VpcId":                               "vpc-1",
		"Subnets":                             "subnet-1,subnet-2,subnet-3",
		"NodeGroupName":                       "Workers",
		"NodeGroupIAMPolicies": "arn:aws:iam::aws:policy/AmazonEKSWorkerNodePolicy," +
			"arn:aws:iam::aws:policy/AmazonEKS_CNI_Policy," +
			"arn:aws:iam::aws:policy/AmazonEC2ContainerRegistryReadOnly",
		"BootstrapArguments": `--kubelet-extra-args "--node-labels=kubernetes.io/role=node,eks/node-group=workers"`,
	}, params)
}

func TestCreateInput_UnknownGroup(t *testing.T) {
	t.Parallel()

	fix := newFixture(t)

	_, err := fix.orchestrator.CreateInput(context.Background(), testCluster, "Missing")
	require.ErrorIs(t, err, state.ErrGroupNotFound)
}

func TestCreateInput_UnresolvableAMI(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fix := newFixture(t, "Workers")

	require.NoError(t, fix.store.Bootstrap(ctx, "west", state.NewBootstrapLayer("us-west-1")))
	require.NoError(t, fix.store.Write(ctx, "west", state.StateLayer{Subnets: []string{"a", "b", "c"}}))
	require.NoError(t, fix.store.UpdateNodegroup(ctx, "west", state.Document{"group_name": "Workers"}))

	_, err := fix.orchestrator.CreateInput(ctx, "west", "Workers")
	require.ErrorIs(t, err, nodegroup.ErrAMINotFound)
}

func TestCreate_WaitAttachesPoliciesAndSyncsAuth(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fix := newFixture(t, "Workers")
	require.NoError(t, fix.store.SetIAMPolicies(ctx, testCluster, []string{"CloudWatchAgentServerPolicy"}))

	handle, err := fix.orchestrator.Create(ctx, testCluster, "Workers", true)
	require.NoError(t, err)

	assert.Equal(t, stack.StateSettled, handle.State())
	assert.Equal(t, []string{workersStack}, fix.cf.Created)
	assert.Equal(t,
		append(baselineARNs(), "arn:aws:iam::aws:policy/CloudWatchAgentServerPolicy"),
		fix.iam.Attached(workersRole),
	)
	assert.Equal(t, []string{testCluster}, fix.auth.calls())
}

func TestCreate_WithoutWaitReturnsPendingHandle(t *testing.T) {
	t.Parallel()

	fix := newFixture(t, "Workers")

	handle, err := fix.orchestrator.Create(context.Background(), testCluster, "Workers", false)
	require.NoError(t, err)

	assert.Equal(t, stack.StatePending, handle.State())
	assert.Empty(t, fix.iam.Attached(workersRole))
	assert.Empty(t, fix.auth.calls())
}

func TestCreate_AdoptsExistingStack(t *testing.T) {
	t.Parallel()

	fix := newFixture(t, "Workers")
	fix.cf.Put(stacktest.Stack{
		Name:    workersStack,
		Tags:    map[string]string{stack.TagNodegroup: "Workers", stack.TagCluster: testCluster},
		Outputs: map[string]string{stack.OutputNodeInstanceRole: "arn:aws:iam::123456789012:role/" + workersRole},
	})

	handle, err := fix.orchestrator.Create(context.Background(), testCluster, "Workers", true)
	require.NoError(t, err)

	assert.True(t, handle.Adopted())
	assert.Empty(t, fix.cf.Created)
	assert.Equal(t, baselineARNs(), fix.iam.Attached(workersRole))
	assert.Equal(t, []string{testCluster}, fix.auth.calls())
}

func TestCreate_FailedStackSkipsAuthSync(t *testing.T) {
	t.Parallel()

	fix := newFixture(t, "Workers")
	fix.cf.FinalStatus = types.StackStatusRollbackComplete

	_, err := fix.orchestrator.Create(context.Background(), testCluster, "Workers", true)
	require.ErrorIs(t, err, nodegroup.ErrStackFailed)

	assert.Empty(t, fix.iam.Attached(workersRole))
	assert.Empty(t, fix.auth.calls())
}

func TestCreateAll_AwaitsTogetherAndSyncsOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fix := newFixture(t, "Workers", "Batch")
	fix.cf.PendingPolls = 2

	names, err := fix.orchestrator.GroupNames(ctx, testCluster)
	require.NoError(t, err)
	assert.Equal(t, []string{"Batch", "Workers"}, names)

	handles, err := fix.orchestrator.CreateAll(ctx, testCluster, names)
	require.NoError(t, err)
	require.Len(t, handles, 2)

	for _, handle := range handles {
		assert.Equal(t, stack.StateSettled, handle.State())
	}

	assert.Equal(t, []string{"demo-NodeGroup-Batch", workersStack}, fix.cf.Created)
	assert.Equal(t, baselineARNs(), fix.iam.Attached("demo-NodeGroup-Batch-NodeInstanceRole"))
	assert.Equal(t, baselineARNs(), fix.iam.Attached(workersRole))
	assert.Equal(t, []string{testCluster}, fix.auth.calls())
}

func TestCreateAll_StopsOnIssueError(t *testing.T) {
	t.Parallel()

	fix := newFixture(t, "Workers")
	fix.cf.CreateErr = errBoom

	handles, err := fix.orchestrator.CreateAll(context.Background(), testCluster, []string{"Workers"})
	require.ErrorIs(t, err, errBoom)
	assert.Empty(t, handles)
	assert.Empty(t, fix.auth.calls())
}

func TestStack_DriftIsReportedWithRemediation(t *testing.T) {
	t.Parallel()

	fix := newFixture(t, "Workers")

	_, err := fix.orchestrator.Stack(context.Background(), testCluster, "Workers")
	require.ErrorIs(t, err, nodegroup.ErrStackNotFound)
	require.ErrorIs(t, err, stack.ErrStackNotFound)
	assert.Contains(t, err.Error(), "eks create-nodegroup --all --yes -c demo")
}

func TestAttachAndDetachIAMPolicies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fix := newFixture(t, "Workers")

	_, err := fix.orchestrator.Create(ctx, testCluster, "Workers", false)
	require.NoError(t, err)

	require.NoError(t, fix.orchestrator.AttachIAMPolicies(ctx, testCluster, "Workers"))
	assert.Equal(t, baselineARNs(), fix.iam.Attached(workersRole))

	require.NoError(t, fix.orchestrator.DetachIAMPolicies(ctx, testCluster, "Workers"))
	assert.Empty(t, fix.iam.Attached(workersRole))

	// Detaching twice is a no-op.
	require.NoError(t, fix.orchestrator.DetachIAMPolicies(ctx, testCluster, "Workers"))
}

func TestScale_ASG(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fix := newFixture(t, "Workers")

	_, err := fix.orchestrator.Create(ctx, testCluster, "Workers", true)
	require.NoError(t, err)

	err = fix.orchestrator.Scale(ctx, testCluster, "Workers", nodegroup.ScaleOptions{Min: 2, Max: 5, ASG: true})
	require.NoError(t, err)

	assert.Equal(t, awstest.Bounds{Min: 2, Max: 5}, fix.asg.Updates[workersASG])

	spec, err := fix.store.ForGroup(ctx, testCluster, "Workers")
	require.NoError(t, err)
	assert.Equal(t, 2, spec.Min)
	assert.Equal(t, 5, spec.Max)
	fix.capacity.AssertNotCalled(t, "UpdateCapacity", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestScale_SpotinstWithoutExportWarns(t *testing.T) {
	t.Parallel()

	fix := newFixture(t, "Workers")

	err := fix.orchestrator.Scale(context.Background(), testCluster, "Workers",
		nodegroup.ScaleOptions{Min: 1, Max: 2, Spotinst: true})
	require.NoError(t, err)

	fix.capacity.AssertNotCalled(t, "UpdateCapacity", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestScale_SpotinstClampsTarget(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fix := newFixture(t, "Workers")
	require.NoError(t, fix.store.UpdateNodegroup(ctx, testCluster, state.Document{
		"group_name": "Workers",
		"spotinst":   state.Document{"id": elastigroupID, "name": "demo-workers"},
	}))

	fix.capacity.On("UpdateCapacity", mock.Anything, elastigroupID, 2, 5, 2).Return(nil).Once()

	err := fix.orchestrator.Scale(ctx, testCluster, "Workers", nodegroup.ScaleOptions{Min: 2, Max: 5, Spotinst: true})
	require.NoError(t, err)

	fix.capacity.AssertExpectations(t)
	assert.Empty(t, fix.asg.Updates)
}

func TestScale_RejectsInvalidBounds(t *testing.T) {
	t.Parallel()

	fix := newFixture(t, "Workers")

	err := fix.orchestrator.Scale(context.Background(), testCluster, "Workers",
		nodegroup.ScaleOptions{Min: 4, Max: 2, ASG: true})
	require.ErrorIs(t, err, nodegroup.ErrInvalidBounds)
}

func TestExport_PersistsElastigroup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		exact         bool
		instanceTypes []string
	}{
		{name: "any instance type", exact: false, instanceTypes: nil},
		{name: "exact instance type", exact: true, instanceTypes: []string{"m5.xlarge"}},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			fix := newFixture(t, "Workers")

			_, err := fix.orchestrator.Create(ctx, testCluster, "Workers", true)
			require.NoError(t, err)

			ref := &state.SpotinstRef{ID: elastigroupID, Name: "demo-workers"}
			fix.capacity.On("ImportGroup", mock.Anything, "us-west-2", workersASG, testCase.instanceTypes).
				Return(ref, nil).Once()

			got, err := fix.orchestrator.Export(ctx, testCluster, "Workers", testCase.exact)
			require.NoError(t, err)
			assert.Equal(t, ref, got)

			spec, err := fix.store.ForGroup(ctx, testCluster, "Workers")
			require.NoError(t, err)
			assert.Equal(t, ref, spec.Spotinst)
			fix.capacity.AssertExpectations(t)
		})
	}
}

func TestExport_ImportFailureLeavesConfigUntouched(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fix := newFixture(t, "Workers")

	_, err := fix.orchestrator.Create(ctx, testCluster, "Workers", true)
	require.NoError(t, err)

	fix.capacity.On("ImportGroup", mock.Anything, "us-west-2", workersASG, []string(nil)).
		Return(nil, errBoom).Once()

	_, err = fix.orchestrator.Export(ctx, testCluster, "Workers", false)
	require.ErrorIs(t, err, errBoom)

	spec, err := fix.store.ForGroup(ctx, testCluster, "Workers")
	require.NoError(t, err)
	assert.Nil(t, spec.Spotinst)
}

func TestDelete_DetachesDeletesElastigroupAndStack(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fix := newFixture(t, "Workers")

	_, err := fix.orchestrator.Create(ctx, testCluster, "Workers", true)
	require.NoError(t, err)
	require.NoError(t, fix.store.UpdateNodegroup(ctx, testCluster, state.Document{
		"group_name": "Workers",
		"spotinst":   state.Document{"id": elastigroupID},
	}))

	fix.capacity.On("DeleteGroup", mock.Anything, elastigroupID).Return(errBoom).Once()

	deletion, err := fix.orchestrator.Delete(ctx, testCluster, "Workers")
	require.NoError(t, err)

	assert.Empty(t, fix.iam.Attached(workersRole))
	assert.Equal(t, []string{workersStack}, fix.cf.Deleted)
	require.NoError(t, deletion.Wait(ctx, time.Millisecond))
	fix.capacity.AssertExpectations(t)
}

func TestDelete_MissingStackIsDrift(t *testing.T) {
	t.Parallel()

	fix := newFixture(t, "Workers")

	_, err := fix.orchestrator.Delete(context.Background(), testCluster, "Workers")
	require.ErrorIs(t, err, nodegroup.ErrStackNotFound)
	assert.Empty(t, fix.cf.Deleted)
}

func TestDelete_WithoutClusterSubnets(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	logger := discardLogger()
	store := state.NewStore(state.NewMemoryBackend(), logger)
	require.NoError(t, store.Bootstrap(ctx, testCluster, state.NewBootstrapLayer("us-west-2")))
	require.NoError(t, store.UpdateNodegroup(ctx, testCluster, state.Document{"group_name": "Workers"}))

	cf := stacktest.NewCloudFormation()
	orchestrator := nodegroup.New(nodegroup.Options{
		Store:    store,
		Stacks:   cf,
		Policies: awsprovider.NewIAM(awstest.NewIAM(), logger),
		Logger:   logger,
	})

	_, err := orchestrator.Delete(ctx, testCluster, "Workers")
	require.ErrorIs(t, err, nodegroup.ErrStackNotFound)
	require.NotErrorIs(t, err, state.ErrSubnetIndexOutOfRange)

	err = orchestrator.Scale(ctx, testCluster, "Workers", nodegroup.ScaleOptions{Min: 1, Max: 2})
	require.NoError(t, err)
}
