package eksprovisioner_test

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/devantler-tech/ekscli/pkg/svc/provider"
	eksprovisioner "github.com/devantler-tech/ekscli/pkg/svc/provisioner/cluster/eks"
	"github.com/devantler-tech/ekscli/pkg/svc/stack"
	"github.com/devantler-tech/ekscli/pkg/svc/stack/stacktest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func seedStacks(f *fixture) {
	f.cf.Put(stacktest.Stack{
		Name: stack.ClusterStackName("demo"),
		Tags: map[string]string{stack.TagCluster: "demo"},
	})
	f.cf.Put(stacktest.Stack{
		Name:   stack.ClusterStackName("alpha"),
		Status: types.StackStatusUpdateComplete,
		Tags:   map[string]string{stack.TagCluster: "alpha"},
	})
	f.cf.Put(stacktest.Stack{
		Name: stack.NodeGroupStackName("demo", "workers"),
		Tags: map[string]string{stack.TagCluster: "demo", stack.TagNodegroup: "workers"},
	})
	f.cf.Put(stacktest.Stack{
		Name: stack.ClusterStackName("renamed"),
		Tags: map[string]string{stack.TagCluster: "original"},
	})
	f.cf.Put(stacktest.Stack{Name: "unrelated"})
}

func TestClusters(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	seedStacks(f)

	prov := provider.NewMockProvider()
	prov.On("ListAllClusters", mock.Anything).Return([]string{"demo", "orphan"}, nil)
	f.provisioner.SetProvider(prov)

	clusters, err := f.provisioner.Clusters(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []eksprovisioner.ClusterSummary{
		{Name: "alpha", StackStatus: types.StackStatusUpdateComplete},
		{Name: "demo", StackStatus: types.StackStatusCreateComplete, ControlPlane: true},
	}, clusters)
	prov.AssertExpectations(t)
}

func TestList_WithoutProvider(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	seedStacks(f)

	names, err := f.provisioner.List(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "demo"}, names)
}

func TestList_Empty(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	names, err := f.provisioner.List(context.Background())

	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestList_ProviderFails(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	seedStacks(f)

	prov := provider.NewMockProvider()
	prov.On("ListAllClusters", mock.Anything).Return(nil, errUnreachable)
	f.provisioner.SetProvider(prov)

	_, err := f.provisioner.List(context.Background())

	require.ErrorIs(t, err, errUnreachable)
}

func TestExists(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cluster  string
		clusters []string
		provider bool
		want     bool
	}{
		{name: "network stack", cluster: "demo", want: true},
		{name: "control plane only", cluster: "orphan", clusters: []string{"orphan"}, provider: true, want: true},
		{name: "unknown with provider", cluster: "ghost", clusters: []string{"orphan"}, provider: true},
		{name: "unknown without provider", cluster: "ghost"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			seedStacks(f)

			if tc.provider {
				prov := provider.NewMockProvider()
				prov.On("ListAllClusters", mock.Anything).Return(tc.clusters, nil)
				f.provisioner.SetProvider(prov)
			}

			exists, err := f.provisioner.Exists(context.Background(), tc.cluster)

			require.NoError(t, err)
			assert.Equal(t, tc.want, exists)
		})
	}
}
