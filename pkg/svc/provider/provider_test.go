package provider_test

import (
	"context"
	"errors"
	"testing"

	"github.com/devantler-tech/ekscli/pkg/svc/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errListFailed = errors.New("list failed")

const testClusterName = "demo"

func TestNodesExist(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	prov := provider.NewMockProvider()
	prov.On("ListNodes", ctx, testClusterName, "").Return([]provider.NodeInfo{{Name: "i-1"}}, nil)

	exists, err := provider.NodesExist(ctx, prov, testClusterName)
	require.NoError(t, err)
	assert.True(t, exists)
	prov.AssertExpectations(t)
}

func TestNodesExist_ListFails(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	prov := provider.NewMockProvider()
	prov.On("ListNodes", ctx, testClusterName, "").Return(nil, errListFailed)

	_, err := provider.NodesExist(ctx, prov, testClusterName)
	require.ErrorIs(t, err, errListFailed)
	assert.Contains(t, err.Error(), "failed to list nodes")
}

func TestNodesExist_NilProvider(t *testing.T) {
	t.Parallel()

	_, err := provider.NodesExist(context.Background(), nil, testClusterName)
	require.ErrorIs(t, err, provider.ErrProviderUnavailable)
}

func TestClusterExists(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	prov := provider.NewMockProvider()
	prov.On("ListAllClusters", ctx).Return([]string{"other", testClusterName}, nil)

	exists, err := provider.ClusterExists(ctx, prov, testClusterName)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = provider.ClusterExists(ctx, prov, "missing")
	require.NoError(t, err)
	assert.False(t, exists)
}
