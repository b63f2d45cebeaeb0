package provider

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockProvider is a mock implementation of the Provider interface for testing.
type MockProvider struct {
	mock.Mock
}

// NewMockProvider creates a new MockProvider instance.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// ListNodes mocks listing nodes for a cluster.
func (m *MockProvider) ListNodes(ctx context.Context, clusterName, nodeGroup string) ([]NodeInfo, error) {
	args := m.Called(ctx, clusterName, nodeGroup)

	result, ok := args.Get(0).([]NodeInfo)
	if !ok {
		return nil, args.Error(1) //nolint:wrapcheck // Mock function, wrapping not needed
	}

	return result, args.Error(1) //nolint:wrapcheck // Mock function, wrapping not needed
}

// ListAllClusters mocks listing all clusters.
func (m *MockProvider) ListAllClusters(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)

	result, ok := args.Get(0).([]string)
	if !ok {
		return nil, args.Error(1) //nolint:wrapcheck // Mock function, wrapping not needed
	}

	return result, args.Error(1) //nolint:wrapcheck // Mock function, wrapping not needed
}
