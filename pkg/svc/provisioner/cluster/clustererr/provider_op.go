package clustererr

import (
	"context"
	"fmt"

	"github.com/devantler-tech/ekscli/pkg/svc/provider"
)

// RunProviderOp executes a provider operation with a nil check and standardised error wrapping.
func RunProviderOp(
	ctx context.Context,
	infraProvider provider.Provider,
	clusterName string,
	operationName string,
	providerFunc func(ctx context.Context, p provider.Provider, clusterName string) error,
) error {
	if infraProvider == nil {
		return fmt.Errorf("%w for cluster '%s'", ErrProviderNotSet, clusterName)
	}

	err := providerFunc(ctx, infraProvider, clusterName)
	if err != nil {
		return fmt.Errorf("failed to %s cluster '%s': %w", operationName, clusterName, err)
	}

	return nil
}
