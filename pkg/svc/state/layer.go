package state

import (
	"context"
	"fmt"
	"strings"
)

// Layer names one of the three persisted documents of a cluster.
type Layer string

const (
	// LayerConfig holds the bootstrap facts.
	LayerConfig Layer = "config"
	// LayerState holds facts discovered during provisioning.
	LayerState Layer = "state"
	// LayerGroups holds nodegroup definitions.
	LayerGroups Layer = "groups"
)

// Layers lists every layer in merge order.
func Layers() []Layer {
	return []Layer{LayerConfig, LayerState, LayerGroups}
}

// ParseLayer converts a user supplied layer name.
func ParseLayer(name string) (Layer, error) {
	for _, layer := range Layers() {
		if string(layer) == strings.ToLower(name) {
			return layer, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownLayer, name)
}

// FileName returns the document name of the layer inside a cluster's directory or prefix.
func (l Layer) FileName() string {
	return string(l) + ".json"
}

// Document is a loosely typed JSON object.
type Document = map[string]any

// Backend stores whole layer documents for a cluster.
type Backend interface {
	// Read returns the raw layer or ErrLayerNotFound.
	Read(ctx context.Context, cluster string, layer Layer) ([]byte, error)
	// Write replaces the raw layer.
	Write(ctx context.Context, cluster string, layer Layer, data []byte) error
	// Delete removes every layer of the cluster. Deleting a missing cluster is not an error.
	Delete(ctx context.Context, cluster string) error
}

// validateClusterName rejects names that would escape the per-cluster directory or prefix.
func validateClusterName(cluster string) error {
	if cluster == "" ||
		strings.Contains(cluster, "/") ||
		strings.Contains(cluster, "\\") ||
		strings.Contains(cluster, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidClusterName, cluster)
	}

	return nil
}
