package state

import (
	"context"
	"fmt"
	"sync"
)

// MemoryBackend keeps layers in memory. It is used for dry runs and tests.
type MemoryBackend struct {
	mu     sync.Mutex
	layers map[string][]byte
}

// NewMemoryBackend returns an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{layers: map[string][]byte{}}
}

// Read implements Backend.
func (b *MemoryBackend) Read(_ context.Context, cluster string, layer Layer) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, ok := b.layers[memoryKey(cluster, layer)]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrLayerNotFound, cluster, layer)
	}

	return append([]byte(nil), data...), nil
}

// Write implements Backend.
func (b *MemoryBackend) Write(_ context.Context, cluster string, layer Layer, data []byte) error {
	err := validateClusterName(cluster)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.layers[memoryKey(cluster, layer)] = append([]byte(nil), data...)

	return nil
}

// Delete implements Backend.
func (b *MemoryBackend) Delete(_ context.Context, cluster string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, layer := range Layers() {
		delete(b.layers, memoryKey(cluster, layer))
	}

	return nil
}

func memoryKey(cluster string, layer Layer) string {
	return cluster + "/" + string(layer)
}
