package state

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the directory under the user's home where cluster layers are stored.
	DefaultDirName = ".eks"
	// dirPermissions is the permission mode for cluster directories.
	dirPermissions = 0o700
	// filePermissions is the permission mode for layer files.
	filePermissions = 0o600
)

// FSBackend stores layers as <root>/<cluster>/<layer>.json.
type FSBackend struct {
	root string
}

// NewFSBackend returns a filesystem backend rooted at root.
// An empty root resolves to ~/.eks.
func NewFSBackend(root string) (*FSBackend, error) {
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}

		root = filepath.Join(home, DefaultDirName)
	}

	return &FSBackend{root: root}, nil
}

// Root returns the directory holding all cluster directories.
func (b *FSBackend) Root() string {
	return b.root
}

// Read implements Backend.
func (b *FSBackend) Read(_ context.Context, cluster string, layer Layer) ([]byte, error) {
	path, err := b.layerPath(cluster, layer)
	if err != nil {
		return nil, err
	}

	//nolint:gosec // path is the backend root plus a validated cluster name and a constant file name
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrLayerNotFound, path)
		}

		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return data, nil
}

// Write implements Backend.
func (b *FSBackend) Write(_ context.Context, cluster string, layer Layer, data []byte) error {
	path, err := b.layerPath(cluster, layer)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)

	err = os.MkdirAll(dir, dirPermissions)
	if err != nil {
		return fmt.Errorf("failed to create configuration directory %s: %w", dir, err)
	}

	err = os.WriteFile(path, data, filePermissions)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

// Delete implements Backend.
func (b *FSBackend) Delete(_ context.Context, cluster string) error {
	err := validateClusterName(cluster)
	if err != nil {
		return err
	}

	dir := filepath.Join(b.root, cluster)

	err = os.RemoveAll(dir)
	if err != nil {
		return fmt.Errorf("failed to remove configuration directory %s: %w", dir, err)
	}

	return nil
}

func (b *FSBackend) layerPath(cluster string, layer Layer) (string, error) {
	err := validateClusterName(cluster)
	if err != nil {
		return "", err
	}

	return filepath.Join(b.root, cluster, layer.FileName()), nil
}
