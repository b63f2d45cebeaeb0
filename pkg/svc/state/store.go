package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
)

// Store reads and writes the layered configuration of clusters.
//
// The store performs no locking: concurrent invocations against the same cluster
// race and the last writer of a layer wins.
type Store struct {
	backend Backend
	logger  logrus.FieldLogger
}

// NewStore returns a Store persisting layers through backend.
func NewStore(backend Backend, logger logrus.FieldLogger) *Store {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Store{backend: backend, logger: logger}
}

// Bootstrap overwrites the config layer with attrs and resets the state and groups layers.
func (s *Store) Bootstrap(ctx context.Context, cluster string, attrs any) error {
	doc, err := normalize(attrs)
	if err != nil {
		return err
	}

	err = validateLayer(LayerConfig, doc)
	if err != nil {
		return err
	}

	for _, step := range []struct {
		layer Layer
		doc   Document
	}{
		{layer: LayerConfig, doc: doc},
		{layer: LayerState, doc: Document{}},
		{layer: LayerGroups, doc: Document{}},
	} {
		err = s.persist(ctx, cluster, step.layer, step.doc)
		if err != nil {
			return err
		}
	}

	s.logger.WithField("cluster", cluster).Info("written configuration layers")

	return nil
}

// Write deep-merges attrs into the state layer.
func (s *Store) Write(ctx context.Context, cluster string, attrs any) error {
	return s.WriteLayer(ctx, cluster, LayerState, attrs)
}

// WriteLayer deep-merges attrs into layer and persists the result.
// The merged document must satisfy the layer schema, otherwise nothing is written.
func (s *Store) WriteLayer(ctx context.Context, cluster string, layer Layer, attrs any) error {
	doc, err := normalize(attrs)
	if err != nil {
		return err
	}

	current, err := s.ReadLayer(ctx, cluster, layer)
	if err != nil && !errors.Is(err, ErrLayerNotFound) {
		return err
	}

	merged := DeepMerge(current, doc)

	err = validateLayer(layer, merged)
	if err != nil {
		return err
	}

	return s.persist(ctx, cluster, layer, merged)
}

// ReadLayer returns a single layer document.
func (s *Store) ReadLayer(ctx context.Context, cluster string, layer Layer) (Document, error) {
	data, err := s.backend.Read(ctx, cluster, layer)
	if err != nil {
		return nil, fmt.Errorf("read %s layer of %s: %w", layer, cluster, err)
	}

	var doc Document

	err = json.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s layer of %s: %w", ErrInvalidLayer, layer, cluster, err)
	}

	if doc == nil {
		doc = Document{}
	}

	return doc, nil
}

// Read returns all layers merged with precedence config < state < groups,
// plus the cluster_name key. It fails with ErrNotBootstrapped when the config
// layer does not exist.
func (s *Store) Read(ctx context.Context, cluster string) (Document, error) {
	merged, err := s.ReadLayer(ctx, cluster, LayerConfig)
	if err != nil {
		if errors.Is(err, ErrLayerNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotBootstrapped, cluster)
		}

		return nil, err
	}

	for _, layer := range []Layer{LayerState, LayerGroups} {
		doc, readErr := s.ReadLayer(ctx, cluster, layer)
		if readErr != nil && !errors.Is(readErr, ErrLayerNotFound) {
			return nil, readErr
		}

		merged = DeepMerge(merged, doc)
	}

	merged["cluster_name"] = cluster

	return merged, nil
}

// Cluster returns the typed merged view of a cluster.
func (s *Store) Cluster(ctx context.Context, cluster string) (*ClusterConfig, error) {
	doc, err := s.Read(ctx, cluster)
	if err != nil {
		return nil, err
	}

	var cfg ClusterConfig

	err = decode(doc, &cfg)
	if err != nil {
		return nil, fmt.Errorf("cluster %s: %w", cluster, err)
	}

	return &cfg, nil
}

// GroupNames returns the names of all nodegroups of a cluster in sorted order.
func (s *Store) GroupNames(ctx context.Context, cluster string) ([]string, error) {
	cfg, err := s.Cluster(ctx, cluster)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(cfg.Groups))
	for name := range cfg.Groups {
		names = append(names, name)
	}

	sort.Strings(names)

	return names, nil
}

// SetIAMPolicies records the extra IAM policies attached to every nodegroup role.
func (s *Store) SetIAMPolicies(ctx context.Context, cluster string, policies []string) error {
	return s.Write(ctx, cluster, Document{"iam_policies": policies})
}

// AddUser binds an IAM user ARN to a Kubernetes username and groups.
func (s *Store) AddUser(ctx context.Context, cluster, arn, username string, groups []string) error {
	return s.Write(ctx, cluster, Document{
		"users": Document{
			arn: User{Username: username, Groups: groups},
		},
	})
}

// Delete removes every layer of the cluster.
func (s *Store) Delete(ctx context.Context, cluster string) error {
	err := s.backend.Delete(ctx, cluster)
	if err != nil {
		return fmt.Errorf("delete configuration of %s: %w", cluster, err)
	}

	s.logger.WithField("cluster", cluster).Info("deleted configuration layers")

	return nil
}

func (s *Store) persist(ctx context.Context, cluster string, layer Layer, doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s layer: %w", layer, err)
	}

	err = s.backend.Write(ctx, cluster, layer, data)
	if err != nil {
		return fmt.Errorf("write %s layer of %s: %w", layer, cluster, err)
	}

	s.logger.WithFields(logrus.Fields{
		"cluster": cluster,
		"layer":   layer,
	}).Infof("updated configuration layer:\n%s", data)

	return nil
}
