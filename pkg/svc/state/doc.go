// Package state persists the per-cluster configuration of the CLI as three
// independently stored JSON layers:
//
//   - config: bootstrap facts written once when the cluster is bootstrapped
//   - state: facts discovered or decided while provisioning, deep-merged on every write
//   - groups: nodegroup definitions keyed by group name
//
// A [Store] merges the layers into a single view (bootstrap < state < groups),
// validates every layer against its schema before persisting it, and resolves
// nodegroup-scoped views with defaults and inherited cluster fields.
//
// Layers are stored by a [Backend]: the local filesystem ([FSBackend]), an S3 bucket
// ([S3Backend]), an S3-compatible endpoint through MinIO ([MinioBackend]), or memory
// ([MemoryBackend]).
package state
