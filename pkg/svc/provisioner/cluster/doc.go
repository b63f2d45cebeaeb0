// Package clusterprovisioner defines the cluster provisioner contract of the CLI.
//
// # Architecture
//
// Provisioners drive the lifecycle of a cluster (infrastructure stacks, control plane,
// credentials and add-ons) while delegating discovery of running infrastructure to a
// Provider (pkg/svc/provider):
//
//   - Providers: list clusters and nodes that exist in the cloud account
//   - Provisioners: create and tear down clusters from their layered configuration
//
// The EKS implementation lives in the eks subpackage.
package clusterprovisioner
