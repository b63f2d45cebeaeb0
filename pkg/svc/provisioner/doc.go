// Package provisioner provides cluster provisioning services.
//
//   - cluster: the provisioner contract, teardown policy and provider error helpers
//   - cluster/eks: the EKS provisioner driving stacks, control plane and kubeconfig
package provisioner
