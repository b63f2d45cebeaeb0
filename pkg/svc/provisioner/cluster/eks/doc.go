// Package eksprovisioner provides the ClusterProvisioner implementation for Amazon EKS.
//
// A cluster is a CloudFormation network stack (VPC, three subnets, control plane and
// nodegroup security groups) plus an EKS control plane created through the EKS API.
// The provisioner records every discovered identifier in the layered configuration
// store so nodegroup and auth operations can run later without rediscovery.
//
// Teardown runs a fixed sequence of steps. Whether a failing step aborts the sequence
// is decided by a clusterprovisioner.TeardownPolicy.
package eksprovisioner
