// Package nodegroup manages the worker nodegroups of an EKS cluster.
//
// Each nodegroup is backed by one CloudFormation stack named
// {cluster}-NodeGroup-{group}. The Orchestrator builds the stack parameters
// from the group-scoped view of the configuration store, attaches and detaches
// the worker role's IAM policies around the stack lifecycle, scales the
// underlying autoscaling group, and mirrors groups into Spotinst.
package nodegroup
