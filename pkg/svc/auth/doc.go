// Package auth maintains the aws-auth ConfigMap that maps IAM identities to
// Kubernetes users and groups.
//
// The ConfigMap is rebuilt from scratch on every sync: one role mapping per
// worker nodegroup stack of the cluster plus one user mapping per user recorded
// in the state layer.
package auth
