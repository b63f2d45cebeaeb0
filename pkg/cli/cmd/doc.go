// Package cmd provides the command-line interface of eks.
//
// Every subcommand hangs directly off the root command and works on the cluster
// selected with --cluster-name:
//   - cluster lifecycle: bootstrap, create-cluster, delete-cluster, list, wait-for-cluster
//   - nodegroups: create-nodegroup, delete-nodegroup, scale-nodegroup, export-nodegroup
//   - access: update-auth, add-iam-user, set-iam-policies, update-kubeconfig
//   - networking: create-cluster-security-group, set-inter-vpc-networking, update-dns
//   - add-ons: enable-gpu, create-default-storage-class, create-dns-autoscaler, update-cni
package cmd
