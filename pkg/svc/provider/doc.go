// Package provider defines infrastructure providers reporting the cloud-side view of clusters.
//
// Providers answer which clusters and worker nodes actually exist, independently of the
// locally persisted configuration. The aws sub-package implements it on top of EKS and EC2.
package provider
