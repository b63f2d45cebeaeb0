// Package k8s provides Kubernetes client configuration for EKS clusters.
//
// It writes kubeconfig entries that authenticate through the aws CLI exec plugin
// (WriteEKSKubeconfig), removes them again (CleanupKubeconfig) and builds REST
// configs and clientsets from them (BuildRESTConfig, NewClientset).
//
// For readiness polling, see the [readiness] sub-package.
package k8s
