// Package addons installs the day-1 cluster add-ons: the NVIDIA device plugin, the default gp2
// storage class, the kube-dns autoscaler, VPC CNI tuning and docker registry pull credentials.
//
// Every add-on is applied with typed client-go clients and is safe to install repeatedly.
package addons
