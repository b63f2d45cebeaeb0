// Package spotinst is a client for the Spotinst elastigroup API, used to mirror
// nodegroup autoscaling groups into Spotinst and to keep their capacity in sync.
package spotinst
