// Package svc provides the service layer of eks.
//
// Subpackages:
//   - state: layered cluster configuration on fs, S3 or MinIO
//   - stack: CloudFormation stack handles, waiters and naming
//   - provider: AWS and Spotinst clients and cloud side discovery
//   - provisioner: cluster lifecycle (bootstrap, create, delete, network, DNS)
//   - nodegroup: nodegroup lifecycle (create, scale, export, delete)
//   - auth: aws-auth ConfigMap sync
//   - installer: in-cluster add-ons
package svc
