// Package aws implements the AWS side of cluster provisioning.
//
// It wraps the aws-sdk-go-v2 service clients behind narrow interfaces so that every
// call can be replaced in tests:
//   - IAM roles and managed policy attachments (IAM)
//   - EKS control planes (ControlPlane)
//   - security groups, VPC peering and route tables (Network)
//   - autoscaling group bounds (AutoScaling)
//   - Route53 alias records (DNS)
//
// Provider implements provider.Provider on top of EKS and EC2.
package aws
