package aws

import (
	"errors"

	"github.com/aws/smithy-go"
)

var (
	// ErrClusterFailed is returned when an EKS control plane ends up in the FAILED state.
	ErrClusterFailed = errors.New("eks cluster failed")

	// ErrClusterNotFound is returned when EKS has no cluster with the requested name.
	ErrClusterNotFound = errors.New("eks cluster not found")

	// ErrVPCNotFound is returned when a VPC id does not resolve.
	ErrVPCNotFound = errors.New("vpc not found")

	// ErrInvalidRoleARN is returned when a role name cannot be derived from an ARN.
	ErrInvalidRoleARN = errors.New("invalid role arn")
)

// ErrorCode returns the AWS API error code of err, or an empty string.
func ErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}

	return ""
}

// hasErrorCode reports whether err is an AWS API error with one of the given codes.
func hasErrorCode(err error, codes ...string) bool {
	code := ErrorCode(err)
	if code == "" {
		return false
	}

	for _, candidate := range codes {
		if code == candidate {
			return true
		}
	}

	return false
}
