package spotinst

import "errors"

var (
	// ErrMissingCredentials is returned when SPOTINST_ACCOUNT_ID or SPOTINST_API_TOKEN is not set.
	ErrMissingCredentials = errors.New("please set SPOTINST_ACCOUNT_ID and SPOTINST_API_TOKEN environment variables")

	// ErrRequestFailed is returned when the API answers with a non-success status.
	ErrRequestFailed = errors.New("spotinst request failed")

	// ErrEmptyResponse is returned when the API answers without any elastigroup.
	ErrEmptyResponse = errors.New("spotinst response has no elastigroup")
)
