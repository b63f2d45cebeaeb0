package stack

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
)

// API is the subset of the CloudFormation client used by this package.
type API interface {
	CreateStack(
		ctx context.Context,
		params *cloudformation.CreateStackInput,
		optFns ...func(*cloudformation.Options),
	) (*cloudformation.CreateStackOutput, error)
	DescribeStacks(
		ctx context.Context,
		params *cloudformation.DescribeStacksInput,
		optFns ...func(*cloudformation.Options),
	) (*cloudformation.DescribeStacksOutput, error)
	DeleteStack(
		ctx context.Context,
		params *cloudformation.DeleteStackInput,
		optFns ...func(*cloudformation.Options),
	) (*cloudformation.DeleteStackOutput, error)
	ListStacks(
		ctx context.Context,
		params *cloudformation.ListStacksInput,
		optFns ...func(*cloudformation.Options),
	) (*cloudformation.ListStacksOutput, error)
	DescribeStackResource(
		ctx context.Context,
		params *cloudformation.DescribeStackResourceInput,
		optFns ...func(*cloudformation.Options),
	) (*cloudformation.DescribeStackResourceOutput, error)
}
