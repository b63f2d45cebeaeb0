package awstest

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	route53types "github.com/aws/aws-sdk-go-v2/service/route53/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// Bounds are the sizes an autoscaling group was updated to.
type Bounds struct {
	Min int32
	Max int32
}

// AutoScaling records autoscaling group updates.
type AutoScaling struct {
	mu      sync.Mutex
	Updates map[string]Bounds
}

// NewAutoScaling returns an empty fake.
func NewAutoScaling() *AutoScaling {
	return &AutoScaling{Updates: map[string]Bounds{}}
}

// UpdateAutoScalingGroup implements aws.AutoScalingAPI.
func (f *AutoScaling) UpdateAutoScalingGroup(
	_ context.Context,
	params *autoscaling.UpdateAutoScalingGroupInput,
	_ ...func(*autoscaling.Options),
) (*autoscaling.UpdateAutoScalingGroupOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Updates[aws.ToString(params.AutoScalingGroupName)] = Bounds{
		Min: aws.ToInt32(params.MinSize),
		Max: aws.ToInt32(params.MaxSize),
	}

	return &autoscaling.UpdateAutoScalingGroupOutput{}, nil
}

// Route53 records record set changes.
type Route53 struct {
	mu      sync.Mutex
	Changes []*route53.ChangeResourceRecordSetsInput
}

// ChangeResourceRecordSets implements aws.Route53API.
func (f *Route53) ChangeResourceRecordSets(
	_ context.Context,
	params *route53.ChangeResourceRecordSetsInput,
	_ ...func(*route53.Options),
) (*route53.ChangeResourceRecordSetsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Changes = append(f.Changes, params)

	return &route53.ChangeResourceRecordSetsOutput{
		ChangeInfo: &route53types.ChangeInfo{Id: aws.String("change-1"), Status: route53types.ChangeStatusPending},
	}, nil
}

// STS returns a fixed caller identity.
type STS struct {
	Account string
	ARN     string
}

// GetCallerIdentity implements aws.STSAPI.
func (f *STS) GetCallerIdentity(
	_ context.Context,
	_ *sts.GetCallerIdentityInput,
	_ ...func(*sts.Options),
) (*sts.GetCallerIdentityOutput, error) {
	return &sts.GetCallerIdentityOutput{Account: aws.String(f.Account), Arn: aws.String(f.ARN)}, nil
}
