package awstest

import (
	"context"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
)

// IAM is an in-memory IAM client.
type IAM struct {
	mu       sync.Mutex
	roles    map[string]string
	attached map[string]map[string]bool

	AttachErr error
}

// NewIAM returns an empty fake.
func NewIAM() *IAM {
	return &IAM{roles: map[string]string{}, attached: map[string]map[string]bool{}}
}

// PutRole seeds a role.
func (f *IAM) PutRole(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.putRole(name)
}

// Attached returns the sorted policy ARNs attached to a role.
func (f *IAM) Attached(role string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	policies := []string{}
	for policy := range f.attached[role] {
		policies = append(policies, policy)
	}

	sort.Strings(policies)

	return policies
}

// GetRole implements aws.IAMAPI.
func (f *IAM) GetRole(_ context.Context, params *iam.GetRoleInput, _ ...func(*iam.Options)) (*iam.GetRoleOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	arn, ok := f.roles[aws.ToString(params.RoleName)]
	if !ok {
		return nil, &iamtypes.NoSuchEntityException{Message: aws.String("role not found")}
	}

	return &iam.GetRoleOutput{Role: &iamtypes.Role{RoleName: params.RoleName, Arn: aws.String(arn)}}, nil
}

// CreateRole implements aws.IAMAPI.
func (f *IAM) CreateRole(
	_ context.Context,
	params *iam.CreateRoleInput,
	_ ...func(*iam.Options),
) (*iam.CreateRoleOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	name := aws.ToString(params.RoleName)
	if _, ok := f.roles[name]; ok {
		return nil, &iamtypes.EntityAlreadyExistsException{Message: aws.String("role exists")}
	}

	arn := f.putRole(name)

	return &iam.CreateRoleOutput{Role: &iamtypes.Role{RoleName: params.RoleName, Arn: aws.String(arn)}}, nil
}

// AttachRolePolicy implements aws.IAMAPI.
func (f *IAM) AttachRolePolicy(
	_ context.Context,
	params *iam.AttachRolePolicyInput,
	_ ...func(*iam.Options),
) (*iam.AttachRolePolicyOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.AttachErr != nil {
		return nil, f.AttachErr
	}

	role := aws.ToString(params.RoleName)
	if f.attached[role] == nil {
		f.attached[role] = map[string]bool{}
	}

	f.attached[role][aws.ToString(params.PolicyArn)] = true

	return &iam.AttachRolePolicyOutput{}, nil
}

// DetachRolePolicy implements aws.IAMAPI.
func (f *IAM) DetachRolePolicy(
	_ context.Context,
	params *iam.DetachRolePolicyInput,
	_ ...func(*iam.Options),
) (*iam.DetachRolePolicyOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	role := aws.ToString(params.RoleName)
	policy := aws.ToString(params.PolicyArn)

	if !f.attached[role][policy] {
		return nil, &iamtypes.NoSuchEntityException{Message: aws.String("policy not attached")}
	}

	delete(f.attached[role], policy)

	return &iam.DetachRolePolicyOutput{}, nil
}

func (f *IAM) putRole(name string) string {
	arn := "arn:aws:iam::123456789012:role/" + name
	f.roles[name] = arn

	return arn
}
