// Package stacktest provides an in-memory CloudFormation fake for tests.
package stacktest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/smithy-go"
)

// Stack is the fake's view of one stack.
type Stack struct {
	ID           string
	Name         string
	Status       types.StackStatus
	TemplateBody string
	Capabilities []types.Capability
	Parameters   map[string]string
	Tags         map[string]string
	Outputs      map[string]string
	Resources    map[string]string
}

// CloudFormation is an in-memory CloudFormation client. Created stacks start in
// CREATE_IN_PROGRESS and complete after PendingPolls describe calls.
type CloudFormation struct {
	mu     sync.Mutex
	stacks map[string]*Stack
	polls  map[string]int

	// PendingPolls is the number of describe calls a new stack stays in progress for.
	PendingPolls int
	// FinalStatus is the status a new stack settles in. Defaults to CREATE_COMPLETE.
	FinalStatus types.StackStatus
	// Outputs returns the outputs a stack publishes once created.
	Outputs func(name string) map[string]string
	// Resources returns the physical resources of a created stack.
	Resources func(name string) map[string]string
	// CreateErr, when set, is returned by every CreateStack call.
	CreateErr error

	Created []string
	Deleted []string
}

// NewCloudFormation returns an empty fake.
func NewCloudFormation() *CloudFormation {
	return &CloudFormation{
		stacks: map[string]*Stack{},
		polls:  map[string]int{},
	}
}

// Put seeds a stack. Missing ids are derived from the name.
func (f *CloudFormation) Put(stack Stack) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if stack.ID == "" {
		stack.ID = stackID(stack.Name)
	}

	if stack.Status == "" {
		stack.Status = types.StackStatusCreateComplete
	}

	f.stacks[stack.Name] = &stack
}

// Get returns a copy of a stack by name.
func (f *CloudFormation) Get(name string) (Stack, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stack, ok := f.stacks[name]
	if !ok {
		return Stack{}, false
	}

	return *stack, true
}

// CreateStack implements stack.API.
func (f *CloudFormation) CreateStack(
	_ context.Context,
	params *cloudformation.CreateStackInput,
	_ ...func(*cloudformation.Options),
) (*cloudformation.CreateStackOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.CreateErr != nil {
		return nil, f.CreateErr
	}

	name := aws.ToString(params.StackName)
	if _, ok := f.stacks[name]; ok {
		return nil, &types.AlreadyExistsException{Message: aws.String("Stack [" + name + "] already exists")}
	}

	stack := &Stack{
		ID:           stackID(name),
		Name:         name,
		Status:       types.StackStatusCreateInProgress,
		TemplateBody: aws.ToString(params.TemplateBody),
		Capabilities: params.Capabilities,
		Parameters:   map[string]string{},
		Tags:         map[string]string{},
		Outputs:      map[string]string{},
		Resources:    map[string]string{},
	}

	for _, parameter := range params.Parameters {
		stack.Parameters[aws.ToString(parameter.ParameterKey)] = aws.ToString(parameter.ParameterValue)
	}

	for _, tag := range params.Tags {
		stack.Tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}

	if f.Outputs != nil {
		stack.Outputs = f.Outputs(name)
	}

	if f.Resources != nil {
		stack.Resources = f.Resources(name)
	}

	f.stacks[name] = stack
	f.polls[name] = f.PendingPolls
	f.Created = append(f.Created, name)

	return &cloudformation.CreateStackOutput{StackId: aws.String(stack.ID)}, nil
}

// DescribeStacks implements stack.API.
func (f *CloudFormation) DescribeStacks(
	_ context.Context,
	params *cloudformation.DescribeStacksInput,
	_ ...func(*cloudformation.Options),
) (*cloudformation.DescribeStacksOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if params.StackName == nil {
		names := make([]string, 0, len(f.stacks))
		for name := range f.stacks {
			names = append(names, name)
		}

		sort.Strings(names)

		out := &cloudformation.DescribeStacksOutput{}
		for _, name := range names {
			out.Stacks = append(out.Stacks, f.describe(f.stacks[name]))
		}

		return out, nil
	}

	stack := f.lookup(aws.ToString(params.StackName))
	if stack == nil {
		return nil, missing(aws.ToString(params.StackName))
	}

	if stack.Status == types.StackStatusCreateInProgress {
		if f.polls[stack.Name] <= 0 {
			stack.Status = f.finalStatus()
		} else {
			f.polls[stack.Name]--
		}
	}

	return &cloudformation.DescribeStacksOutput{Stacks: []types.Stack{f.describe(stack)}}, nil
}

// DeleteStack implements stack.API. Deleted stacks disappear immediately.
func (f *CloudFormation) DeleteStack(
	_ context.Context,
	params *cloudformation.DeleteStackInput,
	_ ...func(*cloudformation.Options),
) (*cloudformation.DeleteStackOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stack := f.lookup(aws.ToString(params.StackName))
	if stack != nil {
		delete(f.stacks, stack.Name)
		f.Deleted = append(f.Deleted, stack.Name)
	}

	return &cloudformation.DeleteStackOutput{}, nil
}

// ListStacks implements stack.API.
func (f *CloudFormation) ListStacks(
	_ context.Context,
	_ *cloudformation.ListStacksInput,
	_ ...func(*cloudformation.Options),
) (*cloudformation.ListStacksOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	names := make([]string, 0, len(f.stacks))
	for name := range f.stacks {
		names = append(names, name)
	}

	sort.Strings(names)

	out := &cloudformation.ListStacksOutput{}
	for _, name := range names {
		stack := f.stacks[name]
		out.StackSummaries = append(out.StackSummaries, types.StackSummary{
			StackId:     aws.String(stack.ID),
			StackName:   aws.String(stack.Name),
			StackStatus: stack.Status,
		})
	}

	return out, nil
}

// DescribeStackResource implements stack.API.
func (f *CloudFormation) DescribeStackResource(
	_ context.Context,
	params *cloudformation.DescribeStackResourceInput,
	_ ...func(*cloudformation.Options),
) (*cloudformation.DescribeStackResourceOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stack := f.lookup(aws.ToString(params.StackName))
	if stack == nil {
		return nil, missing(aws.ToString(params.StackName))
	}

	logicalID := aws.ToString(params.LogicalResourceId)

	physicalID, ok := stack.Resources[logicalID]
	if !ok {
		return nil, &smithy.GenericAPIError{
			Code:    "ValidationError",
			Message: fmt.Sprintf("Resource %s does not exist for stack %s", logicalID, stack.Name),
		}
	}

	return &cloudformation.DescribeStackResourceOutput{
		StackResourceDetail: &types.StackResourceDetail{
			LogicalResourceId:  aws.String(logicalID),
			PhysicalResourceId: aws.String(physicalID),
		},
	}, nil
}

func (f *CloudFormation) lookup(nameOrID string) *Stack {
	if stack, ok := f.stacks[nameOrID]; ok {
		return stack
	}

	for _, stack := range f.stacks {
		if stack.ID == nameOrID {
			return stack
		}
	}

	return nil
}

func (f *CloudFormation) finalStatus() types.StackStatus {
	if f.FinalStatus == "" {
		return types.StackStatusCreateComplete
	}

	return f.FinalStatus
}

func (f *CloudFormation) describe(stack *Stack) types.Stack {
	out := types.Stack{
		StackId:     aws.String(stack.ID),
		StackName:   aws.String(stack.Name),
		StackStatus: stack.Status,
	}

	for _, key := range sortedKeys(stack.Outputs) {
		out.Outputs = append(out.Outputs, types.Output{
			OutputKey:   aws.String(key),
			OutputValue: aws.String(stack.Outputs[key]),
		})
	}

	for _, key := range sortedKeys(stack.Tags) {
		out.Tags = append(out.Tags, types.Tag{Key: aws.String(key), Value: aws.String(stack.Tags[key])})
	}

	return out
}

func sortedKeys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

func stackID(name string) string {
	return "arn:aws:cloudformation:us-west-2:123456789012:stack/" + name + "/0000"
}

func missing(name string) error {
	return &smithy.GenericAPIError{
		Code:    "ValidationError",
		Message: "Stack with id " + name + " does not exist",
	}
}
