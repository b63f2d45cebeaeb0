package stack

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/smithy-go"
	"github.com/sirupsen/logrus"
)

// Tags identifying the role of a stack.
const (
	TagCluster   = "eks-cluster"
	TagNodegroup = "eks-nodegroup"
)

// State is the lifecycle state of a Handle.
type State string

const (
	// StatePending means a create was issued and no terminal status has been observed yet.
	StatePending State = "PENDING"
	// StateAdopted means the stack already existed and the handle was bound to it.
	StateAdopted State = "ADOPTED"
	// StateSettled means a terminal create status has been observed.
	StateSettled State = "SETTLED"
)

// Parameter is one template parameter. Parameters keep their declaration order.
type Parameter struct {
	Key   string
	Value string
}

// Tag is one stack tag.
type Tag struct {
	Key   string
	Value string
}

// CreateInput describes a stack to create.
type CreateInput struct {
	Name         string
	TemplateBody string
	TemplateURL  string
	Parameters   []Parameter
	Tags         []Tag
	Capabilities []types.Capability
}

// Handle owns a single CloudFormation stack.
type Handle struct {
	client API
	logger logrus.FieldLogger
	name   string

	mu          sync.Mutex
	id          string
	state       State
	adopted     bool
	description *types.Stack
}

// New returns a handle for an existing stack identified by name or id without calling the API.
func New(client API, logger logrus.FieldLogger, nameOrID string) *Handle {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Handle{
		client: client,
		logger: logger.WithField("stack", nameOrID),
		name:   nameOrID,
		id:     nameOrID,
		state:  StateSettled,
	}
}

// Create issues a stack creation. When CloudFormation reports that the stack already
// exists the returned handle is bound to the existing stack and Adopted reports true.
func Create(ctx context.Context, client API, logger logrus.FieldLogger, input CreateInput) (*Handle, error) {
	handle := New(client, logger, input.Name)

	handle.logger.Info("creating stack")

	out, err := client.CreateStack(ctx, createStackInput(input))
	if err != nil {
		var exists *types.AlreadyExistsException
		if !errors.As(err, &exists) {
			return nil, fmt.Errorf("create stack %s: %w", input.Name, err)
		}

		handle.logger.Warn("stack already exists, adopting it")

		err = handle.Reload(ctx)
		if err != nil {
			return nil, err
		}

		handle.mu.Lock()
		handle.id = aws.ToString(handle.description.StackId)
		handle.state = StateAdopted
		handle.adopted = true
		handle.mu.Unlock()

		return handle, nil
	}

	handle.id = aws.ToString(out.StackId)
	handle.state = StatePending
	handle.logger.WithField("stack_id", handle.id).Info("stack creation issued")

	return handle, nil
}

// Find returns a handle for an existing stack, failing with ErrStackNotFound when it does not exist.
func Find(ctx context.Context, client API, logger logrus.FieldLogger, nameOrID string) (*Handle, error) {
	handle := New(client, logger, nameOrID)

	err := handle.Reload(ctx)
	if err != nil {
		return nil, err
	}

	handle.mu.Lock()
	handle.id = aws.ToString(handle.description.StackId)
	handle.name = aws.ToString(handle.description.StackName)
	handle.mu.Unlock()

	return handle, nil
}

// Name returns the stack name the handle was created or looked up with.
func (h *Handle) Name() string {
	return h.name
}

// ID returns the stack id, or the name when the id is not known yet.
func (h *Handle) ID() string {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.id
}

// State returns the lifecycle state of the handle.
func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.state
}

// Adopted reports whether the handle was bound to a stack that already existed.
func (h *Handle) Adopted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.adopted
}

// Reload fetches the live stack description and caches it for Output and Tag lookups.
func (h *Handle) Reload(ctx context.Context) error {
	out, err := h.client.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{
		StackName: aws.String(h.ID()),
	})
	if err != nil {
		if isStackMissing(err) {
			return fmt.Errorf("%w: %s", ErrStackNotFound, h.name)
		}

		return fmt.Errorf("describe stack %s: %w", h.name, err)
	}

	if len(out.Stacks) == 0 {
		return fmt.Errorf("%w: %s", ErrStackNotFound, h.name)
	}

	h.mu.Lock()
	h.description = &out.Stacks[0]
	h.mu.Unlock()

	return nil
}

// Status re-fetches and returns the live stack status.
func (h *Handle) Status(ctx context.Context) (types.StackStatus, error) {
	err := h.Reload(ctx)
	if err != nil {
		return "", err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	return h.description.StackStatus, nil
}

// Pending re-fetches the status and reports whether the stack is still being created.
func (h *Handle) Pending(ctx context.Context) (bool, error) {
	status, err := h.Status(ctx)
	if err != nil {
		return false, err
	}

	if IsCreateInProgress(status) {
		return true, nil
	}

	h.mu.Lock()
	h.state = StateSettled
	h.mu.Unlock()

	return false, nil
}

// Succeeded re-fetches the status and fails with ErrStackFailed unless the stack is complete.
func (h *Handle) Succeeded(ctx context.Context) error {
	status, err := h.Status(ctx)
	if err != nil {
		return err
	}

	if !IsComplete(status) {
		return fmt.Errorf("%w: %s is %s", ErrStackFailed, h.name, status)
	}

	return nil
}

// Output returns an output value from the last fetched description, fetching one
// if none has been cached yet.
func (h *Handle) Output(ctx context.Context, key string) (string, error) {
	description, err := h.cachedDescription(ctx)
	if err != nil {
		return "", err
	}

	for _, output := range description.Outputs {
		if aws.ToString(output.OutputKey) == key {
			return aws.ToString(output.OutputValue), nil
		}
	}

	return "", fmt.Errorf("%w: %s has no output %q", ErrOutputNotFound, h.name, key)
}

// Tag returns a tag value from the last fetched description.
func (h *Handle) Tag(ctx context.Context, key string) (string, bool, error) {
	description, err := h.cachedDescription(ctx)
	if err != nil {
		return "", false, err
	}

	for _, tag := range description.Tags {
		if aws.ToString(tag.Key) == key {
			return aws.ToString(tag.Value), true, nil
		}
	}

	return "", false, nil
}

// IsEKSWorker reports whether the stack carries the nodegroup tag.
func (h *Handle) IsEKSWorker(ctx context.Context) (bool, error) {
	_, ok, err := h.Tag(ctx, TagNodegroup)

	return ok, err
}

// Resource returns the physical id of the stack resource with the given logical id.
func (h *Handle) Resource(ctx context.Context, logicalID string) (string, error) {
	out, err := h.client.DescribeStackResource(ctx, &cloudformation.DescribeStackResourceInput{
		StackName:         aws.String(h.ID()),
		LogicalResourceId: aws.String(logicalID),
	})
	if err != nil {
		if isStackMissing(err) {
			return "", fmt.Errorf("%w: %s/%s", ErrResourceNotFound, h.name, logicalID)
		}

		return "", fmt.Errorf("describe resource %s of stack %s: %w", logicalID, h.name, err)
	}

	if out.StackResourceDetail == nil || out.StackResourceDetail.PhysicalResourceId == nil {
		return "", fmt.Errorf("%w: %s/%s", ErrResourceNotFound, h.name, logicalID)
	}

	return aws.ToString(out.StackResourceDetail.PhysicalResourceId), nil
}

// Delete issues the stack deletion and returns without waiting for it to finish.
// The returned Deletion can be awaited by callers that need completion.
func (h *Handle) Delete(ctx context.Context) (*Deletion, error) {
	h.logger.Info("deleting stack")

	_, err := h.client.DeleteStack(ctx, &cloudformation.DeleteStackInput{
		StackName: aws.String(h.ID()),
	})
	if err != nil {
		return nil, fmt.Errorf("delete stack %s: %w", h.name, err)
	}

	return &Deletion{handle: h}, nil
}

func (h *Handle) cachedDescription(ctx context.Context) (*types.Stack, error) {
	h.mu.Lock()
	description := h.description
	h.mu.Unlock()

	if description != nil {
		return description, nil
	}

	err := h.Reload(ctx)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	return h.description, nil
}

func createStackInput(input CreateInput) *cloudformation.CreateStackInput {
	params := &cloudformation.CreateStackInput{
		StackName:    aws.String(input.Name),
		Capabilities: input.Capabilities,
	}

	if input.TemplateBody != "" {
		params.TemplateBody = aws.String(input.TemplateBody)
	}

	if input.TemplateURL != "" {
		params.TemplateURL = aws.String(input.TemplateURL)
	}

	for _, parameter := range input.Parameters {
		params.Parameters = append(params.Parameters, types.Parameter{
			ParameterKey:   aws.String(parameter.Key),
			ParameterValue: aws.String(parameter.Value),
		})
	}

	for _, tag := range input.Tags {
		params.Tags = append(params.Tags, types.Tag{
			Key:   aws.String(tag.Key),
			Value: aws.String(tag.Value),
		})
	}

	return params
}

// isStackMissing matches the ValidationError CloudFormation returns for unknown stacks.
func isStackMissing(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}

	return apiErr.ErrorCode() == "ValidationError" && strings.Contains(apiErr.ErrorMessage(), "does not exist")
}
