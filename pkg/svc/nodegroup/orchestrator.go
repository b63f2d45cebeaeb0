package nodegroup

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	awsprovider "github.com/devantler-tech/ekscli/pkg/svc/provider/aws"
	"github.com/devantler-tech/ekscli/pkg/svc/stack"
	"github.com/devantler-tech/ekscli/pkg/svc/state"
	"github.com/sirupsen/logrus"
)

// RolePolicies attaches and detaches managed policies on an IAM role.
type RolePolicies interface {
	AttachPolicies(ctx context.Context, role string, policies []string) error
	DetachPolicies(ctx context.Context, role string, policies []string) error
}

// GroupScaler updates the bounds of an autoscaling group.
type GroupScaler interface {
	UpdateGroupBounds(ctx context.Context, group string, minSize, maxSize int) error
}

// CapacityProvider is an external elastic capacity service nodegroups can be exported to.
type CapacityProvider interface {
	ImportGroup(ctx context.Context, region, autoScalingGroup string, instanceTypes []string) (*state.SpotinstRef, error)
	UpdateCapacity(ctx context.Context, groupID string, minSize, maxSize, target int) error
	DeleteGroup(ctx context.Context, groupID string) error
}

// AuthSyncer rebuilds the cluster's identity mapping.
type AuthSyncer interface {
	Sync(ctx context.Context, cluster string) error
}

// Options holds the collaborators of an Orchestrator.
type Options struct {
	Store    *state.Store
	Stacks   stack.API
	Policies RolePolicies
	Scaler   GroupScaler
	Capacity CapacityProvider
	Auth     AuthSyncer
	Waiter   *stack.Waiter
	Template string
	Logger   logrus.FieldLogger
}

// Orchestrator creates, scales, exports and deletes nodegroup stacks.
type Orchestrator struct {
	store    *state.Store
	stacks   stack.API
	policies RolePolicies
	scaler   GroupScaler
	capacity CapacityProvider
	auth     AuthSyncer
	waiter   *stack.Waiter
	template string
	logger   logrus.FieldLogger
}

// New creates an Orchestrator.
func New(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	waiter := opts.Waiter
	if waiter == nil {
		waiter = stack.NewWaiter(stack.DefaultPollInterval, logger)
	}

	return &Orchestrator{
		store:    opts.Store,
		stacks:   opts.Stacks,
		policies: opts.Policies,
		scaler:   opts.Scaler,
		capacity: opts.Capacity,
		auth:     opts.Auth,
		waiter:   waiter,
		template: opts.Template,
		logger:   logger,
	}
}

// ScaleOptions selects the new bounds and the capacity backends to update.
type ScaleOptions struct {
	Min      int
	Max      int
	ASG      bool
	Spotinst bool
}

// GroupNames returns names when given, otherwise every nodegroup of the cluster.
func (o *Orchestrator) GroupNames(ctx context.Context, cluster string, names ...string) ([]string, error) {
	if len(names) > 0 {
		return names, nil
	}

	return o.store.GroupNames(ctx, cluster)
}

// CreateInput builds the stack request of a nodegroup.
func (o *Orchestrator) CreateInput(ctx context.Context, cluster, group string) (stack.CreateInput, error) {
	spec, err := o.store.ForGroup(ctx, cluster, group)
	if err != nil {
		return stack.CreateInput{}, err
	}

	fields, err := Fields(spec)
	if err != nil {
		return stack.CreateInput{}, fmt.Errorf("nodegroup %s: %w", group, err)
	}

	return stack.CreateInput{
		Name:         stack.NodeGroupStackName(cluster, spec.GroupName),
		TemplateBody: o.template,
		Parameters:   MapParameters(fields),
		Tags:         Tags(cluster, spec.GroupName),
		Capabilities: []types.Capability{types.CapabilityCapabilityIam},
	}, nil
}

// Create issues the stack of a nodegroup. When wait is set it blocks until the
// stack settles, attaches the worker policies and syncs the auth mapping.
func (o *Orchestrator) Create(ctx context.Context, cluster, group string, wait bool) (*stack.Handle, error) {
	handle, err := o.issue(ctx, cluster, group)
	if err != nil {
		return nil, err
	}

	if !wait {
		return handle, nil
	}

	return handle, o.settle(ctx, cluster, handle)
}

// CreateAll issues the stacks of all groups without waiting between them,
// awaits them together, attaches the worker policies of each and syncs the
// auth mapping once.
func (o *Orchestrator) CreateAll(ctx context.Context, cluster string, groups []string) ([]*stack.Handle, error) {
	handles := make([]*stack.Handle, 0, len(groups))

	for _, group := range groups {
		handle, err := o.issue(ctx, cluster, group)
		if err != nil {
			return handles, err
		}

		handles = append(handles, handle)
	}

	return handles, o.settle(ctx, cluster, handles...)
}

func (o *Orchestrator) issue(ctx context.Context, cluster, group string) (*stack.Handle, error) {
	input, err := o.CreateInput(ctx, cluster, group)
	if err != nil {
		return nil, err
	}

	logger := o.logger.WithFields(logrus.Fields{"cluster": cluster, "nodegroup": group})
	logger.Info("creating stack for nodegroup")

	handle, err := stack.Create(ctx, o.stacks, o.logger, input)
	if err != nil {
		return nil, fmt.Errorf("nodegroup %s: %w", group, err)
	}

	logger.WithField("stack", handle.ID()).Info("stack created")

	return handle, nil
}

func (o *Orchestrator) settle(ctx context.Context, cluster string, handles ...*stack.Handle) error {
	if len(handles) == 0 {
		return nil
	}

	err := o.waiter.AwaitAll(ctx, handles...)
	if err != nil {
		return err
	}

	cfg, err := o.store.Cluster(ctx, cluster)
	if err != nil {
		return err
	}

	policies := PolicyARNs(cfg.IAMPolicies)

	for _, handle := range handles {
		err = handle.Succeeded(ctx)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrStackFailed, err)
		}

		role, err := WorkerRole(ctx, handle)
		if err != nil {
			return err
		}

		err = o.policies.AttachPolicies(ctx, role, policies)
		if err != nil {
			return err
		}
	}

	return o.auth.Sync(ctx, cluster)
}

// WorkerRole returns the name of the IAM role of a settled nodegroup stack.
func WorkerRole(ctx context.Context, handle *stack.Handle) (string, error) {
	arn, err := handle.Output(ctx, stack.OutputNodeInstanceRole)
	if err != nil {
		return "", err
	}

	return awsprovider.RoleNameFromARN(arn)
}

// Stack returns the handle of a nodegroup's stack. A group without a live stack
// means configuration and infrastructure drifted.
func (o *Orchestrator) Stack(ctx context.Context, cluster, group string) (*stack.Handle, error) {
	handle, err := stack.Find(ctx, o.stacks, o.logger, stack.NodeGroupStackName(cluster, group))
	if err == nil {
		return handle, nil
	}

	if errors.Is(err, stack.ErrStackNotFound) {
		o.logger.WithFields(logrus.Fields{"cluster": cluster, "nodegroup": group}).Errorf(
			"could not find stack for nodegroup %s - please make sure to run "+
				"eks create-nodegroup --all --yes -c %s to sync config",
			group,
			cluster,
		)

		return nil, fmt.Errorf(
			"%w for nodegroup %s: run eks create-nodegroup --all --yes -c %s to sync config: %w",
			ErrStackNotFound,
			group,
			cluster,
			err,
		)
	}

	return nil, err
}

// AttachIAMPolicies attaches the baseline and configured policies to the worker role of a group.
func (o *Orchestrator) AttachIAMPolicies(ctx context.Context, cluster, group string) error {
	return o.withWorkerRole(ctx, cluster, group, o.policies.AttachPolicies)
}

// DetachIAMPolicies detaches the baseline and configured policies from the worker role of a group.
func (o *Orchestrator) DetachIAMPolicies(ctx context.Context, cluster, group string) error {
	return o.withWorkerRole(ctx, cluster, group, o.policies.DetachPolicies)
}

func (o *Orchestrator) withWorkerRole(
	ctx context.Context,
	cluster, group string,
	apply func(ctx context.Context, role string, policies []string) error,
) error {
	cfg, err := o.store.Cluster(ctx, cluster)
	if err != nil {
		return err
	}

	handle, err := o.Stack(ctx, cluster, group)
	if err != nil {
		return err
	}

	role, err := WorkerRole(ctx, handle)
	if err != nil {
		return err
	}

	return apply(ctx, role, PolicyARNs(cfg.IAMPolicies))
}

// Scale updates the bounds of a nodegroup on the selected capacity backends and
// records them in the groups layer.
func (o *Orchestrator) Scale(ctx context.Context, cluster, group string, opts ScaleOptions) error {
	if opts.Min < 0 || opts.Min > opts.Max {
		return fmt.Errorf("%w: min %d, max %d", ErrInvalidBounds, opts.Min, opts.Max)
	}

	spec, err := o.store.Group(ctx, cluster, group)
	if err != nil {
		return err
	}

	logger := o.logger.WithFields(logrus.Fields{"cluster": cluster, "nodegroup": group})

	if opts.ASG {
		handle, err := o.Stack(ctx, cluster, group)
		if err != nil {
			return err
		}

		asg, err := handle.Resource(ctx, stack.ResourceAutoScalingGroup)
		if err != nil {
			return err
		}

		logger.Infof("scaling ASG %s: min -> %d, max -> %d", asg, opts.Min, opts.Max)

		err = o.scaler.UpdateGroupBounds(ctx, asg, opts.Min, opts.Max)
		if err != nil {
			return err
		}
	}

	if opts.Spotinst {
		if spec.Spotinst == nil || spec.Spotinst.ID == "" {
			logger.Warnf("could not find spotinst elastigroup for nodegroup %s", group)
		} else {
			target := min(max(spec.Desired, opts.Min), opts.Max)

			err = o.capacity.UpdateCapacity(ctx, spec.Spotinst.ID, opts.Min, opts.Max, target)
			if err != nil {
				return err
			}
		}
	}

	return o.store.UpdateNodegroup(ctx, cluster, state.Document{
		"group_name": spec.GroupName,
		"min":        opts.Min,
		"max":        opts.Max,
	})
}

// Export registers the autoscaling group of a nodegroup with Spotinst and records
// the returned elastigroup in the groups layer. With exactInstanceType the
// elastigroup only uses the nodegroup's instance type.
func (o *Orchestrator) Export(
	ctx context.Context,
	cluster, group string,
	exactInstanceType bool,
) (*state.SpotinstRef, error) {
	spec, err := o.store.Group(ctx, cluster, group)
	if err != nil {
		return nil, err
	}

	handle, err := o.Stack(ctx, cluster, group)
	if err != nil {
		return nil, err
	}

	asg, err := handle.Resource(ctx, stack.ResourceAutoScalingGroup)
	if err != nil {
		return nil, err
	}

	var instanceTypes []string
	if exactInstanceType {
		instanceTypes = []string{spec.InstanceType}
	}

	logger := o.logger.WithFields(logrus.Fields{"cluster": cluster, "nodegroup": group})
	logger.Info("exporting nodegroup to spotinst")

	ref, err := o.capacity.ImportGroup(ctx, spec.Region, asg, instanceTypes)
	if err != nil {
		return nil, fmt.Errorf("export nodegroup %s: %w", group, err)
	}

	logger.WithField("elastigroup", ref.ID).Info("successfully created elastigroup")

	err = o.store.UpdateNodegroup(ctx, cluster, state.Document{
		"group_name": spec.GroupName,
		"spotinst":   state.Document{"id": ref.ID, "name": ref.Name},
	})
	if err != nil {
		return nil, err
	}

	return ref, nil
}

// Delete detaches the worker policies of a nodegroup, deletes its elastigroup
// when it was exported, then issues the deletion of its stack without waiting.
func (o *Orchestrator) Delete(ctx context.Context, cluster, group string) (*stack.Deletion, error) {
	spec, err := o.store.Group(ctx, cluster, group)
	if err != nil {
		return nil, err
	}

	logger := o.logger.WithFields(logrus.Fields{"cluster": cluster, "nodegroup": group})
	logger.Info("deleting nodegroup")

	err = o.DetachIAMPolicies(ctx, cluster, group)
	if err != nil {
		return nil, err
	}

	if spec.Spotinst != nil && spec.Spotinst.ID != "" {
		err = o.capacity.DeleteGroup(ctx, spec.Spotinst.ID)
		if err != nil {
			logger.WithError(err).Warnf("failed to delete elastigroup %s", spec.Spotinst.ID)
		}
	}

	handle, err := o.Stack(ctx, cluster, group)
	if err != nil {
		return nil, err
	}

	return handle.Delete(ctx)
}
