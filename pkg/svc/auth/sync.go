package auth

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/devantler-tech/ekscli/pkg/k8s"
	"github.com/devantler-tech/ekscli/pkg/svc/stack"
	"github.com/devantler-tech/ekscli/pkg/svc/state"
	"github.com/siderolabs/go-retry/retry"
	"github.com/sirupsen/logrus"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// Defaults for retrying conflicting ConfigMap writes.
const (
	DefaultRetryTimeout  = time.Minute
	DefaultRetryInterval = 2 * time.Second
)

// Syncer rebuilds and writes the aws-auth ConfigMap of a cluster.
type Syncer struct {
	store         *state.Store
	stacks        stack.API
	clients       k8s.ClientFactory
	logger        logrus.FieldLogger
	retryTimeout  time.Duration
	retryInterval time.Duration
}

// NewSyncer creates a Syncer.
func NewSyncer(
	store *state.Store,
	stacks stack.API,
	clients k8s.ClientFactory,
	logger logrus.FieldLogger,
) *Syncer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Syncer{
		store:         store,
		stacks:        stacks,
		clients:       clients,
		logger:        logger,
		retryTimeout:  DefaultRetryTimeout,
		retryInterval: DefaultRetryInterval,
	}
}

// WithRetry overrides how long conflicting writes are retried.
func (s *Syncer) WithRetry(timeout, interval time.Duration) *Syncer {
	s.retryTimeout = timeout
	s.retryInterval = interval

	return s
}

// Binding derives the identity mapping of a cluster. Nodegroups are visited in
// name order and users in ARN order. Only settled, successful worker stacks
// tagged with the cluster contribute a role.
func (s *Syncer) Binding(ctx context.Context, cluster string) (Binding, error) {
	cfg, err := s.store.Cluster(ctx, cluster)
	if err != nil {
		return Binding{}, err
	}

	names, err := s.store.GroupNames(ctx, cluster)
	if err != nil {
		return Binding{}, err
	}

	var binding Binding

	for _, name := range names {
		arn, ok, err := s.workerRoleARN(ctx, cluster, name)
		if err != nil {
			return Binding{}, err
		}

		if ok {
			binding.Roles = append(binding.Roles, NodeRole(arn))
		}
	}

	userARNs := make([]string, 0, len(cfg.Users))
	for arn := range cfg.Users {
		userARNs = append(userARNs, arn)
	}

	sort.Strings(userARNs)

	for _, arn := range userARNs {
		user := cfg.Users[arn]
		binding.Users = append(binding.Users, UserMapping{
			UserARN:  arn,
			Username: user.Username,
			Groups:   user.Groups,
		})
	}

	return binding, nil
}

func (s *Syncer) workerRoleARN(ctx context.Context, cluster, group string) (string, bool, error) {
	logger := s.logger.WithFields(logrus.Fields{"cluster": cluster, "nodegroup": group})

	handle, err := stack.Find(ctx, s.stacks, s.logger, stack.NodeGroupStackName(cluster, group))
	if errors.Is(err, stack.ErrStackNotFound) {
		logger.Warn("nodegroup has no stack, skipping it in aws-auth")

		return "", false, nil
	}

	if err != nil {
		return "", false, err
	}

	worker, err := handle.IsEKSWorker(ctx)
	if err != nil {
		return "", false, err
	}

	owner, _, err := handle.Tag(ctx, stack.TagCluster)
	if err != nil {
		return "", false, err
	}

	if !worker || owner != cluster {
		logger.Warnf("stack %s is not a worker stack of %s, skipping it", handle.Name(), cluster)

		return "", false, nil
	}

	if handle.Succeeded(ctx) != nil {
		logger.Info("nodegroup stack has not completed, skipping it")

		return "", false, nil
	}

	arn, err := handle.Output(ctx, stack.OutputNodeInstanceRole)
	if err != nil {
		return "", false, fmt.Errorf("%w: %s: %w", ErrNoWorkerRole, handle.Name(), err)
	}

	return arn, true, nil
}

// Sync rebuilds the aws-auth ConfigMap of a cluster and replaces the one in the
// cluster, creating it when it does not exist yet.
func (s *Syncer) Sync(ctx context.Context, cluster string) error {
	logger := s.logger.WithField("cluster", cluster)
	logger.Info("updating auth configmap on kubernetes")

	binding, err := s.Binding(ctx, cluster)
	if err != nil {
		return err
	}

	desired, err := ConfigMap(binding)
	if err != nil {
		return err
	}

	logger.Infof("aws-auth mapRoles:\n%s", desired.Data["mapRoles"])

	clientset, err := s.clients(ctx, cluster)
	if err != nil {
		return fmt.Errorf("kubernetes client for %s: %w", cluster, err)
	}

	err = retry.Constant(s.retryTimeout, retry.WithUnits(s.retryInterval)).
		RetryWithContext(ctx, func(ctx context.Context) error {
			writeErr := Apply(ctx, clientset, desired)
			if apierrors.IsConflict(writeErr) || apierrors.IsAlreadyExists(writeErr) {
				return retry.ExpectedError(writeErr)
			}

			return writeErr
		})
	if err != nil {
		return fmt.Errorf("failed to write %s/%s: %w", ConfigMapNamespace, ConfigMapName, err)
	}

	logger.WithFields(logrus.Fields{
		"roles": len(binding.Roles),
		"users": len(binding.Users),
	}).Info("auth configmap updated")

	return nil
}

// Apply replaces the data of the ConfigMap in the cluster, creating it when absent.
func Apply(ctx context.Context, clientset kubernetes.Interface, desired *corev1.ConfigMap) error {
	configMaps := clientset.CoreV1().ConfigMaps(desired.Namespace)

	current, err := configMaps.Get(ctx, desired.Name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		_, err = configMaps.Create(ctx, desired.DeepCopy(), metav1.CreateOptions{})

		return err //nolint:wrapcheck // classified by the caller
	}

	if err != nil {
		return err //nolint:wrapcheck // classified by the caller
	}

	updated := current.DeepCopy()
	updated.Data = desired.Data

	_, err = configMaps.Update(ctx, updated, metav1.UpdateOptions{})

	return err //nolint:wrapcheck // classified by the caller
}
