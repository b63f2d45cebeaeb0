package aws

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	ekstypes "github.com/aws/aws-sdk-go-v2/service/eks/types"
	"github.com/siderolabs/go-retry/retry"
	"github.com/sirupsen/logrus"
	"k8s.io/apimachinery/pkg/util/wait"
)

const (
	// DefaultPollInterval is the interval between control plane status checks.
	DefaultPollInterval = 10 * time.Second

	// rolePropagationTimeout bounds the retries of a create rejected because a fresh
	// service role cannot be assumed yet.
	rolePropagationTimeout  = 2 * time.Minute
	rolePropagationInterval = 10 * time.Second
)

// ClusterSpec describes an EKS control plane to create.
type ClusterSpec struct {
	Name              string
	RoleARN           string
	KubernetesVersion string
	SubnetIDs         []string
	SecurityGroupIDs  []string
	Tags              map[string]string
}

// ClusterInfo is the part of a control plane description the CLI consumes.
type ClusterInfo struct {
	Name                     string
	ARN                      string
	Endpoint                 string
	Version                  string
	Status                   ekstypes.ClusterStatus
	CertificateAuthorityData []byte
}

// ControlPlane manages EKS control planes.
type ControlPlane struct {
	client   EKSAPI
	logger   logrus.FieldLogger
	interval time.Duration

	roleRetryTimeout  time.Duration
	roleRetryInterval time.Duration
}

// NewControlPlane creates a ControlPlane. A non-positive interval selects DefaultPollInterval.
func NewControlPlane(client EKSAPI, interval time.Duration, logger logrus.FieldLogger) *ControlPlane {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	return &ControlPlane{
		client:   client,
		logger:   logger,
		interval: interval,

		roleRetryTimeout:  rolePropagationTimeout,
		roleRetryInterval: rolePropagationInterval,
	}
}

// WithRoleRetry overrides how creation retries while the service role propagates.
func (c *ControlPlane) WithRoleRetry(timeout, interval time.Duration) *ControlPlane {
	c.roleRetryTimeout = timeout
	c.roleRetryInterval = interval

	return c
}

// Create issues the control plane creation. An existing cluster with the same name is
// adopted; the returned bool reports whether that happened.
func (c *ControlPlane) Create(ctx context.Context, spec ClusterSpec) (bool, error) {
	logger := c.logger.WithField("cluster", spec.Name)
	logger.Info("creating EKS control plane")

	input := &eks.CreateClusterInput{
		Name:    sdkaws.String(spec.Name),
		RoleArn: sdkaws.String(spec.RoleARN),
		ResourcesVpcConfig: &ekstypes.VpcConfigRequest{
			SubnetIds:        spec.SubnetIDs,
			SecurityGroupIds: spec.SecurityGroupIDs,
		},
		Tags: spec.Tags,
	}

	if spec.KubernetesVersion != "" {
		input.Version = sdkaws.String(spec.KubernetesVersion)
	}

	adopted := false

	err := retry.Constant(c.roleRetryTimeout, retry.WithUnits(c.roleRetryInterval)).
		RetryWithContext(ctx, func(ctx context.Context) error {
			_, err := c.client.CreateCluster(ctx, input)
			if err == nil {
				return nil
			}

			var inUse *ekstypes.ResourceInUseException
			if errors.As(err, &inUse) {
				adopted = true

				return nil
			}

			var invalid *ekstypes.InvalidParameterException
			if errors.As(err, &invalid) {
				logger.WithError(err).Debug("service role not assumable yet, retrying")

				return retry.ExpectedError(err)
			}

			return err
		})
	if err != nil {
		return false, fmt.Errorf("create eks cluster %s: %w", spec.Name, err)
	}

	if adopted {
		logger.Warn("EKS control plane already exists, adopting it")
	}

	return adopted, nil
}

// Describe returns the live control plane description.
func (c *ControlPlane) Describe(ctx context.Context, name string) (*ClusterInfo, error) {
	out, err := c.client.DescribeCluster(ctx, &eks.DescribeClusterInput{Name: sdkaws.String(name)})
	if err != nil {
		var missing *ekstypes.ResourceNotFoundException
		if errors.As(err, &missing) {
			return nil, fmt.Errorf("%w: %s", ErrClusterNotFound, name)
		}

		return nil, fmt.Errorf("describe eks cluster %s: %w", name, err)
	}

	return clusterInfo(out.Cluster)
}

// AwaitActive polls until the control plane is ACTIVE. A FAILED control plane aborts
// with ErrClusterFailed.
func (c *ControlPlane) AwaitActive(ctx context.Context, name string) (*ClusterInfo, error) {
	var info *ClusterInfo

	err := wait.PollUntilContextCancel(ctx, c.interval, true, func(ctx context.Context) (bool, error) {
		current, err := c.Describe(ctx, name)
		if err != nil {
			return false, err
		}

		switch current.Status {
		case ekstypes.ClusterStatusActive:
			info = current

			return true, nil
		case ekstypes.ClusterStatusFailed:
			return false, fmt.Errorf("%w: %s", ErrClusterFailed, name)
		default:
			c.logger.WithField("cluster", name).
				WithField("status", current.Status).
				Info("waiting for EKS control plane")

			return false, nil
		}
	})
	if err != nil {
		return nil, fmt.Errorf("await eks cluster %s: %w", name, err)
	}

	return info, nil
}

// Delete issues the control plane deletion. A missing cluster is not an error.
func (c *ControlPlane) Delete(ctx context.Context, name string) error {
	c.logger.WithField("cluster", name).Info("deleting EKS control plane")

	_, err := c.client.DeleteCluster(ctx, &eks.DeleteClusterInput{Name: sdkaws.String(name)})
	if err != nil {
		var missing *ekstypes.ResourceNotFoundException
		if errors.As(err, &missing) {
			return nil
		}

		return fmt.Errorf("delete eks cluster %s: %w", name, err)
	}

	return nil
}

// AwaitDeleted polls until the control plane no longer exists.
func (c *ControlPlane) AwaitDeleted(ctx context.Context, name string) error {
	err := wait.PollUntilContextCancel(ctx, c.interval, true, func(ctx context.Context) (bool, error) {
		_, err := c.Describe(ctx, name)
		if errors.Is(err, ErrClusterNotFound) {
			return true, nil
		}

		return false, err
	})
	if err != nil {
		return fmt.Errorf("await deletion of eks cluster %s: %w", name, err)
	}

	return nil
}

// List returns the names of every EKS cluster in the region.
func (c *ControlPlane) List(ctx context.Context) ([]string, error) {
	var (
		names []string
		token *string
	)

	for {
		out, err := c.client.ListClusters(ctx, &eks.ListClustersInput{NextToken: token})
		if err != nil {
			return nil, fmt.Errorf("list eks clusters: %w", err)
		}

		names = append(names, out.Clusters...)

		if sdkaws.ToString(out.NextToken) == "" {
			return names, nil
		}

		token = out.NextToken
	}
}

func clusterInfo(cluster *ekstypes.Cluster) (*ClusterInfo, error) {
	if cluster == nil {
		return nil, ErrClusterNotFound
	}

	info := &ClusterInfo{
		Name:     sdkaws.ToString(cluster.Name),
		ARN:      sdkaws.ToString(cluster.Arn),
		Endpoint: sdkaws.ToString(cluster.Endpoint),
		Version:  sdkaws.ToString(cluster.Version),
		Status:   cluster.Status,
	}

	if cluster.CertificateAuthority != nil && cluster.CertificateAuthority.Data != nil {
		data, err := base64.StdEncoding.DecodeString(sdkaws.ToString(cluster.CertificateAuthority.Data))
		if err != nil {
			return nil, fmt.Errorf("decode certificate authority of %s: %w", info.Name, err)
		}

		info.CertificateAuthorityData = data
	}

	return info, nil
}
