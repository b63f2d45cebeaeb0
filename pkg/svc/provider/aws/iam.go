package aws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/sirupsen/logrus"
)

// ManagedPolicyPrefix prefixes the names of AWS managed policies to form their ARNs.
const ManagedPolicyPrefix = "arn:aws:iam::aws:policy/"

// ClusterRolePolicies are attached to the EKS service role.
//
//nolint:gochecknoglobals // fixed policy set
var ClusterRolePolicies = []string{"AmazonEKSClusterPolicy", "AmazonEKSServicePolicy"}

// PolicyARN returns the ARN of a managed policy name. Full ARNs pass through unchanged.
func PolicyARN(policy string) string {
	if strings.HasPrefix(policy, "arn:") {
		return policy
	}

	return ManagedPolicyPrefix + policy
}

// RoleNameFromARN returns the role name of a role ARN: the segment after the last "/".
func RoleNameFromARN(arn string) (string, error) {
	idx := strings.LastIndex(arn, "/")
	if idx < 0 || idx == len(arn)-1 {
		return "", fmt.Errorf("%w: %q", ErrInvalidRoleARN, arn)
	}

	return arn[idx+1:], nil
}

// ClusterRoleName returns the name of the EKS service role of a cluster.
func ClusterRoleName(cluster string) string {
	return cluster + "-EKS-Role"
}

type policyDocument struct {
	Version   string            `json:"Version"`
	Statement []policyStatement `json:"Statement"`
}

type policyStatement struct {
	Effect    string            `json:"Effect"`
	Principal map[string]string `json:"Principal"`
	Action    string            `json:"Action"`
}

// AssumeRolePolicy returns a trust policy allowing the given service principal to assume a role.
func AssumeRolePolicy(service string) string {
	document, _ := json.Marshal(policyDocument{
		Version: "2012-10-17",
		Statement: []policyStatement{{
			Effect:    "Allow",
			Principal: map[string]string{"Service": service},
			Action:    "sts:AssumeRole",
		}},
	})

	return string(document)
}

// IAM manages roles and their policy attachments.
type IAM struct {
	client IAMAPI
	logger logrus.FieldLogger
}

// NewIAM creates an IAM wrapper.
func NewIAM(client IAMAPI, logger logrus.FieldLogger) *IAM {
	return &IAM{client: client, logger: logger}
}

// EnsureClusterRole returns the ARN of the EKS service role of a cluster, creating the
// role and attaching ClusterRolePolicies when it does not exist yet.
func (i *IAM) EnsureClusterRole(ctx context.Context, cluster string) (string, error) {
	name := ClusterRoleName(cluster)
	logger := i.logger.WithField("role", name)

	out, err := i.client.GetRole(ctx, &iam.GetRoleInput{RoleName: sdkaws.String(name)})
	if err == nil {
		logger.Info("using existing cluster role")

		return sdkaws.ToString(out.Role.Arn), nil
	}

	var missing *iamtypes.NoSuchEntityException
	if !errors.As(err, &missing) {
		return "", fmt.Errorf("get role %s: %w", name, err)
	}

	logger.Info("creating cluster role")

	created, err := i.client.CreateRole(ctx, &iam.CreateRoleInput{
		RoleName:                 sdkaws.String(name),
		Description:              sdkaws.String("created by eks cli for " + cluster),
		AssumeRolePolicyDocument: sdkaws.String(AssumeRolePolicy("eks.amazonaws.com")),
	})
	if err != nil {
		return "", fmt.Errorf("create role %s: %w", name, err)
	}

	err = i.AttachPolicies(ctx, name, ClusterRolePolicies)
	if err != nil {
		return "", err
	}

	return sdkaws.ToString(created.Role.Arn), nil
}

// AttachPolicies attaches managed policies to a role. Attaching is idempotent.
func (i *IAM) AttachPolicies(ctx context.Context, role string, policies []string) error {
	i.logger.WithField("role", role).Infof("attaching %d IAM policies", len(policies))

	for _, policy := range policies {
		_, err := i.client.AttachRolePolicy(ctx, &iam.AttachRolePolicyInput{
			RoleName:  sdkaws.String(role),
			PolicyArn: sdkaws.String(PolicyARN(policy)),
		})
		if err != nil {
			return fmt.Errorf("attach policy %s to %s: %w", policy, role, err)
		}
	}

	return nil
}

// DetachPolicies detaches managed policies from a role. Policies that are not attached are skipped.
func (i *IAM) DetachPolicies(ctx context.Context, role string, policies []string) error {
	i.logger.WithField("role", role).Infof("detaching %d IAM policies", len(policies))

	for _, policy := range policies {
		_, err := i.client.DetachRolePolicy(ctx, &iam.DetachRolePolicyInput{
			RoleName:  sdkaws.String(role),
			PolicyArn: sdkaws.String(PolicyARN(policy)),
		})
		if err != nil {
			var missing *iamtypes.NoSuchEntityException
			if errors.As(err, &missing) {
				continue
			}

			return fmt.Errorf("detach policy %s from %s: %w", policy, role, err)
		}
	}

	return nil
}
