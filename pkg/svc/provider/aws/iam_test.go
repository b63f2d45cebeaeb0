package aws_test

import (
	"context"
	"errors"
	"testing"

	awsprovider "github.com/devantler-tech/ekscli/pkg/svc/provider/aws"
	"github.com/devantler-tech/ekscli/pkg/svc/provider/aws/awstest"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nullLogger() logrus.FieldLogger {
	logger, _ := test.NewNullLogger()

	return logger
}

func TestPolicyARN(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "arn:aws:iam::aws:policy/AmazonEKS_CNI_Policy", awsprovider.PolicyARN("AmazonEKS_CNI_Policy"))
	assert.Equal(t, "arn:aws:iam::123:policy/custom", awsprovider.PolicyARN("arn:aws:iam::123:policy/custom"))
}

func TestRoleNameFromARN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		arn     string
		want    string
		wantErr bool
	}{
		{name: "plain role", arn: "arn:aws:iam::123:role/demo-NodeInstanceRole-ABC", want: "demo-NodeInstanceRole-ABC"},
		{name: "role with path", arn: "arn:aws:iam::123:role/eks/workers", want: "workers"},
		{name: "no slash", arn: "arn:aws:iam::123:role", wantErr: true},
		{name: "trailing slash", arn: "arn:aws:iam::123:role/", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := awsprovider.RoleNameFromARN(tt.arn)
			if tt.wantErr {
				require.ErrorIs(t, err, awsprovider.ErrInvalidRoleARN)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAssumeRolePolicy(t *testing.T) {
	t.Parallel()

	assert.JSONEq(t, `{
		"Version": "2012-10-17",
		"Statement": [{"Effect": "Allow", "Principal": {"Service": "eks.amazonaws.com"}, "Action": "sts:AssumeRole"}]
	}`, awsprovider.AssumeRolePolicy("eks.amazonaws.com"))
}

func TestIAM_EnsureClusterRole_Creates(t *testing.T) {
	t.Parallel()

	fake := awstest.NewIAM()

	arn, err := awsprovider.NewIAM(fake, nullLogger()).EnsureClusterRole(context.Background(), "demo")
	require.NoError(t, err)

	assert.Equal(t, "arn:aws:iam::123456789012:role/demo-EKS-Role", arn)
	assert.Equal(t, []string{
		"arn:aws:iam::aws:policy/AmazonEKSClusterPolicy",
		"arn:aws:iam::aws:policy/AmazonEKSServicePolicy",
	}, fake.Attached("demo-EKS-Role"))
}

func TestIAM_EnsureClusterRole_ReusesExisting(t *testing.T) {
	t.Parallel()

	fake := awstest.NewIAM()
	existing := fake.PutRole("demo-EKS-Role")

	arn, err := awsprovider.NewIAM(fake, nullLogger()).EnsureClusterRole(context.Background(), "demo")
	require.NoError(t, err)

	assert.Equal(t, existing, arn)
	assert.Empty(t, fake.Attached("demo-EKS-Role"))
}

func TestIAM_AttachAndDetach(t *testing.T) {
	t.Parallel()

	fake := awstest.NewIAM()
	client := awsprovider.NewIAM(fake, nullLogger())

	require.NoError(t, client.AttachPolicies(context.Background(), "workers", []string{"A", "B"}))
	assert.Len(t, fake.Attached("workers"), 2)

	require.NoError(t, client.DetachPolicies(context.Background(), "workers", []string{"A", "C"}))
	assert.Equal(t, []string{"arn:aws:iam::aws:policy/B"}, fake.Attached("workers"))
}

func TestIAM_AttachError(t *testing.T) {
	t.Parallel()

	fake := awstest.NewIAM()
	fake.AttachErr = errors.New("denied")

	err := awsprovider.NewIAM(fake, nullLogger()).AttachPolicies(context.Background(), "workers", []string{"A"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "denied")
}
