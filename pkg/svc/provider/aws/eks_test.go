package aws_test

import (
	"context"
	"testing"
	"time"

	ekstypes "github.com/aws/aws-sdk-go-v2/service/eks/types"
	awsprovider "github.com/devantler-tech/ekscli/pkg/svc/provider/aws"
	"github.com/devantler-tech/ekscli/pkg/svc/provider/aws/awstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func demoSpec() awsprovider.ClusterSpec {
	return awsprovider.ClusterSpec{
		Name:              "demo",
		RoleARN:           "arn:aws:iam::123456789012:role/demo-EKS-Role",
		KubernetesVersion: "1.13",
		SubnetIDs:         []string{"subnet-1", "subnet-2"},
		SecurityGroupIDs:  []string{"sg-cp"},
	}
}

func TestControlPlane_CreateAndAwait(t *testing.T) {
	t.Parallel()

	fake := awstest.NewEKS()
	fake.PendingPolls = 2

	controlPlane := awsprovider.NewControlPlane(fake, time.Millisecond, nullLogger())

	adopted, err := controlPlane.Create(context.Background(), demoSpec())
	require.NoError(t, err)
	assert.False(t, adopted)
	require.Len(t, fake.Created, 1)
	assert.Equal(t, []string{"subnet-1", "subnet-2"}, fake.Created[0].ResourcesVpcConfig.SubnetIds)

	info, err := controlPlane.AwaitActive(context.Background(), "demo")
	require.NoError(t, err)
	assert.Equal(t, ekstypes.ClusterStatusActive, info.Status)
	assert.Equal(t, "arn:aws:eks:us-west-2:123456789012:cluster/demo", info.ARN)
	assert.Equal(t, []byte("ca-demo"), info.CertificateAuthorityData)
}

func TestControlPlane_CreateAdoptsExisting(t *testing.T) {
	t.Parallel()

	fake := awstest.NewEKS()
	fake.PutCluster("demo")

	adopted, err := awsprovider.NewControlPlane(fake, time.Millisecond, nullLogger()).
		Create(context.Background(), demoSpec())
	require.NoError(t, err)
	assert.True(t, adopted)
	assert.Empty(t, fake.Created)
}

func TestControlPlane_CreateRetriesUntilRoleAssumable(t *testing.T) {
	t.Parallel()

	fake := awstest.NewEKS()
	fake.RoleNotReady = 2

	controlPlane := awsprovider.NewControlPlane(fake, time.Millisecond, nullLogger()).
		WithRoleRetry(time.Second, time.Millisecond)

	_, err := controlPlane.Create(context.Background(), demoSpec())
	require.NoError(t, err)
	assert.Len(t, fake.Created, 1)
}

func TestControlPlane_DescribeMissing(t *testing.T) {
	t.Parallel()

	_, err := awsprovider.NewControlPlane(awstest.NewEKS(), time.Millisecond, nullLogger()).
		Describe(context.Background(), "nope")
	require.ErrorIs(t, err, awsprovider.ErrClusterNotFound)
}

func TestControlPlane_DeleteAndAwait(t *testing.T) {
	t.Parallel()

	fake := awstest.NewEKS()
	fake.PutCluster("demo")
	fake.PendingPolls = 1

	controlPlane := awsprovider.NewControlPlane(fake, time.Millisecond, nullLogger())

	require.NoError(t, controlPlane.Delete(context.Background(), "demo"))
	require.NoError(t, controlPlane.AwaitDeleted(context.Background(), "demo"))
	assert.Equal(t, []string{"demo"}, fake.Deleted)

	require.NoError(t, controlPlane.Delete(context.Background(), "demo"))
}

func TestControlPlane_List(t *testing.T) {
	t.Parallel()

	fake := awstest.NewEKS()
	fake.PutCluster("b")
	fake.PutCluster("a")

	names, err := awsprovider.NewControlPlane(fake, 0, nullLogger()).List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)
}
