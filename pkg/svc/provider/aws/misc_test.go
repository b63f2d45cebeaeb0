package aws_test

import (
	"context"
	"testing"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	route53types "github.com/aws/aws-sdk-go-v2/service/route53/types"
	awsprovider "github.com/devantler-tech/ekscli/pkg/svc/provider/aws"
	"github.com/devantler-tech/ekscli/pkg/svc/provider/aws/awstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoScaling_UpdateGroupBounds(t *testing.T) {
	t.Parallel()

	fake := awstest.NewAutoScaling()

	err := awsprovider.NewAutoScaling(fake, nullLogger()).UpdateGroupBounds(context.Background(), "asg-1", 2, 5)
	require.NoError(t, err)
	assert.Equal(t, awstest.Bounds{Min: 2, Max: 5}, fake.Updates["asg-1"])
}

func TestDNS_UpsertAlias(t *testing.T) {
	t.Parallel()

	fake := &awstest.Route53{}

	err := awsprovider.NewDNS(fake, nullLogger()).UpsertAlias(context.Background(), awsprovider.AliasRecord{
		HostedZoneID:       "Z1",
		Name:               "app.example.com",
		TargetDNSName:      "abc.elb.amazonaws.com",
		TargetHostedZoneID: "Z2",
	})
	require.NoError(t, err)
	require.Len(t, fake.Changes, 1)

	change := fake.Changes[0].ChangeBatch.Changes[0]
	assert.Equal(t, route53types.ChangeActionUpsert, change.Action)
	assert.Equal(t, route53types.RRTypeA, change.ResourceRecordSet.Type)
	assert.Equal(t, "abc.elb.amazonaws.com", sdkaws.ToString(change.ResourceRecordSet.AliasTarget.DNSName))
	assert.Equal(t, "Z2", sdkaws.ToString(change.ResourceRecordSet.AliasTarget.HostedZoneId))
	assert.False(t, change.ResourceRecordSet.AliasTarget.EvaluateTargetHealth)
}

func TestGetCallerIdentity(t *testing.T) {
	t.Parallel()

	identity, err := awsprovider.GetCallerIdentity(context.Background(), &awstest.STS{
		Account: "123456789012",
		ARN:     "arn:aws:iam::123456789012:user/alice",
	})
	require.NoError(t, err)
	assert.Equal(t, "123456789012", identity.Account)
	assert.Equal(t, "arn:aws:iam::123456789012:user/alice", identity.ARN)
}

func TestProvider_ListNodes(t *testing.T) {
	t.Parallel()

	fake := awstest.NewEC2()
	fake.Instances = []ec2types.Instance{{
		InstanceId:     sdkaws.String("i-1"),
		PrivateDnsName: sdkaws.String("ip-10-0-0-1.ec2.internal"),
		InstanceType:   ec2types.InstanceTypeM5Xlarge,
		State:          &ec2types.InstanceState{Name: ec2types.InstanceStateNameRunning},
		Tags:           []ec2types.Tag{{Key: sdkaws.String("eks-nodegroup"), Value: sdkaws.String("Workers")}},
	}}

	nodes, err := awsprovider.NewProvider(awstest.NewEKS(), fake).ListNodes(context.Background(), "demo", "Workers")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "i-1", nodes[0].Name)
	assert.Equal(t, "Workers", nodes[0].NodeGroup)
	assert.Equal(t, "running", nodes[0].State)
	assert.Equal(t, "m5.xlarge", nodes[0].InstanceType)

	require.Len(t, fake.InstanceFilters, 1)
	assert.Equal(t, "tag:kubernetes.io/cluster/demo", sdkaws.ToString(fake.InstanceFilters[0][0].Name))
	assert.Len(t, fake.InstanceFilters[0], 3)
}

func TestProvider_ListAllClusters(t *testing.T) {
	t.Parallel()

	eks := awstest.NewEKS()
	eks.PutCluster("demo")

	clusters, err := awsprovider.NewProvider(eks, awstest.NewEC2()).ListAllClusters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"demo"}, clusters)
}

func TestErrorCode(t *testing.T) {
	t.Parallel()

	assert.Empty(t, awsprovider.ErrorCode(nil))
}
