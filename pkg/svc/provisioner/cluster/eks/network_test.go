package eksprovisioner_test

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsprovider "github.com/devantler-tech/ekscli/pkg/svc/provider/aws"
	eksprovisioner "github.com/devantler-tech/ekscli/pkg/svc/provisioner/cluster/eks"
	"github.com/devantler-tech/ekscli/pkg/svc/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/tools/clientcmd"
)

func (f *fixture) writeNetwork(t *testing.T) {
	t.Helper()

	require.NoError(t, f.store.Write(context.Background(), testCluster, state.StateLayer{
		VpcID:            "vpc-1",
		Subnets:          []string{"subnet-1", "subnet-2", "subnet-3"},
		ControlPlaneSGID: "sg-cp",
		NodesSGID:        "sg-nodes",
	}))
}

func TestSecurityGroup(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.bootstrap(t)
	f.writeNetwork(t)

	groupID, err := f.provisioner.SecurityGroup(ctx, testCluster, []int{80, 443})
	require.NoError(t, err)

	assert.Equal(t, "vpc-1/"+awsprovider.SecurityGroupName(testCluster), f.ec2.SecurityGroups[groupID])
	assert.Equal(t, groupID, f.cluster(t).NetworkSGID)

	var ports []int32
	for _, ingress := range f.ec2.Ingress {
		if ingress.Permission.FromPort != nil {
			ports = append(ports, aws.ToInt32(ingress.Permission.FromPort))
		}
	}

	assert.Equal(t, []int32{80, 443}, ports)

	again, err := f.provisioner.SecurityGroup(ctx, testCluster, nil)
	require.NoError(t, err)
	assert.Equal(t, groupID, again)
	assert.Len(t, f.ec2.SecurityGroups, 1)
}

func TestSecurityGroup_DefaultsToConfiguredPorts(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.bootstrap(t)
	f.writeNetwork(t)
	require.NoError(t, f.store.WriteLayer(ctx, testCluster, state.LayerConfig, state.Document{
		"open_ports": []int{8080},
	}))

	_, err := f.provisioner.SecurityGroup(ctx, testCluster, nil)
	require.NoError(t, err)

	var ports []int32
	for _, ingress := range f.ec2.Ingress {
		if ingress.Permission.FromPort != nil {
			ports = append(ports, aws.ToInt32(ingress.Permission.FromPort))
		}
	}

	assert.Equal(t, []int32{8080}, ports)
}

func TestSecurityGroup_NetworkNotCreated(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.bootstrap(t)

	_, err := f.provisioner.SecurityGroup(context.Background(), testCluster, nil)

	require.ErrorIs(t, err, eksprovisioner.ErrNetworkNotCreated)
	assert.Empty(t, f.ec2.SecurityGroups)
}

func TestPeerVPC(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.bootstrap(t)
	f.writeNetwork(t)

	f.ec2.VPCs["vpc-1"] = "192.168.0.0/16"
	f.ec2.VPCs["vpc-peer"] = "10.1.0.0/16"
	f.ec2.RouteTables["vpc-1"] = []string{"rtb-cluster"}
	f.ec2.RouteTables["vpc-peer"] = []string{"rtb-peer"}

	first, err := f.provisioner.PeerVPC(ctx, testCluster, "vpc-peer", "sg-peer")
	require.NoError(t, err)

	second, err := f.provisioner.PeerVPC(ctx, testCluster, "vpc-peer", "sg-peer")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, []string{first, second}, f.cluster(t).PeeringConnectionIDs)
	assert.Contains(t, f.ec2.Accepted, first)
	assert.NotEmpty(t, f.ec2.Routes)

	require.NotEmpty(t, f.ec2.Ingress)
	last := f.ec2.Ingress[len(f.ec2.Ingress)-1]
	assert.Equal(t, "sg-peer", last.GroupID)
	assert.Equal(t, "sg-nodes", aws.ToString(last.Permission.UserIdGroupPairs[0].GroupId))
}

func TestPeerVPC_NetworkNotCreated(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.bootstrap(t)

	_, err := f.provisioner.PeerVPC(context.Background(), testCluster, "vpc-peer", "sg-peer")

	require.ErrorIs(t, err, eksprovisioner.ErrNetworkNotCreated)
	assert.Empty(t, f.ec2.Peerings)
}

func TestUpdateDNS(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	_, err := f.kube.CoreV1().Services("web").Create(ctx, &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{Name: "frontend", Namespace: "web"},
		Spec:       corev1.ServiceSpec{Type: corev1.ServiceTypeLoadBalancer},
		Status: corev1.ServiceStatus{LoadBalancer: corev1.LoadBalancerStatus{
			Ingress: []corev1.LoadBalancerIngress{
				{IP: "10.0.0.1"},
				{Hostname: "frontend-123.us-west-2.elb.amazonaws.com"},
			},
		}},
	}, metav1.CreateOptions{})
	require.NoError(t, err)

	err = f.provisioner.UpdateDNS(ctx, testCluster, eksprovisioner.DNSRecord{
		Hostname:        "app.example.com",
		Service:         "frontend",
		Namespace:       "web",
		HostedZoneID:    "Z123",
		ELBHostedZoneID: "Z35SXDOTRQ7X7K",
	})
	require.NoError(t, err)

	require.Len(t, f.route53.Changes, 1)
	change := f.route53.Changes[0]
	assert.Equal(t, "Z123", aws.ToString(change.HostedZoneId))

	recordSet := change.ChangeBatch.Changes[0].ResourceRecordSet
	assert.Equal(t, "app.example.com", aws.ToString(recordSet.Name))
	assert.Equal(t, "frontend-123.us-west-2.elb.amazonaws.com", aws.ToString(recordSet.AliasTarget.DNSName))
	assert.Equal(t, "Z35SXDOTRQ7X7K", aws.ToString(recordSet.AliasTarget.HostedZoneId))
}

func TestUpdateDNS_ServiceNotExposed(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	_, err := f.kube.CoreV1().Services(eksprovisioner.DefaultServiceNamespace).Create(ctx, &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{Name: "pending", Namespace: eksprovisioner.DefaultServiceNamespace},
		Spec:       corev1.ServiceSpec{Type: corev1.ServiceTypeLoadBalancer},
	}, metav1.CreateOptions{})
	require.NoError(t, err)

	err = f.provisioner.UpdateDNS(ctx, testCluster, eksprovisioner.DNSRecord{
		Hostname: "app.example.com",
		Service:  "pending",
	})

	require.ErrorIs(t, err, eksprovisioner.ErrServiceNotExposed)
	assert.Empty(t, f.route53.Changes)
}

func TestUpdateDNS_MissingService(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	err := f.provisioner.UpdateDNS(context.Background(), testCluster, eksprovisioner.DNSRecord{
		Hostname: "app.example.com",
		Service:  "missing",
	})

	require.Error(t, err)
	assert.True(t, apierrors.IsNotFound(err))
}

func TestUpdateKubeconfig(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.bootstrap(t)
	f.eks.PutCluster(testCluster)

	require.NoError(t, f.provisioner.UpdateKubeconfig(ctx, testCluster))

	assert.Equal(t, clusterARN, f.cluster(t).ClusterARN)

	config, err := clientcmd.LoadFromFile(f.kubeconfig)
	require.NoError(t, err)
	assert.Equal(t, clusterARN, config.CurrentContext)
	require.Contains(t, config.Clusters, clusterARN)
	assert.Equal(t, []byte("ca-demo"), config.Clusters[clusterARN].CertificateAuthorityData)
}

func TestUpdateKubeconfig_NoControlPlane(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.bootstrap(t)

	err := f.provisioner.UpdateKubeconfig(context.Background(), testCluster)

	require.ErrorIs(t, err, awsprovider.ErrClusterNotFound)
}
