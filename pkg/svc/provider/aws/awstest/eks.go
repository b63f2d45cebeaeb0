package awstest

import (
	"context"
	"encoding/base64"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	ekstypes "github.com/aws/aws-sdk-go-v2/service/eks/types"
)

// EKS is an in-memory EKS client. Clusters become ACTIVE after PendingPolls describes
// and disappear after PendingPolls describes once deleted.
type EKS struct {
	mu       sync.Mutex
	clusters map[string]*ekstypes.Cluster
	polls    map[string]int

	PendingPolls int
	// RoleNotReady makes the first N creates fail as if the service role could not be assumed yet.
	RoleNotReady int

	Created []eks.CreateClusterInput
	Deleted []string
}

// NewEKS returns an empty fake.
func NewEKS() *EKS {
	return &EKS{clusters: map[string]*ekstypes.Cluster{}, polls: map[string]int{}}
}

// PutCluster seeds an ACTIVE cluster.
func (f *EKS) PutCluster(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.clusters[name] = cluster(name, ekstypes.ClusterStatusActive)
}

// CreateCluster implements aws.EKSAPI.
func (f *EKS) CreateCluster(
	_ context.Context,
	params *eks.CreateClusterInput,
	_ ...func(*eks.Options),
) (*eks.CreateClusterOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.RoleNotReady > 0 {
		f.RoleNotReady--

		return nil, &ekstypes.InvalidParameterException{Message: aws.String("Role could not be assumed")}
	}

	name := aws.ToString(params.Name)
	if _, ok := f.clusters[name]; ok {
		return nil, &ekstypes.ResourceInUseException{Message: aws.String("Cluster already exists")}
	}

	f.Created = append(f.Created, *params)
	f.clusters[name] = cluster(name, ekstypes.ClusterStatusCreating)
	f.polls[name] = f.PendingPolls

	return &eks.CreateClusterOutput{Cluster: f.clusters[name]}, nil
}

// DescribeCluster implements aws.EKSAPI.
func (f *EKS) DescribeCluster(
	_ context.Context,
	params *eks.DescribeClusterInput,
	_ ...func(*eks.Options),
) (*eks.DescribeClusterOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	name := aws.ToString(params.Name)

	current, ok := f.clusters[name]
	if !ok {
		return nil, &ekstypes.ResourceNotFoundException{Message: aws.String("No cluster found for name: " + name)}
	}

	if current.Status == ekstypes.ClusterStatusCreating || current.Status == ekstypes.ClusterStatusDeleting {
		if f.polls[name] > 0 {
			f.polls[name]--
		} else if current.Status == ekstypes.ClusterStatusCreating {
			current.Status = ekstypes.ClusterStatusActive
		} else {
			delete(f.clusters, name)

			return nil, &ekstypes.ResourceNotFoundException{Message: aws.String("No cluster found for name: " + name)}
		}
	}

	described := *current

	return &eks.DescribeClusterOutput{Cluster: &described}, nil
}

// DeleteCluster implements aws.EKSAPI.
func (f *EKS) DeleteCluster(
	_ context.Context,
	params *eks.DeleteClusterInput,
	_ ...func(*eks.Options),
) (*eks.DeleteClusterOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	name := aws.ToString(params.Name)

	current, ok := f.clusters[name]
	if !ok {
		return nil, &ekstypes.ResourceNotFoundException{Message: aws.String("No cluster found for name: " + name)}
	}

	current.Status = ekstypes.ClusterStatusDeleting
	f.polls[name] = f.PendingPolls
	f.Deleted = append(f.Deleted, name)

	return &eks.DeleteClusterOutput{}, nil
}

// ListClusters implements aws.EKSAPI.
func (f *EKS) ListClusters(
	_ context.Context,
	_ *eks.ListClustersInput,
	_ ...func(*eks.Options),
) (*eks.ListClustersOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	names := make([]string, 0, len(f.clusters))
	for name := range f.clusters {
		names = append(names, name)
	}

	sort.Strings(names)

	return &eks.ListClustersOutput{Clusters: names}, nil
}

func cluster(name string, status ekstypes.ClusterStatus) *ekstypes.Cluster {
	return &ekstypes.Cluster{
		Name:     aws.String(name),
		Arn:      aws.String("arn:aws:eks:us-west-2:123456789012:cluster/" + name),
		Endpoint: aws.String("https://" + name + ".eks.amazonaws.com"),
		Version:  aws.String("1.13"),
		Status:   status,
		CertificateAuthority: &ekstypes.Certificate{
			Data: aws.String(base64.StdEncoding.EncodeToString([]byte("ca-" + name))),
		},
	}
}
