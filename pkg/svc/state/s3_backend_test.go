package state_test

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/devantler-tech/ekscli/pkg/svc/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}}
}

func (f *fakeS3) GetObject(
	_ context.Context,
	params *s3.GetObjectInput,
	_ ...func(*s3.Options),
) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, ok := f.objects[aws.ToString(params.Bucket)+"/"+aws.ToString(params.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}

	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(
	_ context.Context,
	params *s3.PutObjectInput,
	_ ...func(*s3.Options),
) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.objects[aws.ToString(params.Bucket)+"/"+aws.ToString(params.Key)] = data

	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(
	_ context.Context,
	params *s3.DeleteObjectInput,
	_ ...func(*s3.Options),
) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.objects, aws.ToString(params.Bucket)+"/"+aws.ToString(params.Key))

	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Backend_KeysAreClusterScoped(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newFakeS3()
	backend := state.NewS3Backend(client, "eks-state", "clusters")

	require.NoError(t, backend.Write(ctx, "demo", state.LayerGroups, []byte(`{}`)))

	assert.Contains(t, client.objects, "eks-state/clusters/demo/groups.json")
}

func TestS3Backend_ReadMissingLayer(t *testing.T) {
	t.Parallel()

	backend := state.NewS3Backend(newFakeS3(), "eks-state", "")

	_, err := backend.Read(context.Background(), "demo", state.LayerConfig)
	require.ErrorIs(t, err, state.ErrLayerNotFound)
}

func TestS3Backend_StoreLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newFakeS3()
	store := state.NewStore(state.NewS3Backend(client, "eks-state", "prod"), nil)

	require.NoError(t, store.Bootstrap(ctx, "demo", state.NewBootstrapLayer("us-west-2")))
	require.NoError(t, store.AddUser(ctx, "demo", "arn:aws:iam::123:user/alice", "alice", []string{"system:masters"}))

	cfg, err := store.Cluster(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, "alice", cfg.Users["arn:aws:iam::123:user/alice"].Username)

	require.NoError(t, store.Delete(ctx, "demo"))
	assert.Empty(t, client.objects)
}

func TestParseMinioEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		endpoint   string
		wantHost   string
		wantSecure bool
	}{
		{endpoint: "https://minio.example.com", wantHost: "minio.example.com", wantSecure: true},
		{endpoint: "http://localhost:9000", wantHost: "localhost:9000", wantSecure: false},
		{endpoint: "s3.example.com", wantHost: "s3.example.com", wantSecure: true},
	}

	for _, test := range tests {
		host, secure := state.ParseMinioEndpoint(test.endpoint)
		assert.Equal(t, test.wantHost, host, test.endpoint)
		assert.Equal(t, test.wantSecure, secure, test.endpoint)
	}
}

func TestNewMinioClient(t *testing.T) {
	t.Parallel()

	client, err := state.NewMinioClient("http://localhost:9000", "access", "secret", false)
	require.NoError(t, err)
	assert.NotNil(t, client)

	var _ state.MinioAPI = client
}
