package state

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioAPI is the subset of the MinIO client used by MinioBackend.
type MinioAPI interface {
	GetObject(
		ctx context.Context,
		bucketName, objectName string,
		opts minio.GetObjectOptions,
	) (*minio.Object, error)
	PutObject(
		ctx context.Context,
		bucketName, objectName string,
		reader io.Reader,
		objectSize int64,
		opts minio.PutObjectOptions,
	) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// MinioBackend stores layers on an S3-compatible endpoint such as MinIO or Ceph.
type MinioBackend struct {
	client MinioAPI
	bucket string
	prefix string
}

// NewMinioBackend returns a backend storing layers in bucket under prefix.
func NewMinioBackend(client MinioAPI, bucket, prefix string) *MinioBackend {
	return &MinioBackend{client: client, bucket: bucket, prefix: prefix}
}

// NewMinioClient builds a MinIO client for endpoint. A http:// scheme disables TLS,
// any other endpoint (with https:// or no scheme) uses TLS unless insecure is set.
func NewMinioClient(endpoint, accessKeyID, secretKey string, insecure bool) (*minio.Client, error) {
	host, secure := ParseMinioEndpoint(endpoint)
	if insecure {
		secure = false
	}

	client, err := minio.New(host, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKeyID, secretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for %s: %w", endpoint, err)
	}

	return client, nil
}

// ParseMinioEndpoint strips the scheme from endpoint and reports whether TLS should be used.
func ParseMinioEndpoint(endpoint string) (string, bool) {
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		return strings.TrimPrefix(endpoint, "https://"), true
	case strings.HasPrefix(endpoint, "http://"):
		return strings.TrimPrefix(endpoint, "http://"), false
	default:
		return endpoint, true
	}
}

// Read implements Backend.
func (b *MinioBackend) Read(ctx context.Context, cluster string, layer Layer) ([]byte, error) {
	key, err := b.key(cluster, layer)
	if err != nil {
		return nil, err
	}

	object, err := b.client.GetObject(ctx, b.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, b.readError(key, err)
	}

	defer func() { _ = object.Close() }()

	data, err := io.ReadAll(object)
	if err != nil {
		return nil, b.readError(key, err)
	}

	return data, nil
}

// Write implements Backend.
func (b *MinioBackend) Write(ctx context.Context, cluster string, layer Layer, data []byte) error {
	key, err := b.key(cluster, layer)
	if err != nil {
		return err
	}

	_, err = b.client.PutObject(
		ctx,
		b.bucket,
		key,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"},
	)
	if err != nil {
		return fmt.Errorf("failed to put %s/%s: %w", b.bucket, key, err)
	}

	return nil
}

// Delete implements Backend.
func (b *MinioBackend) Delete(ctx context.Context, cluster string) error {
	var errs []error

	for _, layer := range Layers() {
		key, err := b.key(cluster, layer)
		if err != nil {
			return err
		}

		err = b.client.RemoveObject(ctx, b.bucket, key, minio.RemoveObjectOptions{})
		if err != nil && !isMinioNotFound(err) {
			errs = append(errs, fmt.Errorf("failed to remove %s/%s: %w", b.bucket, key, err))
		}
	}

	return errors.Join(errs...)
}

func (b *MinioBackend) key(cluster string, layer Layer) (string, error) {
	err := validateClusterName(cluster)
	if err != nil {
		return "", err
	}

	return path.Join(b.prefix, cluster, layer.FileName()), nil
}

func (b *MinioBackend) readError(key string, err error) error {
	if isMinioNotFound(err) {
		return fmt.Errorf("%w: %s/%s", ErrLayerNotFound, b.bucket, key)
	}

	return fmt.Errorf("failed to read %s/%s: %w", b.bucket, key, err)
}

func isMinioNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)

	return string(resp.Code) == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}
