package state

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3API is the subset of the S3 client used by S3Backend.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(
		ctx context.Context,
		params *s3.DeleteObjectInput,
		optFns ...func(*s3.Options),
	) (*s3.DeleteObjectOutput, error)
}

// S3Backend stores layers as s3://<bucket>/<prefix>/<cluster>/<layer>.json.
type S3Backend struct {
	client S3API
	bucket string
	prefix string
}

// NewS3Backend returns a backend storing layers in bucket under prefix.
func NewS3Backend(client S3API, bucket, prefix string) *S3Backend {
	return &S3Backend{client: client, bucket: bucket, prefix: prefix}
}

// Read implements Backend.
func (b *S3Backend) Read(ctx context.Context, cluster string, layer Layer) ([]byte, error) {
	key, err := b.key(cluster, layer)
	if err != nil {
		return nil, err
	}

	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, fmt.Errorf("%w: s3://%s/%s", ErrLayerNotFound, b.bucket, key)
		}

		return nil, fmt.Errorf("failed to get s3://%s/%s: %w", b.bucket, key, err)
	}

	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read s3://%s/%s: %w", b.bucket, key, err)
	}

	return data, nil
}

// Write implements Backend.
func (b *S3Backend) Write(ctx context.Context, cluster string, layer Layer, data []byte) error {
	key, err := b.key(cluster, layer)
	if err != nil {
		return err
	}

	_, err = b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to put s3://%s/%s: %w", b.bucket, key, err)
	}

	return nil
}

// Delete implements Backend.
func (b *S3Backend) Delete(ctx context.Context, cluster string) error {
	var errs []error

	for _, layer := range Layers() {
		key, err := b.key(cluster, layer)
		if err != nil {
			return err
		}

		_, err = b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(b.bucket),
			Key:    aws.String(key),
		})
		if err != nil && !isS3NotFound(err) {
			errs = append(errs, fmt.Errorf("failed to delete s3://%s/%s: %w", b.bucket, key, err))
		}
	}

	return errors.Join(errs...)
}

func (b *S3Backend) key(cluster string, layer Layer) (string, error) {
	err := validateClusterName(cluster)
	if err != nil {
		return "", err
	}

	return path.Join(b.prefix, cluster, layer.FileName()), nil
}

func isS3NotFound(err error) bool {
	var noSuchKey *s3types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}

	return false
}
