package aws

import (
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/devantler-tech/ekscli/pkg/svc/stack"
)

// Options selects the AWS credentials and region.
type Options struct {
	Region  string
	Profile string

	// AccessKeyID and SecretAccessKey override the default credential chain when both are set.
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// Clients bundles the service clients of one region.
type Clients struct {
	Region         string
	CloudFormation stack.API
	EKS            EKSAPI
	IAM            IAMAPI
	EC2            EC2API
	AutoScaling    AutoScalingAPI
	Route53        Route53API
	STS            STSAPI
	S3             *s3.Client
}

// LoadConfig resolves the shared AWS configuration for the given options.
func LoadConfig(ctx context.Context, opts Options) (sdkaws.Config, error) {
	loaders := []func(*config.LoadOptions) error{}

	if opts.Region != "" {
		loaders = append(loaders, config.WithRegion(opts.Region))
	}

	if opts.Profile != "" {
		loaders = append(loaders, config.WithSharedConfigProfile(opts.Profile))
	}

	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loaders = append(loaders, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, opts.SessionToken),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return sdkaws.Config{}, fmt.Errorf("load aws config: %w", err)
	}

	return cfg, nil
}

// NewClients creates the service clients for the given options.
func NewClients(ctx context.Context, opts Options) (*Clients, error) {
	cfg, err := LoadConfig(ctx, opts)
	if err != nil {
		return nil, err
	}

	return NewClientsFromConfig(cfg), nil
}

// NewClientsFromConfig creates the service clients from an already resolved configuration.
func NewClientsFromConfig(cfg sdkaws.Config) *Clients {
	return &Clients{
		Region:         cfg.Region,
		CloudFormation: cloudformation.NewFromConfig(cfg),
		EKS:            eks.NewFromConfig(cfg),
		IAM:            iam.NewFromConfig(cfg),
		EC2:            ec2.NewFromConfig(cfg),
		AutoScaling:    autoscaling.NewFromConfig(cfg),
		Route53:        route53.NewFromConfig(cfg),
		STS:            sts.NewFromConfig(cfg),
		S3:             s3.NewFromConfig(cfg),
	}
}
