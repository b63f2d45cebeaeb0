package aws

import (
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// CallerIdentity describes the credentials in use.
type CallerIdentity struct {
	Account string
	ARN     string
}

// GetCallerIdentity returns the account and principal of the active credentials.
func GetCallerIdentity(ctx context.Context, client STSAPI) (CallerIdentity, error) {
	out, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return CallerIdentity{}, fmt.Errorf("get caller identity: %w", err)
	}

	return CallerIdentity{
		Account: sdkaws.ToString(out.Account),
		ARN:     sdkaws.ToString(out.Arn),
	}, nil
}
