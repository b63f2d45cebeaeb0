package spotinst

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Credentials authenticate requests against the Spotinst API.
type Credentials struct {
	AccountID string `envconfig:"ACCOUNT_ID" required:"true"`
	APIToken  string `envconfig:"API_TOKEN"  required:"true"`
}

// LoadCredentials reads SPOTINST_ACCOUNT_ID and SPOTINST_API_TOKEN from the environment.
func LoadCredentials() (Credentials, error) {
	var creds Credentials

	err := envconfig.Process("spotinst", &creds)
	if err != nil {
		return Credentials{}, fmt.Errorf("%w: %w", ErrMissingCredentials, err)
	}

	return creds, nil
}
