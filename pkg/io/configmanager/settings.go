package configmanager

import (
	"fmt"
	"time"

	clusterprovisioner "github.com/devantler-tech/ekscli/pkg/svc/provisioner/cluster"
	"github.com/devantler-tech/ekscli/pkg/utils/notify"
)

// State backends.
const (
	BackendFS    = "fs"
	BackendS3    = "s3"
	BackendMinio = "minio"
)

// Setting defaults.
const (
	DefaultPollInterval       = 10 * time.Second
	DefaultReadinessSuccesses = 3
	DefaultStatePrefix        = "eks"
)

// StateSettings selects where cluster configuration layers are stored.
type StateSettings struct {
	Backend string `mapstructure:"backend"`
	// Dir is the root of the fs backend. Empty selects ~/.eks.
	Dir    string `mapstructure:"dir"`
	Bucket string `mapstructure:"bucket"`
	Prefix string `mapstructure:"prefix"`
	// Endpoint, AccessKey, SecretKey and Insecure configure the minio backend.
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Insecure  bool   `mapstructure:"insecure"`
}

// AWSSettings tunes AWS client construction.
type AWSSettings struct {
	Profile string `mapstructure:"profile"`
	// RegionOverride replaces the region recorded in the cluster configuration.
	RegionOverride string `mapstructure:"region_override"`
}

// Settings is the typed view of the CLI settings.
type Settings struct {
	State              StateSettings                     `mapstructure:"state"`
	AWS                AWSSettings                       `mapstructure:"aws"`
	Kubeconfig         string                            `mapstructure:"kubeconfig"`
	PollInterval       time.Duration                     `mapstructure:"poll_interval"`
	ReadinessSuccesses int                               `mapstructure:"readiness_successes"`
	TeardownPolicy     clusterprovisioner.TeardownPolicy `mapstructure:"teardown_policy"`
	Verbose            bool                              `mapstructure:"verbose"`
	LogFormat          string                            `mapstructure:"log_format"`
}

// Validate checks the settings and normalizes the teardown policy.
func (s *Settings) Validate() error {
	switch s.State.Backend {
	case BackendFS:
	case BackendS3:
		if s.State.Bucket == "" {
			return fmt.Errorf("%w: %s", ErrMissingBucket, s.State.Backend)
		}
	case BackendMinio:
		if s.State.Bucket == "" {
			return fmt.Errorf("%w: %s", ErrMissingBucket, s.State.Backend)
		}

		if s.State.Endpoint == "" {
			return ErrMissingEndpoint
		}
	default:
		return fmt.Errorf("%w: %q (valid: %s, %s, %s)",
			ErrUnknownBackend, s.State.Backend, BackendFS, BackendS3, BackendMinio)
	}

	if s.PollInterval <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidPollInterval, s.PollInterval)
	}

	if s.ReadinessSuccesses < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidReadinessSuccesses, s.ReadinessSuccesses)
	}

	switch s.LogFormat {
	case notify.LogFormatText, notify.LogFormatJSON:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, s.LogFormat)
	}

	policy, err := clusterprovisioner.ParseTeardownPolicy(string(s.TeardownPolicy))
	if err != nil {
		return err
	}

	s.TeardownPolicy = policy

	return nil
}
