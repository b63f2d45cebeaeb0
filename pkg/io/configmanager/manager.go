package configmanager

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/devantler-tech/ekscli/pkg/k8s"
	clusterprovisioner "github.com/devantler-tech/ekscli/pkg/svc/provisioner/cluster"
	"github.com/devantler-tech/ekscli/pkg/svc/state"
	"github.com/devantler-tech/ekscli/pkg/utils/notify"
	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Settings file and environment conventions.
const (
	EnvPrefix      = "EKS"
	ConfigName     = "settings"
	ConfigType     = "yaml"
	flagStateDir   = "state-dir"
	flagBackend    = "state-backend"
	flagKubeconfig = "kubeconfig"
)

// LoadOptions configures how settings are loaded.
type LoadOptions struct {
	// IgnoreConfigFile skips the settings file (defaults, environment and flags only).
	IgnoreConfigFile bool
}

// ConfigManager loads a typed configuration.
type ConfigManager[T any] interface {
	// Load returns the configuration, either freshly loaded or previously cached.
	Load(opts LoadOptions) (*T, error)
}

// Manager loads Settings through viper.
type Manager struct {
	Viper *viper.Viper

	settings        *Settings
	loaded          bool
	configFileFound bool
}

var _ ConfigManager[Settings] = (*Manager)(nil)

// NewManager creates a Manager searching configDirs for settings.yaml. Without
// configDirs ~/.eks is searched.
func NewManager(configDirs ...string) *Manager {
	return &Manager{Viper: InitializeViper(configDirs...)}
}

// InitializeViper returns a viper instance with the settings defaults, the settings
// file search path and EKS_ environment binding.
func InitializeViper(configDirs ...string) *viper.Viper {
	viperInstance := viper.New()

	viperInstance.SetConfigName(ConfigName)
	viperInstance.SetConfigType(ConfigType)

	if len(configDirs) == 0 {
		home, err := os.UserHomeDir()
		if err == nil {
			configDirs = []string{filepath.Join(home, state.DefaultDirName)}
		}
	}

	for _, dir := range configDirs {
		viperInstance.AddConfigPath(dir)
	}

	viperInstance.SetEnvPrefix(EnvPrefix)
	viperInstance.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperInstance.AutomaticEnv()

	setDefaults(viperInstance)

	return viperInstance
}

// setDefaults registers every key so AutomaticEnv can resolve it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("state.backend", BackendFS)
	v.SetDefault("state.dir", "")
	v.SetDefault("state.bucket", "")
	v.SetDefault("state.prefix", DefaultStatePrefix)
	v.SetDefault("state.endpoint", "")
	v.SetDefault("state.access_key", "")
	v.SetDefault("state.secret_key", "")
	v.SetDefault("state.insecure", false)
	v.SetDefault("aws.profile", "")
	v.SetDefault("aws.region_override", "")
	v.SetDefault("kubeconfig", k8s.DefaultKubeconfigPath())
	v.SetDefault("poll_interval", DefaultPollInterval)
	v.SetDefault("readiness_successes", DefaultReadinessSuccesses)
	v.SetDefault("teardown_policy", string(clusterprovisioner.TeardownContinue))
	v.SetDefault("verbose", false)
	v.SetDefault("log_format", notify.LogFormatText)
}

// BindFlags registers the settings flags on flags and binds them to their keys.
func (m *Manager) BindFlags(flags *pflag.FlagSet) {
	flags.String(flagBackend, BackendFS, "state backend (fs, s3, minio)")
	flags.String(flagStateDir, "", "root directory of the fs state backend (default ~/.eks)")
	flags.String("state-bucket", "", "bucket of the s3 or minio state backend")
	flags.String("state-prefix", DefaultStatePrefix, "key prefix of the s3 or minio state backend")
	flags.String("state-endpoint", "", "endpoint of the minio state backend")
	flags.String("profile", "", "AWS shared config profile")
	flags.String(flagKubeconfig, "", "kubeconfig file to update (default $KUBECONFIG or ~/.kube/config)")
	flags.Duration("poll-interval", DefaultPollInterval, "interval between stack and cluster status polls")
	flags.Int("readiness-successes", DefaultReadinessSuccesses,
		"successful service listings required before a cluster counts as ready")
	flags.String("teardown-policy", string(clusterprovisioner.TeardownContinue),
		"what delete-cluster does when a step fails (continue, stop)")
	flags.BoolP("verbose", "v", false, "enable debug logging")
	flags.String("log-format", notify.LogFormatText, "log format (text, json)")

	bindings := map[string]string{
		"state.backend":       flagBackend,
		"state.dir":           flagStateDir,
		"state.bucket":        "state-bucket",
		"state.prefix":        "state-prefix",
		"state.endpoint":      "state-endpoint",
		"aws.profile":         "profile",
		"kubeconfig":          flagKubeconfig,
		"poll_interval":       "poll-interval",
		"readiness_successes": "readiness-successes",
		"teardown_policy":     "teardown-policy",
		"verbose":             "verbose",
		"log_format":          "log-format",
	}

	for key, name := range bindings {
		_ = m.Viper.BindPFlag(key, flags.Lookup(name))
	}
}

// Load reads, decodes and validates the settings. The first successful load is cached.
func (m *Manager) Load(opts LoadOptions) (*Settings, error) {
	if m.loaded {
		return m.settings, nil
	}

	if !opts.IgnoreConfigFile {
		err := m.readConfig()
		if err != nil {
			return nil, err
		}
	}

	var settings Settings

	err := m.Viper.Unmarshal(&settings, func(dc *mapstructure.DecoderConfig) {
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	if settings.Kubeconfig == "" {
		settings.Kubeconfig = k8s.DefaultKubeconfigPath()
	}

	err = settings.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	m.settings = &settings
	m.loaded = true

	return m.settings, nil
}

// ConfigFileUsed returns the settings file read by Load, if any.
func (m *Manager) ConfigFileUsed() string {
	if !m.configFileFound {
		return ""
	}

	return m.Viper.ConfigFileUsed()
}

func (m *Manager) readConfig() error {
	err := m.Viper.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("failed to read settings file: %w", err)
		}

		m.configFileFound = false

		return nil
	}

	m.configFileFound = true

	return nil
}
