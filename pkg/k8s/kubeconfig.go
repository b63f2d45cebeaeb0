package k8s

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"k8s.io/client-go/tools/clientcmd"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"
)

const (
	kubeconfigFileMode = 0o600
	kubeconfigDirMode  = 0o700

	execAPIVersion = "client.authentication.k8s.io/v1beta1"
)

// EKSEntry describes the kubeconfig entry of one EKS cluster. The cluster ARN names
// the cluster, context and user entries.
type EKSEntry struct {
	ClusterName              string
	ClusterARN               string
	Endpoint                 string
	CertificateAuthorityData []byte
	Region                   string
	Profile                  string
}

// WriteEKSKubeconfig merges an entry for the cluster into the kubeconfig at path,
// creating the file when missing, and makes it the current context. Authentication
// runs "aws eks get-token" through the exec credential plugin.
func WriteEKSKubeconfig(path string, entry EKSEntry, logger logrus.FieldLogger) error {
	if path == "" {
		return ErrKubeconfigPathEmpty
	}

	if entry.Endpoint == "" {
		return fmt.Errorf("%w: %s", ErrEndpointEmpty, entry.ClusterName)
	}

	config, err := loadOrEmpty(path)
	if err != nil {
		return err
	}

	name := entry.ClusterARN
	if name == "" {
		name = entry.ClusterName
	}

	cluster := clientcmdapi.NewCluster()
	cluster.Server = entry.Endpoint
	cluster.CertificateAuthorityData = entry.CertificateAuthorityData

	user := clientcmdapi.NewAuthInfo()
	user.Exec = execConfig(entry)

	context := clientcmdapi.NewContext()
	context.Cluster = name
	context.AuthInfo = name

	config.Clusters[name] = cluster
	config.AuthInfos[name] = user
	config.Contexts[name] = context
	config.CurrentContext = name

	err = os.MkdirAll(filepath.Dir(path), kubeconfigDirMode)
	if err != nil {
		return fmt.Errorf("failed to create kubeconfig directory: %w", err)
	}

	err = clientcmd.WriteToFile(*config, path)
	if err != nil {
		return fmt.Errorf("failed to write kubeconfig: %w", err)
	}

	err = os.Chmod(path, kubeconfigFileMode)
	if err != nil {
		return fmt.Errorf("failed to restrict kubeconfig permissions: %w", err)
	}

	logger.WithField("context", name).Info("updated kubeconfig")

	return nil
}

// CleanupKubeconfig removes the cluster, context and user entries named name from the
// kubeconfig at path. A missing file or missing entries are not an error.
func CleanupKubeconfig(path, name string, logger logrus.FieldLogger) error {
	_, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	config, err := loadOrEmpty(path)
	if err != nil {
		return err
	}

	_, hasContext := config.Contexts[name]
	_, hasCluster := config.Clusters[name]
	_, hasUser := config.AuthInfos[name]

	if !hasContext && !hasCluster && !hasUser && config.CurrentContext != name {
		return nil
	}

	delete(config.Contexts, name)
	delete(config.Clusters, name)
	delete(config.AuthInfos, name)

	if config.CurrentContext == name {
		config.CurrentContext = ""
	}

	err = clientcmd.WriteToFile(*config, path)
	if err != nil {
		return fmt.Errorf("failed to write kubeconfig: %w", err)
	}

	logger.WithField("context", name).Info("cleaned up kubeconfig entries")

	return nil
}

func loadOrEmpty(path string) (*clientcmdapi.Config, error) {
	config, err := clientcmd.LoadFromFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return clientcmdapi.NewConfig(), nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
	}

	return config, nil
}

func execConfig(entry EKSEntry) *clientcmdapi.ExecConfig {
	args := []string{"eks", "get-token", "--cluster-name", entry.ClusterName}
	if entry.Region != "" {
		args = append(args, "--region", entry.Region)
	}

	exec := &clientcmdapi.ExecConfig{
		APIVersion:      execAPIVersion,
		Command:         "aws",
		Args:            args,
		InteractiveMode: clientcmdapi.NeverExecInteractiveMode,
	}

	if entry.Profile != "" {
		exec.Env = []clientcmdapi.ExecEnvVar{{Name: "AWS_PROFILE", Value: entry.Profile}}
	}

	return exec
}
