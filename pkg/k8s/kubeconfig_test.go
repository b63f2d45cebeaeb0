package k8s_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/devantler-tech/ekscli/pkg/k8s"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/client-go/tools/clientcmd"
)

const demoARN = "arn:aws:eks:us-west-2:123456789012:cluster/demo"

func demoEntry() k8s.EKSEntry {
	return k8s.EKSEntry{
		ClusterName:              "demo",
		ClusterARN:               demoARN,
		Endpoint:                 "https://demo.eks.amazonaws.com",
		CertificateAuthorityData: []byte("ca"),
		Region:                   "us-west-2",
		Profile:                  "ops",
	}
}

func TestWriteEKSKubeconfig_CreatesFile(t *testing.T) {
	t.Parallel()

	logger, _ := test.NewNullLogger()
	path := filepath.Join(t.TempDir(), "nested", "config")

	require.NoError(t, k8s.WriteEKSKubeconfig(path, demoEntry(), logger))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	config, err := clientcmd.LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, demoARN, config.CurrentContext)
	assert.Equal(t, "https://demo.eks.amazonaws.com", config.Clusters[demoARN].Server)
	assert.Equal(t, []byte("ca"), config.Clusters[demoARN].CertificateAuthorityData)

	exec := config.AuthInfos[demoARN].Exec
	require.NotNil(t, exec)
	assert.Equal(t, "aws", exec.Command)
	assert.Equal(t, []string{"eks", "get-token", "--cluster-name", "demo", "--region", "us-west-2"}, exec.Args)
	require.Len(t, exec.Env, 1)
	assert.Equal(t, "ops", exec.Env[0].Value)
}

func TestWriteEKSKubeconfig_PreservesOtherEntries(t *testing.T) {
	t.Parallel()

	logger, _ := test.NewNullLogger()
	path := filepath.Join(t.TempDir(), "config")

	existing := `apiVersion: v1
kind: Config
clusters:
- cluster:
    server: https://other.server:6443
  name: other
contexts:
- context:
    cluster: other
    user: other
  name: other
current-context: other
users:
- name: other
  user:
    token: fake-token
`
	require.NoError(t, os.WriteFile(path, []byte(existing), 0o600))

	require.NoError(t, k8s.WriteEKSKubeconfig(path, demoEntry(), logger))

	config, err := clientcmd.LoadFromFile(path)
	require.NoError(t, err)
	assert.Contains(t, config.Clusters, "other")
	assert.Contains(t, config.Clusters, demoARN)
	assert.Equal(t, demoARN, config.CurrentContext)
}

func TestWriteEKSKubeconfig_Validation(t *testing.T) {
	t.Parallel()

	logger, _ := test.NewNullLogger()

	err := k8s.WriteEKSKubeconfig("", demoEntry(), logger)
	require.ErrorIs(t, err, k8s.ErrKubeconfigPathEmpty)

	entry := demoEntry()
	entry.Endpoint = ""

	err = k8s.WriteEKSKubeconfig(filepath.Join(t.TempDir(), "config"), entry, logger)
	require.ErrorIs(t, err, k8s.ErrEndpointEmpty)
}

func TestCleanupKubeconfig(t *testing.T) {
	t.Parallel()

	logger, _ := test.NewNullLogger()
	path := filepath.Join(t.TempDir(), "config")

	require.NoError(t, k8s.WriteEKSKubeconfig(path, demoEntry(), logger))
	require.NoError(t, k8s.CleanupKubeconfig(path, demoARN, logger))

	config, err := clientcmd.LoadFromFile(path)
	require.NoError(t, err)
	assert.NotContains(t, config.Clusters, demoARN)
	assert.NotContains(t, config.AuthInfos, demoARN)
	assert.Empty(t, config.CurrentContext)
}

func TestCleanupKubeconfig_MissingFile(t *testing.T) {
	t.Parallel()

	logger, _ := test.NewNullLogger()

	require.NoError(t, k8s.CleanupKubeconfig("/nonexistent/path/kubeconfig", demoARN, logger))
}
