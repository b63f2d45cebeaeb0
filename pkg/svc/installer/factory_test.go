package installer_test

import (
	"context"
	"testing"

	"github.com/devantler-tech/ekscli/pkg/svc/installer"
	"github.com/devantler-tech/ekscli/pkg/svc/installer/addons"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

var (
	_ installer.Installer = (*addons.GPUPlugin)(nil)
	_ installer.Installer = (*addons.StorageClass)(nil)
	_ installer.Installer = (*addons.DNSAutoscaler)(nil)
	_ installer.Installer = (*addons.CNI)(nil)
	_ installer.Installer = (*addons.RegistryCredentials)(nil)
)

func newTestFactory(t *testing.T) (*installer.Factory, *fake.Clientset) {
	t.Helper()

	logger, _ := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	client := fake.NewClientset()

	return installer.NewFactory(client, logger), client
}

func TestOptionsEmpty(t *testing.T) {
	t.Parallel()

	assert.True(t, installer.Options{}.Empty())
	assert.True(t, installer.Options{WarmIPTarget: -1}.Empty())
	assert.False(t, installer.Options{GPU: true}.Empty())
	assert.False(t, installer.Options{WarmIPTarget: 5}.Empty())
}

func TestFactoryDayOne(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		opts  installer.Options
		types []any
	}{
		{name: "none", opts: installer.Options{}},
		{
			name: "all",
			opts: installer.Options{GPU: true, StorageClass: true, DNSAutoscaler: true, WarmIPTarget: 10},
			types: []any{
				&addons.GPUPlugin{},
				&addons.StorageClass{},
				&addons.DNSAutoscaler{},
				&addons.CNI{},
			},
		},
		{
			name:  "storage_only",
			opts:  installer.Options{StorageClass: true},
			types: []any{&addons.StorageClass{}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			factory, _ := newTestFactory(t)
			installers := factory.DayOne(tc.opts)

			require.Len(t, installers, len(tc.types))

			for i, inst := range installers {
				assert.IsType(t, tc.types[i], inst)
			}
		})
	}
}

func TestFactoryDayOneInstalls(t *testing.T) {
	t.Parallel()

	factory, client := newTestFactory(t)
	ctx := context.Background()

	err := installer.InstallAll(ctx, 0, factory.DayOne(installer.Options{GPU: true, StorageClass: true})...)
	require.NoError(t, err)

	_, err = client.AppsV1().DaemonSets("kube-system").Get(ctx, addons.GPUPluginName, metav1.GetOptions{})
	require.NoError(t, err)

	_, err = client.StorageV1().StorageClasses().Get(ctx, addons.StorageClassName, metav1.GetOptions{})
	require.NoError(t, err)
}
