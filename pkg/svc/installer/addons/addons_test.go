package addons_test

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/devantler-tech/ekscli/pkg/svc/installer/addons"
	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
	"sigs.k8s.io/yaml"
)

func TestMain(m *testing.M) {
	exitCode := m.Run()

	_, err := snaps.Clean(m, snaps.CleanOpts{Sort: true})
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to clean snapshots: " + err.Error() + "\n")

		os.Exit(1)
	}

	os.Exit(exitCode)
}

// matchManifest snapshots an applied object as YAML, without the fields the fake
// clientset fills in on write.
func matchManifest(t *testing.T, object metav1.Object) {
	t.Helper()

	object.SetManagedFields(nil)
	object.SetResourceVersion("")

	manifest, err := yaml.Marshal(object)
	require.NoError(t, err)

	snaps.MatchSnapshot(t, string(manifest))
}

func nullLogger() logrus.FieldLogger {
	logger, _ := test.NewNullLogger()

	return logger
}

func awsNode(env ...corev1.EnvVar) *appsv1.DaemonSet {
	return &appsv1.DaemonSet{
		ObjectMeta: metav1.ObjectMeta{Name: addons.CNIDaemonSetName, Namespace: "kube-system"},
		Spec: appsv1.DaemonSetSpec{
			Template: corev1.PodTemplateSpec{
				Spec: corev1.PodSpec{
					Containers: []corev1.Container{{Name: "aws-node", Image: "amazon-k8s-cni:v1.3.2", Env: env}},
				},
			},
		},
	}
}

func defaultAccount(namespace string, pullSecrets ...string) *corev1.ServiceAccount {
	account := &corev1.ServiceAccount{
		ObjectMeta: metav1.ObjectMeta{Name: "default", Namespace: namespace},
	}
	for _, name := range pullSecrets {
		account.ImagePullSecrets = append(account.ImagePullSecrets, corev1.LocalObjectReference{Name: name})
	}

	return account
}

func TestGPUPlugin(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := fake.NewClientset()
	plugin := addons.NewGPUPlugin(client, nullLogger())

	require.NoError(t, plugin.Install(ctx))
	require.NoError(t, plugin.Install(ctx))

	daemonSet, err := client.AppsV1().DaemonSets("kube-system").Get(ctx, addons.GPUPluginName, metav1.GetOptions{})
	require.NoError(t, err)

	spec := daemonSet.Spec.Template.Spec
	require.Len(t, spec.Containers, 1)
	assert.Equal(t, addons.GPUPluginImage, spec.Containers[0].Image)
	assert.Contains(t, spec.Tolerations, corev1.Toleration{
		Key:      addons.GPUResourceName,
		Operator: corev1.TolerationOpExists,
		Effect:   corev1.TaintEffectNoSchedule,
	})
	assert.Equal(t, daemonSet.Spec.Selector.MatchLabels, daemonSet.Spec.Template.Labels)
	matchManifest(t, daemonSet)

	require.NoError(t, plugin.Uninstall(ctx))
	require.NoError(t, plugin.Uninstall(ctx))

	_, err = client.AppsV1().DaemonSets("kube-system").Get(ctx, addons.GPUPluginName, metav1.GetOptions{})
	assert.True(t, apierrors.IsNotFound(err))
}

func TestStorageClass(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := fake.NewClientset()
	class := addons.NewStorageClass(client, nullLogger())

	require.NoError(t, class.Install(ctx))

	created, err := client.StorageV1().StorageClasses().Get(ctx, addons.StorageClassName, metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "kubernetes.io/aws-ebs", created.Provisioner)
	assert.Equal(t, map[string]string{"type": "gp2", "fsType": "ext4"}, created.Parameters)
	assert.Equal(t, "true", created.Annotations[addons.DefaultClassAnnotation])
	matchManifest(t, created)

	require.NoError(t, class.Uninstall(ctx))

	_, err = client.StorageV1().StorageClasses().Get(ctx, addons.StorageClassName, metav1.GetOptions{})
	assert.True(t, apierrors.IsNotFound(err))
}

func TestDNSAutoscaler(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := fake.NewClientset()
	autoscaler := addons.NewDNSAutoscaler(client, nullLogger())

	require.NoError(t, autoscaler.Install(ctx))
	require.NoError(t, autoscaler.Install(ctx))

	_, err := client.CoreV1().ServiceAccounts("kube-system").Get(ctx, addons.DNSAutoscalerName, metav1.GetOptions{})
	require.NoError(t, err)

	role, err := client.RbacV1().ClusterRoles().Get(ctx, addons.DNSAutoscalerRoleName, metav1.GetOptions{})
	require.NoError(t, err)
	assert.NotEmpty(t, role.Rules)

	binding, err := client.RbacV1().ClusterRoleBindings().Get(ctx, addons.DNSAutoscalerRoleName, metav1.GetOptions{})
	require.NoError(t, err)
	require.Len(t, binding.Subjects, 1)
	assert.Equal(t, addons.DNSAutoscalerName, binding.Subjects[0].Name)
	assert.Equal(t, addons.DNSAutoscalerRoleName, binding.RoleRef.Name)

	deployment, err := client.AppsV1().Deployments("kube-system").Get(ctx, addons.DNSAutoscalerName, metav1.GetOptions{})
	require.NoError(t, err)

	pod := deployment.Spec.Template.Spec
	assert.Equal(t, addons.DNSAutoscalerName, pod.ServiceAccountName)
	require.Len(t, pod.Containers, 1)
	assert.Equal(t, addons.DNSAutoscalerImage, pod.Containers[0].Image)
	assert.Contains(t, pod.Containers[0].Command, "--target=Deployment/coredns")
	matchManifest(t, role)
	matchManifest(t, deployment)

	require.NoError(t, autoscaler.Uninstall(ctx))

	_, err = client.RbacV1().ClusterRoles().Get(ctx, addons.DNSAutoscalerRoleName, metav1.GetOptions{})
	assert.True(t, apierrors.IsNotFound(err))
}

func TestCNI(t *testing.T) {
	t.Parallel()

	t.Run("adds_warm_ip_target", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		client := fake.NewClientset(awsNode(corev1.EnvVar{Name: "AWS_VPC_K8S_CNI_LOGLEVEL", Value: "DEBUG"}))

		require.NoError(t, addons.NewCNI(client, nullLogger(), 10).Install(ctx))

		env := cniEnv(t, client)
		assert.Equal(t, []corev1.EnvVar{
			{Name: "AWS_VPC_K8S_CNI_LOGLEVEL", Value: "DEBUG"},
			{Name: addons.WarmIPTargetEnv, Value: "10"},
		}, env)
	})

	t.Run("replaces_existing_value", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		client := fake.NewClientset(awsNode(corev1.EnvVar{Name: addons.WarmIPTargetEnv, Value: "2"}))

		require.NoError(t, addons.NewCNI(client, nullLogger(), 7).Install(ctx))

		assert.Equal(t, []corev1.EnvVar{{Name: addons.WarmIPTargetEnv, Value: "7"}}, cniEnv(t, client))
	})

	t.Run("uninstall_removes_value", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		client := fake.NewClientset(awsNode(corev1.EnvVar{Name: addons.WarmIPTargetEnv, Value: "2"}))

		require.NoError(t, addons.NewCNI(client, nullLogger(), 7).Uninstall(ctx))

		assert.Empty(t, cniEnv(t, client))
	})

	t.Run("invalid_target", func(t *testing.T) {
		t.Parallel()

		err := addons.NewCNI(fake.NewClientset(awsNode()), nullLogger(), 0).Install(context.Background())

		require.ErrorIs(t, err, addons.ErrInvalidWarmIPTarget)
	})

	t.Run("missing_daemonset", func(t *testing.T) {
		t.Parallel()

		err := addons.NewCNI(fake.NewClientset(), nullLogger(), 5).Install(context.Background())

		require.Error(t, err)
		assert.True(t, apierrors.IsNotFound(err))
	})

	t.Run("missing_container", func(t *testing.T) {
		t.Parallel()

		daemonSet := awsNode()
		daemonSet.Spec.Template.Spec.Containers[0].Name = "sidecar"

		err := addons.NewCNI(fake.NewClientset(daemonSet), nullLogger(), 5).Install(context.Background())

		require.ErrorIs(t, err, addons.ErrContainerNotFound)
	})
}

func cniEnv(t *testing.T, client *fake.Clientset) []corev1.EnvVar {
	t.Helper()

	daemonSet, err := client.AppsV1().DaemonSets("kube-system").Get(
		context.Background(), addons.CNIDaemonSetName, metav1.GetOptions{},
	)
	require.NoError(t, err)

	return daemonSet.Spec.Template.Spec.Containers[0].Env
}

func TestRegistryCredentials(t *testing.T) {
	t.Parallel()

	t.Run("install_creates_secrets_and_patches_accounts", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		client := fake.NewClientset(defaultAccount("default", "other"), defaultAccount("kube-system"))
		registry := addons.NewRegistryCredentials(client, nullLogger(), addons.RegistryAuth{
			Username: "bot",
			Password: "s3cret",
			Email:    "bot@example.com",
		})

		require.NoError(t, registry.Install(ctx))
		require.NoError(t, registry.Install(ctx))

		for _, namespace := range addons.RegistryNamespaces() {
			secret, err := client.CoreV1().Secrets(namespace).Get(ctx, addons.RegistrySecretName, metav1.GetOptions{})
			require.NoError(t, err)
			assert.Equal(t, corev1.SecretTypeDockerConfigJson, secret.Type)

			var config struct {
				Auths map[string]map[string]string `json:"auths"`
			}

			require.NoError(t, json.Unmarshal(secret.Data[corev1.DockerConfigJsonKey], &config))

			entry := config.Auths[addons.DefaultRegistryServer]
			assert.Equal(t, "bot", entry["username"])
			assert.Equal(t, "s3cret", entry["password"])
			assert.Equal(t, "bot@example.com", entry["email"])
			assert.Equal(t, "Ym90OnMzY3JldA==", entry["auth"])
		}

		account, err := client.CoreV1().ServiceAccounts("default").Get(ctx, "default", metav1.GetOptions{})
		require.NoError(t, err)
		assert.Equal(t, []corev1.LocalObjectReference{{Name: "other"}, {Name: addons.RegistrySecretName}},
			account.ImagePullSecrets)

		account, err = client.CoreV1().ServiceAccounts("kube-system").Get(ctx, "default", metav1.GetOptions{})
		require.NoError(t, err)
		assert.Equal(t, []corev1.LocalObjectReference{{Name: addons.RegistrySecretName}}, account.ImagePullSecrets)
	})

	t.Run("custom_server", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		client := fake.NewClientset(defaultAccount("default"), defaultAccount("kube-system"))
		registry := addons.NewRegistryCredentials(client, nullLogger(), addons.RegistryAuth{
			Server:   "ghcr.io",
			Username: "bot",
			Password: "token",
		})

		require.NoError(t, registry.Install(ctx))

		secret, err := client.CoreV1().Secrets("default").Get(ctx, addons.RegistrySecretName, metav1.GetOptions{})
		require.NoError(t, err)
		assert.Contains(t, string(secret.Data[corev1.DockerConfigJsonKey]), `"ghcr.io"`)
		assert.NotContains(t, string(secret.Data[corev1.DockerConfigJsonKey]), "email")
	})

	t.Run("uninstall", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		client := fake.NewClientset(
			defaultAccount("default", addons.RegistrySecretName, "other"),
			defaultAccount("kube-system", addons.RegistrySecretName),
		)
		registry := addons.NewRegistryCredentials(client, nullLogger(), addons.RegistryAuth{})

		require.NoError(t, registry.Uninstall(ctx))

		account, err := client.CoreV1().ServiceAccounts("default").Get(ctx, "default", metav1.GetOptions{})
		require.NoError(t, err)
		assert.Equal(t, []corev1.LocalObjectReference{{Name: "other"}}, account.ImagePullSecrets)
	})

	t.Run("missing_credentials", func(t *testing.T) {
		t.Parallel()

		registry := addons.NewRegistryCredentials(fake.NewClientset(), nullLogger(), addons.RegistryAuth{Username: "bot"})

		require.ErrorIs(t, registry.Install(context.Background()), addons.ErrMissingRegistryCredentials)
	})

	t.Run("missing_service_account", func(t *testing.T) {
		t.Parallel()

		registry := addons.NewRegistryCredentials(fake.NewClientset(), nullLogger(), addons.RegistryAuth{
			Username: "bot",
			Password: "token",
		})

		err := registry.Install(context.Background())

		require.Error(t, err)
		assert.True(t, apierrors.IsNotFound(err))
	})
}
