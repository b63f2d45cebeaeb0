package addons

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

const (
	// RegistrySecretName is the docker-registry secret referenced by the default ServiceAccounts.
	//nolint:gosec // not credentials, just a secret name constant
	RegistrySecretName = "registrykey"
	// DefaultRegistryServer is the Docker Hub auth endpoint.
	DefaultRegistryServer = "https://index.docker.io/v1/"

	defaultServiceAccount = "default"
)

// RegistryNamespaces lists the namespaces that receive the pull secret.
func RegistryNamespaces() []string {
	return []string{"default", systemNamespace}
}

// RegistryAuth holds docker registry credentials.
type RegistryAuth struct {
	Server   string
	Username string
	Password string
	Email    string
}

// RegistryCredentials installs a pull secret and wires it into the default ServiceAccounts.
type RegistryCredentials struct {
	client kubernetes.Interface
	logger logrus.FieldLogger
	auth   RegistryAuth
}

// NewRegistryCredentials creates a registry credentials installer. An empty server selects Docker Hub.
func NewRegistryCredentials(
	client kubernetes.Interface,
	logger logrus.FieldLogger,
	auth RegistryAuth,
) *RegistryCredentials {
	if auth.Server == "" {
		auth.Server = DefaultRegistryServer
	}

	return &RegistryCredentials{
		client: client,
		logger: logger.WithFields(logrus.Fields{"addon": "registry-credentials", "server": auth.Server}),
		auth:   auth,
	}
}

// Install upserts the pull secret and adds it to imagePullSecrets of each default ServiceAccount.
func (r *RegistryCredentials) Install(ctx context.Context) error {
	if r.auth.Username == "" || r.auth.Password == "" {
		return ErrMissingRegistryCredentials
	}

	r.logger.Info("setting docker registry credentials")

	dockerConfig, err := buildDockerConfigJSON(r.auth)
	if err != nil {
		return err
	}

	for _, namespace := range RegistryNamespaces() {
		secret := &corev1.Secret{
			ObjectMeta: metav1.ObjectMeta{
				Name:      RegistrySecretName,
				Namespace: namespace,
				Labels:    managedLabels(RegistrySecretName),
			},
			Type: corev1.SecretTypeDockerConfigJson,
			Data: map[string][]byte{corev1.DockerConfigJsonKey: dockerConfig},
		}

		err = upsert(ctx, r.client.CoreV1().Secrets(namespace), "secret", secret)
		if err != nil {
			return err
		}

		err = r.updateServiceAccount(ctx, namespace, addRegistrySecret)
		if err != nil {
			return err
		}

		r.logger.WithField("namespace", namespace).Info("registry credentials set")
	}

	return nil
}

// Uninstall removes the pull secret reference and deletes the secret in each namespace.
func (r *RegistryCredentials) Uninstall(ctx context.Context) error {
	r.logger.Info("removing docker registry credentials")

	for _, namespace := range RegistryNamespaces() {
		err := r.updateServiceAccount(ctx, namespace, dropRegistrySecret)
		if err != nil {
			return err
		}

		err = remove(ctx, r.client.CoreV1().Secrets(namespace), "secret", RegistrySecretName)
		if err != nil {
			return err
		}
	}

	return nil
}

func (r *RegistryCredentials) updateServiceAccount(
	ctx context.Context,
	namespace string,
	mutate func([]corev1.LocalObjectReference) []corev1.LocalObjectReference,
) error {
	accounts := r.client.CoreV1().ServiceAccounts(namespace)

	account, err := accounts.Get(ctx, defaultServiceAccount, metav1.GetOptions{})
	if err != nil {
		return fmt.Errorf("failed to get service account %s/%s: %w", namespace, defaultServiceAccount, err)
	}

	account.ImagePullSecrets = mutate(account.ImagePullSecrets)

	_, err = accounts.Update(ctx, account, metav1.UpdateOptions{})
	if err != nil {
		return fmt.Errorf("failed to update service account %s/%s: %w", namespace, defaultServiceAccount, err)
	}

	return nil
}

func isRegistrySecret(ref corev1.LocalObjectReference) bool {
	return ref.Name == RegistrySecretName
}

func addRegistrySecret(refs []corev1.LocalObjectReference) []corev1.LocalObjectReference {
	if slices.ContainsFunc(refs, isRegistrySecret) {
		return refs
	}

	return append(refs, corev1.LocalObjectReference{Name: RegistrySecretName})
}

func dropRegistrySecret(refs []corev1.LocalObjectReference) []corev1.LocalObjectReference {
	return slices.DeleteFunc(refs, isRegistrySecret)
}

// buildDockerConfigJSON renders the .dockerconfigjson payload for auth.
func buildDockerConfigJSON(auth RegistryAuth) ([]byte, error) {
	token := base64.StdEncoding.EncodeToString([]byte(auth.Username + ":" + auth.Password))

	entry := map[string]string{
		"username": auth.Username,
		"password": auth.Password,
		"auth":     token,
	}
	if auth.Email != "" {
		entry["email"] = auth.Email
	}

	data, err := json.Marshal(map[string]any{
		"auths": map[string]any{auth.Server: entry},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal docker config: %w", err)
	}

	return data, nil
}
