package k8s

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// ClientFactory returns a Kubernetes client for a cluster.
type ClientFactory func(ctx context.Context, cluster string) (kubernetes.Interface, error)

// ContextResolver returns the kubeconfig context of a cluster.
type ContextResolver func(ctx context.Context, cluster string) (string, error)

// DefaultKubeconfigPath returns $KUBECONFIG when set, otherwise ~/.kube/config.
func DefaultKubeconfigPath() string {
	if env := os.Getenv(clientcmd.RecommendedConfigPathEnvVar); env != "" {
		return filepath.SplitList(env)[0]
	}

	homeDir, _ := os.UserHomeDir()

	return filepath.Join(homeDir, clientcmd.RecommendedHomeDir, clientcmd.RecommendedFileName)
}

// BuildRESTConfig builds a REST config from a kubeconfig file. An empty context
// selects the kubeconfig's current context.
func BuildRESTConfig(kubeconfig, context string) (*rest.Config, error) {
	if kubeconfig == "" {
		return nil, ErrKubeconfigPathEmpty
	}

	overrides := &clientcmd.ConfigOverrides{CurrentContext: context}

	restConfig, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
		&clientcmd.ClientConfigLoadingRules{ExplicitPath: kubeconfig},
		overrides,
	).ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
	}

	return restConfig, nil
}

// NewClientset creates a clientset for the given kubeconfig context.
func NewClientset(kubeconfig, context string) (kubernetes.Interface, error) {
	restConfig, err := BuildRESTConfig(kubeconfig, context)
	if err != nil {
		return nil, fmt.Errorf("failed to build rest config: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}

	return clientset, nil
}

// NewClientFactory returns a ClientFactory loading kubeconfig with the context resolve
// selects for the cluster.
func NewClientFactory(kubeconfig string, resolve ContextResolver) ClientFactory {
	return func(ctx context.Context, cluster string) (kubernetes.Interface, error) {
		kubeContext, err := resolve(ctx, cluster)
		if err != nil {
			return nil, fmt.Errorf("resolve kubeconfig context of %s: %w", cluster, err)
		}

		return NewClientset(kubeconfig, kubeContext)
	}
}
