package addons

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/sirupsen/logrus"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

const (
	// CNIDaemonSetName is the VPC CNI plugin DaemonSet shipped with every EKS cluster.
	CNIDaemonSetName = "aws-node"
	// WarmIPTargetEnv is the CNI setting controlling how many free IPs each node keeps attached.
	WarmIPTargetEnv = "WARM_IP_TARGET"
)

// CNI tunes the VPC CNI plugin of an existing cluster.
type CNI struct {
	client       kubernetes.Interface
	logger       logrus.FieldLogger
	warmIPTarget int
}

// NewCNI creates a CNI tuner that sets WARM_IP_TARGET to warmIPTarget.
func NewCNI(client kubernetes.Interface, logger logrus.FieldLogger, warmIPTarget int) *CNI {
	return &CNI{
		client:       client,
		logger:       logger.WithField("addon", "cni"),
		warmIPTarget: warmIPTarget,
	}
}

// Install sets WARM_IP_TARGET on the aws-node container.
func (c *CNI) Install(ctx context.Context) error {
	if c.warmIPTarget <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidWarmIPTarget, c.warmIPTarget)
	}

	c.logger.WithField("warm_ip_target", c.warmIPTarget).Info("updating cni")

	return c.patch(ctx, func(container *corev1.Container) {
		value := strconv.Itoa(c.warmIPTarget)

		for i := range container.Env {
			if container.Env[i].Name == WarmIPTargetEnv {
				container.Env[i].Value = value
				container.Env[i].ValueFrom = nil

				return
			}
		}

		container.Env = append(container.Env, corev1.EnvVar{Name: WarmIPTargetEnv, Value: value})
	})
}

// Uninstall removes WARM_IP_TARGET, restoring the plugin default.
func (c *CNI) Uninstall(ctx context.Context) error {
	c.logger.Info("resetting cni warm ip target")

	return c.patch(ctx, func(container *corev1.Container) {
		container.Env = slices.DeleteFunc(container.Env, func(env corev1.EnvVar) bool {
			return env.Name == WarmIPTargetEnv
		})
	})
}

func (c *CNI) patch(ctx context.Context, mutate func(*corev1.Container)) error {
	daemonSets := c.client.AppsV1().DaemonSets(systemNamespace)

	daemonSet, err := daemonSets.Get(ctx, CNIDaemonSetName, metav1.GetOptions{})
	if err != nil {
		return fmt.Errorf("failed to get daemonset %s: %w", CNIDaemonSetName, err)
	}

	container := findContainer(daemonSet, CNIDaemonSetName)
	if container == nil {
		return fmt.Errorf("%w: %s in daemonset %s", ErrContainerNotFound, CNIDaemonSetName, CNIDaemonSetName)
	}

	mutate(container)

	_, err = daemonSets.Update(ctx, daemonSet, metav1.UpdateOptions{})
	if err != nil {
		return fmt.Errorf("failed to update daemonset %s: %w", CNIDaemonSetName, err)
	}

	c.logger.Info("cni updated")

	return nil
}

func findContainer(daemonSet *appsv1.DaemonSet, name string) *corev1.Container {
	containers := daemonSet.Spec.Template.Spec.Containers
	for i := range containers {
		if containers[i].Name == name {
			return &containers[i]
		}
	}

	return nil
}
