package addons

import (
	"context"

	"github.com/sirupsen/logrus"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

const (
	// GPUPluginName is the name of the NVIDIA device plugin DaemonSet.
	GPUPluginName = "nvidia-device-plugin-daemonset"
	// GPUPluginImage is the device plugin image matching the EKS GPU AMIs.
	GPUPluginImage = "nvidia/k8s-device-plugin:1.10"
	// GPUResourceName is the extended resource advertised by the plugin and tainted on GPU nodes.
	GPUResourceName = "nvidia.com/gpu"

	systemNamespace  = "kube-system"
	devicePluginPath = "/var/lib/kubelet/device-plugins"
)

// GPUPlugin installs the NVIDIA device plugin so GPU nodes advertise nvidia.com/gpu.
type GPUPlugin struct {
	client kubernetes.Interface
	logger logrus.FieldLogger
}

// NewGPUPlugin creates a GPU device plugin installer.
func NewGPUPlugin(client kubernetes.Interface, logger logrus.FieldLogger) *GPUPlugin {
	return &GPUPlugin{client: client, logger: logger.WithField("addon", "gpu")}
}

// Install creates or updates the device plugin DaemonSet.
func (g *GPUPlugin) Install(ctx context.Context) error {
	g.logger.Info("installing nvidia device plugin daemonset")

	err := upsert(ctx, g.client.AppsV1().DaemonSets(systemNamespace), "daemonset", gpuDaemonSet())
	if err != nil {
		return err
	}

	g.logger.Info("nvidia device plugin installed")

	return nil
}

// Uninstall deletes the device plugin DaemonSet.
func (g *GPUPlugin) Uninstall(ctx context.Context) error {
	g.logger.Info("removing nvidia device plugin daemonset")

	return remove(ctx, g.client.AppsV1().DaemonSets(systemNamespace), "daemonset", GPUPluginName)
}

func gpuDaemonSet() *appsv1.DaemonSet {
	selector := map[string]string{"name": "nvidia-device-plugin-ds"}
	noEscalation := false

	return &appsv1.DaemonSet{
		ObjectMeta: metav1.ObjectMeta{
			Name:      GPUPluginName,
			Namespace: systemNamespace,
			Labels:    managedLabels("nvidia-device-plugin"),
		},
		Spec: appsv1.DaemonSetSpec{
			Selector: &metav1.LabelSelector{MatchLabels: selector},
			UpdateStrategy: appsv1.DaemonSetUpdateStrategy{
				Type: appsv1.RollingUpdateDaemonSetStrategyType,
			},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: selector},
				Spec: corev1.PodSpec{
					PriorityClassName: "system-node-critical",
					Tolerations: []corev1.Toleration{
						{Key: "CriticalAddonsOnly", Operator: corev1.TolerationOpExists},
						{
							Key:      GPUResourceName,
							Operator: corev1.TolerationOpExists,
							Effect:   corev1.TaintEffectNoSchedule,
						},
					},
					Containers: []corev1.Container{{
						Name:  "nvidia-device-plugin-ctr",
						Image: GPUPluginImage,
						SecurityContext: &corev1.SecurityContext{
							AllowPrivilegeEscalation: &noEscalation,
							Capabilities: &corev1.Capabilities{
								Drop: []corev1.Capability{"ALL"},
							},
						},
						VolumeMounts: []corev1.VolumeMount{{
							Name:      "device-plugin",
							MountPath: devicePluginPath,
						}},
					}},
					Volumes: []corev1.Volume{{
						Name: "device-plugin",
						VolumeSource: corev1.VolumeSource{
							HostPath: &corev1.HostPathVolumeSource{Path: devicePluginPath},
						},
					}},
				},
			},
		},
	}
}
