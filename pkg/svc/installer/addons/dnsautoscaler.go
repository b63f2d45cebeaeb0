package addons

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	rbacv1 "k8s.io/api/rbac/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

const (
	// DNSAutoscalerName names the autoscaler ServiceAccount, Deployment and its ConfigMap.
	DNSAutoscalerName = "kube-dns-autoscaler"
	// DNSAutoscalerRoleName names the autoscaler ClusterRole and ClusterRoleBinding.
	DNSAutoscalerRoleName = "system:kube-dns-autoscaler"
	// DNSAutoscalerImage is the cluster-proportional-autoscaler image.
	DNSAutoscalerImage = "k8s.gcr.io/cluster-proportional-autoscaler-amd64:1.1.2-r2"

	dnsAutoscalerTarget = "Deployment/coredns"
	dnsLinearParams     = `{"linear":{"coresPerReplica":256,"nodesPerReplica":16,"preventSinglePointFailure":true}}`
)

// DNSAutoscaler installs the cluster-proportional autoscaler for the cluster DNS deployment.
type DNSAutoscaler struct {
	client kubernetes.Interface
	logger logrus.FieldLogger
}

// NewDNSAutoscaler creates a DNS autoscaler installer.
func NewDNSAutoscaler(client kubernetes.Interface, logger logrus.FieldLogger) *DNSAutoscaler {
	return &DNSAutoscaler{client: client, logger: logger.WithField("addon", "dns-autoscaler")}
}

// Install applies the ServiceAccount, RBAC and Deployment of the autoscaler.
func (d *DNSAutoscaler) Install(ctx context.Context) error {
	d.logger.Info("creating kube-dns autoscaler")

	err := upsert(
		ctx,
		d.client.CoreV1().ServiceAccounts(systemNamespace),
		"serviceaccount",
		&corev1.ServiceAccount{ObjectMeta: d.meta(DNSAutoscalerName, systemNamespace)},
	)
	if err != nil {
		return err
	}

	err = upsert(ctx, d.client.RbacV1().ClusterRoles(), "clusterrole", d.clusterRole())
	if err != nil {
		return err
	}

	err = upsert(ctx, d.client.RbacV1().ClusterRoleBindings(), "clusterrolebinding", d.clusterRoleBinding())
	if err != nil {
		return err
	}

	err = upsert(ctx, d.client.AppsV1().Deployments(systemNamespace), "deployment", d.deployment())
	if err != nil {
		return err
	}

	d.logger.Info("kube-dns autoscaler created")

	return nil
}

// Uninstall deletes every object Install created.
func (d *DNSAutoscaler) Uninstall(ctx context.Context) error {
	d.logger.Info("removing kube-dns autoscaler")

	steps := []struct {
		objects objectDeleter
		kind    string
		name    string
	}{
		{d.client.AppsV1().Deployments(systemNamespace), "deployment", DNSAutoscalerName},
		{d.client.RbacV1().ClusterRoleBindings(), "clusterrolebinding", DNSAutoscalerRoleName},
		{d.client.RbacV1().ClusterRoles(), "clusterrole", DNSAutoscalerRoleName},
		{d.client.CoreV1().ServiceAccounts(systemNamespace), "serviceaccount", DNSAutoscalerName},
	}

	for _, step := range steps {
		err := remove(ctx, step.objects, step.kind, step.name)
		if err != nil {
			return err
		}
	}

	return nil
}

func (d *DNSAutoscaler) meta(name, namespace string) metav1.ObjectMeta {
	return metav1.ObjectMeta{
		Name:      name,
		Namespace: namespace,
		Labels:    managedLabels(DNSAutoscalerName),
	}
}

func (d *DNSAutoscaler) clusterRole() *rbacv1.ClusterRole {
	return &rbacv1.ClusterRole{
		ObjectMeta: d.meta(DNSAutoscalerRoleName, ""),
		Rules: []rbacv1.PolicyRule{
			{APIGroups: []string{""}, Resources: []string{"nodes"}, Verbs: []string{"list", "watch"}},
			{
				APIGroups: []string{""},
				Resources: []string{"replicationcontrollers/scale"},
				Verbs:     []string{"get", "update"},
			},
			{
				APIGroups: []string{"apps"},
				Resources: []string{"deployments/scale", "replicasets/scale"},
				Verbs:     []string{"get", "update"},
			},
			{APIGroups: []string{""}, Resources: []string{"configmaps"}, Verbs: []string{"get", "create"}},
		},
	}
}

func (d *DNSAutoscaler) clusterRoleBinding() *rbacv1.ClusterRoleBinding {
	return &rbacv1.ClusterRoleBinding{
		ObjectMeta: d.meta(DNSAutoscalerRoleName, ""),
		Subjects: []rbacv1.Subject{{
			Kind:      rbacv1.ServiceAccountKind,
			Name:      DNSAutoscalerName,
			Namespace: systemNamespace,
		}},
		RoleRef: rbacv1.RoleRef{
			APIGroup: rbacv1.GroupName,
			Kind:     "ClusterRole",
			Name:     DNSAutoscalerRoleName,
		},
	}
}

func (d *DNSAutoscaler) deployment() *appsv1.Deployment {
	selector := map[string]string{"k8s-app": DNSAutoscalerName}

	return &appsv1.Deployment{
		ObjectMeta: d.meta(DNSAutoscalerName, systemNamespace),
		Spec: appsv1.DeploymentSpec{
			Selector: &metav1.LabelSelector{MatchLabels: selector},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: selector},
				Spec: corev1.PodSpec{
					PriorityClassName:  "system-cluster-critical",
					ServiceAccountName: DNSAutoscalerName,
					Tolerations: []corev1.Toleration{
						{Key: "CriticalAddonsOnly", Operator: corev1.TolerationOpExists},
					},
					Containers: []corev1.Container{{
						Name:  "autoscaler",
						Image: DNSAutoscalerImage,
						Command: []string{
							"/cluster-proportional-autoscaler",
							"--namespace=" + systemNamespace,
							"--configmap=" + DNSAutoscalerName,
							"--target=" + dnsAutoscalerTarget,
							fmt.Sprintf("--default-params=%s", dnsLinearParams),
							"--logtostderr=true",
							"--v=2",
						},
						Resources: corev1.ResourceRequirements{
							Requests: corev1.ResourceList{
								corev1.ResourceCPU:    resource.MustParse("20m"),
								corev1.ResourceMemory: resource.MustParse("10Mi"),
							},
						},
					}},
				},
			},
		},
	}
}
