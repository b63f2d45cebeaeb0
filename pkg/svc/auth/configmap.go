package auth

import (
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"
)

// Location of the identity mapping read by the EKS authenticator.
const (
	ConfigMapName      = "aws-auth"
	ConfigMapNamespace = "kube-system"
)

// NodeUsername is the username template assigned to worker nodes.
const NodeUsername = "system:node:{{EC2PrivateDNSName}}"

// NodeGroups returns the groups assigned to worker nodes.
func NodeGroups() []string {
	return []string{"system:bootstrappers", "system:nodes"}
}

// RoleMapping maps an IAM role to a Kubernetes identity.
type RoleMapping struct {
	RoleARN  string   `json:"rolearn"`
	Username string   `json:"username"`
	Groups   []string `json:"groups"`
}

// UserMapping maps an IAM user to a Kubernetes identity.
type UserMapping struct {
	UserARN  string   `json:"userarn"`
	Username string   `json:"username"`
	Groups   []string `json:"groups"`
}

// Binding is the complete identity mapping of a cluster.
type Binding struct {
	Roles []RoleMapping
	Users []UserMapping
}

// NodeRole returns the mapping of a worker role.
func NodeRole(arn string) RoleMapping {
	return RoleMapping{RoleARN: arn, Username: NodeUsername, Groups: NodeGroups()}
}

// ConfigMap renders binding as the aws-auth ConfigMap. mapUsers is only set when
// the binding has users.
func ConfigMap(binding Binding) (*corev1.ConfigMap, error) {
	roles := binding.Roles
	if roles == nil {
		roles = []RoleMapping{}
	}

	mapRoles, err := yaml.Marshal(roles)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal mapRoles: %w", err)
	}

	configMap := &corev1.ConfigMap{
		TypeMeta: metav1.TypeMeta{APIVersion: "v1", Kind: "ConfigMap"},
		ObjectMeta: metav1.ObjectMeta{
			Name:      ConfigMapName,
			Namespace: ConfigMapNamespace,
		},
		Data: map[string]string{"mapRoles": string(mapRoles)},
	}

	if len(binding.Users) > 0 {
		mapUsers, err := yaml.Marshal(binding.Users)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal mapUsers: %w", err)
		}

		configMap.Data["mapUsers"] = string(mapUsers)
	}

	return configMap, nil
}
