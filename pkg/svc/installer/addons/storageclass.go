package addons

import (
	"context"

	"github.com/sirupsen/logrus"
	corev1 "k8s.io/api/core/v1"
	storagev1 "k8s.io/api/storage/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

const (
	// StorageClassName is the name of the default EBS storage class.
	StorageClassName = "gp2"
	// DefaultClassAnnotation marks a storage class as the cluster default.
	DefaultClassAnnotation = "storageclass.kubernetes.io/is-default-class"

	ebsProvisioner = "kubernetes.io/aws-ebs"
)

// StorageClass installs the gp2 EBS storage class and marks it as default.
type StorageClass struct {
	client kubernetes.Interface
	logger logrus.FieldLogger
}

// NewStorageClass creates a default storage class installer.
func NewStorageClass(client kubernetes.Interface, logger logrus.FieldLogger) *StorageClass {
	return &StorageClass{client: client, logger: logger.WithField("addon", "storage-class")}
}

// Install creates or updates the gp2 storage class.
func (s *StorageClass) Install(ctx context.Context) error {
	s.logger.Info("creating default storage class")

	err := upsert(ctx, s.client.StorageV1().StorageClasses(), "storageclass", defaultStorageClass())
	if err != nil {
		return err
	}

	s.logger.WithField("storageclass", StorageClassName).Info("default storage class created")

	return nil
}

// Uninstall deletes the gp2 storage class.
func (s *StorageClass) Uninstall(ctx context.Context) error {
	s.logger.Info("removing default storage class")

	return remove(ctx, s.client.StorageV1().StorageClasses(), "storageclass", StorageClassName)
}

func defaultStorageClass() *storagev1.StorageClass {
	reclaim := corev1.PersistentVolumeReclaimDelete
	binding := storagev1.VolumeBindingImmediate

	return &storagev1.StorageClass{
		ObjectMeta: metav1.ObjectMeta{
			Name:        StorageClassName,
			Labels:      managedLabels("default-storage-class"),
			Annotations: map[string]string{DefaultClassAnnotation: "true"},
		},
		Provisioner: ebsProvisioner,
		Parameters: map[string]string{
			"type":   "gp2",
			"fsType": "ext4",
		},
		ReclaimPolicy:     &reclaim,
		VolumeBindingMode: &binding,
	}
}
