package readiness

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/client-go/kubernetes"
)

// NodeGroupLabel is the node label carrying the nodegroup name.
const NodeGroupLabel = "eks/node-group"

// WaitForNodes polls until at least count nodes of the nodegroup report Ready=True.
// An empty group matches every node.
func WaitForNodes(
	ctx context.Context,
	clientset kubernetes.Interface,
	group string,
	count int,
	deadline time.Duration,
	logger logrus.FieldLogger,
) error {
	opts := metav1.ListOptions{}
	if group != "" {
		opts.LabelSelector = labels.Set{NodeGroupLabel: group}.String()
	}

	return PollForReadiness(ctx, deadline, func(ctx context.Context) (bool, error) {
		nodes, err := clientset.CoreV1().Nodes().List(ctx, opts)
		if err != nil {
			return false, nil //nolint:nilerr // returning nil to continue polling
		}

		ready := 0

		for i := range nodes.Items {
			if isNodeReady(&nodes.Items[i]) {
				ready++
			}
		}

		logger.WithField("group", group).Debugf("%d of %d nodes ready", ready, count)

		return ready >= count, nil
	})
}

func isNodeReady(node *corev1.Node) bool {
	for _, cond := range node.Status.Conditions {
		if cond.Type == corev1.NodeReady {
			return cond.Status == corev1.ConditionTrue
		}
	}

	return false
}
