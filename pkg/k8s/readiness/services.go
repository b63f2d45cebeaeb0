package readiness

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// DefaultRequiredSuccesses is the number of non-empty service listings that mark a
// cluster as responsive.
const DefaultRequiredSuccesses = 3

// ServicesOptions configures WaitForServices.
type ServicesOptions struct {
	RequiredSuccesses int
	Interval          time.Duration
	Deadline          time.Duration
}

// WaitForServices polls the service listing across all namespaces until it has
// returned a non-empty result RequiredSuccesses times. Failed listings are logged
// and retried; they do not reset the count.
func WaitForServices(
	ctx context.Context,
	clientset kubernetes.Interface,
	opts ServicesOptions,
	logger logrus.FieldLogger,
) error {
	required := opts.RequiredSuccesses
	if required < 1 {
		required = DefaultRequiredSuccesses
	}

	successes := 0

	return PollEvery(ctx, opts.Interval, opts.Deadline, func(ctx context.Context) (bool, error) {
		services, err := clientset.CoreV1().Services("").List(ctx, metav1.ListOptions{})
		if err != nil {
			logger.WithError(err).Info("couldn't connect to server, retrying...")

			return false, nil
		}

		if len(services.Items) > 0 {
			successes++
		}

		return successes >= required, nil
	})
}
