package addons

import (
	"context"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// objectClient is the subset of a typed client-go resource client used to upsert objects.
type objectClient[T metav1.Object] interface {
	Get(ctx context.Context, name string, opts metav1.GetOptions) (T, error)
	Create(ctx context.Context, obj T, opts metav1.CreateOptions) (T, error)
	Update(ctx context.Context, obj T, opts metav1.UpdateOptions) (T, error)
}

type objectDeleter interface {
	Delete(ctx context.Context, name string, opts metav1.DeleteOptions) error
}

// upsert creates desired, or replaces the live object carrying the same name.
func upsert[T metav1.Object, C objectClient[T]](ctx context.Context, objects C, kind string, desired T) error {
	existing, err := objects.Get(ctx, desired.GetName(), metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		_, err = objects.Create(ctx, desired, metav1.CreateOptions{})
		if err != nil {
			return fmt.Errorf("failed to create %s %s: %w", kind, desired.GetName(), err)
		}

		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to get %s %s: %w", kind, desired.GetName(), err)
	}

	desired.SetResourceVersion(existing.GetResourceVersion())

	_, err = objects.Update(ctx, desired, metav1.UpdateOptions{})
	if err != nil {
		return fmt.Errorf("failed to update %s %s: %w", kind, desired.GetName(), err)
	}

	return nil
}

// remove deletes the named object, treating an absent object as removed.
func remove(ctx context.Context, objects objectDeleter, kind, name string) error {
	err := objects.Delete(ctx, name, metav1.DeleteOptions{})
	if err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to delete %s %s: %w", kind, name, err)
	}

	return nil
}

func managedLabels(app string) map[string]string {
	return map[string]string{
		"app.kubernetes.io/name":       app,
		"app.kubernetes.io/managed-by": "eks",
	}
}
