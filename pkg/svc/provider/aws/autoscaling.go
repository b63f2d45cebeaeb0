package aws

import (
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
	"github.com/sirupsen/logrus"
)

// AutoScaling updates capacity group bounds.
type AutoScaling struct {
	client AutoScalingAPI
	logger logrus.FieldLogger
}

// NewAutoScaling creates an AutoScaling wrapper.
func NewAutoScaling(client AutoScalingAPI, logger logrus.FieldLogger) *AutoScaling {
	return &AutoScaling{client: client, logger: logger}
}

// UpdateGroupBounds sets the minimum and maximum size of an autoscaling group.
func (a *AutoScaling) UpdateGroupBounds(ctx context.Context, group string, minSize, maxSize int) error {
	a.logger.WithField("asg", group).Infof("updating autoscaling group bounds to min=%d max=%d", minSize, maxSize)

	_, err := a.client.UpdateAutoScalingGroup(ctx, &autoscaling.UpdateAutoScalingGroupInput{
		AutoScalingGroupName: sdkaws.String(group),
		MinSize:              sdkaws.Int32(int32(minSize)), //nolint:gosec // sizes are small positive ints
		MaxSize:              sdkaws.Int32(int32(maxSize)), //nolint:gosec // sizes are small positive ints
	})
	if err != nil {
		return fmt.Errorf("update autoscaling group %s: %w", group, err)
	}

	return nil
}
