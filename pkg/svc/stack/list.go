package stack

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/sirupsen/logrus"
)

// Summary is a listed stack.
type Summary struct {
	ID     string
	Name   string
	Status types.StackStatus
}

// List returns every live stack in the account and region.
func List(ctx context.Context, client API) ([]Summary, error) {
	var (
		summaries []Summary
		token     *string
	)

	for {
		out, err := client.ListStacks(ctx, &cloudformation.ListStacksInput{
			NextToken:         token,
			StackStatusFilter: LiveStatuses(),
		})
		if err != nil {
			return nil, fmt.Errorf("list stacks: %w", err)
		}

		for _, summary := range out.StackSummaries {
			summaries = append(summaries, Summary{
				ID:     aws.ToString(summary.StackId),
				Name:   aws.ToString(summary.StackName),
				Status: summary.StackStatus,
			})
		}

		if aws.ToString(out.NextToken) == "" {
			return summaries, nil
		}

		token = out.NextToken
	}
}

// ListTagged returns handles for live stacks carrying the given tag, optionally restricted
// to a tag value. An empty value matches any value.
func ListTagged(
	ctx context.Context,
	client API,
	logger logrus.FieldLogger,
	key, value string,
) ([]*Handle, error) {
	var (
		handles []*Handle
		token   *string
	)

	for {
		out, err := client.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{NextToken: token})
		if err != nil {
			return nil, fmt.Errorf("describe stacks: %w", err)
		}

		for idx := range out.Stacks {
			description := out.Stacks[idx]
			if description.StackStatus == types.StackStatusDeleteComplete {
				continue
			}

			for _, tag := range description.Tags {
				if aws.ToString(tag.Key) != key {
					continue
				}

				if value != "" && aws.ToString(tag.Value) != value {
					continue
				}

				handle := New(client, logger, aws.ToString(description.StackName))
				handle.id = aws.ToString(description.StackId)
				handle.description = &description
				handles = append(handles, handle)
			}
		}

		if aws.ToString(out.NextToken) == "" {
			return handles, nil
		}

		token = out.NextToken
	}
}
