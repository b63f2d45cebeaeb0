package spotinst

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/devantler-tech/ekscli/pkg/svc/state"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
)

// DefaultBaseURL is the Spotinst API endpoint.
const DefaultBaseURL = "https://api.spotinst.io"

const (
	defaultRetryMax   = 3
	maxErrorBodyBytes = 512
)

// Group is an elastigroup as returned by the API.
type Group struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type groupsResponse struct {
	Response struct {
		Items []Group `json:"items"`
	} `json:"response"`
}

type importRequest struct {
	Group struct {
		SpotInstanceTypes []string `json:"spotInstanceTypes,omitempty"`
	} `json:"group"`
}

type capacity struct {
	Minimum int `json:"minimum"`
	Maximum int `json:"maximum"`
	Target  int `json:"target"`
}

type capacityRequest struct {
	Group struct {
		Capacity capacity `json:"capacity"`
	} `json:"group"`
}

// Client talks to the Spotinst API. Credentials are loaded on the first request.
type Client struct {
	baseURL string
	http    *retryablehttp.Client
	logger  logrus.FieldLogger

	loadCredentials func() (Credentials, error)
	credsOnce       sync.Once
	creds           Credentials
	credsErr        error
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithCredentials uses creds instead of reading them from the environment.
func WithCredentials(creds Credentials) Option {
	return func(c *Client) {
		c.loadCredentials = func() (Credentials, error) { return creds, nil }
	}
}

// WithHTTPClient replaces the retrying HTTP client.
func WithHTTPClient(client *retryablehttp.Client) Option {
	return func(c *Client) {
		c.http = client
	}
}

// New creates a Client.
func New(logger logrus.FieldLogger, opts ...Option) *Client {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = defaultRetryMax
	httpClient.Logger = leveledLogger{logger: logger}

	client := &Client{
		baseURL:         DefaultBaseURL,
		http:            httpClient,
		logger:          logger,
		loadCredentials: LoadCredentials,
	}

	for _, opt := range opts {
		opt(client)
	}

	client.http.CheckRetry = idempotentRetryPolicy(client.http.CheckRetry)

	return client
}

type noRetryKey struct{}

// idempotentRetryPolicy wraps policy so requests marked as non-idempotent are
// never retried. Retrying an import could create duplicate elastigroups.
func idempotentRetryPolicy(policy retryablehttp.CheckRetry) retryablehttp.CheckRetry {
	if policy == nil {
		policy = retryablehttp.DefaultRetryPolicy
	}

	return func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if noRetry, _ := ctx.Value(noRetryKey{}).(bool); noRetry {
			return false, nil
		}

		return policy(ctx, resp, err)
	}
}

// ImportGroup creates an elastigroup from an existing autoscaling group. Without
// instanceTypes Spotinst picks the spot instance types itself.
func (c *Client) ImportGroup(
	ctx context.Context,
	region, autoScalingGroup string,
	instanceTypes []string,
) (*state.SpotinstRef, error) {
	creds, err := c.credentials()
	if err != nil {
		return nil, err
	}

	var body importRequest
	body.Group.SpotInstanceTypes = instanceTypes

	query := url.Values{}
	query.Set("region", region)
	query.Set("accountId", creds.AccountID)
	query.Set("autoScalingGroupName", autoScalingGroup)

	var out groupsResponse

	err = c.do(ctx, http.MethodPost, "/aws/ec2/group/autoScalingGroup/import", query, body, &out)
	if err != nil {
		return nil, err
	}

	if len(out.Response.Items) == 0 {
		return nil, fmt.Errorf("%w: import of %s", ErrEmptyResponse, autoScalingGroup)
	}

	group := out.Response.Items[0]

	c.logger.WithFields(logrus.Fields{"asg": autoScalingGroup, "elastigroup": group.ID}).
		Info("imported autoscaling group into spotinst")

	return &state.SpotinstRef{ID: group.ID, Name: group.Name}, nil
}

// UpdateCapacity sets the minimum, maximum and target capacity of an elastigroup.
func (c *Client) UpdateCapacity(ctx context.Context, groupID string, minSize, maxSize, target int) error {
	creds, err := c.credentials()
	if err != nil {
		return err
	}

	var body capacityRequest
	body.Group.Capacity = capacity{Minimum: minSize, Maximum: maxSize, Target: target}

	query := url.Values{}
	query.Set("accountId", creds.AccountID)

	c.logger.WithField("elastigroup", groupID).
		Infof("scaling elastigroup: min -> %d, max -> %d, target -> %d", minSize, maxSize, target)

	return c.do(ctx, http.MethodPut, "/aws/ec2/group/"+url.PathEscape(groupID), query, body, nil)
}

// DeleteGroup deletes an elastigroup.
func (c *Client) DeleteGroup(ctx context.Context, groupID string) error {
	creds, err := c.credentials()
	if err != nil {
		return err
	}

	query := url.Values{}
	query.Set("accountId", creds.AccountID)

	c.logger.WithField("elastigroup", groupID).Info("deleting elastigroup")

	return c.do(ctx, http.MethodDelete, "/aws/ec2/group/"+url.PathEscape(groupID), query, nil, nil)
}

func (c *Client) credentials() (Credentials, error) {
	c.credsOnce.Do(func() {
		c.creds, c.credsErr = c.loadCredentials()
	})

	return c.creds, c.credsErr
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var payload io.Reader

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode spotinst request: %w", err)
		}

		payload = bytes.NewReader(data)
	}

	endpoint := c.baseURL + path + "?" + query.Encode()

	if method == http.MethodPost {
		ctx = context.WithValue(ctx, noRetryKey{}, true)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, endpoint, payload)
	if err != nil {
		return fmt.Errorf("failed to build spotinst request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.creds.APIToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrRequestFailed, method, path, err)
	}

	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))

		return fmt.Errorf("%w: %s %s: %s: %s", ErrRequestFailed, method, path, resp.Status, bytes.TrimSpace(snippet))
	}

	if out == nil {
		return nil
	}

	err = json.NewDecoder(resp.Body).Decode(out)
	if err != nil {
		return fmt.Errorf("failed to decode spotinst response: %w", err)
	}

	return nil
}
