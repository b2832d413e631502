// Package client is a small SDK for the prediction service.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

type Client struct {
	base string
	rest *resty.Client
}

func New(base string, timeout time.Duration) *Client {
	r := resty.New()
	if timeout > 0 {
		r.SetTimeout(timeout)
	} else {
		r.SetTimeout(5 * time.Second) // default fallback
	}
	return &Client{base: base, rest: r}
}

// Prediction is the decoded success response of /predict.
type Prediction struct {
	Prediction    int               `json:"prediction"`
	Probability   float64           `json:"probability"`
	ModelMetadata map[string]string `json:"model_metadata"`
}

// ModelInfo is the decoded response of /model/info.
type ModelInfo struct {
	Description  string            `json:"description"`
	FeatureNames []string          `json:"feature_names"`
	Classes      []int             `json:"classes"`
	Metadata     map[string]string `json:"metadata"`
}

type errorResp struct {
	Error string `json:"error"`
}

// Predict submits a feature payload and returns the prediction. features
// may be a map of name to value or an ordered slice, matching the two
// forms the service accepts.
func (c *Client) Predict(ctx context.Context, features any) (*Prediction, error) {
	result := &Prediction{}
	apiErr := &errorResp{}

	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(map[string]any{"features": features}).
		SetResult(result).
		SetError(apiErr).
		Post(c.base + "/predict")
	if err != nil {
		return nil, fmt.Errorf("predict request failed: %w", err)
	}
	if resp.IsError() {
		if apiErr.Error != "" {
			return nil, fmt.Errorf("riskserve: %s", apiErr.Error)
		}
		return nil, fmt.Errorf("riskserve: status %d, body: %s", resp.StatusCode(), resp.String())
	}
	return result, nil
}

// ModelInfo fetches the loaded model's description.
func (c *Client) ModelInfo(ctx context.Context) (*ModelInfo, error) {
	info := &ModelInfo{}
	apiErr := &errorResp{}

	resp, err := c.rest.R().
		SetContext(ctx).
		SetResult(info).
		SetError(apiErr).
		Get(c.base + "/model/info")
	if err != nil {
		return nil, fmt.Errorf("model info request failed: %w", err)
	}
	if resp.IsError() {
		if apiErr.Error != "" {
			return nil, fmt.Errorf("riskserve: %s", apiErr.Error)
		}
		return nil, fmt.Errorf("riskserve: status %d, body: %s", resp.StatusCode(), resp.String())
	}
	return info, nil
}

// Health reports whether the service is up and its model is loadable.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.rest.R().
		SetContext(ctx).
		Get(c.base + "/healthz")
	if err != nil {
		return fmt.Errorf("health request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("riskserve: unhealthy, status %d", resp.StatusCode())
	}
	return nil
}
