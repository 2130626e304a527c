// Package existence answers whether a customer exists by asking the customers
// service, and turns that answer into an admission verdict under an explicit
// failure policy.
package existence

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single existence lookup.
const DefaultTimeout = 5 * time.Second

type Decision int

const (
	DecisionUnknown Decision = iota
	DecisionExists
	DecisionAbsent
)

func (d Decision) String() string {
	switch d {
	case DecisionExists:
		return "exists"
	case DecisionAbsent:
		return "absent"
	default:
		return "unknown"
	}
}

// Client queries GET {baseURL}/customers/{id}/exists.
type Client struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
}

func NewClient(baseURL string, client *http.Client, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		client:  client,
		timeout: timeout,
	}
}

type existsResponse struct {
	Exists *bool `json:"exists"`
}

// Lookup returns DecisionExists or DecisionAbsent with a nil error whenever the
// customers service produced an answer. Any non-2xx status counts as an answer
// of "absent". DecisionUnknown is returned together with the cause when no
// answer could be obtained: transport failure, timeout, or an undecodable body.
func (c *Client) Lookup(ctx context.Context, customerID int64) (Decision, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/customers/%d/exists", c.baseURL, customerID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return DecisionUnknown, fmt.Errorf("create existence request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return DecisionUnknown, fmt.Errorf("call customers service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return DecisionAbsent, nil
	}

	var body existsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return DecisionUnknown, fmt.Errorf("decode existence response: %w", err)
	}

	if body.Exists == nil || !*body.Exists {
		return DecisionAbsent, nil
	}
	return DecisionExists, nil
}
