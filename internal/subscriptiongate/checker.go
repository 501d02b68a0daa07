package subscriptiongate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultCheckTimeout = 10 * time.Second

// Status is the subscription state reported by the managed backend.
type Status struct {
	Subscribed      bool       `json:"subscribed"`
	ProductID       *string    `json:"product_id"`
	SubscriptionEnd *time.Time `json:"subscription_end"`
}

// Checker asks the managed backend whether the bearer of token is subscribed.
type Checker interface {
	Check(ctx context.Context, token string) (Status, error)
}

// HTTPChecker calls the check-subscription function endpoint.
type HTTPChecker struct {
	endpoint   string
	httpClient *http.Client
}

func NewHTTPChecker(endpoint string, httpClient *http.Client) *HTTPChecker {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultCheckTimeout}
	}
	return &HTTPChecker{
		endpoint:   strings.TrimSpace(endpoint),
		httpClient: httpClient,
	}
}

func (c *HTTPChecker) Check(ctx context.Context, token string) (Status, error) {
	if c.endpoint == "" {
		return Status{}, errors.New("subscription check endpoint is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader("{}"))
	if err != nil {
		return Status{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token = strings.TrimSpace(token); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Status{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return Status{}, fmt.Errorf("subscription check returned %s", resp.Status)
	}

	var status Status
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&status); err != nil {
		return Status{}, fmt.Errorf("decode subscription status: %w", err)
	}
	return status, nil
}
