package poller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"thumbai/internal/domain"
)

// Client fetches job status from the HTTP status endpoint.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a status client against the API base URL.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), client: httpClient}
}

type statusResponse struct {
	Status               string   `json:"status"`
	Thumbnails           []string `json:"thumbnails"`
	Error                string   `json:"error"`
	Message              string   `json:"message"`
	RequiresVerification bool     `json:"requires_verification"`
}

// JobStatus reads the record for jobID. A 404 maps to domain.ErrNotFound so
// the poller can treat it as transient.
func (c *Client) JobStatus(ctx context.Context, jobID string) (*domain.JobRecord, error) {
	endpoint := c.baseURL + "/v1/thumbnails/status?jobId=" + url.QueryEscape(jobID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("poller: build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("poller: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("poller: status endpoint returned %d", resp.StatusCode)
	}

	var out statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("poller: decode response: %w", err)
	}
	return &domain.JobRecord{
		Status: domain.JobStatus(out.Status),
		Data: domain.JobData{
			Thumbnails:           out.Thumbnails,
			Error:                out.Error,
			Message:              out.Message,
			RequiresVerification: out.RequiresVerification,
		},
	}, nil
}
