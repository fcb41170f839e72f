package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"thumbai/internal/domain"
)

// OpenAIOptions configures the image generation client.
type OpenAIOptions struct {
	APIKey       string
	Model        string
	BaseURL      string
	Organization string
	HTTPClient   *http.Client
}

// OpenAIClient calls the OpenAI image generation endpoint.
type OpenAIClient struct {
	apiKey       string
	model        string
	baseURL      string
	organization string
	client       *http.Client
}

const openAIDefaultTimeout = 170 * time.Second

const defaultImageModel = "gpt-image-1"

// NewOpenAIClient constructs an image client. The API key is required; the
// dispatcher checks availability before routing work here.
func NewOpenAIClient(opts OpenAIOptions) (*OpenAIClient, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("openai api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultImageModel
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: openAIDefaultTimeout}
	}
	return &OpenAIClient{
		apiKey:       strings.TrimSpace(opts.APIKey),
		model:        model,
		baseURL:      baseURL,
		organization: strings.TrimSpace(opts.Organization),
		client:       client,
	}, nil
}

// Model returns the configured model identifier.
func (c *OpenAIClient) Model() string {
	return c.model
}

type imageGenerationRequest struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	N       int    `json:"n"`
	Size    string `json:"size"`
	Quality string `json:"quality,omitempty"`
}

type imageGenerationResponse struct {
	Data []struct {
		URL     string `json:"url"`
		B64JSON string `json:"b64_json"`
		Path    string `json:"path"`
	} `json:"data"`
	Error *openAIError `json:"error"`
}

type openAIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Generate requests one image. The instruction wrapping happens here so the
// provider always sees the full guideline prompt.
func (c *OpenAIClient) Generate(ctx context.Context, req GenerateRequest) (*Result, error) {
	payload := imageGenerationRequest{
		Model:  c.model,
		Prompt: BuildInstruction(req.Prompt),
		N:      1,
		// Supported landscape format; clients resize to 1280x720.
		Size:    "1536x1024",
		Quality: "high",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("imagegen: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/images/generations", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("imagegen: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.organization != "" {
		httpReq.Header.Set("OpenAI-Organization", c.organization)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrGenerateTimeout, err)
		}
		return nil, fmt.Errorf("imagegen: request: %w", err)
	}
	defer resp.Body.Close()

	var out imageGenerationResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, &domain.ProviderError{Kind: domain.ProviderUnknown, Message: fmt.Sprintf("http %d", resp.StatusCode)}
		}
		return nil, fmt.Errorf("imagegen: decode response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest || out.Error != nil {
		return nil, classifyError(resp.StatusCode, out.Error)
	}

	if len(out.Data) == 0 {
		return nil, &domain.ProviderError{Kind: domain.ProviderUnknown, Message: "empty response"}
	}
	locator, err := extractLocator(out.Data[0].URL, out.Data[0].B64JSON, out.Data[0].Path)
	if err != nil {
		return nil, err
	}
	return &Result{Locator: locator}, nil
}

// extractLocator reduces the provider response to one locator, first match
// wins: direct URL, inline base64 as a data URI, then a provider path.
func extractLocator(url, b64, path string) (string, error) {
	switch {
	case strings.TrimSpace(url) != "":
		return url, nil
	case strings.TrimSpace(b64) != "":
		return "data:image/png;base64," + b64, nil
	case strings.TrimSpace(path) != "":
		return path, nil
	default:
		return "", &domain.ProviderError{Kind: domain.ProviderUnknown, Message: "unrecognized image format in response"}
	}
}

// classifyError maps provider error codes onto the domain taxonomy so callers
// can choose a user-facing message per failure class.
func classifyError(status int, apiErr *openAIError) error {
	if apiErr == nil {
		return &domain.ProviderError{Kind: domain.ProviderUnknown, Message: fmt.Sprintf("http %d", status)}
	}
	kind := domain.ProviderUnknown
	switch apiErr.Code {
	case "content_policy_violation", "moderation_blocked":
		kind = domain.ProviderContentPolicy
	case "billing_quota_exceeded", "insufficient_quota":
		kind = domain.ProviderQuota
	case "rate_limit_exceeded":
		kind = domain.ProviderRateLimit
	case "invalid_request_error":
		kind = domain.ProviderBadRequest
	case "token_limit_exceeded":
		kind = domain.ProviderTokenLimit
	case "organization_not_verified":
		kind = domain.ProviderVerification
	}
	if kind == domain.ProviderUnknown && status == http.StatusForbidden && strings.Contains(apiErr.Message, "organization") {
		kind = domain.ProviderVerification
	}
	return &domain.ProviderError{Kind: kind, Code: apiErr.Code, Message: apiErr.Message}
}
