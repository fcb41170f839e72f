package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidPrompt   = errors.New("invalid prompt")
	ErrInvalidUpload   = errors.New("invalid upload")
	ErrStoreConflict   = errors.New("job already terminal")
	ErrUnavailable     = errors.New("backend unavailable")
	ErrGenerateTimeout = errors.New("generation timed out")
	ErrPollTimeout     = errors.New("polling timed out")
)

// ProviderErrorKind classifies image provider failures by their error code.
type ProviderErrorKind string

const (
	ProviderContentPolicy ProviderErrorKind = "content_policy"
	ProviderQuota         ProviderErrorKind = "quota"
	ProviderRateLimit     ProviderErrorKind = "rate_limit"
	ProviderBadRequest    ProviderErrorKind = "bad_request"
	ProviderTokenLimit    ProviderErrorKind = "token_limit"
	ProviderVerification  ProviderErrorKind = "verification_required"
	ProviderUnknown       ProviderErrorKind = "unknown"
)

// ProviderError carries the classified failure of an image provider call.
type ProviderError struct {
	Kind    ProviderErrorKind
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("provider: %s (%s)", e.Message, e.Code)
	}
	return "provider: " + e.Message
}

// UserMessage maps a provider failure to the message shown to the user.
func (e *ProviderError) UserMessage() string {
	switch e.Kind {
	case ProviderContentPolicy:
		return "Your prompt contains content that may violate the provider's content policy. Please modify your prompt to avoid sensitive topics."
	case ProviderQuota:
		return "Image generation quota exceeded. Please try again later."
	case ProviderRateLimit:
		return "Rate limit exceeded. Please try again later."
	case ProviderBadRequest:
		return "Invalid request to the image provider. Please check your prompt."
	case ProviderTokenLimit:
		return "The prompt is too long. Please make it shorter."
	case ProviderVerification:
		return "The provider requires organization verification for image generation. This typically takes 15-30 minutes to propagate after verification."
	default:
		if e.Message != "" {
			return "Image provider error: " + e.Message
		}
		return "Image provider error"
	}
}

// AsProviderError unwraps err into a ProviderError if one is present.
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
