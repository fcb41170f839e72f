package imagegen

import "context"

// GenerateRequest is one thumbnail generation call to the provider.
type GenerateRequest struct {
	Prompt string
	JobID  string
}

// Result is the provider outcome reduced to a single locator: a direct URL, a
// data URI built from inline bytes, or a provider-reported path.
type Result struct {
	Locator string
}

// Generator produces one thumbnail image for a prompt.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (*Result, error)
}
