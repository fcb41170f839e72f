// Package enhance expands a short prompt into a richer thumbnail brief before
// generation.
package enhance

import (
	"context"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Request carries the raw prompt to expand.
type Request struct {
	Prompt string
	Locale string
}

// Response is the expanded brief.
type Response struct {
	Prompt   string `json:"prompt"`
	Provider string `json:"-"`
}

// Enhancer expands a prompt into a more detailed one.
type Enhancer interface {
	Enhance(ctx context.Context, req Request) (*Response, error)
}

const staticProviderName = "static"

// StaticEnhancer is the keyless fallback: deterministic templating instead of
// a model call.
type StaticEnhancer struct{}

// NewStaticEnhancer constructs the fallback enhancer.
func NewStaticEnhancer() *StaticEnhancer {
	return &StaticEnhancer{}
}

// Enhance decorates the prompt with generic high-CTR thumbnail direction.
func (s *StaticEnhancer) Enhance(ctx context.Context, req Request) (*Response, error) {
	c := cases.Title(language.Und)
	topic := strings.TrimSpace(req.Prompt)
	if topic == "" {
		topic = "Your Video"
	}
	prompt := c.String(topic) + ", bold composition, vivid contrasting colors, dramatic lighting, single clear focal point, clean uncluttered background"
	return &Response{Prompt: prompt, Provider: staticProviderName}, nil
}

var _ Enhancer = (*StaticEnhancer)(nil)
