package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"thumbai/internal/enhance"
	"thumbai/internal/middleware"
)

type enhanceRequest struct {
	Prompt string `json:"prompt"`
}

// PromptEnhance expands a short topic into a detailed thumbnail prompt.
func (a *App) PromptEnhance(w http.ResponseWriter, r *http.Request) {
	var req enhanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		a.error(w, http.StatusBadRequest, "invalid_prompt", "Prompt is required")
		return
	}
	if a.Enhancer == nil {
		a.error(w, http.StatusServiceUnavailable, "unavailable", "enhance service unavailable")
		return
	}

	resp, err := a.Enhancer.Enhance(r.Context(), enhance.Request{
		Prompt: req.Prompt,
		Locale: middleware.LocaleFromContext(r.Context()),
	})
	if err != nil {
		a.Logger.Error().Err(err).Msg("handlers: enhance failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to enhance prompt")
		return
	}
	a.json(w, http.StatusOK, resp)
}
