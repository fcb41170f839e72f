package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"thumbai/internal/domain"
	"thumbai/internal/storage"
	"thumbai/pkg/zipkit"
)

// submitResponse is the wire shape shared by the submit and status endpoints.
type submitResponse struct {
	Status               string   `json:"status"`
	JobID                string   `json:"jobId,omitempty"`
	Thumbnails           []string `json:"thumbnails,omitempty"`
	Error                string   `json:"error,omitempty"`
	Message              string   `json:"message,omitempty"`
	RequiresVerification bool     `json:"requires_verification,omitempty"`
	Uploads              []string `json:"uploads,omitempty"`
}

// ThumbnailsSubmit accepts a multipart form with a required prompt field and
// optional sketch/reference image files, and dispatches generation.
func (a *App) ThumbnailsSubmit(w http.ResponseWriter, r *http.Request) {
	maxBytes := a.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = 8 << 20
	}
	// Prompt plus a sketch and a handful of reference images.
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes*8)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart form")
		return
	}

	prompt := r.FormValue("prompt")
	uploads, err := a.saveAttachments(r)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidUpload) {
			a.error(w, http.StatusBadRequest, "invalid_upload", err.Error())
			return
		}
		a.Logger.Error().Err(err).Msg("handlers: attachment save failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to store attachments")
		return
	}

	result, err := a.Dispatcher.Submit(r.Context(), prompt)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPrompt) {
			a.error(w, http.StatusBadRequest, "invalid_prompt", "Prompt is required")
			return
		}
		a.Logger.Error().Err(err).Msg("handlers: submit failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to submit generation")
		return
	}

	a.json(w, http.StatusOK, submitResponse{
		Status:               string(result.Status),
		JobID:                result.JobID,
		Thumbnails:           result.Thumbnails,
		Error:                result.Error,
		Message:              result.Message,
		RequiresVerification: result.RequiresVerification,
		Uploads:              uploads,
	})
}

// saveAttachments persists the optional sketch and reference files. Attachments
// are accepted and validated but do not alter the generation payload.
func (a *App) saveAttachments(r *http.Request) ([]string, error) {
	if a.Uploads == nil || r.MultipartForm == nil {
		return nil, nil
	}
	var keys []string
	for field, headers := range r.MultipartForm.File {
		kind := ""
		switch {
		case field == "sketch":
			kind = storage.KindSketch
		case strings.HasPrefix(field, "reference"):
			kind = storage.KindReference
		default:
			continue
		}
		for _, header := range headers {
			key, err := a.saveAttachment(r, kind, header)
			if err != nil {
				return nil, err
			}
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (a *App) saveAttachment(r *http.Request, kind string, header *multipart.FileHeader) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open attachment: %w", err)
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("read attachment: %w", err)
	}
	return a.Uploads.SaveUpload(r.Context(), kind, header.Filename, data)
}

// ThumbnailsStatus reports the stored record for a job id.
func (a *App) ThumbnailsStatus(w http.ResponseWriter, r *http.Request) {
	jobID := strings.TrimSpace(r.URL.Query().Get("jobId"))
	if jobID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "Missing job ID")
		return
	}
	if a.Store == nil {
		a.json(w, http.StatusInternalServerError, submitResponse{
			Status:     string(domain.JobStatusFailed),
			Error:      "Status service unavailable",
			Thumbnails: domain.FallbackThumbnails(),
		})
		return
	}

	rec, err := a.Store.Get(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.json(w, http.StatusNotFound, submitResponse{
				Status:     string(domain.JobStatusFailed),
				Error:      "Job not found or expired",
				Thumbnails: domain.FallbackThumbnails(),
			})
			return
		}
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("handlers: status read failed")
		a.json(w, http.StatusInternalServerError, submitResponse{
			Status:     string(domain.JobStatusFailed),
			Error:      "Failed to retrieve job status",
			Thumbnails: domain.FallbackThumbnails(),
		})
		return
	}

	resp := submitResponse{
		Status:               string(rec.Status),
		JobID:                jobID,
		Thumbnails:           rec.Data.Thumbnails,
		Error:                rec.Data.Error,
		Message:              rec.Data.Message,
		RequiresVerification: rec.Data.RequiresVerification,
	}
	if len(resp.Thumbnails) == 0 && rec.Status != domain.JobStatusCompleted {
		resp.Thumbnails = domain.ProcessingThumbnails()
	}
	a.json(w, http.StatusOK, resp)
}

// ThumbnailsArchive streams a completed job's thumbnails as a zip file.
func (a *App) ThumbnailsArchive(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	if jobID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "job_id required")
		return
	}
	if a.Store == nil {
		a.error(w, http.StatusServiceUnavailable, "unavailable", "archive service unavailable")
		return
	}
	rec, err := a.Store.Get(r.Context(), jobID)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "job not found")
		return
	}
	if rec.Status != domain.JobStatusCompleted {
		a.error(w, http.StatusConflict, "not_completed", "job has not completed")
		return
	}

	archive, err := zipkit.Archive(zipkit.ThumbnailEntries(jobID, rec.Data.Thumbnails))
	if err != nil {
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("handlers: archive build failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to build archive")
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=thumbnails-%s.zip", jobID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}
