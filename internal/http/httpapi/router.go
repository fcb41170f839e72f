package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"thumbai/internal/http/handlers"
	"thumbai/internal/middleware"
)

// Options tunes the router's middleware chain.
type Options struct {
	RateLimitPerMin int
	DefaultLocale   string
	CountryLookup   middleware.CountryLookup
}

// NewRouter builds the API surface with the standard middleware chain.
func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Locale(opts.DefaultLocale, opts.CountryLookup),
		middleware.Logger(app.Logger),
	)
	if opts.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
	}

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/thumbnails", func(r chi.Router) {
		r.Post("/", app.ThumbnailsSubmit)
		r.Get("/status", app.ThumbnailsStatus)
		r.Get("/{job_id}/archive", app.ThumbnailsArchive)
	})

	r.Post("/v1/prompts/enhance", app.PromptEnhance)

	return r
}
