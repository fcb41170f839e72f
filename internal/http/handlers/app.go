package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"thumbai/internal/enhance"
	"thumbai/internal/generate"
	"thumbai/internal/jobstore"
	"thumbai/internal/storage"
)

// App bundles the collaborators the HTTP handlers need.
type App struct {
	Dispatcher *generate.Dispatcher
	Store      jobstore.Store
	Enhancer   enhance.Enhancer
	Uploads    *storage.FileStore
	Logger     zerolog.Logger

	MaxUploadBytes int64
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]string{"code": errCode, "error": message})
}
