package handlers

import (
	"encoding/json"
	"net/http"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/orchestrator"
)

// App bundles the dependencies the HTTP handlers need.
type App struct {
	Topics    domain.TopicRepository
	Requests  domain.RequestRepository
	Artifacts domain.ArtifactRepository
	Orch      *orchestrator.Orchestrator
	Logger    infra.Logger
}

func NewApp(topics domain.TopicRepository, requests domain.RequestRepository, artifacts domain.ArtifactRepository, orch *orchestrator.Orchestrator, logger infra.Logger) *App {
	return &App{
		Topics:    topics,
		Requests:  requests,
		Artifacts: artifacts,
		Orch:      orch,
		Logger:    logger,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type apiError struct {
	Error             string `json:"error"`
	Message           string `json:"message,omitempty"`
	SuggestedLanguage string `json:"suggested_language,omitempty"`
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, apiError{Error: errCode, Message: message})
}
