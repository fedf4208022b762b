package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"server/internal/domain"
	"server/internal/lang"
	"server/internal/middleware"
)

type createTopicRequest struct {
	Title      string   `json:"title"`
	Transcript string   `json:"transcript"`
	Language   string   `json:"language"`
	Skills     []string `json:"skills"`
}

type topicResponse struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Transcript string    `json:"transcript"`
	Language   string    `json:"language"`
	Skills     []string  `json:"skills"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CreateTopic registers a topic for later content generation. The language
// must resolve; an advisory suggestion from headers/GeoIP is attached to the
// rejection, never silently substituted.
func (a *App) CreateTopic(w http.ResponseWriter, r *http.Request) {
	var req createTopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Transcript = strings.TrimSpace(req.Transcript)
	if req.Title == "" || req.Transcript == "" {
		a.error(w, http.StatusBadRequest, "MISSING_FIELDS", "title and transcript are required")
		return
	}

	profile := lang.Resolve(req.Language)
	if !profile.Valid {
		a.json(w, http.StatusUnprocessableEntity, apiError{
			Error:             domain.CodeLanguageInvalid,
			Message:           profile.Reason,
			SuggestedLanguage: middleware.LocaleFromContext(r.Context()),
		})
		return
	}

	topic := &domain.Topic{
		ID:         uuid.NewString(),
		Title:      req.Title,
		Transcript: req.Transcript,
		Language:   req.Language,
		Skills:     req.Skills,
	}
	if err := a.Topics.Create(r.Context(), topic); err != nil {
		a.Logger.Error().Err(err).Msg("create topic failed")
		a.error(w, http.StatusInternalServerError, domain.CodeInternalError, "could not create topic")
		return
	}
	a.json(w, http.StatusCreated, toTopicResponse(topic))
}

// GetTopic returns one topic by id.
func (a *App) GetTopic(w http.ResponseWriter, r *http.Request) {
	topic, err := a.Topics.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "NOT_FOUND", "topic not found")
			return
		}
		a.Logger.Error().Err(err).Msg("get topic failed")
		a.error(w, http.StatusInternalServerError, domain.CodeInternalError, "could not load topic")
		return
	}
	a.json(w, http.StatusOK, toTopicResponse(topic))
}

// ListTopicArtifacts returns the stored artifacts for a topic, newest first.
func (a *App) ListTopicArtifacts(w http.ResponseWriter, r *http.Request) {
	topicID := chi.URLParam(r, "id")
	if _, err := a.Topics.GetByID(r.Context(), topicID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "NOT_FOUND", "topic not found")
			return
		}
		a.Logger.Error().Err(err).Msg("load topic failed")
		a.error(w, http.StatusInternalServerError, domain.CodeInternalError, "could not load topic")
		return
	}

	artifacts, err := a.Artifacts.ListByTopic(r.Context(), topicID)
	if err != nil {
		a.Logger.Error().Err(err).Msg("list artifacts failed")
		a.error(w, http.StatusInternalServerError, domain.CodeInternalError, "could not list artifacts")
		return
	}
	if artifacts == nil {
		artifacts = []domain.Artifact{}
	}
	a.json(w, http.StatusOK, map[string]any{"artifacts": artifacts})
}

func toTopicResponse(t *domain.Topic) topicResponse {
	skills := t.Skills
	if skills == nil {
		skills = []string{}
	}
	return topicResponse{
		ID:         t.ID,
		Title:      t.Title,
		Transcript: t.Transcript,
		Language:   t.Language,
		Skills:     skills,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}
