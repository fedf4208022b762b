package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"server/internal/domain"
	"server/internal/lang"
	"server/internal/middleware"
)

type enqueueRequest struct {
	TopicID  string `json:"topic_id"`
	Language string `json:"language,omitempty"`
}

// EnqueueRequest queues an asynchronous generation run for a topic. The
// worker picks it up; clients follow progress via GET /v1/requests/{id}.
func (a *App) EnqueueRequest(w http.ResponseWriter, r *http.Request) {
	var req enqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON")
		return
	}
	req.TopicID = strings.TrimSpace(req.TopicID)
	if req.TopicID == "" {
		a.error(w, http.StatusBadRequest, "MISSING_FIELDS", "topic_id is required")
		return
	}

	topic, err := a.Topics.GetByID(r.Context(), req.TopicID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "NOT_FOUND", "topic not found")
			return
		}
		a.Logger.Error().Err(err).Msg("load topic failed")
		a.error(w, http.StatusInternalServerError, domain.CodeInternalError, "could not load topic")
		return
	}

	language := req.Language
	if language == "" {
		language = topic.Language
	}
	profile := lang.Resolve(language)
	if !profile.Valid {
		a.json(w, http.StatusUnprocessableEntity, apiError{
			Error:             domain.CodeLanguageInvalid,
			Message:           profile.Reason,
			SuggestedLanguage: middleware.LocaleFromContext(r.Context()),
		})
		return
	}

	generation := &domain.Request{
		ID:       uuid.NewString(),
		TopicID:  topic.ID,
		Status:   domain.RequestStatusQueued,
		Language: language,
	}
	if err := a.Requests.Enqueue(r.Context(), generation); err != nil {
		a.Logger.Error().Err(err).Msg("enqueue request failed")
		a.error(w, http.StatusInternalServerError, domain.CodeInternalError, "could not enqueue request")
		return
	}
	a.json(w, http.StatusAccepted, map[string]string{
		"id":     generation.ID,
		"status": string(generation.Status),
	})
}

// GetRequest returns the lifecycle state of a queued generation run, plus
// the aggregated results once the worker has finished.
func (a *App) GetRequest(w http.ResponseWriter, r *http.Request) {
	req, err := a.Requests.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "NOT_FOUND", "request not found")
			return
		}
		a.Logger.Error().Err(err).Msg("get request failed")
		a.error(w, http.StatusInternalServerError, domain.CodeInternalError, "could not load request")
		return
	}

	payload := map[string]any{
		"id":       req.ID,
		"topic_id": req.TopicID,
		"status":   req.Status,
		"language": req.Language,
	}
	if req.ErrorMessage != "" {
		payload["error_message"] = req.ErrorMessage
	}
	if len(req.ResultJSON) > 0 {
		payload["results"] = json.RawMessage(req.ResultJSON)
	}
	a.json(w, http.StatusOK, payload)
}
