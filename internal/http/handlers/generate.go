package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"server/internal/domain"
	"server/internal/lang"
	"server/internal/middleware"
	"server/internal/orchestrator"
)

// Generate runs the full six-format pipeline for a topic synchronously and
// returns the aggregated per-format results. Per-format failures are carried
// in the payload; only a missing topic or an unresolvable language rejects
// the request itself.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	topic, err := a.Topics.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "NOT_FOUND", "topic not found")
			return
		}
		a.Logger.Error().Err(err).Msg("load topic failed")
		a.error(w, http.StatusInternalServerError, domain.CodeInternalError, "could not load topic")
		return
	}

	profile := lang.Resolve(topic.Language)
	if !profile.Valid {
		a.json(w, http.StatusUnprocessableEntity, apiError{
			Error:             domain.CodeLanguageInvalid,
			Message:           profile.Reason,
			SuggestedLanguage: middleware.LocaleFromContext(r.Context()),
		})
		return
	}

	req := domain.GenerationRequest{
		TopicID:  topic.ID,
		Title:    topic.Title,
		Prompt:   topic.Transcript,
		Language: topic.Language,
		Skills:   topic.Skills,
	}
	req.RequestID = uuid.NewString()

	resp, err := a.Orch.GenerateAll(r.Context(), req, orchestrator.LogSink(&a.Logger))
	if err != nil {
		a.Logger.Error().Err(err).Str("topic_id", topic.ID).Msg("generation failed")
		a.error(w, http.StatusInternalServerError, domain.CodeInternalError, "generation failed")
		return
	}

	a.storeArtifacts(r.Context(), topic.ID, req.RequestID, resp)
	a.json(w, http.StatusOK, resp)
}

// storeArtifacts records one row per format result. Recording failures are
// logged but do not fail the generation response.
func (a *App) storeArtifacts(ctx context.Context, topicID, requestID string, resp *domain.GenerationResponse) {
	for _, format := range domain.AllFormats() {
		result, ok := resp.Results[format]
		if !ok {
			continue
		}
		artifact := &domain.Artifact{
			ID:           uuid.NewString(),
			TopicID:      topicID,
			RequestID:    requestID,
			Format:       format,
			Status:       result.Status,
			URL:          result.URL,
			Hash:         result.Hash,
			Fallback:     result.Fallback,
			Provider:     result.Provider,
			ErrorCode:    result.ErrorCode,
			ErrorMessage: result.ErrorMessage,
		}
		if err := a.Artifacts.Insert(ctx, artifact); err != nil {
			a.Logger.Error().Err(err).
				Str("topic_id", topicID).
				Str("format", string(format)).
				Msg("store artifact failed")
		}
	}
}
