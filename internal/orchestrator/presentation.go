package orchestrator

import (
	"context"

	"server/internal/domain"
	"server/internal/persist"
	"server/internal/providers/deck"
)

// PresentationTask renders a slide deck from the topic outline.
type PresentationTask struct {
	Deck      *deck.Client
	Persistor *persist.Persistor
}

func (t *PresentationTask) Format() domain.FormatKey { return domain.FormatPresentation }

func (t *PresentationTask) Run(ctx context.Context, req domain.GenerationRequest) domain.ArtifactResult {
	profile, abort := gate(t.Format(), req)
	if abort != nil {
		return *abort
	}

	outline := deck.BuildOutline(req.Title, req.Prompt, req.Skills)
	result, err := t.Deck.Render(ctx, deck.RenderRequest{
		Title:    req.Title,
		Language: profile.Code,
		Slides:   outline,
	})
	if err != nil {
		return providerFailed(t.Format(), err)
	}

	stored, err := t.Persistor.Persist(ctx, result.URL, artifactKey(req, "deck.pptx"), "application")
	if err != nil {
		return providerFailed(t.Format(), err)
	}
	return succeeded(t.Format(), "deck", stored, map[string]any{
		"slide_count": result.SlideCount,
	})
}
