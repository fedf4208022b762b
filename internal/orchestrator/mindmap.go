package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"server/internal/domain"
	"server/internal/persist"
	"server/internal/providers/llm"
)

// MindMapTask produces a concept map as a structured JSON document.
type MindMapTask struct {
	LLM       *llm.Client
	Persistor *persist.Persistor
}

func (t *MindMapTask) Format() domain.FormatKey { return domain.FormatMindMap }

func (t *MindMapTask) Run(ctx context.Context, req domain.GenerationRequest) domain.ArtifactResult {
	profile, abort := gate(t.Format(), req)
	if abort != nil {
		return *abort
	}

	out, err := t.LLM.Complete(ctx, llm.CompleteRequest{
		System: "You respond only with a valid JSON object describing a concept map: " +
			`{"root": {"label": string, "children": [...]}}.`,
		Prompt:      buildMindMapPrompt(req, profile.Code),
		JSONMode:    true,
		Temperature: 0.3,
	})
	if err != nil {
		return providerFailed(t.Format(), err)
	}
	if !json.Valid([]byte(out)) {
		return providerFailed(t.Format(), errors.New("mind map response is not valid JSON"))
	}

	stored, err := t.Persistor.PersistBytes(ctx, artifactKey(req, "mindmap.json"), "application/json", []byte(out))
	if err != nil {
		return providerFailed(t.Format(), err)
	}
	return succeeded(t.Format(), "llm", stored, map[string]any{
		"model": t.LLM.Model(),
	})
}

func buildMindMapPrompt(req domain.GenerationRequest, code string) string {
	return fmt.Sprintf(
		"Build a concept map for the topic %q with node labels in language %q.\nTranscript:\n%s",
		req.Title, code, req.Prompt,
	)
}
