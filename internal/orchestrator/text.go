package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"server/internal/domain"
	"server/internal/persist"
	"server/internal/providers/llm"
)

// NarrativeTask produces the long-form narrative text for a topic.
type NarrativeTask struct {
	LLM       *llm.Client
	Persistor *persist.Persistor
}

func (t *NarrativeTask) Format() domain.FormatKey { return domain.FormatText }

func (t *NarrativeTask) Run(ctx context.Context, req domain.GenerationRequest) domain.ArtifactResult {
	profile, abort := gate(t.Format(), req)
	if abort != nil {
		return *abort
	}

	out, err := t.LLM.Complete(ctx, llm.CompleteRequest{
		System:      "You turn lesson transcripts into clear narrative study text.",
		Prompt:      buildNarrativePrompt(req, profile.Code),
		Temperature: 0.4,
	})
	if err != nil {
		return providerFailed(t.Format(), err)
	}

	stored, err := t.Persistor.PersistBytes(ctx, artifactKey(req, "narrative.md"), "text/markdown", []byte(out))
	if err != nil {
		return providerFailed(t.Format(), err)
	}
	return succeeded(t.Format(), "llm", stored, map[string]any{
		"model": t.LLM.Model(),
		"chars": len(out),
	})
}

func buildNarrativePrompt(req domain.GenerationRequest, code string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a narrative explanation of the topic %q in language %q.\n", req.Title, code)
	if len(req.Skills) > 0 {
		fmt.Fprintf(&b, "Cover these skills in order: %s.\n", strings.Join(req.Skills, ", "))
	}
	b.WriteString("Transcript:\n")
	b.WriteString(req.Prompt)
	return b.String()
}
