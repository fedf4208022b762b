package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"server/internal/domain"
	"server/internal/persist"
	"server/internal/providers/llm"
)

// CodeTask produces a worked code sample for a topic.
type CodeTask struct {
	LLM       *llm.Client
	Persistor *persist.Persistor
}

func (t *CodeTask) Format() domain.FormatKey { return domain.FormatCode }

func (t *CodeTask) Run(ctx context.Context, req domain.GenerationRequest) domain.ArtifactResult {
	profile, abort := gate(t.Format(), req)
	if abort != nil {
		return *abort
	}

	out, err := t.LLM.Complete(ctx, llm.CompleteRequest{
		System:      "You write small, runnable, commented code samples for teaching.",
		Prompt:      buildCodePrompt(req, profile.Code),
		Temperature: 0.2,
	})
	if err != nil {
		return providerFailed(t.Format(), err)
	}

	stored, err := t.Persistor.PersistBytes(ctx, artifactKey(req, "code.md"), "text/markdown", []byte(out))
	if err != nil {
		return providerFailed(t.Format(), err)
	}
	return succeeded(t.Format(), "llm", stored, map[string]any{
		"model": t.LLM.Model(),
	})
}

func buildCodePrompt(req domain.GenerationRequest, code string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Produce one illustrative code sample for the topic %q.\n", req.Title)
	fmt.Fprintf(&b, "Explanatory comments must be written in language %q.\n", code)
	if len(req.Skills) > 0 {
		fmt.Fprintf(&b, "Exercise these skills: %s.\n", strings.Join(req.Skills, ", "))
	}
	b.WriteString("Transcript:\n")
	b.WriteString(req.Prompt)
	return b.String()
}
