package orchestrator

import (
	"context"

	"server/internal/domain"
	"server/internal/persist"
	"server/internal/providers/speech"
)

// AudioTask renders the topic narration as speech audio.
type AudioTask struct {
	Speech    *speech.Client
	Persistor *persist.Persistor
}

// Providers cap narration input length; longer transcripts are clipped at a
// rune boundary.
const maxNarrationRunes = 4000

func (t *AudioTask) Format() domain.FormatKey { return domain.FormatAudio }

func (t *AudioTask) Run(ctx context.Context, req domain.GenerationRequest) domain.ArtifactResult {
	profile, abort := gate(t.Format(), req)
	if abort != nil {
		return *abort
	}

	audio, contentType, err := t.Speech.Synthesize(ctx, speech.SynthesizeRequest{
		Text:     clipRunes(req.Prompt, maxNarrationRunes),
		Language: profile.Code,
	})
	if err != nil {
		return providerFailed(t.Format(), err)
	}

	stored, err := t.Persistor.PersistBytes(ctx, artifactKey(req, "narration.mp3"), contentType, audio)
	if err != nil {
		return providerFailed(t.Format(), err)
	}
	return succeeded(t.Format(), "speech", stored, map[string]any{
		"content_type": contentType,
		"bytes":        len(audio),
	})
}

func clipRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
