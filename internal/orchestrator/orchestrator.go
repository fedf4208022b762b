package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"server/internal/asyncjob"
	"server/internal/catalog"
	"server/internal/domain"
	"server/internal/infra"
	"server/internal/lang"
	"server/internal/persist"
	"server/internal/providers/avatar"
	"server/internal/providers/deck"
	"server/internal/providers/llm"
	"server/internal/providers/speech"
)

// Providers bundles the external clients the format tasks depend on.
type Providers struct {
	LLM       *llm.Client
	Speech    *speech.Client
	Deck      *deck.Client
	Avatar    *avatar.Client
	Catalog   *catalog.Cache
	Jobs      *asyncjob.Client
	Persistor *persist.Persistor

	PresenterID string
	VoiceID     string
}

// Orchestrator fans a generation request out to all format tasks, runs them
// concurrently, and settles every one of them before returning.
type Orchestrator struct {
	tasks  []Task
	logger *infra.Logger
}

// New builds an orchestrator with the full set of format tasks.
func New(p Providers, logger *infra.Logger) *Orchestrator {
	return &Orchestrator{
		tasks: []Task{
			&NarrativeTask{LLM: p.LLM, Persistor: p.Persistor},
			&AudioTask{Speech: p.Speech, Persistor: p.Persistor},
			&PresentationTask{Deck: p.Deck, Persistor: p.Persistor},
			&MindMapTask{LLM: p.LLM, Persistor: p.Persistor},
			&CodeTask{LLM: p.LLM, Persistor: p.Persistor},
			&VideoTask{
				Avatar:      p.Avatar,
				Catalog:     p.Catalog,
				Jobs:        p.Jobs,
				Persistor:   p.Persistor,
				PresenterID: p.PresenterID,
				VoiceID:     p.VoiceID,
			},
		},
		logger: logger,
	}
}

// NewWithTasks builds an orchestrator over an explicit task set.
func NewWithTasks(tasks []Task, logger *infra.Logger) *Orchestrator {
	return &Orchestrator{tasks: tasks, logger: logger}
}

// GenerateAll runs every format task for the request and returns one tagged
// result per format. A task failing, timing out, or panicking never affects
// its siblings, and the results map always carries an entry for every task.
func (o *Orchestrator) GenerateAll(ctx context.Context, req domain.GenerationRequest, sink Sink) (*domain.GenerationResponse, error) {
	if strings.TrimSpace(req.TopicID) == "" {
		return nil, domain.ErrTopicRequired
	}
	if sink == nil {
		sink = noopSink{}
	}
	serial := &serialSink{inner: sink}

	results := settleAll(ctx, o.tasks, req, serial, o.logger)

	profile := lang.Resolve(req.Language)
	return &domain.GenerationResponse{
		TopicID:  req.TopicID,
		Language: profile.Code,
		Results:  results,
	}, nil
}

// settleAll runs all tasks concurrently and waits for every one of them.
// A task returning early never cancels the rest of the batch.
func settleAll(ctx context.Context, tasks []Task, req domain.GenerationRequest, sink Sink, logger *infra.Logger) map[domain.FormatKey]domain.ArtifactResult {
	type outcome struct {
		format domain.FormatKey
		result domain.ArtifactResult
	}

	outcomes := make(chan outcome, len(tasks))
	for _, task := range tasks {
		go func(task Task) {
			format := task.Format()
			sink.Emit(Event{Format: format, Status: ProgressStarting})

			result := runSettled(ctx, task, req, logger)

			sink.Emit(Event{
				Format:  format,
				Status:  progressFor(result.Status),
				Message: result.ErrorMessage,
			})
			outcomes <- outcome{format: format, result: result}
		}(task)
	}

	results := make(map[domain.FormatKey]domain.ArtifactResult, len(tasks))
	for range tasks {
		out := <-outcomes
		results[out.format] = out.result
	}
	return results
}

// runSettled executes one task and converts a panic into a failed result so
// a single buggy task cannot take down the whole batch.
func runSettled(ctx context.Context, task Task, req domain.GenerationRequest, logger *infra.Logger) (result domain.ArtifactResult) {
	defer func() {
		if r := recover(); r != nil {
			if logger != nil {
				logger.Error().
					Str("format", string(task.Format())).
					Interface("panic", r).
					Msg("format task panicked")
			}
			result = failed(task.Format(), domain.CodeInternalError, fmt.Sprintf("task panicked: %v", r))
		}
	}()
	return task.Run(ctx, req)
}

func progressFor(status domain.ArtifactStatus) ProgressStatus {
	switch status {
	case domain.ArtifactSucceeded:
		return ProgressCompleted
	case domain.ArtifactSkipped:
		return ProgressSkipped
	default:
		return ProgressFailed
	}
}

// succeeded builds the success record from a persisted artifact.
func succeeded(format domain.FormatKey, provider string, stored persist.Stored, metadata map[string]any) domain.ArtifactResult {
	return domain.ArtifactResult{
		Format:   format,
		Status:   domain.ArtifactSucceeded,
		URL:      stored.URL,
		Hash:     stored.Hash,
		Fallback: stored.Fallback,
		Provider: provider,
		Metadata: metadata,
	}
}
