package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"server/internal/adapter/repo"
	"server/internal/asyncjob"
	"server/internal/catalog"
	"server/internal/domain"
	"server/internal/infra"
	"server/internal/infra/credentials"
	"server/internal/orchestrator"
	"server/internal/persist"
	"server/internal/providers/avatar"
	"server/internal/providers/deck"
	"server/internal/providers/llm"
	"server/internal/providers/speech"
	"server/internal/storage"
)

type jobWorker struct {
	ctx          context.Context
	requests     domain.RequestRepository
	topics       domain.TopicRepository
	artifacts    domain.ArtifactRepository
	orch         *orchestrator.Orchestrator
	logger       infra.Logger
	pollInterval time.Duration
}

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, logger)
	credStore := credentials.NewStore(runner)

	orch, err := buildOrchestrator(ctx, cfg, credStore, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure providers")
	}

	worker := &jobWorker{
		ctx:          ctx,
		requests:     repo.NewRequestRepository(runner),
		topics:       repo.NewTopicRepository(runner),
		artifacts:    repo.NewArtifactRepository(runner),
		orch:         orch,
		logger:       logger,
		pollInterval: cfg.WorkerPollInterval,
	}

	if err := worker.Run(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: stopped with error")
	}
	logger.Info().Msg("worker: stopped")
}

func (w *jobWorker) Run() error {
	w.logger.Info().Msg("worker: started")
	for {
		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		default:
		}

		req, err := w.requests.ClaimNext(w.ctx)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				w.logger.Error().Err(err).Msg("worker: failed to claim request")
			}
			w.sleep()
			continue
		}

		w.handleRequest(req)
	}
}

func (w *jobWorker) sleep() {
	select {
	case <-w.ctx.Done():
	case <-time.After(w.pollInterval):
	}
}

func (w *jobWorker) handleRequest(req *domain.Request) {
	w.logger.Info().Str("request_id", req.ID).Str("topic_id", req.TopicID).Msg("worker: picked request")

	topic, err := w.topics.GetByID(w.ctx, req.TopicID)
	if err != nil {
		w.fail(req.ID, "topic not found: "+err.Error())
		return
	}

	language := req.Language
	if language == "" {
		language = topic.Language
	}
	resp, err := w.orch.GenerateAll(w.ctx, domain.GenerationRequest{
		TopicID:   topic.ID,
		RequestID: req.ID,
		Title:     topic.Title,
		Prompt:    topic.Transcript,
		Language:  language,
		Skills:    topic.Skills,
	}, orchestrator.LogSink(&w.logger))
	if err != nil {
		w.fail(req.ID, err.Error())
		return
	}

	for _, format := range domain.AllFormats() {
		result, ok := resp.Results[format]
		if !ok {
			continue
		}
		artifact := &domain.Artifact{
			ID:           uuid.NewString(),
			TopicID:      topic.ID,
			RequestID:    req.ID,
			Format:       format,
			Status:       result.Status,
			URL:          result.URL,
			Hash:         result.Hash,
			Fallback:     result.Fallback,
			Provider:     result.Provider,
			ErrorCode:    result.ErrorCode,
			ErrorMessage: result.ErrorMessage,
		}
		if err := w.artifacts.Insert(w.ctx, artifact); err != nil {
			w.logger.Error().Err(err).
				Str("request_id", req.ID).
				Str("format", string(format)).
				Msg("worker: insert artifact failed")
		}
	}

	resultJSON, err := json.Marshal(resp)
	if err != nil {
		w.fail(req.ID, "encode results: "+err.Error())
		return
	}
	if err := w.requests.UpdateStatus(w.ctx, req.ID, domain.RequestStatusSucceeded, nil, resultJSON); err != nil {
		w.logger.Error().Err(err).Str("request_id", req.ID).Msg("worker: update status failed")
	}
}

func (w *jobWorker) fail(requestID, message string) {
	w.logger.Error().Str("request_id", requestID).Msg("worker: request failed: " + message)
	if err := w.requests.UpdateStatus(w.ctx, requestID, domain.RequestStatusFailed, &message, nil); err != nil {
		w.logger.Error().Err(err).Str("request_id", requestID).Msg("worker: update status failed")
	}
}

// buildOrchestrator wires all provider clients. API keys come from the
// environment first, then from the credentials store.
func buildOrchestrator(ctx context.Context, cfg *infra.Config, credStore *credentials.Store, logger infra.Logger) (*orchestrator.Orchestrator, error) {
	resolveKey := func(envValue, provider string) string {
		if envValue != "" {
			return envValue
		}
		key, err := credStore.Token(ctx, provider)
		if err != nil {
			logger.Warn().Err(err).Str("provider", provider).Msg("worker: credentials store lookup failed")
			return ""
		}
		return key
	}

	llmClient, err := llm.NewClient(llm.Options{
		APIKey:       resolveKey(cfg.OpenAIAPIKey, credentials.ProviderOpenAI),
		Model:        cfg.OpenAIModel,
		BaseURL:      cfg.OpenAIBaseURL,
		Organization: cfg.OpenAIOrg,
		Logger:       &logger,
	})
	if err != nil {
		return nil, err
	}
	speechClient, err := speech.NewClient(speech.Options{
		APIKey:  resolveKey(cfg.SpeechAPIKey, credentials.ProviderSpeech),
		BaseURL: cfg.SpeechBaseURL,
		Voice:   cfg.SpeechVoice,
		Logger:  &logger,
	})
	if err != nil {
		return nil, err
	}
	deckClient, err := deck.NewClient(deck.Options{
		APIKey:  resolveKey(cfg.DeckAPIKey, credentials.ProviderDeck),
		BaseURL: cfg.DeckBaseURL,
		Logger:  &logger,
	})
	if err != nil {
		return nil, err
	}
	avatarKey := resolveKey(cfg.AvatarAPIKey, credentials.ProviderAvatar)
	avatarClient, err := avatar.NewClient(avatar.Options{
		APIKey:  avatarKey,
		BaseURL: cfg.AvatarBaseURL,
		Logger:  &logger,
	})
	if err != nil {
		return nil, err
	}

	fileStore, err := storage.NewFileStore(cfg.StoragePath, cfg.StorageBaseURL)
	if err != nil {
		return nil, err
	}

	providers := orchestrator.Providers{
		LLM:    llmClient,
		Speech: speechClient,
		Deck:   deckClient,
		Avatar: avatarClient,
		Catalog: catalog.New(catalog.Options{
			BaseURL: avatarClient.BaseURL(),
			APIKey:  avatarKey,
			Logger:  &logger,
		}),
		Jobs: &asyncjob.Client{
			Logger:           &logger,
			MaxSubmitRetries: cfg.SubmitMaxRetries,
			RetryDelay:       cfg.SubmitRetryDelay,
			PollInterval:     cfg.PollInterval,
			MaxPollAttempts:  cfg.PollMaxAttempts,
		},
		Persistor:   persist.New(fileStore, nil, &logger),
		PresenterID: cfg.AvatarPresenterID,
		VoiceID:     cfg.AvatarVoiceID,
	}
	return orchestrator.New(providers, &logger), nil
}
