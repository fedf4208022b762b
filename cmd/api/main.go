package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"server/internal/adapter/repo"
	"server/internal/asyncjob"
	"server/internal/catalog"
	"server/internal/http/handlers"
	httpapi "server/internal/http/httpapi"
	"server/internal/infra"
	"server/internal/infra/credentials"
	"server/internal/infra/geoip"
	"server/internal/middleware"
	"server/internal/orchestrator"
	"server/internal/persist"
	"server/internal/providers/avatar"
	"server/internal/providers/deck"
	"server/internal/providers/llm"
	"server/internal/providers/speech"
	"server/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	runner := infra.NewSQLRunner(dbpool, logger)
	credStore := credentials.NewStore(runner)

	orch, err := buildOrchestrator(ctx, cfg, credStore, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure providers")
	}

	app := handlers.NewApp(
		repo.NewTopicRepository(runner),
		repo.NewRequestRepository(runner),
		repo.NewArtifactRepository(runner),
		orch,
		logger,
	)

	var countryLookup middleware.CountryLookup
	if resolver, err := geoip.NewResolver(cfg.GeoIPDBPath); err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	} else if resolver != nil {
		countryLookup = resolver.CountryCode
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:          logger,
		DefaultLocale:   cfg.DefaultLocale,
		CountryLookup:   countryLookup,
		RateLimitPerMin: cfg.RateLimitPerMin,
		AllowedOrigins:  cfg.AllowedOrigins,
		StaticDir:       cfg.StoragePath,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

// buildOrchestrator wires all provider clients. API keys come from the
// environment first, then from the credentials store.
func buildOrchestrator(ctx context.Context, cfg *infra.Config, credStore *credentials.Store, logger infra.Logger) (*orchestrator.Orchestrator, error) {
	resolveKey := func(envValue, provider string) string {
		if key := envValue; key != "" {
			return key
		}
		key, err := credStore.Token(ctx, provider)
		if err != nil {
			logger.Warn().Err(err).Str("provider", provider).Msg("credentials store lookup failed")
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
