package infra

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string

	StoragePath    string
	StorageBaseURL string
	GeoIPDBPath    string

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	OpenAIOrg     string

	SpeechAPIKey  string
	SpeechBaseURL string
	SpeechVoice   string

	DeckAPIKey  string
	DeckBaseURL string

	AvatarAPIKey      string
	AvatarBaseURL     string
	AvatarPresenterID string
	AvatarVoiceID     string

	DefaultLocale string

	SubmitMaxRetries int
	SubmitRetryDelay time.Duration
	PollInterval     time.Duration
	PollMaxAttempts  int

	WorkerPollInterval time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
	AllowedOrigins   []string
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		StoragePath: getEnv("STORAGE_PATH", "./storage"),
		GeoIPDBPath: os.Getenv("GEOIP_DB_PATH"),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIOrg:     os.Getenv("OPENAI_ORG"),

		SpeechAPIKey:  os.Getenv("SPEECH_API_KEY"),
		SpeechBaseURL: getEnv("SPEECH_BASE_URL", "https://api.openai.com/v1"),
		SpeechVoice:   getEnv("SPEECH_VOICE", "alloy"),

		DeckAPIKey:  os.Getenv("DECK_API_KEY"),
		DeckBaseURL: os.Getenv("DECK_BASE_URL"),

		AvatarAPIKey:      os.Getenv("AVATAR_API_KEY"),
		AvatarBaseURL:     getEnv("AVATAR_BASE_URL", "https://api.d-id.com"),
		AvatarPresenterID: getEnv("AVATAR_PRESENTER_ID", "amy-jcwCkr1grs"),
		AvatarVoiceID:     getEnv("AVATAR_VOICE_ID", "en-US-JennyNeural"),

		DefaultLocale: getEnv("DEFAULT_LOCALE", "en"),

		SubmitMaxRetries: getEnvInt("PROVIDER_SUBMIT_MAX_RETRIES", 3),
		SubmitRetryDelay: getEnvDuration("PROVIDER_SUBMIT_RETRY_DELAY", 2*time.Second),
		PollInterval:     getEnvDuration("PROVIDER_POLL_INTERVAL", 5*time.Second),
		PollMaxAttempts:  getEnvInt("PROVIDER_POLL_MAX_ATTEMPTS", 60),

		WorkerPollInterval: getEnvDuration("WORKER_POLL_INTERVAL", 2*time.Second),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}
	cfg.StorageBaseURL = getEnv("STORAGE_BASE_URL", defaultStorageBaseURL(cfg.Port))
	cfg.AllowedOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"))

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if _, err := url.Parse(cfg.StorageBaseURL); err != nil {
		return nil, fmt.Errorf("invalid STORAGE_BASE_URL: %w", err)
	}

	return cfg, nil
}

func defaultStorageBaseURL(port string) string {
	if port == "" {
		port = "8080"
	}
	return "http://localhost:" + port + "/static"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
