package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"server/internal/http/handlers"
	"server/internal/infra"
	mw "server/internal/middleware"
)

// Options carries the router knobs that come from config.
type Options struct {
	Logger          infra.Logger
	DefaultLocale   string
	CountryLookup   mw.CountryLookup
	RateLimitPerMin int
	AllowedOrigins  []string
	StaticDir       string
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		mw.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		mw.Logger(opts.Logger),
		mw.CORS(opts.AllowedOrigins),
		mw.I18N(opts.DefaultLocale, opts.CountryLookup),
	)
	if opts.RateLimitPerMin > 0 {
		r.Use(mw.RateLimit(opts.RateLimitPerMin, time.Minute))
	}

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/topics", func(r chi.Router) {
		r.Post("/", app.CreateTopic)
		r.Get("/{id}", app.GetTopic)
		r.Get("/{id}/artifacts", app.ListTopicArtifacts)
		r.Post("/{id}/generate", app.Generate)
	})

	r.Route("/v1/requests", func(r chi.Router) {
		r.Post("/", app.EnqueueRequest)
		r.Get("/{id}", app.GetRequest)
	})

	if opts.StaticDir != "" {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir)))
		r.Get("/static/*", fileServer.ServeHTTP)
	}

	return r
}
