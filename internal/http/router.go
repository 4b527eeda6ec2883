package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/Logged1n/SharpBuy-sub000/internal/http/handlers"
	"github.com/Logged1n/SharpBuy-sub000/internal/middleware"
)

// RouterOptions configures the middleware chain.
type RouterOptions struct {
	Logger             zerolog.Logger
	CORSAllowedOrigins []string
	RateLimitPerMin    int
	DefaultLocale      string
	CountryLookup      middleware.CountryLookup
	MetricsRegistry    *prometheus.Registry // nil disables /metrics
}

// NewRouter assembles the HTTP surface around the report pipeline. Only
// submission endpoints are rate limited; polling and downloads are cheap
// cache reads.
func NewRouter(app *handlers.App, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(opts.Logger))
	r.Use(middleware.CORS(opts.CORSAllowedOrigins))
	r.Use(middleware.Locale(opts.DefaultLocale, opts.CountryLookup))

	r.Get("/v1/healthz", app.Health)
	if opts.MetricsRegistry != nil {
		r.Method(http.MethodGet, "/metrics", handlers.MetricsHandler(opts.MetricsRegistry))
	}

	r.Route("/v1/reports", func(r chi.Router) {
		submit := chi.Router(r)
		if opts.RateLimitPerMin > 0 {
			submit = r.With(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
		}
		submit.Post("/", app.SubmitReport)
		submit.Post("/sales-summary", app.SalesSummary)

		r.Get("/jobs/{id}", app.JobStatus)
		r.Get("/jobs/{id}/events", app.JobEvents)
		r.Get("/artifacts/bundle", app.BundleArtifacts)
		r.Get("/artifacts/{key}", app.DownloadArtifact)
	})

	r.Route("/v1/orders", func(r chi.Router) {
		submit := chi.Router(r)
		if opts.RateLimitPerMin > 0 {
			submit = r.With(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
		}
		submit.Post("/{id}/invoice", app.OrderInvoice)
	})

	return r
}
