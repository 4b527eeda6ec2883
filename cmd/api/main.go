package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/Logged1n/SharpBuy-sub000/internal/adapter/repo"
	"github.com/Logged1n/SharpBuy-sub000/internal/cache"
	"github.com/Logged1n/SharpBuy-sub000/internal/domain"
	httpapi "github.com/Logged1n/SharpBuy-sub000/internal/http"
	"github.com/Logged1n/SharpBuy-sub000/internal/http/handlers"
	"github.com/Logged1n/SharpBuy-sub000/internal/infra"
	"github.com/Logged1n/SharpBuy-sub000/internal/infra/geoip"
	"github.com/Logged1n/SharpBuy-sub000/internal/metrics"
	"github.com/Logged1n/SharpBuy-sub000/internal/middleware"
	"github.com/Logged1n/SharpBuy-sub000/internal/render"
	"github.com/Logged1n/SharpBuy-sub000/internal/report"
	"github.com/Logged1n/SharpBuy-sub000/internal/schedule"
	"github.com/Logged1n/SharpBuy-sub000/internal/storage"
	"github.com/Logged1n/SharpBuy-sub000/internal/tasks"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	store, closeStore, err := buildStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect cache store")
	}
	defer closeStore()

	// Database is optional: without it the server still accepts jobs whose
	// model arrives in the request body.
	var data domain.ReportDataRepository
	if cfg.DatabaseURL != "" {
		dbpool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer dbpool.Close()
		data = repo.NewReportData(dbpool)
	} else {
		logger.Warn().Msg("DATABASE_URL not set, order and sales report sources disabled")
	}

	registry, err := render.NewRegistry()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load report templates")
	}

	var renderer render.Renderer
	switch cfg.Renderer {
	case "chromium":
		renderer = render.NewChromium(registry, cfg.RenderTimeout)
	default:
		renderer = render.NewHTMLRenderer(registry)
	}

	pool := tasks.NewPool(cfg.WorkerCount, cfg.QueueCapacity, logger)

	var sink metrics.Sink = metrics.NewNoopSink()
	var promReg *prometheus.Registry
	if cfg.MetricsEnabled {
		promReg = prometheus.NewRegistry()
		sink = metrics.NewPrometheusSink(promReg)
	}

	var archive report.Archive
	if cfg.ArchivePath != "" {
		fileStore, err := storage.NewFileStore(cfg.ArchivePath)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to open archive directory")
		}
		archive = fileStore
	}

	reports := report.NewService(store, pool, renderer, registry, logger, report.Options{
		JobStatusTTL: cfg.JobStatusTTL,
		ArtifactTTL:  cfg.ArtifactTTL,
		Sink:         sink,
		Archive:      archive,
	})

	var warmer *schedule.Warmer
	if data != nil {
		warmer = schedule.NewWarmer(reports, data, logger)
		if err := warmer.Start(cfg.WarmSpec); err != nil {
			logger.Fatal().Err(err).Msg("failed to start report warmer")
		}
	}

	geoDB, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip database unavailable, locale falls back to headers")
	}
	var lookup middleware.CountryLookup
	if geoDB != nil {
		defer geoDB.Close()
		lookup = geoDB.Country
	}

	app := handlers.NewApp(reports, data, logger)
	router := httpapi.NewRouter(app, httpapi.RouterOptions{
		Logger:             logger,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerMin:    cfg.RateLimitPerMin,
		DefaultLocale:      cfg.DefaultLocale,
		CountryLookup:      lookup,
		MetricsRegistry:    promReg,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("addr", server.Addr()).Str("renderer", cfg.Renderer).Msg("report API listening")
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	if warmer != nil {
		warmer.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}

	// Drain in-flight renders after the listener is closed so completed jobs
	// still land in the cache.
	pool.Stop()

	logger.Info().Msg("server stopped")
}

// buildStore prefers Redis and falls back to the in-process cache during
// development. LoadConfig rejects a missing REDIS_ADDR everywhere else.
func buildStore(ctx context.Context, cfg *infra.Config, logger zerolog.Logger) (cache.Store, func(), error) {
	if cfg.RedisAddr == "" {
		logger.Warn().Msg("REDIS_ADDR not set, using in-memory cache")
		mem := cache.NewMemory()
		return mem, mem.Close, nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := infra.NewRedisClient(pingCtx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return cache.NewRedis(client), func() { _ = client.Close() }, nil
}
