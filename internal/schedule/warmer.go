// Package schedule pre-warms the artifact cache with reports that are
// requested predictably, so the first dashboard download of the day is a
// cache hit instead of a render.
package schedule

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/Logged1n/SharpBuy-sub000/internal/domain"
)

// DefaultSpec renders yesterday's sales summary at 02:00 every day.
const DefaultSpec = "0 2 * * *"

// Submitter is the slice of the report coordinator the warmer needs.
type Submitter interface {
	Request(ctx context.Context, kind domain.ReportKind, model any, cacheKey string) (string, error)
}

// Warmer periodically submits the daily sales summary under its stable
// cache key.
type Warmer struct {
	cron    *cron.Cron
	reports Submitter
	data    domain.ReportDataRepository
	logger  zerolog.Logger
}

// NewWarmer builds a warmer; Start must be called to schedule it.
func NewWarmer(reports Submitter, data domain.ReportDataRepository, logger zerolog.Logger) *Warmer {
	return &Warmer{
		cron:    cron.New(),
		reports: reports,
		data:    data,
		logger:  logger,
	}
}

// Start registers the warm job under spec and starts the scheduler.
func (w *Warmer) Start(spec string) error {
	if spec == "" {
		spec = DefaultSpec
	}
	if _, err := w.cron.AddFunc(spec, func() {
		w.WarmDay(context.Background(), time.Now().AddDate(0, 0, -1).Format("2006-01-02"))
	}); err != nil {
		return err
	}
	w.cron.Start()
	return nil
}

// Stop halts the scheduler and waits for a running warm job to finish.
func (w *Warmer) Stop() {
	<-w.cron.Stop().Done()
}

// WarmDay builds the sales summary model for day and submits it under the
// day's stable cache key. Errors are logged, never propagated; the next
// tick or an on-demand request will retry.
func (w *Warmer) WarmDay(ctx context.Context, day string) {
	model, err := w.data.DailySalesSummary(ctx, day)
	if err != nil {
		w.logger.Error().Err(err).Str("day", day).Msg("schedule: sales summary model failed")
		return
	}
	jobID, err := w.reports.Request(ctx, domain.ReportKindSalesSummary, model, SalesCacheKey(day))
	if err != nil {
		w.logger.Error().Err(err).Str("day", day).Msg("schedule: sales summary submit failed")
		return
	}
	w.logger.Info().Str("day", day).Str("job_id", jobID).Msg("schedule: sales summary warm submitted")
}

// SalesCacheKey is the stable cache key for one day's sales summary. All
// callers must derive the key here so warmed artifacts are actually hit.
func SalesCacheKey(day string) string {
	return "sales-daily-" + day
}
