package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Logged1n/SharpBuy-sub000/internal/domain"
	"github.com/Logged1n/SharpBuy-sub000/internal/middleware"
	"github.com/Logged1n/SharpBuy-sub000/internal/schedule"
	ziputil "github.com/Logged1n/SharpBuy-sub000/pkg/zip"
)

// SubmitReportReq is the generic report submission payload. The model is
// forwarded opaquely to the coordinator; only the kind and the optional
// cache key are interpreted here.
type SubmitReportReq struct {
	Kind     string          `json:"kind" validate:"required,max=64"`
	Model    json.RawMessage `json:"model"`
	CacheKey string          `json:"cache_key" validate:"omitempty,max=200"`
}

// SubmitReport enqueues a report generation job and answers 202 with the
// job id. Completion is observed by polling the job endpoint.
func (a *App) SubmitReport(w http.ResponseWriter, r *http.Request) {
	var req SubmitReportReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if err := a.validate.Struct(req); err != nil {
		a.error(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	jobID, err := a.Reports.Request(r.Context(), domain.ReportKind(req.Kind), req.Model, req.CacheKey)
	if err != nil {
		a.reportSubmitError(w, err)
		return
	}
	a.json(w, http.StatusAccepted, map[string]string{"job_id": jobID})
}

// JobStatus returns the current job record. An expired or unknown id is a
// plain 404; pollers treat it as "unknown", not as a failure class.
func (a *App) JobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	job, err := a.Reports.Job(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "unknown job id")
			return
		}
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("handlers: job lookup failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load job")
		return
	}
	a.json(w, http.StatusOK, job)
}

// DownloadArtifact streams the rendered PDF stored under the exact
// artifact key carried by a completed job record.
func (a *App) DownloadArtifact(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	data, err := a.Reports.Artifact(r.Context(), key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "artifact expired or never existed")
			return
		}
		a.Logger.Error().Err(err).Str("artifact_key", key).Msg("handlers: artifact lookup failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load artifact")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+artifactFilename(key)+"\"")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// BundleArtifacts zips several artifacts into one download. Missing keys
// are reported instead of silently skipped.
func (a *App) BundleArtifacts(w http.ResponseWriter, r *http.Request) {
	keys := r.URL.Query()["key"]
	if len(keys) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "at least one key parameter is required")
		return
	}
	entries := make([]ziputil.Entry, 0, len(keys))
	for _, key := range keys {
		data, err := a.Reports.Artifact(r.Context(), key)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				a.error(w, http.StatusNotFound, "not_found", "artifact "+key+" expired or never existed")
				return
			}
			a.Logger.Error().Err(err).Str("artifact_key", key).Msg("handlers: bundle artifact lookup failed")
			a.error(w, http.StatusInternalServerError, "internal", "failed to load artifact")
			return
		}
		entries = append(entries, ziputil.Entry{Filename: artifactFilename(key), Data: data})
	}
	bundle, err := ziputil.Bundle(entries)
	if err != nil {
		a.Logger.Error().Err(err).Msg("handlers: bundle build failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to build bundle")
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", "attachment; filename=\"reports.zip\"")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(bundle)
}

// OrderInvoice builds the invoice model for an order and submits it under
// the order's stable cache key, so re-downloads skip the render.
func (a *App) OrderInvoice(w http.ResponseWriter, r *http.Request) {
	if a.Data == nil {
		a.error(w, http.StatusServiceUnavailable, "unavailable", "report data source not configured")
		return
	}
	orderID := chi.URLParam(r, "id")
	model, err := a.Data.OrderInvoice(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "unknown order")
			return
		}
		a.Logger.Error().Err(err).Str("order_id", orderID).Msg("handlers: invoice model failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load order")
		return
	}
	model.Locale = middleware.LocaleFromContext(r.Context())
	jobID, err := a.Reports.Request(r.Context(), domain.ReportKindOrderInvoice, model, "invoice-"+orderID)
	if err != nil {
		a.reportSubmitError(w, err)
		return
	}
	a.json(w, http.StatusAccepted, map[string]string{"job_id": jobID})
}

type salesSummaryReq struct {
	Day string `json:"day" validate:"required,datetime=2006-01-02"`
}

// SalesSummary builds the daily sales model and submits it under the
// day's stable cache key, shared with the scheduled pre-warmer.
func (a *App) SalesSummary(w http.ResponseWriter, r *http.Request) {
	if a.Data == nil {
		a.error(w, http.StatusServiceUnavailable, "unavailable", "report data source not configured")
		return
	}
	var req salesSummaryReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if err := a.validate.Struct(req); err != nil {
		a.error(w, http.StatusBadRequest, "validation_failed", "day must be a YYYY-MM-DD date")
		return
	}
	model, err := a.Data.DailySalesSummary(r.Context(), req.Day)
	if err != nil {
		a.Logger.Error().Err(err).Str("day", req.Day).Msg("handlers: sales summary model failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to aggregate sales")
		return
	}
	jobID, err := a.Reports.Request(r.Context(), domain.ReportKindSalesSummary, model, schedule.SalesCacheKey(req.Day))
	if err != nil {
		a.reportSubmitError(w, err)
		return
	}
	a.json(w, http.StatusAccepted, map[string]string{"job_id": jobID})
}

func (a *App) reportSubmitError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnknownReportKind):
		a.error(w, http.StatusBadRequest, "unknown_kind", "no template registered for this report kind")
	case errors.Is(err, domain.ErrInvalidModel):
		a.error(w, http.StatusBadRequest, "invalid_model", "report model is not serializable")
	case errors.Is(err, domain.ErrQueueUnavailable):
		a.error(w, http.StatusServiceUnavailable, "queue_unavailable", "report queue is not accepting work")
	default:
		a.Logger.Error().Err(err).Msg("handlers: report submit failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to submit report")
	}
}

func artifactFilename(key string) string {
	name := strings.TrimPrefix(key, "pdf:")
	name = strings.ReplaceAll(name, ":", "-")
	if name == "" {
		name = "report"
	}
	return name + ".pdf"
}
