// Package report implements the coordinator behind asynchronous PDF report
// generation: it turns a generation request into a tracked, cacheable job,
// hands the render to the background runner, and answers status polls and
// artifact downloads. All state lives in the cache store, so the service
// itself is stateless and safe to replicate.
package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Logged1n/SharpBuy-sub000/internal/cache"
	"github.com/Logged1n/SharpBuy-sub000/internal/domain"
	"github.com/Logged1n/SharpBuy-sub000/internal/metrics"
	"github.com/Logged1n/SharpBuy-sub000/internal/render"
	"github.com/Logged1n/SharpBuy-sub000/internal/tasks"
)

const (
	jobStatusKeyPrefix = "job-status:"
	artifactKeyPrefix  = "pdf:"

	// Job records track a request, not content; one hour is plenty.
	DefaultJobStatusTTL = time.Hour
	// Rendered artifacts are reusable across requests and kept longer.
	DefaultArtifactTTL = 24 * time.Hour
)

// KindSet answers whether a report kind has a registered template. The
// render.Registry satisfies it.
type KindSet interface {
	Known(kind domain.ReportKind) bool
}

// Archive receives an extra on-disk copy of completed artifacts. Optional.
type Archive interface {
	Write(ctx context.Context, key string, data []byte) (string, error)
}

// Options tunes the service TTLs and optional collaborators.
type Options struct {
	JobStatusTTL time.Duration
	ArtifactTTL  time.Duration
	Sink         metrics.Sink
	Archive      Archive
}

// Service coordinates report generation jobs.
type Service struct {
	store        cache.Store
	runner       tasks.Runner
	renderer     render.Renderer
	kinds        KindSet
	sink         metrics.Sink
	archive      Archive
	logger       zerolog.Logger
	jobStatusTTL time.Duration
	artifactTTL  time.Duration
}

// NewService wires the coordinator with its collaborators.
func NewService(store cache.Store, runner tasks.Runner, renderer render.Renderer, kinds KindSet, logger zerolog.Logger, opts Options) *Service {
	if opts.JobStatusTTL <= 0 {
		opts.JobStatusTTL = DefaultJobStatusTTL
	}
	if opts.ArtifactTTL <= 0 {
		opts.ArtifactTTL = DefaultArtifactTTL
	}
	if opts.Sink == nil {
		opts.Sink = metrics.NewNoopSink()
	}
	return &Service{
		store:        store,
		runner:       runner,
		renderer:     renderer,
		kinds:        kinds,
		sink:         opts.Sink,
		archive:      opts.Archive,
		logger:       logger,
		jobStatusTTL: opts.JobStatusTTL,
		artifactTTL:  opts.ArtifactTTL,
	}
}

// Request submits a report for generation and returns the job id without
// waiting for the render. cacheKey is optional: when supplied, the artifact
// key is derived from it and an existing artifact short-circuits the render;
// when empty, the key is derived from a fresh request id, so the artifact is
// only reachable through this job's record.
func (s *Service) Request(ctx context.Context, kind domain.ReportKind, model any, cacheKey string) (string, error) {
	if s.kinds != nil && !s.kinds.Known(kind) {
		return "", fmt.Errorf("report: %w: %q", domain.ErrUnknownReportKind, kind)
	}
	payload, err := json.Marshal(model)
	if err != nil {
		return "", fmt.Errorf("report: %w: %v", domain.ErrInvalidModel, err)
	}
	s.sink.ReportRequested(string(kind))

	cacheKey = strings.TrimSpace(cacheKey)
	if cacheKey != "" {
		artifactKey := artifactKeyPrefix + cacheKey
		if _, err := s.store.Get(ctx, artifactKey); err == nil {
			return s.completeFromCache(ctx, kind, artifactKey)
		} else if !errors.Is(err, domain.ErrNotFound) {
			// Probe failures degrade to a miss; rendering twice beats failing.
			s.logger.Warn().Err(err).Str("artifact_key", artifactKey).Msg("report: artifact probe failed, treating as miss")
		}
	}

	artifactKey := artifactKeyPrefix + cacheKey
	if cacheKey == "" {
		artifactKey = artifactKeyPrefix + uuid.NewString()
	}

	job := &domain.ReportJob{
		ID:          uuid.NewString(),
		Kind:        kind,
		State:       domain.JobStatePending,
		ArtifactKey: artifactKey,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.writeJob(ctx, job); err != nil {
		return "", fmt.Errorf("report: persist job record: %w", err)
	}

	// The closure owns its serialized copy of the model; later mutation of
	// the caller's value cannot reach the render.
	snapshot := *job
	if err := s.runner.Enqueue(func(taskCtx context.Context) {
		s.execute(taskCtx, snapshot, payload)
	}); err != nil {
		s.failJob(ctx, job, fmt.Errorf("enqueue render: %w", err))
		return "", fmt.Errorf("report: %w: %v", domain.ErrQueueUnavailable, err)
	}
	return job.ID, nil
}

// Job returns the status record for jobID, or domain.ErrNotFound when the
// id is unknown or the record's TTL has lapsed.
func (s *Service) Job(ctx context.Context, jobID string) (*domain.ReportJob, error) {
	raw, err := s.store.Get(ctx, jobStatusKeyPrefix+jobID)
	if err != nil {
		return nil, err
	}
	var job domain.ReportJob
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, fmt.Errorf("report: decode job record: %w", err)
	}
	return &job, nil
}

// Artifact returns the rendered bytes stored under artifactKey. The key must
// be exactly the ArtifactKey carried by a job record; keys outside the
// artifact namespace are unknown, so job records can never be fetched as
// documents.
func (s *Service) Artifact(ctx context.Context, artifactKey string) ([]byte, error) {
	if !strings.HasPrefix(artifactKey, artifactKeyPrefix) {
		return nil, domain.ErrNotFound
	}
	return s.store.Get(ctx, artifactKey)
}

// completeFromCache synthesizes an already-completed job for an artifact
// that exists. The caller still gets a pollable job id, but no render runs.
func (s *Service) completeFromCache(ctx context.Context, kind domain.ReportKind, artifactKey string) (string, error) {
	now := time.Now().UTC()
	job := &domain.ReportJob{
		ID:          uuid.NewString(),
		Kind:        kind,
		State:       domain.JobStateCompleted,
		ArtifactKey: artifactKey,
		CreatedAt:   now,
		CompletedAt: &now,
	}
	if err := s.writeJob(ctx, job); err != nil {
		return "", fmt.Errorf("report: persist job record: %w", err)
	}
	s.sink.ArtifactCacheHit(string(kind))
	s.logger.Debug().Str("job_id", job.ID).Str("artifact_key", artifactKey).Msg("report: served from artifact cache")
	return job.ID, nil
}

// execute runs inside the background runner. Nothing escapes it: every
// failure ends as a Failed job record, never as a panic or an error on the
// submitting request's path.
func (s *Service) execute(ctx context.Context, job domain.ReportJob, payload []byte) {
	s.sink.JobsInFlightIncr()
	defer s.sink.JobsInFlightDecr()

	job.State = domain.JobStateProcessing
	if err := s.writeJob(ctx, &job); err != nil {
		s.logger.Error().Err(err).Str("job_id", job.ID).Msg("report: processing status write failed")
	}

	start := time.Now()
	pdf, err := s.renderer.Render(ctx, job.Kind, payload)
	if err == nil && len(pdf) == 0 {
		err = fmt.Errorf("%w: empty document", domain.ErrRendererFailure)
	}
	if err != nil {
		s.sink.RenderCompleted(string(job.Kind), metrics.OutcomeFailed, time.Since(start))
		s.failJob(ctx, &job, err)
		return
	}

	if err := s.store.Set(ctx, job.ArtifactKey, pdf, s.artifactTTL); err != nil {
		s.sink.RenderCompleted(string(job.Kind), metrics.OutcomeFailed, time.Since(start))
		s.failJob(ctx, &job, fmt.Errorf("store artifact: %w", err))
		return
	}
	if s.archive != nil {
		if _, err := s.archive.Write(ctx, archivePath(job.ArtifactKey), pdf); err != nil {
			s.logger.Warn().Err(err).Str("job_id", job.ID).Msg("report: artifact archive write failed")
		}
	}

	now := time.Now().UTC()
	job.State = domain.JobStateCompleted
	job.CompletedAt = &now
	if err := s.writeJob(ctx, &job); err != nil {
		// The artifact exists; the worst case is a poller seeing a stale
		// Processing record until its TTL lapses.
		s.logger.Error().Err(err).Str("job_id", job.ID).Msg("report: completed status write failed")
	}
	s.sink.RenderCompleted(string(job.Kind), metrics.OutcomeCompleted, time.Since(start))
	s.logger.Info().
		Str("job_id", job.ID).
		Str("kind", string(job.Kind)).
		Dur("render_ms", time.Since(start)).
		Msg("report: job completed")
}

// failJob moves the job into its terminal Failed state, best effort.
func (s *Service) failJob(ctx context.Context, job *domain.ReportJob, cause error) {
	job.State = domain.JobStateFailed
	job.ErrorMessage = cause.Error()
	if err := s.writeJob(ctx, job); err != nil {
		s.logger.Error().Err(err).Str("job_id", job.ID).Msg("report: failed status write failed")
	}
	s.logger.Error().Err(cause).Str("job_id", job.ID).Str("kind", string(job.Kind)).Msg("report: job failed")
}

func (s *Service) writeJob(ctx context.Context, job *domain.ReportJob) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, jobStatusKeyPrefix+job.ID, raw, s.jobStatusTTL)
}

func archivePath(artifactKey string) string {
	return "reports/" + strings.TrimPrefix(artifactKey, artifactKeyPrefix) + ".pdf"
}
