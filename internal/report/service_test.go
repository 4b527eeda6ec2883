package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Logged1n/SharpBuy-sub000/internal/cache"
	"github.com/Logged1n/SharpBuy-sub000/internal/domain"
)

// manualRunner collects enqueued work and runs it only when the test says
// so, making the pending-then-processing-then-terminal sequence observable.
type manualRunner struct {
	mu    sync.Mutex
	queue []func(ctx context.Context)
}

func (r *manualRunner) Enqueue(fn func(ctx context.Context)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queue = append(r.queue, fn)
	return nil
}

func (r *manualRunner) drain(ctx context.Context) {
	r.mu.Lock()
	queue := r.queue
	r.queue = nil
	r.mu.Unlock()
	for _, fn := range queue {
		fn(ctx)
	}
}

type brokenRunner struct{}

func (brokenRunner) Enqueue(func(ctx context.Context)) error {
	return errors.New("queue full")
}

// stubRenderer counts invocations and fails for kinds in failKinds.
type stubRenderer struct {
	mu        sync.Mutex
	calls     int
	failKinds map[domain.ReportKind]bool
	output    []byte
}

func (r *stubRenderer) Render(ctx context.Context, kind domain.ReportKind, model []byte) ([]byte, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	if r.failKinds[kind] {
		return nil, fmt.Errorf("%w: template exploded", domain.ErrRendererFailure)
	}
	if r.output != nil {
		return r.output, nil
	}
	return []byte("%PDF-1.7 " + string(kind)), nil
}

func (r *stubRenderer) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// allKinds accepts every kind except those explicitly rejected.
type allKinds struct{ reject map[domain.ReportKind]bool }

func (k allKinds) Known(kind domain.ReportKind) bool { return !k.reject[kind] }

// recordingStore wraps a Store and remembers the state of every job-status
// write in order.
type recordingStore struct {
	cache.Store
	mu     sync.Mutex
	states map[string][]domain.JobState
}

func newRecordingStore(inner cache.Store) *recordingStore {
	return &recordingStore{Store: inner, states: make(map[string][]domain.JobState)}
}

func (r *recordingStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if strings.HasPrefix(key, jobStatusKeyPrefix) {
		var job domain.ReportJob
		if err := json.Unmarshal(value, &job); err == nil {
			r.mu.Lock()
			r.states[job.ID] = append(r.states[job.ID], job.State)
			r.mu.Unlock()
		}
	}
	return r.Store.Set(ctx, key, value, ttl)
}

func (r *recordingStore) history(jobID string) []domain.JobState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.JobState(nil), r.states[jobID]...)
}

func newTestService(t *testing.T) (*Service, *cache.Memory, *recordingStore, *manualRunner, *stubRenderer) {
	t.Helper()
	mem := cache.NewMemory()
	t.Cleanup(mem.Close)
	store := newRecordingStore(mem)
	runner := &manualRunner{}
	renderer := &stubRenderer{failKinds: map[domain.ReportKind]bool{"broken-template": true}}
	svc := NewService(store, runner, renderer, allKinds{reject: map[domain.ReportKind]bool{"newsletter": true}}, zerolog.Nop(), Options{})
	return svc, mem, store, runner, renderer
}

func TestFullLifecycleOnCacheMiss(t *testing.T) {
	svc, _, store, runner, renderer := newTestService(t)
	ctx := context.Background()

	jobID, err := svc.Request(ctx, domain.ReportKindSalesSummary, map[string]any{"day": "2026-08-29"}, "")
	require.NoError(t, err)
	require.NotEmpty(t, jobID)

	job, err := svc.Job(ctx, jobID)
	require.NoError(t, err)
	require.Equal(t, domain.JobStatePending, job.State, "job must be pending at the instant Request returns")
	require.True(t, strings.HasPrefix(job.ArtifactKey, "pdf:"))
	require.Nil(t, job.CompletedAt)

	runner.drain(ctx)

	job, err = svc.Job(ctx, jobID)
	require.NoError(t, err)
	require.Equal(t, domain.JobStateCompleted, job.State)
	require.NotNil(t, job.CompletedAt)
	require.Empty(t, job.ErrorMessage)

	pdf, err := svc.Artifact(ctx, job.ArtifactKey)
	require.NoError(t, err)
	require.Equal(t, []byte("%PDF-1.7 sales_summary"), pdf)
	require.Equal(t, 1, renderer.callCount())

	require.Equal(t,
		[]domain.JobState{domain.JobStatePending, domain.JobStateProcessing, domain.JobStateCompleted},
		store.history(jobID),
		"status writes must be strictly ordered within one job")
}

func TestIdempotentCacheHit(t *testing.T) {
	svc, _, _, runner, renderer := newTestService(t)
	ctx := context.Background()

	firstID, err := svc.Request(ctx, domain.ReportKindSalesSummary, map[string]any{"day": "2026-08-29"}, "sales-daily-2026-08-29")
	require.NoError(t, err)
	runner.drain(ctx)
	require.Equal(t, 1, renderer.callCount())

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := svc.Request(ctx, domain.ReportKindSalesSummary, map[string]any{"day": "2026-08-29"}, "sales-daily-2026-08-29")
		require.NoError(t, err)
		require.NotEqual(t, firstID, id, "each request gets its own job id")
		job, err := svc.Job(ctx, id)
		require.NoError(t, err)
		require.Equal(t, domain.JobStateCompleted, job.State)
		require.NotNil(t, job.CompletedAt)
		require.Equal(t, "pdf:sales-daily-2026-08-29", job.ArtifactKey)
		ids = append(ids, id)
	}
	runner.drain(ctx)
	require.Equal(t, 1, renderer.callCount(), "cache hits must not invoke the renderer")
	require.Len(t, ids, 3)
}

func TestFailureIsolation(t *testing.T) {
	svc, _, _, runner, _ := newTestService(t)
	ctx := context.Background()

	jobID, err := svc.Request(ctx, "broken-template", map[string]any{"day": "x"}, "")
	require.NoError(t, err, "Request must succeed even when the render is doomed")
	require.NotEmpty(t, jobID)

	runner.drain(ctx)

	job, err := svc.Job(ctx, jobID)
	require.NoError(t, err)
	require.Equal(t, domain.JobStateFailed, job.State)
	require.NotEmpty(t, job.ErrorMessage)
	require.Nil(t, job.CompletedAt)

	_, err = svc.Artifact(ctx, job.ArtifactKey)
	require.ErrorIs(t, err, domain.ErrNotFound, "a failed job leaves no artifact behind")
}

func TestUnknownJob(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	_, err := svc.Job(context.Background(), "nonexistent-id")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestJobRecordTTLExpiry(t *testing.T) {
	mem := cache.NewMemory()
	t.Cleanup(mem.Close)
	runner := &manualRunner{}
	renderer := &stubRenderer{}
	svc := NewService(mem, runner, renderer, allKinds{}, zerolog.Nop(), Options{JobStatusTTL: time.Nanosecond})
	ctx := context.Background()

	jobID, err := svc.Request(ctx, domain.ReportKindSalesSummary, map[string]any{}, "")
	require.NoError(t, err)

	time.Sleep(time.Millisecond)
	_, err = svc.Job(ctx, jobID)
	require.ErrorIs(t, err, domain.ErrNotFound, "an expired job record must read as unknown")
}

func TestKeyDerivationIgnoresModel(t *testing.T) {
	svc, _, _, runner, _ := newTestService(t)
	ctx := context.Background()

	idA, err := svc.Request(ctx, domain.ReportKindOrderInvoice, map[string]any{"order_id": "a"}, "invoice-77")
	require.NoError(t, err)
	idB, err := svc.Request(ctx, domain.ReportKindOrderInvoice, map[string]any{"order_id": "b", "extra": true}, "invoice-77")
	require.NoError(t, err)
	runner.drain(ctx)

	jobA, err := svc.Job(ctx, idA)
	require.NoError(t, err)
	jobB, err := svc.Job(ctx, idB)
	require.NoError(t, err)
	require.Equal(t, jobA.ArtifactKey, jobB.ArtifactKey,
		"artifact identity is controlled by the caller-supplied key, not the model")
}

func TestFreshKeysDoNotCollide(t *testing.T) {
	svc, _, _, runner, renderer := newTestService(t)
	ctx := context.Background()

	idA, err := svc.Request(ctx, domain.ReportKindSalesSummary, map[string]any{}, "")
	require.NoError(t, err)
	idB, err := svc.Request(ctx, domain.ReportKindSalesSummary, map[string]any{}, "")
	require.NoError(t, err)
	runner.drain(ctx)

	jobA, err := svc.Job(ctx, idA)
	require.NoError(t, err)
	jobB, err := svc.Job(ctx, idB)
	require.NoError(t, err)
	require.NotEqual(t, jobA.ArtifactKey, jobB.ArtifactKey)
	require.Equal(t, 2, renderer.callCount())
}

func TestUnknownKindRejectedSynchronously(t *testing.T) {
	svc, _, _, runner, renderer := newTestService(t)

	_, err := svc.Request(context.Background(), "newsletter", map[string]any{}, "")
	require.ErrorIs(t, err, domain.ErrUnknownReportKind)
	runner.drain(context.Background())
	require.Zero(t, renderer.callCount())
}

func TestUnserializableModelRejectedSynchronously(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	_, err := svc.Request(context.Background(), domain.ReportKindSalesSummary, map[string]any{"fn": func() {}}, "")
	require.ErrorIs(t, err, domain.ErrInvalidModel)
}

func TestEnqueueFailureSurfacesAndFailsJob(t *testing.T) {
	mem := cache.NewMemory()
	t.Cleanup(mem.Close)
	renderer := &stubRenderer{}
	svc := NewService(mem, brokenRunner{}, renderer, allKinds{}, zerolog.Nop(), Options{})

	_, err := svc.Request(context.Background(), domain.ReportKindSalesSummary, map[string]any{}, "")
	require.ErrorIs(t, err, domain.ErrQueueUnavailable)
}

func TestEmptyRendererOutputFailsJob(t *testing.T) {
	mem := cache.NewMemory()
	t.Cleanup(mem.Close)
	runner := &manualRunner{}
	renderer := &stubRenderer{output: []byte{}}
	svc := NewService(mem, runner, renderer, allKinds{}, zerolog.Nop(), Options{})
	ctx := context.Background()

	jobID, err := svc.Request(ctx, domain.ReportKindSalesSummary, map[string]any{}, "")
	require.NoError(t, err)
	runner.drain(ctx)

	job, err := svc.Job(ctx, jobID)
	require.NoError(t, err)
	require.Equal(t, domain.JobStateFailed, job.State)
	require.Contains(t, job.ErrorMessage, "empty document")
}

func TestArtifactRejectsKeysOutsideNamespace(t *testing.T) {
	svc, _, _, runner, _ := newTestService(t)
	ctx := context.Background()

	jobID, err := svc.Request(ctx, domain.ReportKindSalesSummary, map[string]any{"day": "2026-08-29"}, "")
	require.NoError(t, err)
	runner.drain(ctx)

	// A job-status key holds a JSON record, never document bytes.
	_, err = svc.Artifact(ctx, "job-status:"+jobID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Artifact(ctx, jobID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestModelSnapshotIsolation(t *testing.T) {
	svc, _, _, runner, _ := newTestService(t)
	ctx := context.Background()

	model := map[string]any{"day": "2026-08-29"}
	jobID, err := svc.Request(ctx, domain.ReportKindSalesSummary, model, "snapshot-test")
	require.NoError(t, err)

	// Mutating the caller's model after submission must not affect the job.
	model["day"] = "corrupted"
	runner.drain(ctx)

	job, err := svc.Job(ctx, jobID)
	require.NoError(t, err)
	require.Equal(t, domain.JobStateCompleted, job.State)
}
