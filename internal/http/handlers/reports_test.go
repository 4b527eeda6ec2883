package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Logged1n/SharpBuy-sub000/internal/cache"
	"github.com/Logged1n/SharpBuy-sub000/internal/domain"
	"github.com/Logged1n/SharpBuy-sub000/internal/http/handlers"
	httpapi "github.com/Logged1n/SharpBuy-sub000/internal/http"
	"github.com/Logged1n/SharpBuy-sub000/internal/render"
	"github.com/Logged1n/SharpBuy-sub000/internal/report"
)

// inlineRunner executes enqueued work synchronously, so a submitted job is
// terminal by the time the response is written.
type inlineRunner struct{}

func (inlineRunner) Enqueue(fn func(ctx context.Context)) error {
	fn(context.Background())
	return nil
}

type stubData struct {
	invoice *domain.OrderInvoice
	summary *domain.SalesSummary
}

func (s *stubData) OrderInvoice(ctx context.Context, orderID string) (*domain.OrderInvoice, error) {
	if s.invoice == nil || s.invoice.OrderID != orderID {
		return nil, domain.ErrNotFound
	}
	return s.invoice, nil
}

func (s *stubData) DailySalesSummary(ctx context.Context, day string) (*domain.SalesSummary, error) {
	if s.summary == nil {
		return nil, domain.ErrNotFound
	}
	return s.summary, nil
}

func newTestServer(t *testing.T, data domain.ReportDataRepository) (http.Handler, *report.Service) {
	t.Helper()
	mem := cache.NewMemory()
	t.Cleanup(mem.Close)

	registry, err := render.NewRegistry()
	require.NoError(t, err)
	svc := report.NewService(mem, inlineRunner{}, render.NewHTMLRenderer(registry), registry, zerolog.Nop(), report.Options{})

	app := handlers.NewApp(svc, data, zerolog.Nop())
	router := httpapi.NewRouter(app, httpapi.RouterOptions{Logger: zerolog.Nop()})
	return router, svc
}

func submitJSON(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSubmitReportLifecycle(t *testing.T) {
	router, _ := newTestServer(t, nil)

	rec := submitJSON(t, router, "/v1/reports", map[string]any{
		"kind":  "sales_summary",
		"model": map[string]any{"day": "2026-08-29", "order_count": 3, "item_count": 7, "revenue_cents": 129900, "top_products": []any{}},
	})
	require.Equal(t, http.StatusAccepted, rec.Code)

	var submitResp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &submitResp))
	jobID := submitResp["job_id"]
	require.NotEmpty(t, jobID)

	statusReq := httptest.NewRequest(http.MethodGet, "/v1/reports/jobs/"+jobID, nil)
	statusRec := httptest.NewRecorder()
	router.ServeHTTP(statusRec, statusReq)
	require.Equal(t, http.StatusOK, statusRec.Code)

	var job domain.ReportJob
	require.NoError(t, json.Unmarshal(statusRec.Body.Bytes(), &job))
	require.Equal(t, domain.JobStateCompleted, job.State)
	require.NotEmpty(t, job.ArtifactKey)

	artifactReq := httptest.NewRequest(http.MethodGet, "/v1/reports/artifacts/"+job.ArtifactKey, nil)
	artifactRec := httptest.NewRecorder()
	router.ServeHTTP(artifactRec, artifactReq)
	require.Equal(t, http.StatusOK, artifactRec.Code)
	require.Equal(t, "application/pdf", artifactRec.Header().Get("Content-Type"))
	require.Contains(t, artifactRec.Body.String(), "Daily Sales Summary")
}

func TestSubmitReportUnknownKind(t *testing.T) {
	router, _ := newTestServer(t, nil)

	rec := submitJSON(t, router, "/v1/reports", map[string]any{"kind": "newsletter"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "unknown_kind")
}

func TestSubmitReportMissingKind(t *testing.T) {
	router, _ := newTestServer(t, nil)

	rec := submitJSON(t, router, "/v1/reports", map[string]any{"model": map[string]any{}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "validation_failed")
}

func TestSubmitReportMalformedBody(t *testing.T) {
	router, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/reports", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestJobStatusUnknownID(t *testing.T) {
	router, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/reports/jobs/nonexistent-id", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDownloadArtifactUnknownKey(t *testing.T) {
	router, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/reports/artifacts/pdf:missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDownloadArtifactRejectsJobStatusKey(t *testing.T) {
	router, _ := newTestServer(t, nil)

	rec := submitJSON(t, router, "/v1/reports", map[string]any{
		"kind":  "sales_summary",
		"model": map[string]any{"day": "2026-08-29"},
	})
	require.Equal(t, http.StatusAccepted, rec.Code)
	var submitResp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &submitResp))

	req := httptest.NewRequest(http.MethodGet, "/v1/reports/artifacts/job-status:"+submitResp["job_id"], nil)
	dlRec := httptest.NewRecorder()
	router.ServeHTTP(dlRec, req)
	require.Equal(t, http.StatusNotFound, dlRec.Code)
}

func TestBundleArtifacts(t *testing.T) {
	router, svc := newTestServer(t, nil)
	ctx := context.Background()

	_, err := svc.Request(ctx, domain.ReportKindSalesSummary, map[string]any{"day": "2026-08-28"}, "sales-daily-2026-08-28")
	require.NoError(t, err)
	_, err = svc.Request(ctx, domain.ReportKindSalesSummary, map[string]any{"day": "2026-08-29"}, "sales-daily-2026-08-29")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet,
		"/v1/reports/artifacts/bundle?key=pdf:sales-daily-2026-08-28&key=pdf:sales-daily-2026-08-29", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
}

func TestBundleArtifactsMissingKey(t *testing.T) {
	router, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/reports/artifacts/bundle?key=pdf:gone", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrderInvoiceSubmit(t *testing.T) {
	data := &stubData{invoice: &domain.OrderInvoice{
		OrderID:  "ord-42",
		Customer: "Ada Wong",
		Email:    "ada@example.com",
		Currency: "EUR",
		Lines:    []domain.InvoiceLine{{Product: "Hub", Quantity: 1, PriceCents: 999}},
	}}
	router, _ := newTestServer(t, data)

	req := httptest.NewRequest(http.MethodPost, "/v1/orders/ord-42/invoice", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Contains(t, rec.Body.String(), "job_id")
}

func TestOrderInvoiceUnknownOrder(t *testing.T) {
	router, _ := newTestServer(t, &stubData{})

	req := httptest.NewRequest(http.MethodPost, "/v1/orders/ord-missing/invoice", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrderInvoiceWithoutDataSource(t *testing.T) {
	router, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/orders/ord-42/invoice", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSalesSummaryRejectsBadDay(t *testing.T) {
	router, _ := newTestServer(t, &stubData{summary: &domain.SalesSummary{Day: "2026-08-29"}})

	rec := submitJSON(t, router, "/v1/reports/sales-summary", map[string]any{"day": "29/08/2026"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSalesSummarySubmit(t *testing.T) {
	router, _ := newTestServer(t, &stubData{summary: &domain.SalesSummary{Day: "2026-08-29"}})

	rec := submitJSON(t, router, "/v1/reports/sales-summary", map[string]any{"day": "2026-08-29"})
	require.Equal(t, http.StatusAccepted, rec.Code)
}

func TestHealth(t *testing.T) {
	router, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
