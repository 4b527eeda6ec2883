package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusSink implements Sink with the Prometheus client library.
// Registration failures are tolerated: a collector that cannot be
// registered still works locally, it just is not scraped.
type PrometheusSink struct {
	requestsTotal  *prometheus.CounterVec
	cacheHitsTotal *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	jobsInFlight   prometheus.Gauge
}

// NewPrometheusSink creates and registers the pipeline collectors.
func NewPrometheusSink(reg prometheus.Registerer) *PrometheusSink {
	s := &PrometheusSink{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sharpbuy_reports_requested_total",
			Help: "Total report generation requests, by report kind.",
		}, []string{"kind"}),
		cacheHitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sharpbuy_reports_artifact_cache_hits_total",
			Help: "Requests satisfied from the artifact cache without a render.",
		}, []string{"kind"}),
		renderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sharpbuy_reports_render_duration_seconds",
			Help:    "Wall-clock duration of background renders.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"kind", "outcome"}),
		jobsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sharpbuy_reports_jobs_in_flight",
			Help: "Background render jobs currently executing.",
		}),
	}
	for _, c := range []prometheus.Collector{
		s.requestsTotal, s.cacheHitsTotal, s.renderDuration, s.jobsInFlight,
	} {
		_ = reg.Register(c)
	}
	return s
}

func (s *PrometheusSink) ReportRequested(kind string) {
	s.requestsTotal.WithLabelValues(kind).Inc()
}

func (s *PrometheusSink) ArtifactCacheHit(kind string) {
	s.cacheHitsTotal.WithLabelValues(kind).Inc()
}

func (s *PrometheusSink) RenderCompleted(kind string, outcome string, d time.Duration) {
	s.renderDuration.WithLabelValues(kind, outcome).Observe(d.Seconds())
}

func (s *PrometheusSink) JobsInFlightIncr() { s.jobsInFlight.Inc() }
func (s *PrometheusSink) JobsInFlightDecr() { s.jobsInFlight.Dec() }

var _ Sink = (*PrometheusSink)(nil)
