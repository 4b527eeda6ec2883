// Package metrics records report pipeline counters and timings.
package metrics

import "time"

// Sink receives pipeline events. Implementations must not block or return
// errors; a broken metrics backend never affects report generation.
type Sink interface {
	ReportRequested(kind string)
	ArtifactCacheHit(kind string)
	RenderCompleted(kind string, outcome string, duration time.Duration)
	JobsInFlightIncr()
	JobsInFlightDecr()
}

// Outcome labels for RenderCompleted.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
)
