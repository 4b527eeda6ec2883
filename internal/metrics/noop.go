package metrics

import "time"

// NoopSink discards all events. Used when metrics are disabled to avoid
// nil checks at call sites.
type NoopSink struct{}

// NewNoopSink returns a no-op metrics sink.
func NewNoopSink() *NoopSink {
	return &NoopSink{}
}

func (n *NoopSink) ReportRequested(kind string)                                       {}
func (n *NoopSink) ArtifactCacheHit(kind string)                                      {}
func (n *NoopSink) RenderCompleted(kind string, outcome string, d time.Duration)      {}
func (n *NoopSink) JobsInFlightIncr()                                                 {}
func (n *NoopSink) JobsInFlightDecr()                                                 {}

var _ Sink = (*NoopSink)(nil)
