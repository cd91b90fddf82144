package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the pipeline's collectors.
type Metrics struct {
	JobsStarted         prometheus.Counter
	JobsFinished        *prometheus.CounterVec
	TranscriptsRendered *prometheus.CounterVec
	TurnsRendered       prometheus.Histogram
	HandlerErrors       *prometheus.CounterVec
	ObjectsSkipped      *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. A nil registerer
// leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		JobsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tb",
			Name:      "transcription_jobs_started_total",
			Help:      "Transcription jobs submitted.",
		}),
		JobsFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tb",
			Name:      "transcription_jobs_finished_total",
			Help:      "Transcription jobs observed in a final state.",
		}, []string{"state"}),
		TranscriptsRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tb",
			Name:      "transcripts_rendered_total",
			Help:      "Readable transcripts written.",
		}, []string{"format"}),
		TurnsRendered: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tb",
			Name:      "transcript_turns",
			Help:      "Speaker turns per rendered transcript.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		HandlerErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tb",
			Name:      "handler_errors_total",
			Help:      "Failed event handler invocations.",
		}, []string{"handler"}),
		ObjectsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tb",
			Name:      "objects_skipped_total",
			Help:      "Objects ignored by a handler.",
		}, []string{"handler", "reason"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.JobsStarted,
			m.JobsFinished,
			m.TranscriptsRendered,
			m.TurnsRendered,
			m.HandlerErrors,
			m.ObjectsSkipped,
		)
	}
	return m
}

// NewUnregistered returns collectors that are not exported anywhere.
func NewUnregistered() *Metrics {
	return New(nil)
}
