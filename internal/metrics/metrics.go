// Package metrics exposes Prometheus counters for uploads and analyses.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "insultr"

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeNoFace  = "no_face"
	OutcomeError   = "error"
)

// Recorder holds the service metrics.
type Recorder struct {
	uploads          *prometheus.CounterVec
	analyses         *prometheus.CounterVec
	emotions         *prometheus.CounterVec
	analysisDuration prometheus.Histogram
}

// NewRecorder registers the metrics on reg. A nil reg uses the default
// registerer.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	auto := promauto.With(reg)

	return &Recorder{
		uploads: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Image uploads by outcome",
		}, []string{"outcome"}),
		analyses: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Face analyses by outcome",
		}, []string{"outcome"}),
		emotions: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emotions_total",
			Help:      "Classified emotion labels",
		}, []string{"label"}),
		analysisDuration: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Time spent calling the face analysis API",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// Upload counts one upload attempt.
func (r *Recorder) Upload(outcome string) {
	if r == nil {
		return
	}
	r.uploads.WithLabelValues(outcome).Inc()
}

// Analysis counts one analysis attempt and how long the API call took.
func (r *Recorder) Analysis(outcome string, took time.Duration) {
	if r == nil {
		return
	}
	r.analyses.WithLabelValues(outcome).Inc()
	r.analysisDuration.Observe(took.Seconds())
}

// Emotion counts one classified label.
func (r *Recorder) Emotion(label string) {
	if r == nil {
		return
	}
	r.emotions.WithLabelValues(label).Inc()
}
