package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.Upload(OutcomeSuccess)
	r.Upload(OutcomeSuccess)
	r.Upload(OutcomeError)
	r.Analysis(OutcomeNoFace, 20*time.Millisecond)
	r.Emotion("Digusted")

	if got := testutil.ToFloat64(r.uploads.WithLabelValues(OutcomeSuccess)); got != 2 {
		t.Fatalf("expected 2 successful uploads, got %v", got)
	}
	if got := testutil.ToFloat64(r.analyses.WithLabelValues(OutcomeNoFace)); got != 1 {
		t.Fatalf("expected 1 no-face analysis, got %v", got)
	}
	if got := testutil.ToFloat64(r.emotions.WithLabelValues("Digusted")); got != 1 {
		t.Fatalf("expected 1 label, got %v", got)
	}
	if n := testutil.CollectAndCount(r.analysisDuration); n != 1 {
		t.Fatalf("expected histogram to be collected, got %d", n)
	}
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	r.Upload(OutcomeSuccess)
	r.Analysis(OutcomeError, time.Second)
	r.Emotion("Happy")
}
