package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRecorder_NilRegisterer(t *testing.T) {
	if _, err := NewRecorder(nil); err == nil {
		t.Fatal("expected error for nil registerer")
	}
}

func TestRecorder_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewRecorder(reg)
	if err != nil {
		t.Fatalf("NewRecorder failed: %v", err)
	}

	r.TokenFetched(OutcomeSuccess)
	r.TokenFetched(OutcomeSuccess)
	r.TokenFetched(OutcomeAuthentication)
	r.Transmission("degreed", "content", "DELETE", 200)
	r.Transmission("degreed", "content", "DELETE", 0)

	if got := testutil.ToFloat64(r.tokenFetches.WithLabelValues(OutcomeSuccess)); got != 2 {
		t.Errorf("expected 2 successful fetches, got %v", got)
	}
	if got := testutil.ToFloat64(r.tokenFetches.WithLabelValues(OutcomeAuthentication)); got != 1 {
		t.Errorf("expected 1 authentication failure, got %v", got)
	}
	if got := testutil.ToFloat64(r.transmissions.WithLabelValues("degreed", "content", "DELETE", "200")); got != 1 {
		t.Errorf("expected 1 transmission with code 200, got %v", got)
	}
	if got := testutil.ToFloat64(r.transmissions.WithLabelValues("degreed", "content", "DELETE", "error")); got != 1 {
		t.Errorf("expected 1 failed transmission, got %v", got)
	}
}

func TestNewRecorder_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewRecorder(reg)
	if err != nil {
		t.Fatalf("NewRecorder failed: %v", err)
	}
	second, err := NewRecorder(reg)
	if err != nil {
		t.Fatalf("second NewRecorder failed: %v", err)
	}

	first.TokenFetched(OutcomeSuccess)
	second.TokenFetched(OutcomeSuccess)

	if got := testutil.ToFloat64(first.tokenFetches.WithLabelValues(OutcomeSuccess)); got != 2 {
		t.Errorf("expected shared counter value 2, got %v", got)
	}
}

func TestRecorder_NilSafe(t *testing.T) {
	var r *Recorder
	r.TokenFetched(OutcomeTransport)
	r.Transmission("degreed", "completion", "POST", 500)
}
