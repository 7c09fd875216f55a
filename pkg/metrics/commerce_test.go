package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCommerceMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCommerceMetrics(reg)

	m.ObserveDuration("cart_create", 150*time.Millisecond)
	m.IncSuccess("cart_create")
	m.IncFailure("upload")
	m.ObservePollAttempts("ready", 3)

	if got := testutil.ToFloat64(m.success.WithLabelValues("cart_create")); got != 1 {
		t.Fatalf("expected 1 success, got %v", got)
	}
	if got := testutil.ToFloat64(m.failure.WithLabelValues("upload")); got != 1 {
		t.Fatalf("expected 1 failure, got %v", got)
	}
}

func TestCommerceMetricsNilRegistererIsNoop(t *testing.T) {
	m := NewCommerceMetrics(nil)

	// Must not panic with no underlying collectors.
	m.ObserveDuration("cart_create", time.Second)
	m.IncSuccess("")
	m.IncFailure("")
	m.ObservePollAttempts("", 1)
}

func TestNormalizeLabel(t *testing.T) {
	if normalizeLabel("") != "unknown" {
		t.Fatal("empty label should normalize to unknown")
	}
	if normalizeLabel("upload") != "upload" {
		t.Fatal("label should pass through")
	}
}
