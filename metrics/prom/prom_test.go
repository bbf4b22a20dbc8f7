package prom

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/hey-kong/lever/cache"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return m.GetGauge().GetValue()
}

func TestAdapter_HitMissEvictSize(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := New(reg, "lever_test", "lever", nil)

	a.Hit()
	a.Hit()
	a.Miss()
	a.Evict(cache.EvictPolicy)
	a.Evict(cache.EvictUserRemove)
	a.Size(7, 42)

	if got := counterValue(t, a.hits); got != 2 {
		t.Fatalf("hits = %v, want 2", got)
	}
	if got := counterValue(t, a.misses); got != 1 {
		t.Fatalf("misses = %v, want 1", got)
	}
	if got := counterValue(t, a.evicts.WithLabelValues("policy")); got != 1 {
		t.Fatalf("policy evictions = %v, want 1", got)
	}
	if got := counterValue(t, a.evicts.WithLabelValues("user_remove")); got != 1 {
		t.Fatalf("user_remove evictions = %v, want 1", got)
	}
	if got := gaugeValue(t, a.sizeObj); got != 7 {
		t.Fatalf("sizeObj = %v, want 7", got)
	}
	if got := gaugeValue(t, a.sizeByt); got != 42 {
		t.Fatalf("sizeByt = %v, want 42", got)
	}
}

func TestAdapter_DefaultsToDefaultRegisterer(t *testing.T) {
	// A nil registerer must not panic; it falls back to the process-wide
	// default registry. Use a unique subsystem name to avoid colliding with
	// metrics another test in this package already registered there.
	a := New(nil, "lever_test", "lever_default", nil)
	if a == nil {
		t.Fatalf("New returned nil")
	}
}
