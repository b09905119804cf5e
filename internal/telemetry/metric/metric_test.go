package metric

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry returned nil")
	}

	r.TicksSkipped.Inc()
	r.AssetsSent.WithLabelValues("mesh").Add(2)
	r.TickDuration.WithLabelValues("producer").Observe(0.001)

	families, err := r.Gatherer().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	found := make(map[string]bool)
	for _, f := range families {
		found[f.GetName()] = true
	}
	for _, name := range []string{
		"scenelink_producer_ticks_skipped_total",
		"scenelink_producer_assets_sent_total",
		"scenelink_tick_duration_seconds",
	} {
		if !found[name] {
			t.Errorf("metric %s not gathered", name)
		}
	}
}

func TestRegistries_Independent(t *testing.T) {
	// Two registries must not collide on registration.
	a := NewRegistry()
	b := NewRegistry()
	a.MessagesApplied.Inc()
	b.MessagesApplied.Inc()
}

func TestCollector(t *testing.T) {
	r := NewRegistry()
	c := NewCollector()
	depth := 3.0
	c.AddGauge("transport", "queue_length", "Outbound queue length.", func() float64 { return depth })
	r.MustRegister(c)

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if !strings.Contains(string(body), "scenelink_transport_queue_length 3") {
		t.Errorf("sampled gauge missing from exposition:\n%s", body)
	}
}
