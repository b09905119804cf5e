package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "scenelink"

// Registry holds all application metrics.
type Registry struct {
	reg *prometheus.Registry

	// Tick metrics
	TickDuration HistogramVec // labels: role

	// Producer metrics
	TicksSkipped Counter
	MessageBytes Histogram
	SourceNodes  Gauge
	AssetsSent   CounterVec // labels: kind
	Readbacks    CounterVec // labels: result

	// Consumer metrics
	MessagesApplied Counter
	DeltasApplied   CounterVec // labels: result
	MirroredNodes   Gauge
	NodesDestroyed  Counter
	UnresolvedRefs  Gauge

	// Transport metrics
	Frames        CounterVec // labels: direction, kind
	FramesDropped CounterVec // labels: reason
	Handshakes    CounterVec // labels: result
}

// Counter is a cumulative metric that only increases.
type Counter interface {
	Inc()
	Add(float64)
}

// CounterVec is a Counter with labels.
type CounterVec interface {
	WithLabelValues(lvs ...string) Counter
}

// Gauge is a metric that can go up and down.
type Gauge interface {
	Set(float64)
	Inc()
	Dec()
	Add(float64)
	Sub(float64)
}

// Histogram samples observations and counts them in buckets.
type Histogram interface {
	Observe(float64)
}

// HistogramVec is a Histogram with labels.
type HistogramVec interface {
	WithLabelValues(lvs ...string) Histogram
}

type counterVec struct{ v *prometheus.CounterVec }

func (c counterVec) WithLabelValues(lvs ...string) Counter { return c.v.WithLabelValues(lvs...) }

type histogramVec struct{ v *prometheus.HistogramVec }

func (h histogramVec) WithLabelValues(lvs ...string) Histogram { return h.v.WithLabelValues(lvs...) }

// NewRegistry creates a registry with all SceneLink metrics plus the Go
// runtime and process collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{reg: reg}

	tick := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "tick_duration_seconds",
		Help:      "Time spent in one fixed tick.",
		Buckets:   []float64{.0005, .001, .0025, .005, .01, .02, .05, .1},
	}, []string{"role"})
	r.TickDuration = histogramVec{tick}

	skipped := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "producer",
		Name:      "ticks_skipped_total",
		Help:      "Producer ticks skipped because the outbound queue was over threshold.",
	})
	r.TicksSkipped = skipped

	msgBytes := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "producer",
		Name:      "message_bytes",
		Help:      "Encoded snapshot frame size.",
		Buckets:   prometheus.ExponentialBuckets(256, 4, 10),
	})
	r.MessageBytes = msgBytes

	srcNodes := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "producer",
		Name:      "source_nodes",
		Help:      "Nodes captured by the last producer tick.",
	})
	r.SourceNodes = srcNodes

	assets := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "producer",
		Name:      "assets_sent_total",
		Help:      "Mesh and image assets emitted.",
	}, []string{"kind"})
	r.AssetsSent = counterVec{assets}

	readbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "producer",
		Name:      "readbacks_total",
		Help:      "Asynchronous image readbacks by result.",
	}, []string{"result"})
	r.Readbacks = counterVec{readbacks}

	applied := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "consumer",
		Name:      "messages_applied_total",
		Help:      "Snapshot messages applied to the mirror.",
	})
	r.MessagesApplied = applied

	deltas := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deltas_applied_total",
		Help:      "Inbound transform deltas by result.",
	}, []string{"result"})
	r.DeltasApplied = counterVec{deltas}

	mirrored := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "consumer",
		Name:      "mirrored_nodes",
		Help:      "Nodes currently held by the mirror.",
	})
	r.MirroredNodes = mirrored

	destroyed := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "consumer",
		Name:      "nodes_destroyed_total",
		Help:      "Mirrored nodes destroyed because they left the snapshot.",
	})
	r.NodesDestroyed = destroyed

	unresolved := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "consumer",
		Name:      "unresolved_references",
		Help:      "Mesh, image, parent and root-bone references pending resolution.",
	})
	r.UnresolvedRefs = unresolved

	frames := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "transport",
		Name:      "frames_total",
		Help:      "Frames moved over the transport.",
	}, []string{"direction", "kind"})
	r.Frames = counterVec{frames}

	dropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "transport",
		Name:      "frames_dropped_total",
		Help:      "Frames dropped by reason.",
	}, []string{"reason"})
	r.FramesDropped = counterVec{dropped}

	handshakes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "transport",
		Name:      "handshakes_total",
		Help:      "Handshakes by result.",
	}, []string{"result"})
	r.Handshakes = counterVec{handshakes}

	reg.MustRegister(tick, skipped, msgBytes, srcNodes, assets, readbacks,
		applied, deltas, mirrored, destroyed, unresolved, frames, dropped, handshakes)
	return r
}

// MustRegister adds extra collectors, such as a Collector.
func (r *Registry) MustRegister(cs ...prometheus.Collector) {
	r.reg.MustRegister(cs...)
}

// Gatherer exposes the underlying registry for tests and handlers.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}
