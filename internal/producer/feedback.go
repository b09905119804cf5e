package producer

import (
	"github.com/yndnr/scenelink/internal/engine"
	"github.com/yndnr/scenelink/internal/telemetry/logger"
	"github.com/yndnr/scenelink/internal/telemetry/metric"
	"github.com/yndnr/scenelink/internal/transport"
	"github.com/yndnr/scenelink/internal/wire"
)

// Feedback applies transform deltas from the consumer to the source scene.
type Feedback struct {
	scene   engine.SourceScene
	log     logger.Logger
	metrics *metric.Registry
}

// NewFeedback creates a Feedback for src.
func NewFeedback(src engine.SourceScene, log logger.Logger, metrics *metric.Registry) *Feedback {
	if log == nil {
		log = logger.Component("feedback")
	}
	if metrics == nil {
		metrics = metric.NewRegistry()
	}
	return &Feedback{scene: src, log: log, metrics: metrics}
}

// Apply applies each delta frame in order and returns how many moved a node.
// Unknown node ids and non-delta frames are dropped.
func (f *Feedback) Apply(frames []transport.Inbound) int {
	applied := 0
	for _, in := range frames {
		if in.Kind != wire.FrameDelta {
			f.metrics.DeltasApplied.WithLabelValues("unexpected_kind").Inc()
			continue
		}
		td, err := wire.DecodeTransformDelta(in.Payload)
		if err != nil {
			f.metrics.DeltasApplied.WithLabelValues("malformed").Inc()
			f.log.Warn("dropping malformed transform delta", "kind", in.Kind.String(), "frame", in.Frame, "error", err)
			continue
		}
		if !f.scene.ApplyTransform(td.NodeID, td.Transform) {
			f.metrics.DeltasApplied.WithLabelValues("unknown_node").Inc()
			continue
		}
		f.metrics.DeltasApplied.WithLabelValues("applied").Inc()
		applied++
	}
	return applied
}
