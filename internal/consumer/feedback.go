package consumer

import (
	"github.com/yndnr/scenelink/internal/engine"
	"github.com/yndnr/scenelink/internal/telemetry/logger"
	"github.com/yndnr/scenelink/internal/telemetry/metric"
	"github.com/yndnr/scenelink/internal/transport"
	"github.com/yndnr/scenelink/internal/wire"
)

// Outbox is the consumer's view of the outbound queue.
type Outbox interface {
	Offer(transport.Outbound) bool
}

// Feedback sends locally edited transforms back to the producer.
type Feedback struct {
	edits     engine.EditSource
	outbox    Outbox
	authority *Authority
	mirror    *Reconciler
	log       logger.Logger
	metrics   *metric.Registry

	peer transport.PeerID
	sent uint64
}

// NewFeedback creates a Feedback that claims edited nodes in authority.
func NewFeedback(edits engine.EditSource, outbox Outbox, authority *Authority, mirror *Reconciler, log logger.Logger, metrics *metric.Registry) *Feedback {
	if log == nil {
		log = logger.Component("feedback")
	}
	if metrics == nil {
		metrics = metric.NewRegistry()
	}
	return &Feedback{
		edits:     edits,
		outbox:    outbox,
		authority: authority,
		mirror:    mirror,
		log:       log,
		metrics:   metrics,
	}
}

// SetPeer records the identity deltas are addressed to.
func (f *Feedback) SetPeer(p transport.PeerID) {
	if p != "" && p != f.peer {
		f.log.Info("feedback peer changed", "peer", string(p))
		f.peer = p
	}
}

// Peer returns the last seen peer, or "" before any.
func (f *Feedback) Peer() transport.PeerID { return f.peer }

// Poll claims every edited mirrored node, moves it locally and enqueues one
// delta per edit.
// Edits made before any peer is known are claimed but not sent. It returns
// the number of deltas enqueued.
func (f *Feedback) Poll() int {
	if f.edits == nil {
		return 0
	}
	n := 0
	for _, td := range f.edits.PollEdits() {
		if !f.mirror.Has(td.NodeID) {
			continue
		}
		f.authority.Claim(td.NodeID)
		f.mirror.moveLocal(td)
		if f.peer == "" {
			continue
		}
		frame := wire.EncodeDeltaFrame(td)
		if !f.outbox.Offer(transport.Outbound{Peer: f.peer, Frame: frame}) {
			f.metrics.FramesDropped.WithLabelValues("queue_full").Inc()
			f.log.Warn("outbound queue full; delta dropped", "node", td.NodeID, "peer", string(f.peer))
			continue
		}
		n++
	}
	f.sent += uint64(n)
	return n
}
