package consumer

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/yndnr/scenelink/internal/engine"
	"github.com/yndnr/scenelink/internal/telemetry/logger"
	"github.com/yndnr/scenelink/internal/telemetry/metric"
	"github.com/yndnr/scenelink/internal/transport"
	"github.com/yndnr/scenelink/internal/wire"
)

// DefaultMaxFramesPerTick bounds how many inbound frames one tick applies.
const DefaultMaxFramesPerTick = 64

// Recorder receives every inbound frame before it is applied.
type Recorder interface {
	Record(in transport.Inbound) error
}

// Inbox is the consumer's view of the inbound queue.
type Inbox interface {
	Drain(max int) []transport.Inbound
}

// Config configures a Mirror.
type Config struct {
	MaxFramesPerTick int
	Recorder         Recorder
	Logger           logger.Logger
	Metrics          *metric.Registry
}

// Status is a point-in-time view of the consumer for the admin API.
type Status struct {
	Summary
	Peer          string `json:"peer,omitempty"`
	Ticks         uint64 `json:"ticks"`
	DeltasSent    uint64 `json:"deltas_sent"`
	FramesDropped uint64 `json:"frames_dropped"`
}

// Mirror drives the reconciler and the feedback channel once per tick.
type Mirror struct {
	inbox      Inbox
	reconciler *Reconciler
	feedback   *Feedback
	authority  *Authority
	recorder   Recorder
	maxFrames  int
	log        logger.Logger
	metrics    *metric.Registry

	ticks   uint64
	dropped uint64
	status  atomic.Pointer[Status]
}

// NewMirror creates a Mirror building objects through host. edits may be nil.
func NewMirror(host engine.Host, edits engine.EditSource, inbox Inbox, outbox Outbox, cfg Config) *Mirror {
	if cfg.MaxFramesPerTick <= 0 {
		cfg.MaxFramesPerTick = DefaultMaxFramesPerTick
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Component("mirror")
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metric.NewRegistry()
	}
	authority := NewAuthority()
	rec := NewReconciler(host, authority, cfg.Logger, cfg.Metrics)
	m := &Mirror{
		inbox:      inbox,
		reconciler: rec,
		feedback:   NewFeedback(edits, outbox, authority, rec, cfg.Logger, cfg.Metrics),
		authority:  authority,
		recorder:   cfg.Recorder,
		maxFrames:  cfg.MaxFramesPerTick,
		log:        cfg.Logger,
		metrics:    cfg.Metrics,
	}
	m.publish()
	return m
}

// Reconciler returns the underlying reconciler.
func (m *Mirror) Reconciler() *Reconciler { return m.reconciler }

// Status returns the latest published status. Safe for concurrent use.
func (m *Mirror) Status() Status {
	return *m.status.Load()
}

// Tick drains inbound frames, sends local edits and applies the frames in
// arrival order. Edits are claimed before snapshots are applied so that a
// snapshot in the same tick does not undo them.
func (m *Mirror) Tick(ctx context.Context) {
	start := time.Now()
	defer func() {
		m.metrics.TickDuration.WithLabelValues("consumer").Observe(time.Since(start).Seconds())
		m.publish()
	}()
	m.ticks++
	m.authority.Reset()

	frames := m.inbox.Drain(m.maxFrames)
	for _, in := range frames {
		m.feedback.SetPeer(in.Peer)
	}
	m.feedback.Poll()

	for _, in := range frames {
		if ctx.Err() != nil {
			return
		}
		m.apply(in)
	}
}

func (m *Mirror) apply(in transport.Inbound) {
	log := m.log.With("peer", string(in.Peer), "kind", in.Kind.String())
	if m.recorder != nil {
		if err := m.recorder.Record(in); err != nil {
			log.Warn("capture failed", "error", err)
		}
	}

	switch in.Kind {
	case wire.FrameSnapshot:
		msg, err := wire.DecodeMessage(in.Payload)
		if err != nil {
			m.drop(log, "protocol", in, err)
			return
		}
		m.reconciler.Apply(msg)
	case wire.FrameDelta:
		td, err := wire.DecodeTransformDelta(in.Payload)
		if err != nil {
			m.drop(log, "protocol", in, err)
			return
		}
		m.reconciler.ApplyDelta(td)
	default:
		m.drop(log, "unexpected_kind", in, nil)
	}
}

func (m *Mirror) drop(log logger.Logger, reason string, in transport.Inbound, err error) {
	m.dropped++
	m.metrics.FramesDropped.WithLabelValues(reason).Inc()
	log.Warn("dropping inbound frame", "reason", reason, "frame", in.Frame, "error", err)
}

func (m *Mirror) publish() {
	m.status.Store(&Status{
		Summary:       m.reconciler.Summary(),
		Peer:          string(m.feedback.Peer()),
		Ticks:         m.ticks,
		DeltasSent:    m.feedback.sent,
		FramesDropped: m.dropped,
	})
}
