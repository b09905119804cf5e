package app

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yndnr/scenelink/internal/engine/memory"
	"github.com/yndnr/scenelink/internal/producer"
	"github.com/yndnr/scenelink/internal/server/config"
	"github.com/yndnr/scenelink/internal/telemetry/logger"
	"github.com/yndnr/scenelink/internal/telemetry/metric"
	"github.com/yndnr/scenelink/internal/transport"
)

// ProducerStatus is the producer role as reported by the admin API.
type ProducerStatus struct {
	producer.Status
	Endpoint  string `json:"endpoint"`
	Connected bool   `json:"connected"`
	Sessions  uint64 `json:"sessions"`
	SceneFile string `json:"scene_file,omitempty"`
}

// ProducerRole connects to a consumer and publishes the local scene.
type ProducerRole struct {
	cfg      *config.ScenelinkConfig
	scene    *memory.Scene
	outbound *transport.Queue[transport.Outbound]
	inbound  *transport.Queue[transport.Inbound]
	sampler  *producer.Sampler
	feedback *producer.Feedback
	control  chan func()
	log      logger.Logger
	metrics  *metric.Registry

	mu       sync.RWMutex
	endpoint string

	connected atomic.Bool
	sessions  atomic.Uint64
}

// NewProducer builds the producer role, loading cfg.Scene.File when set.
func NewProducer(cfg *config.ScenelinkConfig, log logger.Logger, metrics *metric.Registry) (*ProducerRole, error) {
	var spec *memory.SceneSpec
	if cfg.Scene.File != "" {
		s, err := memory.LoadSpecFile(cfg.Scene.File)
		if err != nil {
			return nil, err
		}
		spec = s
	}
	src, err := memory.NewScene(spec)
	if err != nil {
		return nil, fmt.Errorf("build scene: %w", err)
	}

	p := &ProducerRole{
		cfg:      cfg,
		scene:    src,
		endpoint: cfg.Endpoint,
		outbound: transport.NewQueue[transport.Outbound](cfg.Queue.Capacity),
		inbound:  transport.NewQueue[transport.Inbound](cfg.Queue.InboundCapacity),
		control:  make(chan func(), 8),
		log:      log,
		metrics:  metrics,
	}
	p.sampler = producer.NewSampler(src, memory.NewReadback(src, cfg.Scene.ReadbackDelay), p.outbound, producer.Config{
		SkipThreshold: cfg.Queue.SkipThreshold,
		Logger:        log.With("component", "sampler"),
		Metrics:       metrics,
	})
	p.feedback = producer.NewFeedback(src, log.With("component", "feedback"), metrics)
	return p, nil
}

// Scene returns the source scene.
func (p *ProducerRole) Scene() *memory.Scene { return p.scene }

// Do runs fn on the tick goroutine. It reports false if the control
// channel is full.
func (p *ProducerRole) Do(fn func()) bool { return post(p.control, fn) }

// SetEndpoint changes the endpoint used by the next dial.
func (p *ProducerRole) SetEndpoint(endpoint string) {
	p.mu.Lock()
	p.endpoint = endpoint
	p.mu.Unlock()
}

// Endpoint returns the endpoint the producer dials.
func (p *ProducerRole) Endpoint() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.endpoint
}

// ReloadScene re-reads the scene file and swaps it in. A file that fails
// to parse leaves the current scene in place.
func (p *ProducerRole) ReloadScene() error {
	if p.cfg.Scene.File == "" {
		return nil
	}
	spec, err := memory.LoadSpecFile(p.cfg.Scene.File)
	if err != nil {
		return err
	}
	if err := p.scene.Replace(spec); err != nil {
		return err
	}
	p.log.Info("scene reloaded", "file", p.cfg.Scene.File, "nodes", p.scene.Len())
	return nil
}

// Status returns the latest producer status. Safe for concurrent use.
func (p *ProducerRole) Status() ProducerStatus {
	return ProducerStatus{
		Status:    p.sampler.Status(),
		Endpoint:  p.Endpoint(),
		Connected: p.connected.Load(),
		Sessions:  p.sessions.Load(),
		SceneFile: p.cfg.Scene.File,
	}
}

// Run drives the sampler and keeps a session to the consumer until ctx is
// cancelled. A failed session is redialed after transport.reconnect_delay;
// with a zero delay the first failure ends Run.
func (p *ProducerRole) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return runTicker(gctx, p.cfg.Tick.Interval(), p.control, p.tick) })
	g.Go(func() error { return p.sessionLoop(gctx) })
	return g.Wait()
}

func (p *ProducerRole) tick(ctx context.Context) {
	if frames := p.inbound.Drain(p.inbound.Cap()); len(frames) > 0 {
		p.feedback.Apply(frames)
	}
	p.sampler.Tick(ctx)
}

func (p *ProducerRole) sessionLoop(ctx context.Context) error {
	delay := p.cfg.Transport.ReconnectDelay
	for {
		dcfg := transport.DefaultDealerConfig(p.Endpoint())
		dcfg.HandshakeTimeout = p.cfg.Transport.HandshakeTimeout
		dcfg.WriteTimeout = p.cfg.Transport.WriteTimeout
		dcfg.MaxFrameBytes = p.cfg.Transport.MaxFrameBytes
		dcfg.Logger = p.log.With("component", "dealer")
		dcfg.Metrics = p.metrics
		dcfg.OnConnect = p.onConnect

		dealer, err := transport.NewDealer(dcfg, p.outbound, p.inbound)
		if err != nil {
			return err
		}
		err = dealer.Run(ctx)
		p.connected.Store(false)
		if ctx.Err() != nil {
			return nil
		}
		if delay <= 0 {
			return err
		}
		p.log.Warn("session lost, reconnecting", "error", err, "delay", delay)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
	}
}

// onConnect starts a fresh dedup session: the consumer on the other end
// may not have seen any asset yet.
func (p *ProducerRole) onConnect() {
	p.connected.Store(true)
	p.sessions.Add(1)
	if !post(p.control, p.sampler.Reset) {
		p.log.Warn("control channel full, dedup cache not reset")
	}
}

func (p *ProducerRole) queueGauges(col *metric.Collector) {
	col.AddGauge("producer", "outbound_queue_length", "Snapshot frames waiting to be sent.",
		func() float64 { return float64(p.outbound.Len()) })
	col.AddGauge("producer", "inbound_queue_length", "Transform deltas waiting for the next producer tick.",
		func() float64 { return float64(p.inbound.Len()) })
}
