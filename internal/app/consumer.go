package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yndnr/scenelink/internal/capture"
	"github.com/yndnr/scenelink/internal/consumer"
	"github.com/yndnr/scenelink/internal/engine/memory"
	"github.com/yndnr/scenelink/internal/server/config"
	"github.com/yndnr/scenelink/internal/telemetry/logger"
	"github.com/yndnr/scenelink/internal/telemetry/metric"
	"github.com/yndnr/scenelink/internal/transport"
)

// ConsumerStatus is the consumer role as reported by the admin API.
type ConsumerStatus struct {
	consumer.Status
	Endpoint       string `json:"endpoint"`
	Peers          int    `json:"peers"`
	CapturePath    string `json:"capture_path,omitempty"`
	CaptureRecords int    `json:"capture_records,omitempty"`
}

// ConsumerRole binds the endpoint and mirrors the remote scene.
type ConsumerRole struct {
	interval time.Duration
	scheme   string
	router   *transport.Router
	outbound *transport.Queue[transport.Outbound]
	inbound  *transport.Queue[transport.Inbound]
	host     *memory.Host
	edits    *memory.EditQueue
	mirror   *consumer.Mirror
	capture  *capture.Writer
	control  chan func()
	log      logger.Logger
}

// NewConsumer builds the consumer role. It opens the capture file when one
// is configured but does not bind the endpoint.
func NewConsumer(cfg *config.ScenelinkConfig, log logger.Logger, metrics *metric.Registry) (*ConsumerRole, error) {
	ep, err := transport.ParseEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, err
	}
	library := memory.NewLibrary()
	if cfg.Scene.LibraryFile != "" {
		lib, err := memory.LoadLibraryFile(cfg.Scene.LibraryFile)
		if err != nil {
			return nil, fmt.Errorf("load library: %w", err)
		}
		library = lib
	}

	c := &ConsumerRole{
		interval: cfg.Tick.Interval(),
		scheme:   ep.Scheme,
		outbound: transport.NewQueue[transport.Outbound](cfg.Queue.Capacity),
		inbound:  transport.NewQueue[transport.Inbound](cfg.Queue.InboundCapacity),
		host:     memory.NewHost(library),
		edits:    memory.NewEditQueue(),
		control:  make(chan func(), 8),
		log:      log,
	}

	rcfg := transport.DefaultRouterConfig(cfg.Endpoint)
	rcfg.HandshakeTimeout = cfg.Transport.HandshakeTimeout
	rcfg.WriteTimeout = cfg.Transport.WriteTimeout
	rcfg.MaxFrameBytes = cfg.Transport.MaxFrameBytes
	rcfg.MaxFramesPerSecond = cfg.Transport.MaxFramesPerSecond
	rcfg.Logger = log.With("component", "router")
	rcfg.Metrics = metrics
	router, err := transport.NewRouter(rcfg, c.outbound, c.inbound)
	if err != nil {
		return nil, err
	}
	c.router = router

	mcfg := consumer.Config{
		MaxFramesPerTick: cfg.Queue.MaxFramesPerTick,
		Logger:           log.With("component", "mirror"),
		Metrics:          metrics,
	}
	if cfg.Capture.Path != "" {
		w, err := capture.Create(cfg.Capture.Path)
		if err != nil {
			return nil, err
		}
		c.capture = w
		mcfg.Recorder = w
		log.Info("capturing inbound frames", "path", w.Path(), "session", w.Session().String())
	}
	c.mirror = consumer.NewMirror(c.host, c.edits, c.inbound, c.outbound, mcfg)
	return c, nil
}

// Bind opens the listening socket.
func (c *ConsumerRole) Bind() error {
	return c.router.Bind()
}

// Endpoint returns the bound endpoint, or "" before Bind.
func (c *ConsumerRole) Endpoint() string {
	addr := c.router.Addr()
	if addr == nil {
		return ""
	}
	return c.scheme + "://" + addr.String()
}

// Host returns the in-memory host holding the mirrored objects. Objects
// must only be read from the tick goroutine; use Do.
func (c *ConsumerRole) Host() *memory.Host { return c.host }

// Edits returns the queue local transform edits are pushed onto.
func (c *ConsumerRole) Edits() *memory.EditQueue { return c.edits }

// Do runs fn on the tick goroutine. It reports false if the control
// channel is full.
func (c *ConsumerRole) Do(fn func()) bool { return post(c.control, fn) }

// Status returns the latest consumer status. Safe for concurrent use.
func (c *ConsumerRole) Status() ConsumerStatus {
	st := ConsumerStatus{
		Status:   c.mirror.Status(),
		Endpoint: c.Endpoint(),
		Peers:    c.router.Peers(),
	}
	if c.capture != nil {
		st.CapturePath = c.capture.Path()
		st.CaptureRecords = c.capture.Count()
	}
	return st
}

// Run serves the endpoint and drives the mirror until ctx is cancelled.
// The capture file, if any, is closed on return.
func (c *ConsumerRole) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.router.Run(gctx) })
	g.Go(func() error { return runTicker(gctx, c.interval, c.control, c.mirror.Tick) })

	err := g.Wait()
	if c.capture != nil {
		if cerr := c.capture.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close capture: %w", cerr))
		}
	}
	return err
}

func (c *ConsumerRole) queueGauges(col *metric.Collector) {
	col.AddGauge("consumer", "outbound_queue_length", "Frames waiting to be sent to producers.",
		func() float64 { return float64(c.outbound.Len()) })
	col.AddGauge("consumer", "inbound_queue_length", "Frames waiting for the next consumer tick.",
		func() float64 { return float64(c.inbound.Len()) })
}
