package transport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/yndnr/scenelink/internal/core/scene"
	"github.com/yndnr/scenelink/internal/telemetry/logger"
	"github.com/yndnr/scenelink/internal/telemetry/metric"
	"github.com/yndnr/scenelink/internal/wire"
)

// DealerConfig configures the connecting side.
type DealerConfig struct {
	Endpoint         string
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	MaxFrameBytes    int64

	// OnConnect, if set, is called after each successful handshake and
	// before any queued frame is sent.
	OnConnect func()

	Logger  logger.Logger
	Metrics *metric.Registry
}

// DefaultDealerConfig returns a DealerConfig with default limits.
func DefaultDealerConfig(endpoint string) DealerConfig {
	return DealerConfig{
		Endpoint:         endpoint,
		HandshakeTimeout: DefaultHandshakeTimeout,
		WriteTimeout:     DefaultWriteTimeout,
		MaxFrameBytes:    DefaultMaxFrameBytes,
	}
}

// Dealer connects to a Router, drains an outbound queue to it and delivers
// inbound transform deltas.
type Dealer struct {
	cfg      DealerConfig
	endpoint Endpoint
	log      logger.Logger
	metrics  *metric.Registry

	outbound *Queue[Outbound]
	inbound  *Queue[Inbound]
}

// NewDealer creates a dealer for cfg.Endpoint.
func NewDealer(cfg DealerConfig, outbound *Queue[Outbound], inbound *Queue[Inbound]) (*Dealer, error) {
	ep, err := ParseEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, err
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Component("dealer")
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metric.NewRegistry()
	}
	return &Dealer{
		cfg:      cfg,
		endpoint: ep,
		log:      cfg.Logger.With("endpoint", ep.String()),
		metrics:  cfg.Metrics,
		outbound: outbound,
		inbound:  inbound,
	}, nil
}

// Run connects, performs the handshake and then runs the sender and receiver
// loops until ctx is cancelled (returns nil) or the session fails (returns
// the transport error). Run does not reconnect.
func (d *Dealer) Run(ctx context.Context) error {
	c, err := dial(ctx, d.endpoint, d.cfg.HandshakeTimeout, d.cfg.WriteTimeout, d.cfg.MaxFrameBytes)
	if err != nil {
		d.metrics.Handshakes.WithLabelValues("failed").Inc()
		return err
	}
	d.metrics.Handshakes.WithLabelValues("verified").Inc()
	d.log.Info("session established")
	if d.cfg.OnConnect != nil {
		d.cfg.OnConnect()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return d.sendLoop(gctx, c) })
	g.Go(func() error { return d.receiveLoop(gctx, c) })
	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() != nil {
			_ = c.writeText(TokenBye)
		}
		c.close(websocket.CloseNormalClosure, "")
		return nil
	})

	err = g.Wait()
	if ctx.Err() != nil {
		d.log.Info("session closed")
		return nil
	}
	d.log.Warn("session ended", "error", err)
	return err
}

func (d *Dealer) sendLoop(ctx context.Context, c *conn) error {
	for {
		item, err := d.outbound.Take(ctx)
		if err != nil {
			return nil
		}
		if err := c.writeBinary(item.Frame); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("transport: send: %w", err)
		}
		d.metrics.Frames.WithLabelValues("out", frameKindLabel(item.Frame)).Inc()
	}
}

func (d *Dealer) receiveLoop(ctx context.Context, c *conn) error {
	for {
		mt, data, err := c.ws.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if isNormalClose(err) {
				return scene.ErrPeerClosed.WithCause(err)
			}
			return fmt.Errorf("transport: receive: %w", err)
		}

		if mt == websocket.TextMessage {
			if string(data) == TokenBye {
				return scene.ErrPeerClosed
			}
			d.log.Debug("ignoring control token", "token", string(data))
			continue
		}

		kind, payload, err := wire.Classify(data)
		if err != nil {
			d.metrics.FramesDropped.WithLabelValues("protocol").Inc()
			d.log.Warn("dropping unclassifiable frame", "kind", kind.String(), "error", err)
			continue
		}
		if kind != wire.FrameDelta {
			d.metrics.FramesDropped.WithLabelValues("unexpected_kind").Inc()
			d.log.Warn("dropping frame of unexpected kind", "kind", kind.String())
			continue
		}
		d.metrics.Frames.WithLabelValues("in", kind.String()).Inc()
		if err := d.inbound.Put(ctx, Inbound{Kind: kind, Payload: payload, Frame: data}); err != nil {
			return nil
		}
	}
}

// dial connects to ep and completes the Hello/Welcome exchange.
func dial(ctx context.Context, ep Endpoint, handshakeTimeout, writeTimeout time.Duration, maxFrameBytes int64) (*conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	ws, _, err := dialer.DialContext(ctx, ep.URL(), nil)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", ep, err)
	}
	c := newConn("", ws, writeTimeout, maxFrameBytes)

	stop := context.AfterFunc(ctx, func() { _ = ws.Close() })
	defer stop()

	if err := c.writeText(TokenHello); err != nil {
		c.close(websocket.CloseNormalClosure, "")
		return nil, fmt.Errorf("transport: send hello: %w", err)
	}

	_ = ws.SetReadDeadline(time.Now().Add(handshakeTimeout))
	for {
		mt, data, err := ws.ReadMessage()
		if err != nil {
			c.close(websocket.CloseNormalClosure, "")
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			var netErr interface{ Timeout() bool }
			if errors.As(err, &netErr) && netErr.Timeout() {
				return nil, scene.ErrHandshakeTimeout.WithCause(err)
			}
			return nil, scene.ErrHandshakeRejected.WithCause(err)
		}
		if mt == websocket.TextMessage && string(data) == TokenWelcome {
			break
		}
	}
	_ = ws.SetReadDeadline(time.Time{})
	return c, nil
}

// Probe dials ep, completes the handshake, says Bye and returns the time the
// handshake took.
func Probe(ctx context.Context, endpoint string, timeout time.Duration) (time.Duration, error) {
	ep, err := ParseEndpoint(endpoint)
	if err != nil {
		return 0, err
	}
	if timeout <= 0 {
		timeout = DefaultHandshakeTimeout
	}
	start := time.Now()
	c, err := dial(ctx, ep, timeout, timeout, DefaultMaxFrameBytes)
	if err != nil {
		return 0, err
	}
	elapsed := time.Since(start)
	_ = c.writeText(TokenBye)
	c.close(websocket.CloseNormalClosure, "")
	return elapsed, nil
}
