package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/yndnr/scenelink/internal/core/scene"
	"github.com/yndnr/scenelink/internal/telemetry/logger"
	"github.com/yndnr/scenelink/internal/telemetry/metric"
	"github.com/yndnr/scenelink/internal/wire"
)

// RouterConfig configures the binding side.
type RouterConfig struct {
	Endpoint string

	// HandshakeTimeout bounds how long an Unverified connection may stay
	// silent before it is closed.
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	MaxFrameBytes    int64

	// MaxFramesPerSecond limits data frames per verified peer; 0 disables.
	MaxFramesPerSecond float64

	Logger  logger.Logger
	Metrics *metric.Registry
}

// DefaultRouterConfig returns a RouterConfig with default limits.
func DefaultRouterConfig(endpoint string) RouterConfig {
	return RouterConfig{
		Endpoint:         endpoint,
		HandshakeTimeout: DefaultHandshakeTimeout,
		WriteTimeout:     DefaultWriteTimeout,
		MaxFrameBytes:    DefaultMaxFrameBytes,
	}
}

type eventKind uint8

const (
	eventOpen eventKind = iota
	eventFrame
	eventClosed
)

// event is how connection goroutines report to the dispatch loop.
type event struct {
	kind        eventKind
	conn        *conn
	messageType int
	data        []byte
	err         error
}

// Router accepts producer connections and routes their frames.
type Router struct {
	cfg      RouterConfig
	endpoint Endpoint
	log      logger.Logger
	metrics  *metric.Registry

	outbound *Queue[Outbound]
	inbound  *Queue[Inbound]

	upgrader websocket.Upgrader
	listener net.Listener
	server   *http.Server
	events   chan event
	done     chan struct{}

	mu    sync.RWMutex
	conns map[PeerID]*conn

	verified atomic.Int32
	running  atomic.Bool
}

// NewRouter creates a router that sends frames taken from outbound and
// delivers classified frames to inbound.
func NewRouter(cfg RouterConfig, outbound *Queue[Outbound], inbound *Queue[Inbound]) (*Router, error) {
	ep, err := ParseEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, err
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Component("router")
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metric.NewRegistry()
	}

	r := &Router{
		cfg:      cfg,
		endpoint: ep,
		log:      cfg.Logger.With("endpoint", ep.String()),
		metrics:  cfg.Metrics,
		outbound: outbound,
		inbound:  inbound,
		events:   make(chan event, 64),
		done:     make(chan struct{}),
		conns:    make(map[PeerID]*conn),
	}
	r.upgrader = websocket.Upgrader{
		ReadBufferSize:  64 << 10,
		WriteBufferSize: 64 << 10,
		// Any origin: the endpoint is not a browser-facing service.
		CheckOrigin: func(*http.Request) bool { return true },
	}
	r.server = &http.Server{
		Handler:           http.HandlerFunc(r.handleUpgrade),
		ReadHeaderTimeout: cfg.HandshakeTimeout,
	}
	return r, nil
}

// Bind opens the listening socket. Run calls it if needed.
func (r *Router) Bind() error {
	if r.listener != nil {
		return nil
	}
	ln, err := net.Listen("tcp", r.endpoint.Address())
	if err != nil {
		return fmt.Errorf("transport: bind %s: %w", r.endpoint, err)
	}
	r.listener = ln
	return nil
}

// Addr returns the bound address, or nil before Bind.
func (r *Router) Addr() net.Addr {
	if r.listener == nil {
		return nil
	}
	return r.listener.Addr()
}

// Peers returns the number of verified peers.
func (r *Router) Peers() int {
	return int(r.verified.Load())
}

// Run serves connections until ctx is cancelled or the listener fails.
func (r *Router) Run(ctx context.Context) error {
	if !r.running.CompareAndSwap(false, true) {
		return errors.New("transport: router already running")
	}
	if err := r.Bind(); err != nil {
		return err
	}
	r.log.Info("router listening", "addr", r.listener.Addr().String())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := r.server.Serve(r.listener)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("transport: serve: %w", err)
	})
	g.Go(func() error { return r.dispatchLoop(gctx) })
	g.Go(func() error { return r.sendLoop(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		close(r.done)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = r.server.Shutdown(shutdownCtx)
		r.closeAll()
		return nil
	})

	err := g.Wait()
	r.log.Info("router stopped")
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (r *Router) handleUpgrade(w http.ResponseWriter, req *http.Request) {
	ws, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.log.Warn("websocket upgrade failed", "remote", req.RemoteAddr, "error", err)
		return
	}

	id := PeerID(ulid.Make().String())
	c := newConn(id, ws, r.cfg.WriteTimeout, r.cfg.MaxFrameBytes)
	if r.cfg.MaxFramesPerSecond > 0 {
		burst := int(r.cfg.MaxFramesPerSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(r.cfg.MaxFramesPerSecond), burst)
	}
	_ = ws.SetReadDeadline(time.Now().Add(r.cfg.HandshakeTimeout))

	r.mu.Lock()
	r.conns[id] = c
	r.mu.Unlock()

	if !r.emit(event{kind: eventOpen, conn: c}) {
		c.close(websocket.CloseGoingAway, "shutting down")
		return
	}
	r.log.Debug("connection accepted", "peer", string(id), "remote", req.RemoteAddr)

	for {
		mt, data, err := ws.ReadMessage()
		if err != nil {
			r.emit(event{kind: eventClosed, conn: c, err: err})
			return
		}
		if !r.emit(event{kind: eventFrame, conn: c, messageType: mt, data: data}) {
			return
		}
	}
}

func (r *Router) emit(ev event) bool {
	select {
	case r.events <- ev:
		return true
	case <-r.done:
		return false
	}
}

// dispatchLoop owns the session table.
func (r *Router) dispatchLoop(ctx context.Context) error {
	sessions := NewSessions()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-r.events:
			switch ev.kind {
			case eventOpen:
				r.metrics.Handshakes.WithLabelValues("opened").Inc()
			case eventFrame:
				if err := r.handleFrame(ctx, sessions, ev); err != nil {
					// Only a cancelled inbound Put fails here.
					return nil
				}
			case eventClosed:
				r.handleClosed(sessions, ev)
			}
		}
	}
}

func (r *Router) handleFrame(ctx context.Context, sessions *Sessions, ev event) error {
	c := ev.conn
	log := r.log.With("peer", string(c.id))
	text := ev.messageType == websocket.TextMessage

	if sessions.State(c.id) == StateClosed {
		r.metrics.FramesDropped.WithLabelValues("closed").Inc()
		log.Debug("frame from closed session dropped", "text", text, "bytes", len(ev.data))
		return nil
	}

	if sessions.State(c.id) == StateVerified && !text && !c.allow() {
		r.metrics.FramesDropped.WithLabelValues("rate_limited").Inc()
		log.Debug("frame dropped by rate limit", "bytes", len(ev.data))
		return nil
	}

	verdict := sessions.Observe(c.id, text, ev.data)
	switch verdict {
	case VerdictWelcome:
		if err := c.writeText(TokenWelcome); err != nil {
			log.Warn("send welcome failed", "error", err)
			sessions.Close(c.id)
			c.close(websocket.CloseInternalServerErr, "")
			return nil
		}
		_ = c.ws.SetReadDeadline(time.Time{})
		r.verified.Store(int32(sessions.Verified()))
		r.metrics.Handshakes.WithLabelValues("verified").Inc()
		log.Info("peer verified")

	case VerdictViolation:
		r.metrics.Handshakes.WithLabelValues("rejected").Inc()
		r.metrics.FramesDropped.WithLabelValues("unverified").Inc()
		log.Warn("protocol violation from unverified peer",
			"text", text,
			"frame", ev.data,
			"error", scene.ErrHandshakeRejected,
		)
		c.close(websocket.ClosePolicyViolation, "handshake required")

	case VerdictBye:
		log.Info("peer said bye")
		r.verified.Store(int32(sessions.Verified()))
		c.close(websocket.CloseNormalClosure, "")

	case VerdictIgnore:
		r.metrics.FramesDropped.WithLabelValues("unexpected_text").Inc()
		log.Debug("unexpected control token", "token", string(ev.data))

	case VerdictData:
		kind, payload, err := wire.Classify(ev.data)
		if err != nil {
			r.metrics.FramesDropped.WithLabelValues("protocol").Inc()
			log.Warn("dropping unclassifiable frame", "kind", kind.String(), "error", err)
			return nil
		}
		r.metrics.Frames.WithLabelValues("in", kind.String()).Inc()
		return r.inbound.Put(ctx, Inbound{Peer: c.id, Kind: kind, Payload: payload, Frame: ev.data})
	}
	return nil
}

func (r *Router) handleClosed(sessions *Sessions, ev event) {
	c := ev.conn
	state := sessions.State(c.id)
	sessions.Remove(c.id)
	r.verified.Store(int32(sessions.Verified()))

	r.mu.Lock()
	delete(r.conns, c.id)
	r.mu.Unlock()
	c.close(websocket.CloseNormalClosure, "")

	log := r.log.With("peer", string(c.id), "state", state.String())
	switch {
	case isNormalClose(ev.err):
		log.Info("peer disconnected")
	case state != StateVerified:
		log.Warn("unverified connection closed", "error", ev.err)
	default:
		log.Warn("peer session ended", "error", ev.err)
	}
}

// sendLoop writes queued frames to their addressed peer, one write per item.
// A failed write ends that peer's session only.
func (r *Router) sendLoop(ctx context.Context) error {
	for {
		item, err := r.outbound.Take(ctx)
		if err != nil {
			return nil
		}

		r.mu.RLock()
		c, ok := r.conns[item.Peer]
		r.mu.RUnlock()
		if !ok {
			r.metrics.FramesDropped.WithLabelValues("unknown_peer").Inc()
			r.log.Debug("dropping frame for unknown peer", "peer", string(item.Peer), "error", scene.ErrPeerUnknown)
			continue
		}

		if err := c.writeBinary(item.Frame); err != nil {
			r.metrics.FramesDropped.WithLabelValues("write_failed").Inc()
			r.log.Warn("send failed; closing peer", "peer", string(c.id), "error", err)
			c.close(websocket.CloseInternalServerErr, "")
			continue
		}
		r.metrics.Frames.WithLabelValues("out", frameKindLabel(item.Frame)).Inc()
	}
}

func (r *Router) closeAll() {
	r.mu.Lock()
	conns := make([]*conn, 0, len(r.conns))
	for _, c := range r.conns {
		conns = append(conns, c)
	}
	r.mu.Unlock()
	for _, c := range conns {
		c.close(websocket.CloseGoingAway, "shutting down")
	}
}

func frameKindLabel(frame []byte) string {
	if len(frame) == 0 {
		return "empty"
	}
	return wire.FrameKind(frame[0]).String()
}
