package producer

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/yndnr/scenelink/internal/core/scene"
	"github.com/yndnr/scenelink/internal/engine"
	"github.com/yndnr/scenelink/internal/telemetry/logger"
	"github.com/yndnr/scenelink/internal/telemetry/metric"
	"github.com/yndnr/scenelink/internal/transport"
	"github.com/yndnr/scenelink/internal/wire"
)

// DefaultSkipThreshold is the outbound queue length above which a tick is
// skipped.
const DefaultSkipThreshold = 5

// readbackBuffer bounds completed readbacks waiting for the next tick.
const readbackBuffer = 64

// Outbox is the producer's view of the outbound queue.
type Outbox interface {
	Len() int
	Offer(transport.Outbound) bool
}

// Config configures a Sampler.
type Config struct {
	SkipThreshold int
	Logger        logger.Logger
	Metrics       *metric.Registry
}

// Status is a point-in-time view of the sampler for the admin API.
type Status struct {
	Ticks            uint64  `json:"ticks"`
	Skipped          uint64  `json:"skipped"`
	Dropped          uint64  `json:"dropped"`
	Nodes            int     `json:"nodes"`
	MeshesSent       int     `json:"meshes_sent"`
	ImagesSent       int     `json:"images_sent"`
	PendingReadbacks int     `json:"pending_readbacks"`
	QueueLength      int     `json:"queue_length"`
	AvgMessageBytes  float64 `json:"avg_message_bytes"`
	MaxMessageBytes  int     `json:"max_message_bytes"`
}

type readbackResult struct {
	asset   scene.ImageAsset
	err     error
	session uint64
}

// Sampler captures the source scene into snapshot frames.
type Sampler struct {
	scene    engine.SourceScene
	readback engine.Readback
	outbox   Outbox
	cache    *Cache
	stats    *SizeStats

	skipThreshold int
	log           logger.Logger
	metrics       *metric.Registry

	// session counts Reset calls; completions from an older session are
	// dropped.
	session   uint64
	completed chan readbackResult
	reading   map[int32]struct{}
	// ready holds completed readbacks not yet carried by a queued frame.
	ready []scene.ImageAsset
	// staged holds the assets of the message being built. They reach the
	// cache only once the frame is queued.
	staged assetSet

	ticks, skipped, dropped uint64
	lastNodes               int

	status atomic.Pointer[Status]
}

// NewSampler creates a sampler. readback may be nil, in which case
// non-readable images are sent without pixels. A zero SkipThreshold selects
// DefaultSkipThreshold.
func NewSampler(src engine.SourceScene, rb engine.Readback, outbox Outbox, cfg Config) *Sampler {
	if cfg.SkipThreshold <= 0 {
		cfg.SkipThreshold = DefaultSkipThreshold
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Component("sampler")
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metric.NewRegistry()
	}
	s := &Sampler{
		scene:         src,
		readback:      rb,
		outbox:        outbox,
		cache:         NewCache(),
		stats:         NewSizeStats(DefaultStatsWindow),
		skipThreshold: cfg.SkipThreshold,
		log:           cfg.Logger,
		metrics:       cfg.Metrics,
		completed:     make(chan readbackResult, readbackBuffer),
		reading:       make(map[int32]struct{}),
		staged:        newAssetSet(),
	}
	s.publish()
	return s
}

// Cache returns the sampler's dedup cache.
func (s *Sampler) Cache() *Cache { return s.cache }

// Reset starts a new producer session: every asset will be sent again.
// Readbacks requested before it are discarded when they complete.
func (s *Sampler) Reset() {
	s.cache.Reset()
	s.session++
	s.reading = make(map[int32]struct{})
	s.ready = nil
	s.publish()
}

// Status returns the latest published status. Safe for concurrent use.
func (s *Sampler) Status() Status {
	return *s.status.Load()
}

// Tick captures the scene once. It never blocks.
func (s *Sampler) Tick(ctx context.Context) {
	start := time.Now()
	defer func() {
		s.metrics.TickDuration.WithLabelValues("producer").Observe(time.Since(start).Seconds())
		s.publish()
	}()
	s.ticks++

	if s.outbox.Len() > s.skipThreshold {
		s.skipped++
		s.metrics.TicksSkipped.Inc()
		s.log.Debug("tick skipped; outbound queue backed up", "queue_length", s.outbox.Len())
		return
	}

	s.staged.reset()
	var msg scene.Message
	s.drainReadbacks()
	for _, img := range s.ready {
		s.staged.add(AssetImage, img.ID)
		msg.Images = append(msg.Images, img)
	}
	for _, root := range s.scene.Roots() {
		s.walk(ctx, root, 0, &msg)
	}
	s.lastNodes = len(msg.Nodes)
	s.metrics.SourceNodes.Set(float64(len(msg.Nodes)))

	frame := wire.EncodeSnapshotFrame(msg)
	if !s.outbox.Offer(transport.Outbound{Frame: frame}) {
		s.dropped++
		s.metrics.FramesDropped.WithLabelValues("queue_full").Inc()
		s.log.Warn("outbound queue full; snapshot dropped", "bytes", len(frame))
		return
	}
	s.commit()

	s.stats.Add(len(frame))
	s.metrics.MessageBytes.Observe(float64(len(frame)))
	s.log.Debug("snapshot queued",
		"nodes", len(msg.Nodes),
		"meshes", len(msg.Meshes),
		"images", len(msg.Images),
		"bytes", len(frame),
		"avg_bytes", s.stats.Average(),
		"max_bytes", s.stats.Max(),
	)
}

// walk appends node and its visible descendants in pre-order.
func (s *Sampler) walk(ctx context.Context, n engine.SourceNode, parentID int32, msg *scene.Message) {
	if n.Hidden() {
		return
	}
	snap := scene.NodeSnapshot{
		ID:        n.ID(),
		ParentID:  parentID,
		Name:      n.Name(),
		Active:    n.Active(),
		Transform: n.Transform(),
	}

	r := n.Renderers()
	if r.Mesh != nil {
		s.emitMesh(*r.Mesh, msg)
		snap.Components = append(snap.Components, scene.MeshRef{MeshID: r.Mesh.ID})
	}
	if r.Material != nil {
		imageID := s.emitImage(ctx, r.Material.Image, msg)
		snap.Components = append(snap.Components, scene.MaterialRef{ImageID: imageID, Shader: r.Material.Shader})
	}
	if r.Skinned != nil {
		imageID := s.emitImage(ctx, r.Skinned.Image, msg)
		snap.Components = append(snap.Components, scene.SkinnedMaterialRef{
			ImageID:    imageID,
			Shader:     r.Skinned.Shader,
			RootBoneID: r.Skinned.RootBoneID,
		})
	}
	msg.Nodes = append(msg.Nodes, snap)

	for _, child := range n.Children() {
		s.walk(ctx, child, snap.ID, msg)
	}
}

// pending reports whether the asset is already sent, staged or being read.
func (s *Sampler) pending(kind AssetKind, id int32) bool {
	if !s.cache.ShouldSend(kind, id) || s.staged.has(kind, id) {
		return true
	}
	if kind == AssetImage {
		_, ok := s.reading[id]
		return ok
	}
	return false
}

// commit records the staged assets as sent once their frame is queued.
func (s *Sampler) commit() {
	for kind := AssetKind(0); kind < numAssetKinds; kind++ {
		for id := range s.staged[kind] {
			s.cache.MarkSent(kind, id)
			s.metrics.AssetsSent.WithLabelValues(kind.String()).Inc()
		}
	}
	s.ready = nil
	s.staged.reset()
}

func (s *Sampler) emitMesh(m scene.MeshAsset, msg *scene.Message) {
	if s.pending(AssetMesh, m.ID) {
		return
	}
	s.staged.add(AssetMesh, m.ID)
	msg.Meshes = append(msg.Meshes, m)
}

// emitImage returns the id to reference, or 0 when there is no image.
func (s *Sampler) emitImage(ctx context.Context, img *engine.SourceImage, msg *scene.Message) int32 {
	if img == nil {
		return 0
	}
	asset := img.Asset
	if s.pending(AssetImage, asset.ID) {
		return asset.ID
	}

	switch {
	case img.Readable:
		s.staged.add(AssetImage, asset.ID)
		msg.Images = append(msg.Images, asset)
	case s.readback == nil || !s.readback.Supports(asset.Format):
		asset.Pixels = nil
		s.staged.add(AssetImage, asset.ID)
		msg.Images = append(msg.Images, asset)
		s.metrics.Readbacks.WithLabelValues("unsupported").Inc()
		s.log.Debug("image sent without pixels", "image", asset.Name, "format", int32(asset.Format))
	default:
		s.requestReadback(ctx, asset)
	}
	return asset.ID
}

func (s *Sampler) requestReadback(ctx context.Context, asset scene.ImageAsset) {
	s.reading[asset.ID] = struct{}{}
	asset.Pixels = nil
	session := s.session
	s.readback.Request(ctx, asset, func(pixels []byte, err error) {
		res := readbackResult{asset: asset, err: err, session: session}
		res.asset.Pixels = pixels
		select {
		case s.completed <- res:
		case <-ctx.Done():
		}
	})
}

// drainReadbacks moves completed readbacks of the current session to ready.
func (s *Sampler) drainReadbacks() {
	for {
		select {
		case res := <-s.completed:
			if res.session != s.session {
				s.metrics.Readbacks.WithLabelValues("stale").Inc()
				s.log.Debug("readback from a previous session discarded", "image", res.asset.Name)
				continue
			}
			delete(s.reading, res.asset.ID)
			if res.err != nil {
				// Never retried in this session.
				s.cache.MarkSent(AssetImage, res.asset.ID)
				s.metrics.Readbacks.WithLabelValues("failed").Inc()
				s.log.Warn("image readback failed; image will not be sent",
					"image", res.asset.Name, "error", res.err)
				continue
			}
			s.metrics.Readbacks.WithLabelValues("completed").Inc()
			s.ready = append(s.ready, res.asset)
		default:
			return
		}
	}
}

func (s *Sampler) publish() {
	st := &Status{
		Ticks:            s.ticks,
		Skipped:          s.skipped,
		Dropped:          s.dropped,
		Nodes:            s.lastNodes,
		MeshesSent:       s.cache.Len(AssetMesh),
		ImagesSent:       s.cache.Len(AssetImage),
		PendingReadbacks: len(s.reading),
		QueueLength:      s.outbox.Len(),
		AvgMessageBytes:  s.stats.Average(),
		MaxMessageBytes:  s.stats.Max(),
	}
	s.status.Store(st)
}
