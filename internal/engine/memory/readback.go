package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/yndnr/scenelink/internal/core/scene"
)

// Readback simulates an asynchronous GPU read of a Scene's non-readable
// images. Block-compressed formats are not supported.
type Readback struct {
	scene *Scene
	delay time.Duration
}

// NewReadback returns a readback that completes after delay.
func NewReadback(s *Scene, delay time.Duration) *Readback {
	return &Readback{scene: s, delay: delay}
}

// Supports implements engine.Readback.
func (r *Readback) Supports(format scene.PixelFormat) bool {
	switch format {
	case scene.FormatDXT1, scene.FormatDXT5:
		return false
	default:
		return true
	}
}

// Request implements engine.Readback.
func (r *Readback) Request(ctx context.Context, img scene.ImageAsset, done func([]byte, error)) {
	go func() {
		if r.delay > 0 {
			timer := time.NewTimer(r.delay)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
		}
		px, ok := r.scene.gpuPixels(img.ID)
		if !ok {
			done(nil, fmt.Errorf("readback: image %d has no gpu data", img.ID))
			return
		}
		out := make([]byte, len(px))
		copy(out, px)
		done(out, nil)
	}()
}
