package wire

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/yndnr/scenelink/internal/core/scene"
)

// Minimum encoded sizes used to reject counts that cannot fit in the
// remaining input before allocating.
const (
	sizeInt32     = 4
	sizeVec2      = 8
	sizeVec3      = 12
	sizeTransform = 40
	minNode       = sizeInt32 + 4 + 4 + 1 + sizeTransform + 4
	minComponent  = sizeInt32 + 4
	minMesh       = sizeInt32 + 4 + 4*4
	minImage      = sizeInt32 + 4*3 + 4 + 1 + 4*3 + 4
)

// decoder reads primitives with a sticky error. After the first failure
// every read returns a zero value and err stays set.
type decoder struct {
	buf []byte
	off int
	err error
}

func newDecoder(b []byte) *decoder {
	return &decoder{buf: b}
}

func (d *decoder) remaining() int { return len(d.buf) - d.off }

func (d *decoder) fail(format string, args ...any) {
	if d.err == nil {
		d.err = scene.ErrMalformedFrame.WithDetails(fmt.Sprintf(format+" at offset %d", append(args, d.off)...))
	}
}

func (d *decoder) take(n int) []byte {
	if d.err != nil {
		return nil
	}
	if n < 0 || d.remaining() < n {
		d.fail("short buffer: need %d, have %d", n, d.remaining())
		return nil
	}
	b := d.buf[d.off : d.off+n]
	d.off += n
	return b
}

func (d *decoder) int32() int32 {
	b := d.take(4)
	if b == nil {
		return 0
	}
	return int32(binary.LittleEndian.Uint32(b))
}

func (d *decoder) float32() float32 {
	b := d.take(4)
	if b == nil {
		return 0
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

func (d *decoder) bool() bool {
	b := d.take(1)
	if b == nil {
		return false
	}
	switch b[0] {
	case 0:
		return false
	case 1:
		return true
	default:
		d.fail("invalid bool byte %d", b[0])
		return false
	}
}

func (d *decoder) string() string {
	n := d.int32()
	if n < 0 {
		d.fail("negative string length %d", n)
		return ""
	}
	return string(d.take(int(n)))
}

func (d *decoder) raw() []byte {
	n := d.int32()
	if n < 0 {
		d.fail("negative byte length %d", n)
		return []byte{}
	}
	b := d.take(int(n))
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// count reads a list length and checks that n elements of at least minSize
// bytes each can still be present.
func (d *decoder) count(minSize int) int {
	n := d.int32()
	if d.err != nil {
		return 0
	}
	if n < 0 {
		d.fail("negative list count %d", n)
		return 0
	}
	if int64(n)*int64(minSize) > int64(d.remaining()) {
		d.fail("list count %d exceeds remaining %d bytes", n, d.remaining())
		return 0
	}
	return int(n)
}

func (d *decoder) vec2() mgl32.Vec2 {
	return mgl32.Vec2{d.float32(), d.float32()}
}

func (d *decoder) vec3() mgl32.Vec3 {
	return mgl32.Vec3{d.float32(), d.float32(), d.float32()}
}

func (d *decoder) quat() mgl32.Quat {
	v := d.vec3()
	return mgl32.Quat{V: v, W: d.float32()}
}

// finish reports trailing bytes as malformed input.
func (d *decoder) finish() error {
	if d.err == nil && d.remaining() != 0 {
		d.fail("%d trailing bytes", d.remaining())
	}
	return d.err
}
