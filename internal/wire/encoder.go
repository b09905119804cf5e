package wire

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// encoder appends primitives to a growing buffer.
type encoder struct {
	buf []byte
}

func newEncoder(sizeHint int) *encoder {
	return &encoder{buf: make([]byte, 0, sizeHint)}
}

func (e *encoder) bytes() []byte { return e.buf }

func (e *encoder) byte(b byte) {
	e.buf = append(e.buf, b)
}

func (e *encoder) int32(v int32) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, uint32(v))
}

func (e *encoder) float32(v float32) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, math.Float32bits(v))
}

func (e *encoder) bool(v bool) {
	if v {
		e.buf = append(e.buf, 1)
		return
	}
	e.buf = append(e.buf, 0)
}

func (e *encoder) string(s string) {
	e.int32(int32(len(s)))
	e.buf = append(e.buf, s...)
}

func (e *encoder) raw(b []byte) {
	e.int32(int32(len(b)))
	e.buf = append(e.buf, b...)
}

func (e *encoder) vec2(v mgl32.Vec2) {
	e.float32(v[0])
	e.float32(v[1])
}

func (e *encoder) vec3(v mgl32.Vec3) {
	e.float32(v[0])
	e.float32(v[1])
	e.float32(v[2])
}

func (e *encoder) quat(q mgl32.Quat) {
	e.vec3(q.V)
	e.float32(q.W)
}
