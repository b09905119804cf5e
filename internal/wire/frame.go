package wire

import (
	"fmt"

	"github.com/yndnr/scenelink/internal/core/scene"
)

// FrameKind is the leading byte of every data frame.
type FrameKind byte

const (
	// FrameSnapshot carries a full Message payload.
	FrameSnapshot FrameKind = 1
	// FrameDelta carries a TransformDelta. The value is part of the protocol.
	FrameDelta FrameKind = 42
)

// DeltaFrameSize is the exact length of a transform delta frame.
const DeltaFrameSize = 1 + sizeInt32 + sizeTransform

func (k FrameKind) String() string {
	switch k {
	case FrameSnapshot:
		return "snapshot"
	case FrameDelta:
		return "delta"
	default:
		return fmt.Sprintf("unknown(%d)", byte(k))
	}
}

// EncodeSnapshotFrame returns a snapshot frame for m.
func EncodeSnapshotFrame(m scene.Message) []byte {
	e := newEncoder(1 + messageSizeHint(m))
	e.byte(byte(FrameSnapshot))
	encodeMessage(e, m)
	return e.bytes()
}

// EncodeDeltaFrame returns a transform delta frame for td.
func EncodeDeltaFrame(td scene.TransformDelta) []byte {
	e := newEncoder(DeltaFrameSize)
	e.byte(byte(FrameDelta))
	encodeDelta(e, td)
	return e.bytes()
}

// Classify splits a frame into its kind and payload.
func Classify(frame []byte) (FrameKind, []byte, error) {
	if len(frame) == 0 {
		return 0, nil, scene.ErrMalformedFrame.WithDetails("empty frame")
	}
	kind := FrameKind(frame[0])
	switch kind {
	case FrameSnapshot, FrameDelta:
		return kind, frame[1:], nil
	default:
		return kind, nil, scene.ErrUnknownFrameKind.WithDetails(kind.String())
	}
}

// EncodeTransformDelta serializes a delta payload without the kind byte.
func EncodeTransformDelta(td scene.TransformDelta) []byte {
	e := newEncoder(DeltaFrameSize - 1)
	encodeDelta(e, td)
	return e.bytes()
}

// DecodeTransformDelta parses a delta payload without the kind byte.
func DecodeTransformDelta(b []byte) (scene.TransformDelta, error) {
	d := newDecoder(b)
	td := scene.TransformDelta{NodeID: d.int32()}
	td.Transform = decodeTransform(d)
	if err := d.finish(); err != nil {
		return scene.TransformDelta{}, err
	}
	return td, nil
}

func encodeDelta(e *encoder, td scene.TransformDelta) {
	e.int32(td.NodeID)
	encodeTransform(e, td.Transform)
}
