package capture

import (
	"errors"
	"time"

	"github.com/yndnr/scenelink/internal/wire"
)

// File format constants.
const (
	MagicBytes      = "SCNLCAP\x01"
	MagicBytesSize  = 8
	SessionSize     = 16
	HeaderSize      = MagicBytesSize + SessionSize
	DefaultFilePerm = 0o600
	DefaultDirPerm  = 0o750

	// lengthSize + checksumSize
	recordHeaderSize = 8
	// checksum + time + peer length
	minRecordLength = 4 + 8 + 2
	// MaxRecordLength bounds a single record.
	MaxRecordLength = 256 << 20
)

var (
	errInvalidMagic = errors.New("capture: invalid magic bytes")
	errTooLarge     = errors.New("capture: record too large")
)

// Record is one captured frame.
type Record struct {
	Time  time.Time
	Peer  string
	Frame []byte
}

// Kind returns the frame's kind byte, or 0 for an empty frame.
func (r Record) Kind() wire.FrameKind {
	if len(r.Frame) == 0 {
		return 0
	}
	return wire.FrameKind(r.Frame[0])
}

// Payload returns the frame without its kind byte.
func (r Record) Payload() []byte {
	if len(r.Frame) == 0 {
		return nil
	}
	return r.Frame[1:]
}
