package capture

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spaolacci/murmur3"

	"github.com/yndnr/scenelink/internal/core/scene"
)

// Reader reads records from a capture file in order.
type Reader struct {
	file    *os.File
	r       *bufio.Reader
	session ulid.ULID
	offset  int64
}

// Open opens a capture file and validates its header.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("capture: open: %w", err)
	}
	r := &Reader{file: f, r: bufio.NewReaderSize(f, 64<<10)}

	var header [HeaderSize]byte
	if _, err := io.ReadFull(r.r, header[:]); err != nil {
		f.Close()
		return nil, scene.ErrCaptureCorrupt.WithCause(fmt.Errorf("read header: %w", err))
	}
	if string(header[:MagicBytesSize]) != MagicBytes {
		f.Close()
		return nil, scene.ErrCaptureCorrupt.WithCause(errInvalidMagic)
	}
	copy(r.session[:], header[MagicBytesSize:])
	r.offset = HeaderSize
	return r, nil
}

// Session returns the session id recorded in the header.
func (r *Reader) Session() ulid.ULID { return r.session }

// Next returns the next record, or io.EOF at the end of the capture. A
// checksum mismatch returns an error coded SL-CAP-4000.
func (r *Reader) Next() (Record, error) {
	var hdr [recordHeaderSize]byte
	if _, err := io.ReadFull(r.r, hdr[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Record{}, io.EOF
		}
		return Record{}, err
	}
	length := binary.BigEndian.Uint32(hdr[0:4])
	sum := binary.BigEndian.Uint32(hdr[4:8])
	if length < minRecordLength || length > MaxRecordLength {
		return Record{}, scene.ErrCaptureCorrupt.WithDetails(fmt.Sprintf("bad record length %d at offset %d", length, r.offset))
	}

	body := make([]byte, length-4)
	if _, err := io.ReadFull(r.r, body); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			// Torn tail.
			return Record{}, io.EOF
		}
		return Record{}, err
	}
	if murmur3.Sum32(body) != sum {
		return Record{}, scene.ErrCaptureCorrupt.WithDetails(fmt.Sprintf("checksum mismatch at offset %d", r.offset))
	}
	r.offset += int64(4 + length)

	peerLen := int(binary.BigEndian.Uint16(body[8:10]))
	if 10+peerLen > len(body) {
		return Record{}, scene.ErrCaptureCorrupt.WithDetails(fmt.Sprintf("bad peer length at offset %d", r.offset))
	}
	return Record{
		Time:  time.UnixMilli(int64(binary.BigEndian.Uint64(body[0:8]))),
		Peer:  string(body[10 : 10+peerLen]),
		Frame: body[10+peerLen:],
	}, nil
}

// ReadAll reads every remaining record.
func (r *Reader) ReadAll() ([]Record, error) {
	var out []Record
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
}

// Close closes the file.
func (r *Reader) Close() error {
	return r.file.Close()
}
