package capture

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spaolacci/murmur3"

	"github.com/yndnr/scenelink/internal/transport"
)

// DefaultFlushInterval bounds how long a record may sit in the write buffer.
const DefaultFlushInterval = time.Second

// Writer appends records to a capture file. It is safe for concurrent use.
type Writer struct {
	mu sync.Mutex

	path          string
	session       ulid.ULID
	file          *os.File
	buf           *bufio.Writer
	flushInterval time.Duration
	lastFlush     time.Time
	count         int
	closed        bool

	now func() time.Time
}

// Create creates (or truncates) a capture file at path with a new session id.
func Create(path string) (*Writer, error) {
	if path == "" {
		return nil, fmt.Errorf("capture: path is required")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, DefaultDirPerm); err != nil {
			return nil, fmt.Errorf("capture: create dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, DefaultFilePerm)
	if err != nil {
		return nil, fmt.Errorf("capture: open: %w", err)
	}

	w := &Writer{
		path:          path,
		session:       ulid.Make(),
		file:          f,
		buf:           bufio.NewWriterSize(f, 64<<10),
		flushInterval: DefaultFlushInterval,
		now:           time.Now,
	}
	w.lastFlush = w.now()

	header := make([]byte, 0, HeaderSize)
	header = append(header, MagicBytes...)
	header = append(header, w.session[:]...)
	if _, err := w.buf.Write(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("capture: write header: %w", err)
	}
	if err := w.buf.Flush(); err != nil {
		f.Close()
		return nil, fmt.Errorf("capture: write header: %w", err)
	}
	return w, nil
}

// Session returns the capture session id.
func (w *Writer) Session() ulid.ULID { return w.session }

// Path returns the file path.
func (w *Writer) Path() string { return w.path }

// Count returns the number of records written.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Record appends one inbound frame.
func (w *Writer) Record(in transport.Inbound) error {
	return w.Append(Record{Time: w.now(), Peer: string(in.Peer), Frame: in.Frame})
}

// Append writes rec. The buffer is flushed at most every flush interval.
func (w *Writer) Append(rec Record) error {
	data, err := encodeRecord(rec)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return fmt.Errorf("capture: writer closed")
	}
	if _, err := w.buf.Write(data); err != nil {
		return fmt.Errorf("capture: write: %w", err)
	}
	w.count++
	if w.now().Sub(w.lastFlush) >= w.flushInterval {
		return w.flushLocked()
	}
	return nil
}

// Flush writes buffered records to the file.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	return w.flushLocked()
}

func (w *Writer) flushLocked() error {
	w.lastFlush = w.now()
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("capture: flush: %w", err)
	}
	return nil
}

// Close flushes, syncs and closes the file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.buf.Flush(); err != nil {
		w.file.Close()
		return fmt.Errorf("capture: flush: %w", err)
	}
	if err := w.file.Sync(); err != nil {
		w.file.Close()
		return fmt.Errorf("capture: sync: %w", err)
	}
	return w.file.Close()
}

func encodeRecord(rec Record) ([]byte, error) {
	if len(rec.Peer) > 0xFFFF {
		return nil, fmt.Errorf("capture: peer id too long")
	}
	length := minRecordLength + len(rec.Peer) + len(rec.Frame)
	if length > MaxRecordLength {
		return nil, errTooLarge
	}

	out := make([]byte, 4+length)
	binary.BigEndian.PutUint32(out[0:4], uint32(length))
	body := out[8:]
	binary.BigEndian.PutUint64(body[0:8], uint64(rec.Time.UnixMilli()))
	binary.BigEndian.PutUint16(body[8:10], uint16(len(rec.Peer)))
	copy(body[10:], rec.Peer)
	copy(body[10+len(rec.Peer):], rec.Frame)
	binary.BigEndian.PutUint32(out[4:8], murmur3.Sum32(body))
	return out, nil
}
