package capture

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yndnr/scenelink/internal/core/scene"
	"github.com/yndnr/scenelink/internal/transport"
	"github.com/yndnr/scenelink/internal/wire"
)

func writeCapture(t *testing.T, path string, frames ...[]byte) *Writer {
	t.Helper()
	w, err := Create(path)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	for _, f := range frames {
		if err := w.Record(transport.Inbound{Peer: "01J0PEER", Frame: f}); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return w
}

func TestWriterReader_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.cap")
	snapshot := wire.EncodeSnapshotFrame(scene.Message{Nodes: []scene.NodeSnapshot{{ID: 1, Name: "Root", Transform: scene.IdentityTransform()}}})
	delta := wire.EncodeDeltaFrame(scene.TransformDelta{NodeID: 1, Transform: scene.IdentityTransform()})

	w := writeCapture(t, path, snapshot, delta)
	if w.Count() != 2 {
		t.Errorf("Count() = %d, want 2", w.Count())
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer r.Close()
	if r.Session() != w.Session() {
		t.Errorf("Session() = %s, want %s", r.Session(), w.Session())
	}

	recs, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("read %d records, want 2", len(recs))
	}
	if recs[0].Kind() != wire.FrameSnapshot || recs[1].Kind() != wire.FrameDelta {
		t.Errorf("kinds = %v, %v", recs[0].Kind(), recs[1].Kind())
	}
	if recs[0].Peer != "01J0PEER" {
		t.Errorf("Peer = %q", recs[0].Peer)
	}
	if time.Since(recs[0].Time) > time.Minute {
		t.Errorf("Time = %v, want recent", recs[0].Time)
	}
	msg, err := wire.DecodeMessage(recs[0].Payload())
	if err != nil || len(msg.Nodes) != 1 || msg.Nodes[0].Name != "Root" {
		t.Errorf("decoded = %+v, %v", msg, err)
	}
}

func TestReader_TornTailIsEOF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "torn.cap")
	writeCapture(t, path, []byte{byte(wire.FrameDelta), 1, 2, 3}, []byte{byte(wire.FrameDelta), 4, 5, 6})

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Truncate(path, info.Size()-2); err != nil {
		t.Fatal(err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer r.Close()
	recs, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(recs) != 1 {
		t.Errorf("read %d records, want 1 before the torn tail", len(recs))
	}
}

func TestReader_ChecksumMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.cap")
	writeCapture(t, path, []byte{byte(wire.FrameDelta), 1, 2, 3})

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	data[len(data)-1] ^= 0xFF
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer r.Close()
	if _, err := r.Next(); !errors.Is(err, scene.ErrCaptureCorrupt) {
		t.Errorf("Next() error = %v, want ErrCaptureCorrupt", err)
	}
}

func TestOpen_BadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.cap")
	if err := os.WriteFile(path, []byte("definitely not a capture file"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); !errors.Is(err, scene.ErrCaptureCorrupt) {
		t.Errorf("Open() error = %v, want ErrCaptureCorrupt", err)
	}
}

func TestReader_EmptyCapture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.cap")
	writeCapture(t, path)

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer r.Close()
	if _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("Next() error = %v, want io.EOF", err)
	}
}

func TestWriter_ClosedRejectsAppend(t *testing.T) {
	w := writeCapture(t, filepath.Join(t.TempDir(), "c.cap"))
	if err := w.Append(Record{Frame: []byte{1}}); err == nil {
		t.Error("Append() after Close succeeded")
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
