package benchmark

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/yndnr/scenelink/internal/capture"
	"github.com/yndnr/scenelink/internal/wire"
)

// BenchmarkCaptureAppend benchmarks recording a 100-node snapshot frame.
func BenchmarkCaptureAppend(b *testing.B) {
	w, err := capture.Create(filepath.Join(b.TempDir(), "bench.slcap"))
	if err != nil {
		b.Fatalf("Create() error = %v", err)
	}
	defer w.Close()

	rec := capture.Record{
		Time:  time.Now(),
		Peer:  "01J0000000000000000000PEER",
		Frame: wire.EncodeSnapshotFrame(newMessage(100, false)),
	}
	b.SetBytes(int64(len(rec.Frame)))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := w.Append(rec); err != nil {
			b.Fatalf("Append() error = %v", err)
		}
	}
	if err := w.Flush(); err != nil {
		b.Fatal(err)
	}
}

// BenchmarkCaptureRead benchmarks reading back and verifying records.
func BenchmarkCaptureRead(b *testing.B) {
	path := filepath.Join(b.TempDir(), "bench.slcap")
	w, err := capture.Create(path)
	if err != nil {
		b.Fatal(err)
	}
	frame := wire.EncodeSnapshotFrame(newMessage(100, false))
	const records = 1000
	for i := 0; i < records; i++ {
		if err := w.Append(capture.Record{Time: time.Now(), Peer: "p", Frame: frame}); err != nil {
			b.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r, err := capture.Open(path)
		if err != nil {
			b.Fatal(err)
		}
		recs, err := r.ReadAll()
		r.Close()
		if err != nil || len(recs) != records {
			b.Fatalf("ReadAll() = %d records, %v", len(recs), err)
		}
	}
}
