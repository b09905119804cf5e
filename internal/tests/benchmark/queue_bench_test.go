package benchmark

import (
	"context"
	"testing"

	"github.com/yndnr/scenelink/internal/transport"
)

// BenchmarkQueueOfferDrain benchmarks the tick-side pattern: offer frames
// without blocking, then drain a batch.
func BenchmarkQueueOfferDrain(b *testing.B) {
	q := transport.NewQueue[transport.Outbound](64)
	out := transport.Outbound{Frame: []byte{1, 2, 3}}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		for j := 0; j < 16; j++ {
			q.Offer(out)
		}
		if got := q.Drain(16); len(got) != 16 {
			b.Fatalf("Drain() = %d frames", len(got))
		}
	}
}

// BenchmarkQueuePutTake benchmarks a producer and a consumer goroutine
// passing frames through the queue.
func BenchmarkQueuePutTake(b *testing.B) {
	q := transport.NewQueue[transport.Outbound](64)
	ctx := context.Background()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < b.N; i++ {
			if _, err := q.Take(ctx); err != nil {
				return
			}
		}
	}()
	out := transport.Outbound{Frame: []byte{1}}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := q.Put(ctx, out); err != nil {
			b.Fatal(err)
		}
	}
	<-done
}
