// Package benchmark provides performance benchmarks for scenelink's hot
// paths: the wire codec, the asset dedup cache, frame capture and the
// transport queues.
//
// Run benchmarks with:
//
//	go test -bench=. -benchmem ./internal/tests/benchmark/...
//
// Run with specific scene sizes:
//
//	go test -bench=BenchmarkEncode -benchmem -benchtime=5s ./internal/tests/benchmark/...
//
// Compare results:
//
//	benchstat old.txt new.txt
package benchmark
