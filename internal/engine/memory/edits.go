package memory

import (
	"sync"

	"github.com/yndnr/scenelink/internal/core/scene"
)

// EditQueue collects interactive transform edits from any goroutine. Edits
// to the same node between two polls collapse to the latest one.
type EditQueue struct {
	mu      sync.Mutex
	order   []int32
	pending map[int32]scene.Transform
}

// NewEditQueue returns an empty queue.
func NewEditQueue() *EditQueue {
	return &EditQueue{pending: make(map[int32]scene.Transform)}
}

// Push records an edit.
func (q *EditQueue) Push(d scene.TransformDelta) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, seen := q.pending[d.NodeID]; !seen {
		q.order = append(q.order, d.NodeID)
	}
	q.pending[d.NodeID] = d.Transform
}

// PollEdits implements engine.EditSource.
func (q *EditQueue) PollEdits() []scene.TransformDelta {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.order) == 0 {
		return nil
	}
	out := make([]scene.TransformDelta, 0, len(q.order))
	for _, id := range q.order {
		out = append(out, scene.TransformDelta{NodeID: id, Transform: q.pending[id]})
	}
	q.order = q.order[:0]
	clear(q.pending)
	return out
}
