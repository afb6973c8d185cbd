// Package dedup holds the bounded window of recently processed update ids,
// so a redelivered update is handled at most once.
package dedup

import "sync"

const (
	pruneThreshold = 1000
	pruneKeep      = 500
)

// Window remembers recently observed update ids in arrival order.
// Once the window grows past 1000 ids it is pruned to the most recent 500.
type Window struct {
	mu    sync.Mutex
	seen  map[int]struct{}
	order []int
}

// NewWindow creates an empty Window.
func NewWindow() *Window {
	return &Window{seen: make(map[int]struct{})}
}

// Observe records id and reports whether it was new. A false return means
// the id was already processed and the update must be dropped.
func (w *Window) Observe(id int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.seen[id]; ok {
		return false
	}
	w.seen[id] = struct{}{}
	w.order = append(w.order, id)

	if len(w.order) > pruneThreshold {
		drop := len(w.order) - pruneKeep
		for _, old := range w.order[:drop] {
			delete(w.seen, old)
		}
		w.order = append(w.order[:0:0], w.order[drop:]...)
	}
	return true
}

// Seen reports whether id is still inside the window.
func (w *Window) Seen(id int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	_, ok := w.seen[id]
	return ok
}

// Len returns the number of ids currently retained.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return len(w.order)
}
