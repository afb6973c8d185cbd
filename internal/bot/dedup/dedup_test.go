package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObserveIsIdempotent(t *testing.T) {
	w := NewWindow()

	assert.True(t, w.Observe(42))
	assert.False(t, w.Observe(42))
	assert.False(t, w.Observe(42))
	assert.True(t, w.Observe(43))
}

func TestWindowIsBounded(t *testing.T) {
	w := NewWindow()

	const total = 1500
	for id := 1; id <= total; id++ {
		w.Observe(id)
	}

	// The prune fires at 1001 keeping 500, then grows again; the window
	// never holds more than the threshold plus the current batch.
	assert.LessOrEqual(t, w.Len(), pruneThreshold)

	// The most recent 500 ids always remain queryable.
	for id := total - pruneKeep + 1; id <= total; id++ {
		assert.True(t, w.Seen(id), "id %d should still be in the window", id)
	}
	assert.False(t, w.Seen(1))
}

func TestPrunedIDsAreForgotten(t *testing.T) {
	w := NewWindow()
	for id := 1; id <= 1001; id++ {
		w.Observe(id)
	}
	// 1..501 were pruned; re-observing one of them counts as new again.
	assert.True(t, w.Observe(1))
}
