package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreSetGetClear(t *testing.T) {
	s := NewMemoryStore(0)

	_, ok := s.Get("admin")
	assert.False(t, ok)

	s.Set("admin", &EditBell{Step: BellStart, Number: 3})
	f, ok := s.Get("admin")
	require.True(t, ok)
	bell, ok := f.(*EditBell)
	require.True(t, ok)
	assert.Equal(t, 3, bell.Number)
	assert.Equal(t, BellStart, bell.Step)

	s.Clear("admin")
	_, ok = s.Get("admin")
	assert.False(t, ok)
}

func TestStoreReplacesContext(t *testing.T) {
	s := NewMemoryStore(0)
	s.Set("admin", &AddClass{})
	s.Set("admin", &DeleteUser{})

	f, ok := s.Get("admin")
	require.True(t, ok)
	_, ok = f.(*DeleteUser)
	assert.True(t, ok)
}

func TestStoreTTLExpiry(t *testing.T) {
	s := NewMemoryStore(30 * time.Minute)
	base := time.Now()
	s.now = func() time.Time { return base }

	s.Set("admin", &AddClass{})

	s.now = func() time.Time { return base.Add(29 * time.Minute) }
	_, ok := s.Get("admin")
	assert.True(t, ok)

	s.now = func() time.Time { return base.Add(31 * time.Minute) }
	_, ok = s.Get("admin")
	assert.False(t, ok)
}

func TestStoreZeroTTLNeverExpires(t *testing.T) {
	s := NewMemoryStore(0)
	base := time.Now()
	s.now = func() time.Time { return base }
	s.Set("admin", &AddClass{})

	s.now = func() time.Time { return base.Add(1000 * time.Hour) }
	_, ok := s.Get("admin")
	assert.True(t, ok)
}
