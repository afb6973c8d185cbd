// Package state keeps the per-identity dialog context of multi-step flows.
// At most one flow is active per identity; the context lives in memory only
// and is dropped on completion, cancellation or invalid input.
package state

import (
	"sync"
	"time"
)

// Flow is the tagged union of dialog contexts. Each multi-step interaction
// has its own struct so a step can only read fields that belong to its flow.
type Flow interface {
	flow()
}

// AddClass waits for a class name to validate.
type AddClass struct{}

// DeleteClass waits for a class name whose users will be removed.
type DeleteClass struct{}

// DeleteUser waits for a numeric user id.
type DeleteUser struct{}

// BellStep enumerates the steps of the bell editing flow.
type BellStep int

const (
	BellNumber BellStep = iota // waiting for the lesson number 1..7
	BellStart                  // waiting for the start time
	BellEnd                    // waiting for the end time
)

// EditBell carries the bell editing flow across its three steps.
type EditBell struct {
	Step   BellStep
	Number int
	Start  string
}

// ScheduleStep enumerates the steps of the manual schedule editing flow.
type ScheduleStep int

const (
	SchedulePickClass ScheduleStep = iota // waiting for a class_ callback
	SchedulePickDay                       // waiting for a day_ callback
	ScheduleEnterText                     // waiting for the schedule text block
)

// EditSchedule carries the manual schedule editing flow.
type EditSchedule struct {
	Step  ScheduleStep
	Class string
	Day   string
}

// ImportSchedule carries the workbook import flow: first the shift is
// picked, then a document is awaited.
type ImportSchedule struct {
	Shift        string
	AwaitingFile bool
}

func (*AddClass) flow()       {}
func (*DeleteClass) flow()    {}
func (*DeleteUser) flow()     {}
func (*EditBell) flow()       {}
func (*EditSchedule) flow()   {}
func (*ImportSchedule) flow() {}

// Store maps an identity to its active flow context.
type Store interface {
	Get(identity string) (Flow, bool)
	Set(identity string, f Flow)
	Clear(identity string)
}

type entry struct {
	flow    Flow
	touched time.Time
}

// MemoryStore is the in-memory Store. With a positive ttl an abandoned
// context expires lazily on the next Get; ttl <= 0 keeps contexts forever.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry
	now     func() time.Time
}

// NewMemoryStore creates an empty MemoryStore with the given context ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(identity string) (Flow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[identity]
	if !ok {
		return nil, false
	}
	if s.ttl > 0 && s.now().Sub(e.touched) > s.ttl {
		delete(s.entries, identity)
		return nil, false
	}
	return e.flow, true
}

func (s *MemoryStore) Set(identity string, f Flow) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[identity] = entry{flow: f, touched: s.now()}
}

func (s *MemoryStore) Clear(identity string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, identity)
}
