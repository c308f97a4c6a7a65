// Package workbench hosts many lab sessions in one process and carries the
// caller-side behaviour around the core: pour semantics, delayed exercise
// advancement, analytics events, and metrics.
package workbench

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/p-n-ai/pai-lab/internal/lab"
)

var (
	// ErrBenchNotFound is returned for unknown bench IDs.
	ErrBenchNotFound = errors.New("bench not found")
	// ErrBenchLimit is returned when the store is full.
	ErrBenchLimit = errors.New("bench limit reached")
)

// Bench is one user's lab session plus the lock that serializes access to it.
type Bench struct {
	ID        string
	CreatedAt time.Time

	mu             sync.Mutex
	session        *lab.Session
	pendingAdvance *time.Timer
	closed         bool
}

// BenchStore keeps benches for the lifetime of the process.
type BenchStore interface {
	Create(session *lab.Session, createdAt time.Time) (*Bench, error)
	Get(id string) (*Bench, error)
	Delete(id string) error
	Count() int
}

// MemoryStore is an in-memory BenchStore.
type MemoryStore struct {
	benches map[string]*Bench
	limit   int
	mu      sync.RWMutex
}

// NewMemoryStore creates a store holding at most limit benches. Zero means
// unlimited.
func NewMemoryStore(limit int) *MemoryStore {
	return &MemoryStore{
		benches: make(map[string]*Bench),
		limit:   limit,
	}
}

func (s *MemoryStore) Create(session *lab.Session, createdAt time.Time) (*Bench, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.limit > 0 && len(s.benches) >= s.limit {
		return nil, fmt.Errorf("%w (%d)", ErrBenchLimit, s.limit)
	}
	b := &Bench{
		ID:        uuid.NewString(),
		CreatedAt: createdAt,
		session:   session,
	}
	s.benches[b.ID] = b
	return b, nil
}

func (s *MemoryStore) Get(id string) (*Bench, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.benches[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBenchNotFound, id)
	}
	return b, nil
}

func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.benches[id]; !ok {
		return fmt.Errorf("%w: %s", ErrBenchNotFound, id)
	}
	delete(s.benches, id)
	return nil
}

func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.benches)
}
