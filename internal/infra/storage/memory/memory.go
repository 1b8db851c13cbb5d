package memory

import (
	"context"
	"sync"

	"github.com/vietddude/faultguard/internal/core/domain"
)

// Storage is the in-memory fallback used when no database is
// configured. Suitable for tests and single-process runs.
type Storage struct {
	mu        sync.RWMutex
	snapshots []*domain.DiagnosticSnapshot
	preserved map[string][]*domain.Fault
}

// NewStorage creates empty in-memory storage.
func NewStorage() *Storage {
	return &Storage{preserved: make(map[string][]*domain.Fault)}
}

// SnapshotRepo implements storage.SnapshotRepository.
type SnapshotRepo struct {
	s *Storage
}

// NewSnapshotRepo creates an in-memory snapshot repository.
func NewSnapshotRepo(s *Storage) *SnapshotRepo {
	return &SnapshotRepo{s: s}
}

// Add stores one snapshot.
func (r *SnapshotRepo) Add(ctx context.Context, snap *domain.DiagnosticSnapshot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *snap
	r.s.snapshots = append(r.s.snapshots, &cp)
	return nil
}

// List returns the most recent snapshots, newest first.
func (r *SnapshotRepo) List(ctx context.Context, limit int) ([]*domain.DiagnosticSnapshot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := len(r.s.snapshots)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]*domain.DiagnosticSnapshot, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		cp := *r.s.snapshots[i]
		out = append(out, &cp)
	}
	return out, nil
}

// PreserveRepo implements storage.PreserveRepository.
type PreserveRepo struct {
	s *Storage
}

// NewPreserveRepo creates an in-memory preserve repository.
func NewPreserveRepo(s *Storage) *PreserveRepo {
	return &PreserveRepo{s: s}
}

// Preserve stores the fault whose pending data needs recovery.
func (r *PreserveRepo) Preserve(ctx context.Context, controllerID string, f domain.Fault) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := f
	r.s.preserved[controllerID] = append(r.s.preserved[controllerID], &cp)
	return nil
}

// List returns preserved faults for a controller, oldest first.
func (r *PreserveRepo) List(ctx context.Context, controllerID string) ([]*domain.Fault, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	items := r.s.preserved[controllerID]
	out := make([]*domain.Fault, 0, len(items))
	for _, f := range items {
		cp := *f
		out = append(out, &cp)
	}
	return out, nil
}

// Clear drops all preserved entries for a controller.
func (r *PreserveRepo) Clear(ctx context.Context, controllerID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.preserved, controllerID)
	return nil
}
