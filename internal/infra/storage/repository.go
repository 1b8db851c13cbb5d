package storage

import (
	"context"

	"github.com/vietddude/faultguard/internal/core/domain"
)

// SnapshotRepository persists diagnostic snapshots for the reporting
// collaborator.
type SnapshotRepository interface {
	// Add stores one snapshot.
	Add(ctx context.Context, snap *domain.DiagnosticSnapshot) error

	// List returns the most recent snapshots, newest first.
	List(ctx context.Context, limit int) ([]*domain.DiagnosticSnapshot, error)
}

// PreserveRepository holds pending-data markers written when a
// persistence controller degrades to offline mode.
type PreserveRepository interface {
	// Preserve stores the fault whose pending data needs recovery.
	Preserve(ctx context.Context, controllerID string, f domain.Fault) error

	// List returns preserved faults for a controller, oldest first.
	List(ctx context.Context, controllerID string) ([]*domain.Fault, error)

	// Clear drops all preserved entries for a controller.
	Clear(ctx context.Context, controllerID string) error
}
