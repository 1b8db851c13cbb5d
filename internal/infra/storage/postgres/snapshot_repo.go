package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/vietddude/faultguard/internal/core/domain"
)

// SnapshotRepo implements storage.SnapshotRepository using PostgreSQL.
type SnapshotRepo struct {
	db *DB
}

// NewSnapshotRepo creates a PostgreSQL snapshot repository.
func NewSnapshotRepo(db *DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// Add stores one snapshot.
func (r *SnapshotRepo) Add(ctx context.Context, snap *domain.DiagnosticSnapshot) error {
	query := `
		INSERT INTO diagnostic_snapshots
			(id, controller_id, fault_id, component, message, fault_type, category,
			 severity, retryable, matched_patterns, confidence, hostname, online,
			 heap_alloc_bytes, num_goroutine, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := r.db.ExecContext(
		ctx,
		query,
		snap.ID,
		snap.ControllerID,
		snap.Fault.ID,
		snap.Fault.Component,
		snap.Fault.Message,
		string(snap.Classification.Type),
		string(snap.Classification.Category),
		string(snap.Classification.Severity),
		snap.Classification.Retryable,
		pq.Array(snap.Classification.MatchedPatterns),
		snap.Classification.Confidence,
		snap.Environment.Hostname,
		snap.Environment.Online,
		snap.Performance.HeapAllocBytes,
		snap.Environment.NumGoroutine,
		snap.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return nil
}

// List returns the most recent snapshots, newest first.
func (r *SnapshotRepo) List(ctx context.Context, limit int) ([]*domain.DiagnosticSnapshot, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, controller_id, fault_id, component, message, fault_type, category,
		       severity, retryable, matched_patterns, confidence, hostname, online,
		       heap_alloc_bytes, num_goroutine, created_at
		FROM diagnostic_snapshots
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryxContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var out []*domain.DiagnosticSnapshot
	for rows.Next() {
		var dest struct {
			ID              string         `db:"id"`
			ControllerID    string         `db:"controller_id"`
			FaultID         string         `db:"fault_id"`
			Component       string         `db:"component"`
			Message         string         `db:"message"`
			FaultType       string         `db:"fault_type"`
			Category        string         `db:"category"`
			Severity        string         `db:"severity"`
			Retryable       bool           `db:"retryable"`
			MatchedPatterns pq.StringArray `db:"matched_patterns"`
			Confidence      float64        `db:"confidence"`
			Hostname        string         `db:"hostname"`
			Online          bool           `db:"online"`
			HeapAllocBytes  uint64         `db:"heap_alloc_bytes"`
			NumGoroutine    int            `db:"num_goroutine"`
			CreatedAt       time.Time      `db:"created_at"`
		}
		if err := rows.StructScan(&dest); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}

		out = append(out, &domain.DiagnosticSnapshot{
			ID:           dest.ID,
			ControllerID: dest.ControllerID,
			Fault: domain.Fault{
				ID:        dest.FaultID,
				Component: dest.Component,
				Message:   dest.Message,
			},
			Classification: domain.Classification{
				Type:            domain.FaultType(dest.FaultType),
				Category:        domain.Category(dest.Category),
				Severity:        domain.Severity(dest.Severity),
				Retryable:       dest.Retryable,
				MatchedPatterns: dest.MatchedPatterns,
				Confidence:      dest.Confidence,
			},
			Environment: domain.EnvironmentInfo{
				Hostname:     dest.Hostname,
				Online:       dest.Online,
				NumGoroutine: dest.NumGoroutine,
			},
			Performance: domain.PerformanceInfo{
				HeapAllocBytes: dest.HeapAllocBytes,
			},
			CreatedAt: dest.CreatedAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshots: %w", err)
	}
	return out, nil
}
