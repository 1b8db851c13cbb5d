package diagnostics

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vietddude/faultguard/internal/core/domain"
	"github.com/vietddude/faultguard/internal/metrics"
)

// Reporter is the external collaborator that receives snapshots. The
// collector's job ends at snapshot construction; transport and storage
// belong to the reporter.
type Reporter interface {
	Report(ctx context.Context, snap domain.DiagnosticSnapshot) error
}

// Collector assembles diagnostic snapshots on terminal transitions.
// Collection never throws into the fault-handling path it instruments:
// probe and reporter failures are swallowed and logged low-severity.
type Collector struct {
	probe    EnvironmentProbe
	reporter Reporter
	timeout  time.Duration
	log      *slog.Logger
}

// NewCollector creates a collector. probe and reporter may be nil; a
// nil probe yields zero-valued environment data.
func NewCollector(probe EnvironmentProbe, reporter Reporter, log *slog.Logger) *Collector {
	if log == nil {
		log = slog.Default()
	}
	return &Collector{
		probe:    probe,
		reporter: reporter,
		timeout:  5 * time.Second,
		log:      log,
	}
}

// Collect builds and reports a snapshot in the background. Probes may
// perform I/O, so classification and retry decisions never wait on it.
func (c *Collector) Collect(ctx context.Context, controllerID string, f domain.Fault, cls domain.Classification) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				c.log.Debug("diagnostics collection panicked", "panic", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		snap := c.Snapshot(ctx, controllerID, f, cls)
		if c.reporter == nil {
			return
		}
		if err := c.reporter.Report(ctx, snap); err != nil {
			c.log.Debug("failed to report diagnostic snapshot", "error", err)
		}
	}()
}

// Snapshot builds an immutable point-in-time diagnostic record.
func (c *Collector) Snapshot(ctx context.Context, controllerID string, f domain.Fault, cls domain.Classification) domain.DiagnosticSnapshot {
	snap := domain.DiagnosticSnapshot{
		ID:             uuid.New().String(),
		ControllerID:   controllerID,
		Fault:          f,
		Classification: cls,
		CreatedAt:      time.Now(),
	}
	if c.probe != nil {
		snap.Environment = c.probe.Environment(ctx)
		snap.Performance = c.probe.Performance(ctx)
	}

	metrics.SnapshotsCollected.WithLabelValues(string(cls.Type)).Inc()
	return snap
}
