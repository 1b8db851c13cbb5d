package cascade

import (
	"log/slog"
	"sync"

	"github.com/vietddude/faultguard/internal/core/domain"
)

// DefaultCeiling is the fault count at which an episode escalates.
const DefaultCeiling = 5

// Failer is a boundary controller as the guard sees it: something it
// can force into the Failed phase on escalation.
type Failer interface {
	ID() string
	ForceFail()
}

// Guard supervises fault notifications across all controllers and
// contains fault storms. It is an explicitly constructed, injected
// instance: one per application run, shared by every controller.
type Guard struct {
	mu          sync.Mutex
	record      domain.CascadeRecord
	controllers []Failer
	escalated   bool
	onEscalate  func(domain.CascadeRecord)
	log         *slog.Logger
}

// NewGuard creates a guard with the given ceiling (0 uses the default).
func NewGuard(ceiling int, onEscalate func(domain.CascadeRecord), log *slog.Logger) *Guard {
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}
	if log == nil {
		log = slog.Default()
	}
	return &Guard{
		record:     domain.CascadeRecord{Ceiling: ceiling},
		onEscalate: onEscalate,
		log:        log,
	}
}

// Register adds a controller to the escalation set.
func (g *Guard) Register(c Failer) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.controllers = append(g.controllers, c)
}

// Report appends one fault notification and checks the ceiling. The
// append-and-check is the single serialized operation shared across
// controllers. Returns true when this report crossed the ceiling or
// the episode is already escalated.
func (g *Guard) Report(entry domain.CascadeEntry) bool {
	g.mu.Lock()
	if g.escalated {
		g.mu.Unlock()
		return true
	}

	g.record.Entries = append(g.record.Entries, entry)
	if g.record.Count() < g.record.Ceiling {
		g.mu.Unlock()
		return false
	}

	g.escalated = true
	controllers := make([]Failer, len(g.controllers))
	copy(controllers, g.controllers)
	record := g.snapshotLocked()
	g.mu.Unlock()

	g.log.Error("cascade ceiling crossed, escalating",
		"count", record.Count(), "ceiling", record.Ceiling)

	for _, c := range controllers {
		c.ForceFail()
	}
	if g.onEscalate != nil {
		g.onEscalate(record)
	}
	return true
}

// Count returns the number of faults recorded in the current episode.
func (g *Guard) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.record.Count()
}

// Escalated reports whether the current episode has been escalated.
func (g *Guard) Escalated() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.escalated
}

// Record returns a copy of the cascade record.
func (g *Guard) Record() domain.CascadeRecord {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked()
}

// Reset clears the record and re-arms escalation. Only an explicit
// top-level recovery calls this; no controller's local recovery does.
func (g *Guard) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record.Entries = nil
	g.escalated = false
	g.log.Info("cascade record reset")
}

func (g *Guard) snapshotLocked() domain.CascadeRecord {
	out := domain.CascadeRecord{Ceiling: g.record.Ceiling}
	out.Entries = make([]domain.CascadeEntry, len(g.record.Entries))
	copy(out.Entries, g.record.Entries)
	return out
}
