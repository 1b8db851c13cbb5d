package domain

import "time"

// CascadeEntry is one fault notification in the cascade record.
type CascadeEntry struct {
	ErrorID   string    `json:"error_id"`
	Timestamp time.Time `json:"timestamp"`
	Type      FaultType `json:"type"`
	Component string    `json:"component"`
}

// CascadeRecord is the append-only, bounded sequence of fault
// notifications seen across all controllers in the current episode.
type CascadeRecord struct {
	Entries []CascadeEntry `json:"entries"`
	Ceiling int            `json:"ceiling"`
}

// Count returns the number of faults recorded this episode.
func (r CascadeRecord) Count() int {
	return len(r.Entries)
}
