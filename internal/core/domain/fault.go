package domain

import "time"

// FaultDomain identifies which protected region a fault came from.
type FaultDomain string

const (
	DomainDialogue     FaultDomain = "dialogue"
	DomainRemoteAPI    FaultDomain = "remote-api"
	DomainStreaming    FaultDomain = "streaming"
	DomainPersistence  FaultDomain = "persistence"
	DomainFileTransfer FaultDomain = "file-transfer"
)

// Fault is a raw error plus the ambient context captured with it.
// Immutable once captured; owned by the boundary controller that
// caught it until classification completes.
type Fault struct {
	ID         string            `json:"id"`
	Message    string            `json:"message"`
	Name       string            `json:"name,omitempty"`
	Stack      string            `json:"stack,omitempty"`
	Component  string            `json:"component,omitempty"`
	UserID     string            `json:"user_id,omitempty"`
	SessionID  string            `json:"session_id,omitempty"`
	Context    map[string]string `json:"context,omitempty"`
	Cause      error             `json:"-"`
	CapturedAt time.Time         `json:"captured_at"`
}

// ContextValue returns a context hint by key, empty string if absent.
func (f *Fault) ContextValue(key string) string {
	if f.Context == nil {
		return ""
	}
	return f.Context[key]
}
