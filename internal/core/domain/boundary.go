package domain

// Phase is a boundary controller's position in its fault state machine.
type Phase string

const (
	PhaseHealthy    Phase = "healthy"
	PhaseFaulted    Phase = "faulted"
	PhaseRecovering Phase = "recovering"
	PhaseDegraded   Phase = "degraded"
	PhaseFailed     Phase = "failed"
)

// BoundaryState is the externally visible state of one controller.
// Mutated only by its owning controller.
type BoundaryState struct {
	ControllerID       string          `json:"controller_id"`
	Domain             FaultDomain     `json:"domain"`
	Phase              Phase           `json:"phase"`
	RetryBudget        RetryBudget     `json:"retry_budget"`
	LastFault          *Fault          `json:"last_fault,omitempty"`
	LastClassification *Classification `json:"last_classification,omitempty"`
}

// Transition describes one state change, as reported to collaborators.
type Transition struct {
	ControllerID   string          `json:"controller_id"`
	From           Phase           `json:"from"`
	To             Phase           `json:"to"`
	Classification *Classification `json:"classification,omitempty"`
}
