package domain

// StepStatus is the outcome state of one recovery step.
type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepRunning   StepStatus = "running"
	StepSucceeded StepStatus = "succeeded"
	StepFailed    StepStatus = "failed"
)

// RecoveryStep is one entry in a user-facing recovery workflow.
type RecoveryStep struct {
	ID     string     `json:"id"`
	Status StepStatus `json:"status"`
	Reason string     `json:"reason,omitempty"`
}

// SessionSummary is what the core exposes about a recovery session.
type SessionSummary struct {
	Succeeded int  `json:"succeeded"`
	Total     int  `json:"total"`
	Halted    bool `json:"halted"`
}
