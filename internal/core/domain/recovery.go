package domain

// RecoveryMethod is how a suggestion proposes to recover.
type RecoveryMethod string

const (
	MethodRetry      RecoveryMethod = "retry"
	MethodFallback   RecoveryMethod = "fallback"
	MethodReload     RecoveryMethod = "reload"
	MethodReset      RecoveryMethod = "reset"
	MethodUserAction RecoveryMethod = "user-action"
)

// UIImpact estimates how disruptive executing a suggestion is.
type UIImpact string

const (
	ImpactLow    UIImpact = "low"
	ImpactMedium UIImpact = "medium"
	ImpactHigh   UIImpact = "high"
)

// RecoverySuggestion is one proposed recovery action. Read-only once
// generated; lists are ordered by descending SuccessProbability.
type RecoverySuggestion struct {
	ID                 string         `json:"id"`
	Method             RecoveryMethod `json:"method"`
	SuccessProbability float64        `json:"success_probability"`
	UIImpact           UIImpact       `json:"ui_impact"`
	Automated          bool           `json:"automated"`
}

// RetryBudget is the per-episode counter and ceiling governing how
// many automatic retries a controller may attempt.
type RetryBudget struct {
	AttemptsMade    uint `json:"attempts_made"`
	MaxAttempts     uint `json:"max_attempts"`
	BaseDelayMillis uint `json:"base_delay_ms"`
	MaxDelayMillis  uint `json:"max_delay_ms"`
}

// Exhausted reports whether the budget allows no further attempts.
func (b RetryBudget) Exhausted() bool {
	return b.AttemptsMade >= b.MaxAttempts
}

// RecoveryDecision is the policy engine's answer for one fault.
type RecoveryDecision struct {
	ShouldRetry      bool                 `json:"should_retry"`
	DelayMillis      uint                 `json:"delay_ms"`
	SuggestedActions []RecoverySuggestion `json:"suggested_actions"`
	Terminal         bool                 `json:"terminal"`
}
