package policy

import (
	"sort"

	"github.com/vietddude/faultguard/internal/core/domain"
)

// Defaults applied when a budget carries zero values.
const (
	DefaultBaseDelayMillis = 1000
	DefaultMaxDelayMillis  = 30000
	DefaultMaxAttempts     = 3

	// Rate-limited remote calls wait at least this long regardless of
	// the computed exponential delay.
	RateLimitFloorMillis = 30000
)

// Flags carry domain-specific modifiers into a decision.
type Flags struct {
	RateLimited bool // remote-api only: impose the delay floor
	Offline     bool // host reports no connectivity
}

// Decide computes a recovery decision from a classification and the
// caller's retry budget. Pure function; the caller owns the budget.
func Decide(c domain.Classification, budget domain.RetryBudget, flags Flags) domain.RecoveryDecision {
	budget = withDefaults(budget)

	shouldRetry := c.Retryable && !budget.Exhausted()
	if flags.Offline && c.Type != domain.TypeNetwork {
		shouldRetry = false
	}

	d := domain.RecoveryDecision{
		ShouldRetry:      shouldRetry,
		Terminal:         !shouldRetry,
		SuggestedActions: SuggestionsFor(c),
	}
	if shouldRetry {
		d.DelayMillis = Backoff(budget)
		if flags.RateLimited && c.Type == domain.TypeRemoteAPI && d.DelayMillis < RateLimitFloorMillis {
			d.DelayMillis = RateLimitFloorMillis
		}
	}
	return d
}

// Backoff calculates min(base * 2^attempts, max) without overflow.
func Backoff(budget domain.RetryBudget) uint {
	budget = withDefaults(budget)

	delay := uint64(budget.BaseDelayMillis)
	for i := uint(0); i < budget.AttemptsMade; i++ {
		delay *= 2
		if delay >= uint64(budget.MaxDelayMillis) {
			return budget.MaxDelayMillis
		}
	}
	if delay > uint64(budget.MaxDelayMillis) {
		return budget.MaxDelayMillis
	}
	return uint(delay)
}

func withDefaults(b domain.RetryBudget) domain.RetryBudget {
	if b.BaseDelayMillis == 0 {
		b.BaseDelayMillis = DefaultBaseDelayMillis
	}
	if b.MaxDelayMillis == 0 {
		b.MaxDelayMillis = DefaultMaxDelayMillis
	}
	if b.MaxAttempts == 0 {
		b.MaxAttempts = DefaultMaxAttempts
	}
	return b
}

// sortSuggestions orders a list by descending success probability.
// Stable so equal-probability entries keep generation order.
func sortSuggestions(s []domain.RecoverySuggestion) {
	sort.SliceStable(s, func(i, j int) bool {
		return s[i].SuccessProbability > s[j].SuccessProbability
	})
}
