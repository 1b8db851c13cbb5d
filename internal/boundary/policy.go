package boundary

import (
	"github.com/vietddude/faultguard/internal/core/domain"
	"github.com/vietddude/faultguard/internal/policy"
)

// DomainPolicy parameterizes the shared fault state machine for one
// fault domain. The five variants differ only in these constants and
// the degrade/preserve hooks.
type DomainPolicy struct {
	Domain          domain.FaultDomain
	MaxAttempts     uint
	BaseDelayMillis uint
	MaxDelayMillis  uint

	// DegradeAfter switches the controller to Degraded (fallback mode)
	// once this many retry attempts have failed within one episode.
	// Zero disables the transition.
	DegradeAfter uint

	// PreserveOnTerminal snapshots pending local data and degrades
	// instead of failing on a non-retryable fault.
	PreserveOnTerminal bool
}

// Budget returns a fresh retry budget for a new fault episode.
func (p DomainPolicy) Budget() domain.RetryBudget {
	return domain.RetryBudget{
		MaxAttempts:     p.MaxAttempts,
		BaseDelayMillis: p.BaseDelayMillis,
		MaxDelayMillis:  p.MaxDelayMillis,
	}
}

// Domain presets. Delays are uniform; the variants differ in budget
// and extra transitions.
var (
	DialoguePolicy = DomainPolicy{
		Domain:          domain.DomainDialogue,
		MaxAttempts:     3,
		BaseDelayMillis: policy.DefaultBaseDelayMillis,
		MaxDelayMillis:  policy.DefaultMaxDelayMillis,
	}

	RemoteAPIPolicy = DomainPolicy{
		Domain:          domain.DomainRemoteAPI,
		MaxAttempts:     3,
		BaseDelayMillis: policy.DefaultBaseDelayMillis,
		MaxDelayMillis:  policy.DefaultMaxDelayMillis,
	}

	// Streaming degrades to a polling-equivalent channel after two
	// failed reconnects rather than burning the whole budget on the
	// primary channel.
	StreamingPolicy = DomainPolicy{
		Domain:          domain.DomainStreaming,
		MaxAttempts:     3,
		BaseDelayMillis: policy.DefaultBaseDelayMillis,
		MaxDelayMillis:  policy.DefaultMaxDelayMillis,
		DegradeAfter:    2,
	}

	// Persistence preserves pending local data and goes offline
	// (Degraded) instead of Failed on non-retryable faults.
	PersistencePolicy = DomainPolicy{
		Domain:             domain.DomainPersistence,
		MaxAttempts:        3,
		BaseDelayMillis:    policy.DefaultBaseDelayMillis,
		MaxDelayMillis:     policy.DefaultMaxDelayMillis,
		PreserveOnTerminal: true,
	}

	FileTransferPolicy = DomainPolicy{
		Domain:          domain.DomainFileTransfer,
		MaxAttempts:     3,
		BaseDelayMillis: policy.DefaultBaseDelayMillis,
		MaxDelayMillis:  policy.DefaultMaxDelayMillis,
	}
)

// PolicyFor returns the preset for a fault domain.
func PolicyFor(d domain.FaultDomain) DomainPolicy {
	switch d {
	case domain.DomainDialogue:
		return DialoguePolicy
	case domain.DomainRemoteAPI:
		return RemoteAPIPolicy
	case domain.DomainStreaming:
		return StreamingPolicy
	case domain.DomainPersistence:
		return PersistencePolicy
	case domain.DomainFileTransfer:
		return FileTransferPolicy
	default:
		return DomainPolicy{
			Domain:          d,
			MaxAttempts:     3,
			BaseDelayMillis: policy.DefaultBaseDelayMillis,
			MaxDelayMillis:  policy.DefaultMaxDelayMillis,
		}
	}
}
