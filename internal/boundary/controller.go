package boundary

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vietddude/faultguard/internal/classify"
	"github.com/vietddude/faultguard/internal/core/domain"
	"github.com/vietddude/faultguard/internal/policy"
)

// RetryFunc re-enters the protected region. A nil error closes the
// fault episode and returns the controller to Healthy.
type RetryFunc func(ctx context.Context) error

// Reporter receives every fault notification. Report returns true when
// the cascade ceiling was crossed and automatic recovery is shut off.
type Reporter interface {
	Report(entry domain.CascadeEntry) bool
}

// Collector assembles diagnostics on terminal transitions. It must
// never fail into the fault-handling path.
type Collector interface {
	Collect(ctx context.Context, controllerID string, f domain.Fault, c domain.Classification)
}

// Preserver snapshots pending local data before a persistence
// controller degrades to offline mode.
type Preserver interface {
	Preserve(ctx context.Context, controllerID string, f domain.Fault) error
}

// Config wires a controller's collaborators.
type Config struct {
	ID           string
	Policy       DomainPolicy
	Retry        RetryFunc
	Reporter     Reporter
	Collector    Collector
	Preserver    Preserver
	OnTransition func(domain.Transition)
	OfflineProbe func() bool
	Logger       *slog.Logger
}

// Controller owns the fault state machine for one protected region.
// At most one fault episode is active at a time; all state is guarded
// by the controller's own mutex and never shared.
type Controller struct {
	id           string
	policy       DomainPolicy
	retryFn      RetryFunc
	reporter     Reporter
	collector    Collector
	preserver    Preserver
	onTransition func(domain.Transition)
	offlineProbe func() bool
	log          *slog.Logger

	mu           sync.Mutex
	state        domain.BoundaryState
	lastDecision domain.RecoveryDecision
	rateLimited  bool
	retryTimer   *time.Timer
	retrySeq     uint64
	closed       bool
}

// New creates a controller in the Healthy phase.
func New(cfg Config) *Controller {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	c := &Controller{
		id:           cfg.ID,
		policy:       cfg.Policy,
		retryFn:      cfg.Retry,
		reporter:     cfg.Reporter,
		collector:    cfg.Collector,
		preserver:    cfg.Preserver,
		onTransition: cfg.OnTransition,
		offlineProbe: cfg.OfflineProbe,
		log:          log.With("controller", cfg.ID, "domain", cfg.Policy.Domain),
	}
	c.state = domain.BoundaryState{
		ControllerID: cfg.ID,
		Domain:       cfg.Policy.Domain,
		Phase:        domain.PhaseHealthy,
		RetryBudget:  cfg.Policy.Budget(),
	}
	return c
}

// ID returns the controller identifier.
func (c *Controller) ID() string { return c.id }

// State returns a copy of the current boundary state.
func (c *Controller) State() domain.BoundaryState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Suggestions returns the suggestion list from the last decision,
// ordered by descending success probability.
func (c *Controller) Suggestions() []domain.RecoverySuggestion {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.RecoverySuggestion, len(c.lastDecision.SuggestedActions))
	copy(out, c.lastDecision.SuggestedActions)
	return out
}

// CaptureFault runs the full fault pipeline for an error raised inside
// the protected region: enhance, classify, report to the cascade
// guard, decide, and act. The fault never propagates past this call;
// the returned decision summarizes what the controller did.
func (c *Controller) CaptureFault(ctx context.Context, err error, fctx map[string]string) domain.RecoveryDecision {
	enh := classify.Enhance(err, fctx)
	if enh.Fault.Component == "" {
		enh.Fault.Component = c.id
	}
	cls := classify.Classify(enh)

	c.mu.Lock()
	if c.closed || c.state.Phase == domain.PhaseFailed {
		d := c.lastDecision
		c.mu.Unlock()
		d.ShouldRetry = false
		d.Terminal = true
		return d
	}
	from := c.state.Phase
	c.state.Phase = domain.PhaseFaulted
	c.state.LastFault = &enh.Fault
	c.state.LastClassification = &cls
	c.rateLimited = classify.IsRateLimited(enh)
	budget := c.state.RetryBudget
	c.mu.Unlock()

	c.emit(from, domain.PhaseFaulted, &cls)
	if c.collector != nil {
		c.collector.Collect(ctx, c.id, enh.Fault, cls)
	}

	escalated := false
	if c.reporter != nil {
		escalated = c.reporter.Report(domain.CascadeEntry{
			ErrorID:   enh.Fault.ID,
			Timestamp: enh.Fault.CapturedAt,
			Type:      cls.Type,
			Component: enh.Fault.Component,
		})
	}
	if escalated {
		// The guard has forced every controller, us included, into
		// Failed; nothing further to decide.
		c.mu.Lock()
		d := c.lastDecision
		c.mu.Unlock()
		d.ShouldRetry = false
		d.Terminal = true
		return d
	}

	flags := policy.Flags{RateLimited: c.rateLimited}
	if c.offlineProbe != nil {
		flags.Offline = c.offlineProbe()
	}
	decision := policy.Decide(cls, budget, flags)

	c.act(ctx, enh.Fault, cls, decision)
	return decision
}

// act applies a decision to the state machine.
func (c *Controller) act(ctx context.Context, f domain.Fault, cls domain.Classification, d domain.RecoveryDecision) {
	c.mu.Lock()
	if c.closed || c.state.Phase != domain.PhaseFaulted {
		c.mu.Unlock()
		return
	}
	c.lastDecision = d

	if d.ShouldRetry {
		if c.policy.DegradeAfter > 0 && c.state.RetryBudget.AttemptsMade >= c.policy.DegradeAfter {
			c.state.Phase = domain.PhaseDegraded
			c.mu.Unlock()
			c.emit(domain.PhaseFaulted, domain.PhaseDegraded, &cls)
			c.log.Warn("switching to fallback mode", "type", cls.Type)
			return
		}
		c.state.Phase = domain.PhaseRecovering
		c.scheduleRetryLocked(time.Duration(d.DelayMillis) * time.Millisecond)
		c.mu.Unlock()
		c.emit(domain.PhaseFaulted, domain.PhaseRecovering, &cls)
		return
	}

	if c.policy.PreserveOnTerminal && !cls.Retryable {
		c.state.Phase = domain.PhaseDegraded
		c.mu.Unlock()
		if c.preserver != nil {
			if err := c.preserver.Preserve(ctx, c.id, f); err != nil {
				c.log.Warn("failed to preserve pending data", "error", err)
			}
		}
		c.emit(domain.PhaseFaulted, domain.PhaseDegraded, &cls)
		return
	}

	c.state.Phase = domain.PhaseFailed
	c.mu.Unlock()
	c.emit(domain.PhaseFaulted, domain.PhaseFailed, &cls)
	if c.collector != nil {
		c.collector.Collect(ctx, c.id, f, cls)
	}
}

// scheduleRetryLocked arms the retry timer. Caller holds the mutex.
func (c *Controller) scheduleRetryLocked(delay time.Duration) {
	c.cancelTimerLocked()
	c.retrySeq++
	seq := c.retrySeq
	c.retryTimer = time.AfterFunc(delay, func() {
		c.fireRetry(context.Background(), seq)
	})
}

// cancelTimerLocked stops any pending retry. Caller holds the mutex.
// Bumping the sequence makes an already-fired timer abandon itself.
func (c *Controller) cancelTimerLocked() {
	if c.retryTimer != nil {
		c.retryTimer.Stop()
		c.retryTimer = nil
	}
	c.retrySeq++
}

// fireRetry executes one scheduled retry attempt.
func (c *Controller) fireRetry(ctx context.Context, seq uint64) {
	c.mu.Lock()
	if c.closed || seq != c.retrySeq || c.state.Phase != domain.PhaseRecovering {
		c.mu.Unlock()
		return
	}
	c.retryTimer = nil
	c.mu.Unlock()

	c.attempt(ctx)
}

// Retry is the manual trigger: it transitions to Recovering and
// re-enters the protected region immediately, bypassing the schedule.
func (c *Controller) Retry(ctx context.Context) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	switch c.state.Phase {
	case domain.PhaseFaulted, domain.PhaseRecovering, domain.PhaseDegraded:
	default:
		c.mu.Unlock()
		return
	}
	c.cancelTimerLocked()
	from := c.state.Phase
	c.state.Phase = domain.PhaseRecovering
	cls := c.state.LastClassification
	c.mu.Unlock()

	if from != domain.PhaseRecovering {
		c.emit(from, domain.PhaseRecovering, cls)
	}
	c.attempt(ctx)
}

// attempt runs the protected region once and routes the outcome back
// through the state machine.
func (c *Controller) attempt(ctx context.Context) {
	if c.retryFn == nil {
		return
	}
	err := c.retryFn(ctx)
	if err == nil {
		c.recover()
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	// The budget carries across retries until Healthy: this attempt
	// failed, so the next decision sees one more attempt made.
	c.state.RetryBudget.AttemptsMade++
	c.mu.Unlock()

	c.CaptureFault(ctx, err, c.retryContext())
}

// recover closes the episode: Recovering -> Healthy with a fresh
// budget, since no fault is pending.
func (c *Controller) recover() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	from := c.state.Phase
	c.cancelTimerLocked()
	c.state.Phase = domain.PhaseHealthy
	c.state.RetryBudget = c.policy.Budget()
	c.state.LastFault = nil
	c.state.LastClassification = nil
	c.lastDecision = domain.RecoveryDecision{}
	c.mu.Unlock()

	c.emit(from, domain.PhaseHealthy, nil)
	c.log.Info("recovered")
}

// ContinueAnyway is the user-triggered escape: any state -> Healthy.
// It clears the fault and the pending retry but does not touch the
// cascade accounting.
func (c *Controller) ContinueAnyway() {
	c.mu.Lock()
	if c.closed || c.state.Phase == domain.PhaseHealthy {
		c.mu.Unlock()
		return
	}
	from := c.state.Phase
	c.cancelTimerLocked()
	c.state.Phase = domain.PhaseHealthy
	c.state.RetryBudget = c.policy.Budget()
	c.state.LastFault = nil
	c.state.LastClassification = nil
	c.lastDecision = domain.RecoveryDecision{}
	c.mu.Unlock()

	c.emit(from, domain.PhaseHealthy, nil)
}

// SwitchToFallback manually moves the controller into Degraded mode.
func (c *Controller) SwitchToFallback() {
	c.mu.Lock()
	if c.closed || c.state.Phase == domain.PhaseDegraded || c.state.Phase == domain.PhaseFailed {
		c.mu.Unlock()
		return
	}
	from := c.state.Phase
	c.cancelTimerLocked()
	c.state.Phase = domain.PhaseDegraded
	cls := c.state.LastClassification
	c.mu.Unlock()

	c.emit(from, domain.PhaseDegraded, cls)
}

// ForceFail is invoked by the cascade guard on critical escalation.
func (c *Controller) ForceFail() {
	c.mu.Lock()
	if c.closed || c.state.Phase == domain.PhaseFailed {
		c.mu.Unlock()
		return
	}
	from := c.state.Phase
	c.cancelTimerLocked()
	c.state.Phase = domain.PhaseFailed
	cls := c.state.LastClassification
	var f domain.Fault
	if c.state.LastFault != nil {
		f = *c.state.LastFault
	}
	c.mu.Unlock()

	c.emit(from, domain.PhaseFailed, cls)
	if c.collector != nil && cls != nil {
		c.collector.Collect(context.Background(), c.id, f, *cls)
	}
}

// Close releases the controller and its retry timer. The protected
// region is being torn down; no further transitions occur.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.cancelTimerLocked()
	c.closed = true
}

func (c *Controller) emit(from, to domain.Phase, cls *domain.Classification) {
	if c.onTransition == nil || from == to {
		return
	}
	c.onTransition(domain.Transition{
		ControllerID:   c.id,
		From:           from,
		To:             to,
		Classification: cls,
	})
}

// retryContext rebuilds the ambient context for a retry-raised fault.
func (c *Controller) retryContext() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ctx := map[string]string{"domain": string(c.policy.Domain)}
	if c.state.LastFault != nil {
		for k, v := range c.state.LastFault.Context {
			ctx[k] = v
		}
		ctx["domain"] = string(c.policy.Domain)
	}
	return ctx
}
