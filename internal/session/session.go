package session

import (
	"fmt"
	"sync"

	"github.com/vietddude/faultguard/internal/core/domain"
)

// DefaultSteps returns the recovery workflow for a fault domain.
func DefaultSteps(d domain.FaultDomain) []string {
	switch d {
	case domain.DomainDialogue:
		return []string{"check-connection", "clear-cache", "restart-session"}
	case domain.DomainRemoteAPI:
		return []string{"check-connection", "retry-request", "check-service-status"}
	case domain.DomainStreaming:
		return []string{"reconnect-stream", "switch-to-polling", "restart-session"}
	case domain.DomainPersistence:
		return []string{"retry-save", "refresh-auth", "export-local-copy"}
	case domain.DomainFileTransfer:
		return []string{"validate-file", "retry-transfer", "contact-support"}
	default:
		return []string{"retry", "reload"}
	}
}

// Session tracks one user-facing recovery workflow: an ordered list of
// steps, each pending, running, succeeded or failed. Rendering is the
// caller's concern; only state transitions and the summary live here.
type Session struct {
	mu     sync.Mutex
	steps  []domain.RecoveryStep
	cursor int  // index of the running step, -1 before Start
	halted bool // a failed step blocks all further advancement
}

// New creates a session from ordered step IDs.
func New(stepIDs []string) *Session {
	steps := make([]domain.RecoveryStep, len(stepIDs))
	for i, id := range stepIDs {
		steps[i] = domain.RecoveryStep{ID: id, Status: domain.StepPending}
	}
	return &Session{steps: steps, cursor: -1}
}

// ForDomain creates a session with the domain's default workflow.
func ForDomain(d domain.FaultDomain) *Session {
	return New(DefaultSteps(d))
}

// Start marks the first step running.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.steps) == 0 {
		return fmt.Errorf("session has no steps")
	}
	if s.cursor != -1 {
		return fmt.Errorf("session already started")
	}
	s.cursor = 0
	s.steps[0].Status = domain.StepRunning
	return nil
}

// Complete records the running step's outcome. On success the next
// step starts running; a failure halts the session and records the
// reason.
func (s *Session) Complete(ok bool, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor < 0 || s.cursor >= len(s.steps) {
		return fmt.Errorf("no step running")
	}
	if s.halted {
		return fmt.Errorf("session halted at step %q", s.steps[s.cursor].ID)
	}
	step := &s.steps[s.cursor]
	if step.Status != domain.StepRunning {
		return fmt.Errorf("step %q is %s, not running", step.ID, step.Status)
	}

	if !ok {
		step.Status = domain.StepFailed
		step.Reason = reason
		s.halted = true
		return nil
	}

	step.Status = domain.StepSucceeded
	if s.cursor+1 < len(s.steps) {
		s.cursor++
		s.steps[s.cursor].Status = domain.StepRunning
	}
	return nil
}

// Current returns the step in progress, if any.
func (s *Session) Current() (domain.RecoveryStep, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor < 0 || s.cursor >= len(s.steps) {
		return domain.RecoveryStep{}, false
	}
	step := s.steps[s.cursor]
	if step.Status != domain.StepRunning {
		return domain.RecoveryStep{}, false
	}
	return step, true
}

// FailureReason returns the halting step's reason, if the session
// halted.
func (s *Session) FailureReason() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.halted {
		return "", false
	}
	return s.steps[s.cursor].Reason, true
}

// Steps returns a copy of the step list.
func (s *Session) Steps() []domain.RecoveryStep {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.RecoveryStep, len(s.steps))
	copy(out, s.steps)
	return out
}

// Summary reports succeeded count versus total. This, not the step
// list, is what collaborators consume.
func (s *Session) Summary() domain.SessionSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum := domain.SessionSummary{Total: len(s.steps), Halted: s.halted}
	for _, st := range s.steps {
		if st.Status == domain.StepSucceeded {
			sum.Succeeded++
		}
	}
	return sum
}
