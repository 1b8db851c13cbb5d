package session

import (
	"testing"

	"github.com/vietddude/faultguard/internal/core/domain"
)

func TestHappyPath(t *testing.T) {
	s := ForDomain(domain.DomainDialogue)
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		step, ok := s.Current()
		if !ok {
			t.Fatalf("no running step at %d", i)
		}
		if step.Status != domain.StepRunning {
			t.Fatalf("step %q status = %s", step.ID, step.Status)
		}
		if err := s.Complete(true, ""); err != nil {
			t.Fatal(err)
		}
	}

	sum := s.Summary()
	if sum.Succeeded != 3 || sum.Total != 3 || sum.Halted {
		t.Errorf("summary = %+v, want 3/3 not halted", sum)
	}
}

func TestFailureHaltsAdvancement(t *testing.T) {
	s := New([]string{"a", "b", "c"})
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	if err := s.Complete(true, ""); err != nil {
		t.Fatal(err)
	}
	if err := s.Complete(false, "cache locked"); err != nil {
		t.Fatal(err)
	}

	// Halted: nothing runs, completing fails.
	if _, ok := s.Current(); ok {
		t.Error("no step should be running after failure")
	}
	if err := s.Complete(true, ""); err == nil {
		t.Error("completing a halted session should fail")
	}

	reason, halted := s.FailureReason()
	if !halted || reason != "cache locked" {
		t.Errorf("failure reason = %q halted=%v", reason, halted)
	}

	sum := s.Summary()
	if sum.Succeeded != 1 || sum.Total != 3 || !sum.Halted {
		t.Errorf("summary = %+v, want 1/3 halted", sum)
	}

	steps := s.Steps()
	if steps[2].Status != domain.StepPending {
		t.Errorf("step c status = %s, want pending", steps[2].Status)
	}
}

func TestStartGuards(t *testing.T) {
	s := New(nil)
	if err := s.Start(); err == nil {
		t.Error("starting an empty session should fail")
	}

	s = New([]string{"a"})
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	if err := s.Start(); err == nil {
		t.Error("double start should fail")
	}
}

func TestDefaultStepsPerDomain(t *testing.T) {
	domains := []domain.FaultDomain{
		domain.DomainDialogue, domain.DomainRemoteAPI, domain.DomainStreaming,
		domain.DomainPersistence, domain.DomainFileTransfer,
	}
	for _, d := range domains {
		if steps := DefaultSteps(d); len(steps) == 0 {
			t.Errorf("no default steps for %s", d)
		}
	}
	if steps := DefaultSteps(domain.DomainDialogue); steps[0] != "check-connection" {
		t.Errorf("dialogue first step = %q, want check-connection", steps[0])
	}
}
