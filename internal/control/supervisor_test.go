package control

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vietddude/faultguard/internal/core/config"
	"github.com/vietddude/faultguard/internal/core/domain"
)

func testConfig() Config {
	return Config{
		Port:               0,
		MaxCascadingErrors: 5,
		Controllers: []config.ControllerConfig{
			{ID: "dialogue", Domain: domain.DomainDialogue, BaseDelayMillis: 1, MaxDelayMillis: 2},
			{ID: "remote-api", Domain: domain.DomainRemoteAPI, BaseDelayMillis: 1, MaxDelayMillis: 2},
			{ID: "streaming", Domain: domain.DomainStreaming, BaseDelayMillis: 1, MaxDelayMillis: 2},
		},
	}
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestSupervisorEscalatesAcrossControllers(t *testing.T) {
	sup, err := NewSupervisor(testConfig())
	if err != nil {
		t.Fatalf("NewSupervisor: %v", err)
	}

	var mu sync.Mutex
	escalations := 0
	sup.OnCriticalEscalation(func(r domain.CascadeRecord) {
		mu.Lock()
		escalations++
		mu.Unlock()
	})

	ctx := context.Background()
	ids := []string{"dialogue", "remote-api", "streaming"}
	faultErr := errors.New("network timeout while fetching")

	// Four faults stay below the ceiling.
	for i := 0; i < 4; i++ {
		id := ids[i%len(ids)]
		if _, err := sup.CaptureFault(ctx, id, faultErr, nil); err != nil {
			t.Fatalf("CaptureFault(%s): %v", id, err)
		}
	}
	if sup.Escalated() {
		t.Fatal("escalated below the ceiling")
	}
	if got := sup.GetCascadeCount(); got != 4 {
		t.Fatalf("cascade count = %d, want 4", got)
	}

	// The fifth crosses it.
	d, err := sup.CaptureFault(ctx, "dialogue", faultErr, nil)
	if err != nil {
		t.Fatalf("CaptureFault: %v", err)
	}
	if !d.Terminal || d.ShouldRetry {
		t.Fatalf("fifth fault decision = %+v, want terminal", d)
	}
	if !sup.Escalated() {
		t.Fatal("not escalated at the ceiling")
	}
	for _, id := range ids {
		st, err := sup.GetState(id)
		if err != nil {
			t.Fatal(err)
		}
		if st.Phase != domain.PhaseFailed {
			t.Fatalf("controller %s phase = %s, want failed", id, st.Phase)
		}
	}

	// Further faults are absorbed without reviving the episode.
	if _, err := sup.CaptureFault(ctx, "streaming", faultErr, nil); err != nil {
		t.Fatal(err)
	}
	if got := sup.GetCascadeCount(); got != 5 {
		t.Fatalf("cascade count after escalation = %d, want 5", got)
	}

	mu.Lock()
	got := escalations
	mu.Unlock()
	if got != 1 {
		t.Fatalf("escalation listeners fired %d times, want 1", got)
	}

	// Only the explicit reset re-arms the guard.
	sup.ResetCascade()
	if sup.Escalated() || sup.GetCascadeCount() != 0 {
		t.Fatal("reset did not clear the episode")
	}
}

func TestSupervisorRetryFlow(t *testing.T) {
	sup, err := NewSupervisor(testConfig())
	if err != nil {
		t.Fatalf("NewSupervisor: %v", err)
	}

	var mu sync.Mutex
	calls := 0
	if err := sup.Bind("remote-api", func(ctx context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls < 2 {
			return errors.New("network timeout while fetching")
		}
		return nil
	}); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	ctx := context.Background()
	d, err := sup.CaptureFault(ctx, "remote-api", errors.New("network timeout while fetching"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !d.ShouldRetry {
		t.Fatalf("decision = %+v, want retry", d)
	}

	waitUntil(t, func() bool {
		st, _ := sup.GetState("remote-api")
		return st.Phase == domain.PhaseHealthy
	})

	mu.Lock()
	got := calls
	mu.Unlock()
	if got != 2 {
		t.Fatalf("retry fn called %d times, want 2", got)
	}

	st, _ := sup.GetState("remote-api")
	if st.RetryBudget.AttemptsMade != 0 {
		t.Fatalf("budget not reset: %+v", st.RetryBudget)
	}
}

func TestSupervisorTransitionListener(t *testing.T) {
	sup, err := NewSupervisor(testConfig())
	if err != nil {
		t.Fatalf("NewSupervisor: %v", err)
	}

	var mu sync.Mutex
	var seen []domain.Phase
	sup.OnTransition(func(tr domain.Transition) {
		if tr.ControllerID != "dialogue" {
			return
		}
		mu.Lock()
		seen = append(seen, tr.To)
		mu.Unlock()
	})

	if _, err := sup.CaptureFault(context.Background(), "dialogue", errors.New("401 unauthorized"), nil); err != nil {
		t.Fatal(err)
	}

	waitUntil(t, func() bool {
		st, _ := sup.GetState("dialogue")
		return st.Phase == domain.PhaseFailed
	})

	mu.Lock()
	defer mu.Unlock()
	want := []domain.Phase{domain.PhaseFaulted, domain.PhaseFailed}
	if len(seen) != len(want) {
		t.Fatalf("transitions = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("transitions = %v, want %v", seen, want)
		}
	}
}

func TestSupervisorQuerySurface(t *testing.T) {
	sup, err := NewSupervisor(testConfig())
	if err != nil {
		t.Fatalf("NewSupervisor: %v", err)
	}

	if _, err := sup.GetState("nope"); err == nil {
		t.Fatal("expected error for unknown controller")
	}
	if err := sup.ContinueAnyway("nope"); err == nil {
		t.Fatal("expected error for unknown controller")
	}

	if _, err := sup.CaptureFault(context.Background(), "streaming", errors.New("network timeout while fetching"), nil); err != nil {
		t.Fatal(err)
	}
	sugs, err := sup.GetRecoverySuggestions("streaming")
	if err != nil {
		t.Fatal(err)
	}
	if len(sugs) == 0 {
		t.Fatal("no suggestions after fault")
	}
	for i := 1; i < len(sugs); i++ {
		if sugs[i].SuccessProbability > sugs[i-1].SuccessProbability {
			t.Fatal("suggestions not sorted by probability")
		}
	}

	if err := sup.ContinueAnyway("streaming"); err != nil {
		t.Fatal(err)
	}
	st, _ := sup.GetState("streaming")
	if st.Phase != domain.PhaseHealthy {
		t.Fatalf("phase after dismiss = %s, want healthy", st.Phase)
	}

	sess, err := sup.RecoverySession("streaming")
	if err != nil {
		t.Fatal(err)
	}
	if err := sess.Start(); err != nil {
		t.Fatal(err)
	}
	step, ok := sess.Current()
	if !ok || step.ID != "reconnect-stream" {
		t.Fatalf("first step = %+v, want reconnect-stream", step)
	}
}

func TestSupervisorSnapshotsRecorded(t *testing.T) {
	sup, err := NewSupervisor(testConfig())
	if err != nil {
		t.Fatalf("NewSupervisor: %v", err)
	}

	if _, err := sup.CaptureFault(context.Background(), "dialogue", errors.New("401 unauthorized"), nil); err != nil {
		t.Fatal(err)
	}

	waitUntil(t, func() bool {
		snaps, err := sup.Snapshots(context.Background(), 10)
		return err == nil && len(snaps) > 0
	})

	snaps, err := sup.Snapshots(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if snaps[0].ControllerID != "dialogue" {
		t.Fatalf("snapshot controller = %s, want dialogue", snaps[0].ControllerID)
	}
}
