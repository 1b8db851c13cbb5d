package diagnostics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vietddude/faultguard/internal/core/domain"
)

type fakeProbe struct{}

func (fakeProbe) Environment(ctx context.Context) domain.EnvironmentInfo {
	return domain.EnvironmentInfo{Hostname: "test-host", Online: true}
}

func (fakeProbe) Performance(ctx context.Context) domain.PerformanceInfo {
	return domain.PerformanceInfo{HeapAllocBytes: 42}
}

type fakeReporter struct {
	mu    sync.Mutex
	snaps []domain.DiagnosticSnapshot
	err   error
}

func (r *fakeReporter) Report(ctx context.Context, s domain.DiagnosticSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, s)
	return r.err
}

func (r *fakeReporter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snaps)
}

func testFault() (domain.Fault, domain.Classification) {
	f := domain.Fault{ID: "f-1", Message: "boom", Component: "chat"}
	c := domain.Classification{Type: domain.TypeNetwork, Severity: domain.SeverityMedium}
	return f, c
}

func TestSnapshotCarriesProbeData(t *testing.T) {
	c := NewCollector(fakeProbe{}, nil, nil)
	f, cls := testFault()

	snap := c.Snapshot(context.Background(), "ctl-1", f, cls)
	if snap.ID == "" {
		t.Error("snapshot needs an ID")
	}
	if snap.ControllerID != "ctl-1" {
		t.Errorf("controllerID = %q", snap.ControllerID)
	}
	if snap.Environment.Hostname != "test-host" {
		t.Errorf("hostname = %q, want test-host", snap.Environment.Hostname)
	}
	if snap.Performance.HeapAllocBytes != 42 {
		t.Errorf("heap = %d, want 42", snap.Performance.HeapAllocBytes)
	}
	if snap.Fault.Message != "boom" {
		t.Errorf("fault message = %q", snap.Fault.Message)
	}
}

func TestNilProbeDegradesGracefully(t *testing.T) {
	c := NewCollector(nil, nil, nil)
	f, cls := testFault()

	snap := c.Snapshot(context.Background(), "ctl-1", f, cls)
	if snap.Environment.Hostname != "" || snap.Performance.HeapAllocBytes != 0 {
		t.Error("nil probe should yield zero-valued probe data")
	}
}

func TestCollectReportsInBackground(t *testing.T) {
	rep := &fakeReporter{}
	c := NewCollector(fakeProbe{}, rep, nil)
	f, cls := testFault()

	c.Collect(context.Background(), "ctl-1", f, cls)

	deadline := time.Now().Add(2 * time.Second)
	for rep.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if rep.count() != 1 {
		t.Fatalf("reported %d snapshots, want 1", rep.count())
	}
}

func TestReporterFailureIsSwallowed(t *testing.T) {
	rep := &fakeReporter{err: errors.New("sink unavailable")}
	c := NewCollector(fakeProbe{}, rep, nil)
	f, cls := testFault()

	// Must not panic or propagate; the fault path never sees this.
	c.Collect(context.Background(), "ctl-1", f, cls)

	deadline := time.Now().Add(2 * time.Second)
	for rep.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
}
