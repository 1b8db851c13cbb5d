package diagnostics

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/vietddude/faultguard/internal/core/domain"
)

// ConnectivityChecker answers whether the upstream service is
// reachable. Best-effort: probe failures read as offline.
type ConnectivityChecker interface {
	Online(ctx context.Context) bool
}

// EnvironmentProbe gathers host environment and performance data.
// All probes are best-effort; absence degrades to zero values.
type EnvironmentProbe interface {
	Environment(ctx context.Context) domain.EnvironmentInfo
	Performance(ctx context.Context) domain.PerformanceInfo
}

// RuntimeProbe reads the Go runtime and an optional connectivity
// checker. The zero connectivity checker reports online.
type RuntimeProbe struct {
	start        time.Time
	connectivity ConnectivityChecker
}

// NewRuntimeProbe creates a probe. checker may be nil.
func NewRuntimeProbe(checker ConnectivityChecker) *RuntimeProbe {
	return &RuntimeProbe{
		start:        time.Now(),
		connectivity: checker,
	}
}

// Environment returns a best-effort environment snapshot.
func (p *RuntimeProbe) Environment(ctx context.Context) domain.EnvironmentInfo {
	info := domain.EnvironmentInfo{
		Platform:     runtime.GOOS + "/" + runtime.GOARCH,
		Runtime:      runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
		Online:       true,
	}
	if host, err := os.Hostname(); err == nil {
		info.Hostname = host
	}
	if p.connectivity != nil {
		info.Online = p.connectivity.Online(ctx)
	}
	return info
}

// Performance returns memory and uptime readings.
func (p *RuntimeProbe) Performance(ctx context.Context) domain.PerformanceInfo {
	started := time.Now()
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	return domain.PerformanceInfo{
		HeapAllocBytes: ms.HeapAlloc,
		HeapSysBytes:   ms.HeapSys,
		NumGC:          ms.NumGC,
		UptimeSeconds:  time.Since(p.start).Seconds(),
		ProbeLatency:   time.Since(started),
	}
}
