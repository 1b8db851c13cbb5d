package domain

import "time"

// EnvironmentInfo holds best-effort host environment probe results.
// Missing probes leave zero values; absence never fails collection.
type EnvironmentInfo struct {
	Hostname     string `json:"hostname,omitempty"`
	Platform     string `json:"platform,omitempty"`
	Runtime      string `json:"runtime,omitempty"`
	NumCPU       int    `json:"num_cpu,omitempty"`
	NumGoroutine int    `json:"num_goroutine,omitempty"`
	Online       bool   `json:"online"`
}

// PerformanceInfo holds best-effort timing and memory probe results.
type PerformanceInfo struct {
	HeapAllocBytes uint64        `json:"heap_alloc_bytes,omitempty"`
	HeapSysBytes   uint64        `json:"heap_sys_bytes,omitempty"`
	NumGC          uint32        `json:"num_gc,omitempty"`
	UptimeSeconds  float64       `json:"uptime_seconds,omitempty"`
	ProbeLatency   time.Duration `json:"probe_latency_ns,omitempty"`
}

// DiagnosticSnapshot is a point-in-time record assembled on every
// terminal transition and handed to the reporting collaborator.
// Never mutated after creation.
type DiagnosticSnapshot struct {
	ID             string          `json:"id"`
	ControllerID   string          `json:"controller_id"`
	Fault          Fault           `json:"fault"`
	Classification Classification  `json:"classification"`
	Environment    EnvironmentInfo `json:"environment"`
	Performance    PerformanceInfo `json:"performance"`
	CreatedAt      time.Time       `json:"created_at"`
}
