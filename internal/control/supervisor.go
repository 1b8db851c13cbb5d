package control

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vietddude/faultguard/internal/boundary"
	"github.com/vietddude/faultguard/internal/cascade"
	"github.com/vietddude/faultguard/internal/core/config"
	"github.com/vietddude/faultguard/internal/core/domain"
	"github.com/vietddude/faultguard/internal/diagnostics"
	redisclient "github.com/vietddude/faultguard/internal/infra/redis"
	"github.com/vietddude/faultguard/internal/infra/storage"
	"github.com/vietddude/faultguard/internal/infra/storage/memory"
	"github.com/vietddude/faultguard/internal/infra/storage/postgres"
	"github.com/vietddude/faultguard/internal/metrics"
	"github.com/vietddude/faultguard/internal/session"
)

// Config holds the application configuration.
type Config struct {
	Port               int
	MaxCascadingErrors int
	Controllers        []config.ControllerConfig
	Upstream           config.UpstreamConfig
	Redis              redisclient.Config
	Database           postgres.Config
}

// Supervisor owns the controller registry, the cascade guard and the
// diagnostics pipeline. It is the single entry point an embedding
// application talks to.
type Supervisor struct {
	cfg         Config
	controllers map[string]*boundary.Controller
	domains     map[string]domain.FaultDomain
	guard       *cascade.Guard
	collector   *diagnostics.Collector
	snapshots   storage.SnapshotRepository
	preserves   storage.PreserveRepository
	db          *postgres.DB
	redisClient *redisclient.Client
	checker     *diagnostics.GRPCHealthChecker
	server      *Server
	log         *slog.Logger

	mu           sync.Mutex
	retryFns     map[string]boundary.RetryFunc
	onTransition []func(domain.Transition)
	onEscalation []func(domain.CascadeRecord)
}

// NewSupervisor creates a supervisor with all dependencies initialized.
func NewSupervisor(cfg Config) (*Supervisor, error) {
	s := &Supervisor{
		cfg:         cfg,
		controllers: make(map[string]*boundary.Controller),
		domains:     make(map[string]domain.FaultDomain),
		retryFns:    make(map[string]boundary.RetryFunc),
		log:         slog.Default(),
	}

	// 1. Initialize Storage
	if cfg.Database.URL != "" {
		db, err := postgres.NewDB(context.Background(), cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		if err := db.Migrate(); err != nil {
			return nil, err
		}
		s.db = db
		s.snapshots = postgres.NewSnapshotRepo(db)
		slog.Info("Using PostgreSQL storage")
	} else {
		store := memory.NewStorage()
		s.snapshots = memory.NewSnapshotRepo(store)
		s.preserves = memory.NewPreserveRepo(store)
		slog.Info("Using Memory storage")
	}

	// 2. Initialize Redis preserve queue, falling back to memory
	if cfg.Redis.URL != "" {
		client, err := redisclient.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("Failed to connect to Redis, preserving in memory", "error", err)
		} else {
			s.redisClient = client
			s.preserves = redisclient.NewPreserveRepo(client)
		}
	}
	if s.preserves == nil {
		store := memory.NewStorage()
		s.preserves = memory.NewPreserveRepo(store)
	}

	// 3. Initialize Connectivity Probe
	if cfg.Upstream.HealthEndpoint != "" {
		checker, err := diagnostics.NewGRPCHealthChecker(cfg.Upstream.HealthEndpoint)
		if err != nil {
			slog.Warn("Failed to init health checker", "error", err)
		} else {
			s.checker = checker
		}
	}

	// 4. Initialize Diagnostics Collector
	var connectivity diagnostics.ConnectivityChecker
	if s.checker != nil {
		connectivity = s.checker
	}
	probe := diagnostics.NewRuntimeProbe(connectivity)
	s.collector = diagnostics.NewCollector(probe, &snapshotSink{repo: s.snapshots}, s.log)

	// 5. Initialize Cascade Guard
	s.guard = cascade.NewGuard(cfg.MaxCascadingErrors, s.handleEscalation, s.log)

	// 6. Initialize Controllers
	for _, cc := range cfg.Controllers {
		if err := s.addController(cc); err != nil {
			return nil, err
		}
	}

	s.server = NewServer(s, cfg.Port)
	return s, nil
}

// addController builds one controller from its config and registers it
// with the cascade guard.
func (s *Supervisor) addController(cc config.ControllerConfig) error {
	if _, exists := s.controllers[cc.ID]; exists {
		return fmt.Errorf("duplicate controller id: %s", cc.ID)
	}

	pol := boundary.PolicyFor(cc.Domain)
	if cc.MaxAttempts > 0 {
		pol.MaxAttempts = cc.MaxAttempts
	}
	if cc.BaseDelayMillis > 0 {
		pol.BaseDelayMillis = cc.BaseDelayMillis
	}
	if cc.MaxDelayMillis > 0 {
		pol.MaxDelayMillis = cc.MaxDelayMillis
	}

	id := cc.ID
	ctrl := boundary.New(boundary.Config{
		ID:           id,
		Policy:       pol,
		Retry:        func(ctx context.Context) error { return s.invokeRetry(ctx, id) },
		Reporter:     &guardReporter{g: s.guard},
		Collector:    s.collector,
		Preserver:    s.preserves,
		OnTransition: s.makeTransitionHook(string(cc.Domain)),
		OfflineProbe: s.offlineProbe(),
		Logger:       s.log,
	})
	s.controllers[id] = ctrl
	s.domains[id] = cc.Domain
	s.guard.Register(ctrl)
	return nil
}

// Bind attaches the protected region's re-entry function to a
// controller. Retries against an unbound controller succeed trivially,
// closing the episode.
func (s *Supervisor) Bind(controllerID string, fn boundary.RetryFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.controllers[controllerID]; !ok {
		return fmt.Errorf("unknown controller: %s", controllerID)
	}
	s.retryFns[controllerID] = fn
	return nil
}

func (s *Supervisor) invokeRetry(ctx context.Context, controllerID string) error {
	s.mu.Lock()
	fn := s.retryFns[controllerID]
	s.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// CaptureFault routes an error into the named controller's pipeline.
func (s *Supervisor) CaptureFault(ctx context.Context, controllerID string, err error, fctx map[string]string) (domain.RecoveryDecision, error) {
	ctrl, ok := s.controllers[controllerID]
	if !ok {
		return domain.RecoveryDecision{}, fmt.Errorf("unknown controller: %s", controllerID)
	}
	if fctx == nil {
		fctx = map[string]string{}
	}
	if _, set := fctx["domain"]; !set {
		fctx["domain"] = string(s.domains[controllerID])
	}
	return ctrl.CaptureFault(ctx, err, fctx), nil
}

// Retry manually triggers an immediate retry on a controller.
func (s *Supervisor) Retry(ctx context.Context, controllerID string) error {
	ctrl, ok := s.controllers[controllerID]
	if !ok {
		return fmt.Errorf("unknown controller: %s", controllerID)
	}
	ctrl.Retry(ctx)
	return nil
}

// ContinueAnyway dismisses a controller's fault episode.
func (s *Supervisor) ContinueAnyway(controllerID string) error {
	ctrl, ok := s.controllers[controllerID]
	if !ok {
		return fmt.Errorf("unknown controller: %s", controllerID)
	}
	ctrl.ContinueAnyway()
	return nil
}

// SwitchToFallback moves a controller into degraded mode.
func (s *Supervisor) SwitchToFallback(controllerID string) error {
	ctrl, ok := s.controllers[controllerID]
	if !ok {
		return fmt.Errorf("unknown controller: %s", controllerID)
	}
	ctrl.SwitchToFallback()
	return nil
}

// GetState returns a controller's boundary state.
func (s *Supervisor) GetState(controllerID string) (domain.BoundaryState, error) {
	ctrl, ok := s.controllers[controllerID]
	if !ok {
		return domain.BoundaryState{}, fmt.Errorf("unknown controller: %s", controllerID)
	}
	return ctrl.State(), nil
}

// States returns every controller's boundary state.
func (s *Supervisor) States() []domain.BoundaryState {
	out := make([]domain.BoundaryState, 0, len(s.controllers))
	for _, ctrl := range s.controllers {
		out = append(out, ctrl.State())
	}
	return out
}

// GetRecoverySuggestions returns a controller's current suggestions,
// ordered by descending success probability.
func (s *Supervisor) GetRecoverySuggestions(controllerID string) ([]domain.RecoverySuggestion, error) {
	ctrl, ok := s.controllers[controllerID]
	if !ok {
		return nil, fmt.Errorf("unknown controller: %s", controllerID)
	}
	return ctrl.Suggestions(), nil
}

// GetCascadeCount returns the fault count of the current episode.
func (s *Supervisor) GetCascadeCount() int { return s.guard.Count() }

// Escalated reports whether the current episode escalated.
func (s *Supervisor) Escalated() bool { return s.guard.Escalated() }

// CascadeRecord returns a copy of the current cascade record.
func (s *Supervisor) CascadeRecord() domain.CascadeRecord { return s.guard.Record() }

// ResetCascade clears the cascade episode. This is the only path that
// re-arms escalation; individual controller recoveries never do.
func (s *Supervisor) ResetCascade() {
	s.guard.Reset()
	metrics.CascadeCount.Set(0)
}

// RecoverySession starts a guided recovery workflow for a controller's
// domain.
func (s *Supervisor) RecoverySession(controllerID string) (*session.Session, error) {
	d, ok := s.domains[controllerID]
	if !ok {
		return nil, fmt.Errorf("unknown controller: %s", controllerID)
	}
	return session.ForDomain(d), nil
}

// PreservedFaults lists faults whose pending data was preserved before
// a controller degraded.
func (s *Supervisor) PreservedFaults(ctx context.Context, controllerID string) ([]*domain.Fault, error) {
	return s.preserves.List(ctx, controllerID)
}

// ClearPreserved drops a controller's preserved entries after their
// pending data has been recovered.
func (s *Supervisor) ClearPreserved(ctx context.Context, controllerID string) error {
	return s.preserves.Clear(ctx, controllerID)
}

// Snapshots lists the most recent diagnostic snapshots.
func (s *Supervisor) Snapshots(ctx context.Context, limit int) ([]*domain.DiagnosticSnapshot, error) {
	return s.snapshots.List(ctx, limit)
}

// OnTransition registers a listener for boundary state transitions.
// Must be called before faults start flowing.
func (s *Supervisor) OnTransition(fn func(domain.Transition)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onTransition = append(s.onTransition, fn)
}

// OnCriticalEscalation registers a listener for cascade escalations.
func (s *Supervisor) OnCriticalEscalation(fn func(domain.CascadeRecord)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEscalation = append(s.onEscalation, fn)
}

// Start starts the status server.
func (s *Supervisor) Start(ctx context.Context) error {
	go func() {
		if err := s.server.Start(); err != nil {
			s.log.Error("Status server failed", "error", err)
		}
	}()
	return nil
}

// Stop shuts the supervisor down.
func (s *Supervisor) Stop(ctx context.Context) error {
	s.log.Info("Stopping Supervisor...")

	for _, ctrl := range s.controllers {
		ctrl.Close()
	}

	if s.checker != nil {
		if err := s.checker.Close(); err != nil {
			s.log.Warn("Failed to close health checker", "error", err)
		}
	}
	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.log.Warn("Failed to close Redis", "error", err)
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.log.Warn("Failed to close database", "error", err)
		}
	}

	return s.server.Stop(ctx)
}

// makeTransitionHook records metrics for one controller's transitions
// and fans them out to registered listeners.
func (s *Supervisor) makeTransitionHook(domainName string) func(domain.Transition) {
	return func(t domain.Transition) {
		metrics.TransitionsTotal.WithLabelValues(t.ControllerID, string(t.To)).Inc()
		switch t.To {
		case domain.PhaseFaulted:
			if t.Classification != nil {
				metrics.FaultsTotal.WithLabelValues(
					domainName,
					string(t.Classification.Type),
					string(t.Classification.Severity),
				).Inc()
				metrics.ClassificationConfidence.Observe(t.Classification.Confidence)
			}
		case domain.PhaseRecovering:
			metrics.RetriesTotal.WithLabelValues(domainName).Inc()
		}

		s.mu.Lock()
		listeners := make([]func(domain.Transition), len(s.onTransition))
		copy(listeners, s.onTransition)
		s.mu.Unlock()
		for _, fn := range listeners {
			fn(t)
		}
	}
}

// handleEscalation is the guard's escalation callback.
func (s *Supervisor) handleEscalation(record domain.CascadeRecord) {
	metrics.EscalationsTotal.Inc()
	s.log.Error("critical escalation", "faults", record.Count())

	s.mu.Lock()
	listeners := make([]func(domain.CascadeRecord), len(s.onEscalation))
	copy(listeners, s.onEscalation)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(record)
	}
}

// offlineProbe adapts the connectivity checker to the controllers'
// offline flag. Nil when no checker is configured.
func (s *Supervisor) offlineProbe() func() bool {
	if s.cfg.Upstream.HealthEndpoint == "" {
		return nil
	}
	return func() bool {
		if s.checker == nil {
			return false
		}
		return !s.checker.Online(context.Background())
	}
}

// guardReporter adapts the guard to the boundary.Reporter interface
// and keeps the cascade gauge current.
type guardReporter struct {
	g *cascade.Guard
}

func (r *guardReporter) Report(entry domain.CascadeEntry) bool {
	escalated := r.g.Report(entry)
	metrics.CascadeCount.Set(float64(r.g.Count()))
	return escalated
}

// snapshotSink adapts a snapshot repository to the collector's
// reporter interface.
type snapshotSink struct {
	repo storage.SnapshotRepository
}

func (s *snapshotSink) Report(ctx context.Context, snap domain.DiagnosticSnapshot) error {
	return s.repo.Add(ctx, &snap)
}
