package control

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vietddude/faultguard/internal/core/domain"
)

// Server provides HTTP endpoints for fault state monitoring.
type Server struct {
	sup    *Supervisor
	server *http.Server
}

// NewServer creates a new status server.
func NewServer(sup *Supervisor, port int) *Server {
	mux := http.NewServeMux()
	s := &Server{
		sup: sup,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
	}

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/state", s.handleState)
	mux.Handle("/metrics", promhttp.Handler())

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"

	// Aggregate status (worst case wins)
	for _, st := range s.sup.States() {
		if st.Phase == domain.PhaseFailed {
			status = "critical"
			break
		}
		if st.Phase != domain.PhaseHealthy {
			status = "degraded"
		}
	}
	if s.sup.Escalated() {
		status = "critical"
	}

	response := map[string]string{"status": status}
	w.Header().Set("Content-Type", "application/json")

	if status == "critical" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	json.NewEncoder(w).Encode(response)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	report := struct {
		Controllers []domain.BoundaryState `json:"controllers"`
		Cascade     domain.CascadeRecord   `json:"cascade"`
		Escalated   bool                   `json:"escalated"`
	}{
		Controllers: s.sup.States(),
		Cascade:     s.sup.CascadeRecord(),
		Escalated:   s.sup.Escalated(),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}
