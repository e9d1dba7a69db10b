package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/finwatch-app/finwatch/pkg/monitor"
)

// Server provides health check and read-only status API endpoints.
type Server struct {
	budgets     *monitor.BudgetMonitor
	goals       *monitor.GoalTracker
	schedulers  []*monitor.Scheduler
	defaultUser string
	mux         *http.ServeMux
	logger      *slog.Logger
}

// NewServer creates an API server over the given monitors.
func NewServer(budgets *monitor.BudgetMonitor, goals *monitor.GoalTracker, schedulers []*monitor.Scheduler, defaultUser string, logger *slog.Logger) *Server {
	s := &Server{
		budgets:     budgets,
		goals:       goals,
		schedulers:  schedulers,
		defaultUser: defaultUser,
		mux:         http.NewServeMux(),
		logger:      logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	s.mux.HandleFunc("GET /api/v1/budgets", s.handleBudgets)
	s.mux.HandleFunc("GET /api/v1/goals", s.handleGoals)
}

// Handler returns the HTTP handler for this server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) user(r *http.Request) string {
	if u := r.URL.Query().Get("user"); u != "" {
		return u
	}
	return s.defaultUser
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// monitorStatus describes one scheduler in the status response.
type monitorStatus struct {
	Monitor   string    `json:"monitor"`
	Armed     bool      `json:"armed"`
	LastCheck time.Time `json:"last_check,omitzero"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	statuses := make([]monitorStatus, 0, len(s.schedulers))
	for _, sch := range s.schedulers {
		statuses = append(statuses, monitorStatus{
			Monitor:   sch.Name(),
			Armed:     sch.Armed(),
			LastCheck: sch.LastCheck(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"monitors": statuses})
}

func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	statuses := s.budgets.Statuses(ctx, s.user(r))
	if statuses == nil {
		s.logger.Error("compute budget statuses", "user", s.user(r))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(statuses)
}

func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	summary := s.goals.ProgressSummary(ctx, s.user(r))
	if summary == nil {
		s.logger.Error("aggregate goal progress", "user", s.user(r))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}
