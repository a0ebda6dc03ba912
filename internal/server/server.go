// Package server exposes the bundled rating engine over HTTP with the same
// contract the pipeline consumes through internal/rating.Client.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"

	"github.com/quoteline/quoteline/internal/domain"
	"github.com/quoteline/quoteline/internal/rating"
)

// Server wires the rating engine into a chi router.
type Server struct {
	engine *rating.LocalService
	log    *slog.Logger
}

// New creates a rating server. A nil logger uses slog.Default.
func New(engine *rating.LocalService, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{engine: engine, log: log}
}

// Router builds the HTTP routes.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Route("/api/rating", func(r chi.Router) {
		r.Post("/risk-items", s.handleRiskItems)
		r.Post("/aggregate", s.handleAggregate)
		r.Post("/adjustments", s.handleAdjustments)
		r.Post("/pro-rata", s.handleProRata)
		r.Get("/breakdown/{proposalID}", s.handleBreakdown)
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start).String(),
		)
	})
}

func (s *Server) handleRiskItems(w http.ResponseWriter, r *http.Request) {
	var req domain.RiskItemCalcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.RiskItems) == 0 {
		s.writeError(w, http.StatusBadRequest, "at least one risk item is required")
		return
	}

	resp, err := s.engine.CalculateRiskItems(r.Context(), req)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAggregate(w http.ResponseWriter, r *http.Request) {
	var req domain.AggregateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Sections) == 0 {
		s.writeError(w, http.StatusBadRequest, "at least one section is required")
		return
	}

	resp, err := s.engine.CalculateAggregate(r.Context(), req)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAdjustments(w http.ResponseWriter, r *http.Request) {
	var req domain.AdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.TotalAggregatePremium.IsNegative() {
		s.writeError(w, http.StatusBadRequest, "total aggregate premium cannot be negative")
		return
	}

	resp, err := s.engine.ApplyAdjustments(r.Context(), req)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleProRata(w http.ResponseWriter, r *http.Request) {
	var req domain.ProRataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.CoverDays <= 0 {
		s.writeError(w, http.StatusBadRequest, "cover days must be positive")
		return
	}

	resp, err := s.engine.CalculateProRata(r.Context(), req)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	proposalID := chi.URLParam(r, "proposalID")
	if proposalID == "" {
		s.writeError(w, http.StatusBadRequest, "proposal id is required")
		return
	}

	raw, err := s.engine.GetBreakdown(r.Context(), proposalID)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, raw)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  status,
		"message": message,
	})
}
