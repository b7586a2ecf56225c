// Package chi is the HTTP transport: request decoding, error mapping, and
// route registration for the search gateway API.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/openharvest/searchgw/internal/domain"
	"github.com/openharvest/searchgw/internal/metrics"
	healthuc "github.com/openharvest/searchgw/internal/usecase/health"
	searchuc "github.com/openharvest/searchgw/internal/usecase/search"
)

// ErrorResponse is the JSON error body for every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Server handles the HTTP API.
type Server struct {
	search *searchuc.Service
	health *healthuc.Service
	logger *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(search *searchuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	return &Server{search: search, health: health, logger: logger}
}

// Routes registers all API routes on the router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/v1/search", s.handleSearch)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

// handleSearch handles POST /v1/search.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	res, err := s.search.Search(r.Context(), raw)
	if err != nil {
		s.handleSearchError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSearchError(w http.ResponseWriter, err error) {
	var reqErr *domain.RequestError
	if errors.As(err, &reqErr) {
		metrics.ValidationErrorsTotal.WithLabelValues(string(reqErr.Code)).Inc()
		writeError(w, http.StatusBadRequest, string(reqErr.Code), reqErr.Message)
		return
	}

	if errors.Is(err, domain.ErrEngineUnavailable) {
		writeError(w, http.StatusBadGateway, "engine_unavailable",
			"The search engine could not be reached. Please try again later.")
		return
	}

	s.logger.Error("search failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	writeJSON(w, status, map[string]any{
		"status": string(report.Status),
		"checks": checks,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}
