// Package api - Thin HTTP tool surface
// The API is ONLY responsible for: input ingestion, tool dispatch, output
// serialization. It NEVER performs quotation logic; every number comes
// from the core through the dispatcher.
package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/oklog/ulid/v2"

	"panelquote/agent"
	"panelquote/core/catalog"
	"panelquote/core/monitor"
	"panelquote/core/validate"
	"panelquote/internal/errors"
)

// Server exposes the tool contract over HTTP
type Server struct {
	dispatcher *agent.Dispatcher
	monitor    *monitor.Monitor
	store      *catalog.Store
	version    string
	router     chi.Router
}

// NewServer wires the router over the dispatcher and monitor
func NewServer(dispatcher *agent.Dispatcher, mon *monitor.Monitor, store *catalog.Store, version string) *Server {
	s := &Server{
		dispatcher: dispatcher,
		monitor:    mon,
		store:      store,
		version:    version,
		router:     chi.NewRouter(),
	}
	s.registerRoutes()
	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) registerRoutes() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)

	s.router.Post("/tools/{name}", s.handleTool)
	s.router.Get("/tools", s.handleListTools)
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/summary", s.handleSummary)
	s.router.Get("/catalog/integrity", s.handleCatalogIntegrity)
	s.router.Get("/version", s.handleVersion)
}

// handleTool handles POST /tools/{name}: a flat JSON object of scalar
// parameters in, one tool result record out
func (s *Server) handleTool(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	params := agent.Params{}
	if err := dec.Decode(&params); err != nil && err != io.EOF {
		s.writeError(w, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}

	record, err := s.dispatcher.Dispatch(r.Context(), name, params)
	if err != nil {
		s.writeJSON(w, record, statusFor(err))
		return
	}
	s.writeJSON(w, record, http.StatusOK)
}

func (s *Server) handleListTools(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"tools": s.dispatcher.ToolNames(),
	}, http.StatusOK)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	health := s.monitor.Health()
	status := http.StatusOK
	if health == monitor.HealthCritical {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, map[string]interface{}{
		"status":          health,
		"catalog_version": s.store.Current().Version(),
		"version":         s.version,
	}, status)
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, s.monitor.Summary(), http.StatusOK)
}

func (s *Server) handleCatalogIntegrity(w http.ResponseWriter, _ *http.Request) {
	report := validate.CatalogIntegrity(s.store.Current())
	status := http.StatusOK
	if !report.Valid {
		status = http.StatusConflict
	}
	s.writeJSON(w, report, status)
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, map[string]string{
		"version":         s.version,
		"catalog_version": s.store.Current().Version(),
	}, http.StatusOK)
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, code, message string, status int) {
	s.writeJSON(w, map[string]string{
		"error":      code,
		"message":    message,
		"request_id": ulid.Make().String(),
	}, status)
}

// statusFor maps the error taxonomy onto HTTP statuses
func statusFor(err error) int {
	e, ok := err.(*errors.Error)
	if !ok {
		return http.StatusInternalServerError
	}
	switch e.Type {
	case errors.TypeParameterOutOfRange:
		return http.StatusBadRequest
	case errors.TypeProductNotFound:
		return http.StatusNotFound
	case errors.TypePriceUnavailable, errors.TypeIntegrity:
		return http.StatusConflict
	case errors.TypeVerification:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
