package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/jortega/bolsillo/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/shutdown", s.handleShutdown)

	// Portfolios and their month views
	mux.HandleFunc("/api/portfolios/", s.routePortfolios)
	mux.HandleFunc("/api/portfolios", s.handlePortfolios)

	// Ledger entries
	mux.HandleFunc("/api/entries/", s.routeEntries)
	mux.HandleFunc("/api/entries", s.handleEntryCreate)

	// Recurring expense definitions
	mux.HandleFunc("/api/recurring/", s.routeRecurring)
	mux.HandleFunc("/api/recurring", s.handleRecurring)
}

// routePortfolios dispatches /api/portfolios/{name}[/action] requests.
func (s *Server) routePortfolios(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/portfolios/")
	if rest == "" {
		s.handlePortfolios(w, r)
		return
	}

	name, action := rest, ""
	if idx := strings.Index(rest, "/"); idx >= 0 {
		name, action = rest[:idx], rest[idx+1:]
	}
	if name == "" {
		WriteError(w, http.StatusBadRequest, "Portfolio name is required")
		return
	}

	switch action {
	case "":
		s.handlePortfolio(w, r, name)
	case "balance":
		s.handlePortfolioBalance(w, r, name)
	case "recompute":
		s.handlePortfolioRecompute(w, r, name)
	case "entries":
		s.handlePortfolioEntries(w, r, name)
	case "occurrences":
		s.handlePortfolioOccurrences(w, r, name)
	case "report":
		s.handlePortfolioReport(w, r, name)
	case "calendar":
		s.handlePortfolioCalendar(w, r, name)
	case "chart":
		s.handlePortfolioChart(w, r, name)
	default:
		WriteError(w, http.StatusNotFound, "Unknown portfolio action: "+action)
	}
}

// routeEntries dispatches /api/entries/{kind}/{id} requests.
func (s *Server) routeEntries(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/entries/")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		WriteError(w, http.StatusBadRequest, "Expected /api/entries/{kind}/{id}")
		return
	}
	s.handleEntry(w, r, parts[0], parts[1])
}

// routeRecurring dispatches /api/recurring/{id}[/active] requests.
func (s *Server) routeRecurring(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/recurring/")
	if rest == "" {
		s.handleRecurring(w, r)
		return
	}

	id, action := rest, ""
	if idx := strings.Index(rest, "/"); idx >= 0 {
		id, action = rest[:idx], rest[idx+1:]
	}

	switch action {
	case "":
		s.handleRecurringDefinition(w, r, id)
	case "active":
		s.handleRecurringActive(w, r, id)
	default:
		WriteError(w, http.StatusNotFound, "Unknown recurring action: "+action)
	}
}

// handleHealth handles GET /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": common.GetVersion(),
		"uptime":  time.Since(s.app.StartupTime).Round(time.Second).String(),
	})
}

// handleVersion handles GET /api/version.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

// handleShutdown handles POST /api/shutdown (dev mode only).
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Shutdown endpoint disabled in production")
		return
	}

	s.logger.Info().Msg("Shutdown requested via HTTP endpoint")

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Shutting down gracefully...\n"))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	if s.shutdownChan != nil {
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.shutdownChan <- struct{}{}
		}()
	}
}
