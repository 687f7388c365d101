package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/jortega/bolsillo/internal/models"
)

// parseYearMonth reads year and month query parameters, defaulting to the
// current month when both are absent.
func parseYearMonth(r *http.Request) (int, time.Month, error) {
	yearStr := r.URL.Query().Get("year")
	monthStr := r.URL.Query().Get("month")
	if yearStr == "" && monthStr == "" {
		now := time.Now()
		return now.Year(), now.Month(), nil
	}

	year, err := strconv.Atoi(yearStr)
	if err != nil || year < 1 {
		return 0, 0, fmt.Errorf("invalid year %q", yearStr)
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("invalid month %q", monthStr)
	}
	return year, time.Month(month), nil
}

// --- Portfolio handlers ---

func (s *Server) handlePortfolios(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handlePortfolioList(w, r)
	case http.MethodPost:
		s.handlePortfolioCreate(w, r)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handlePortfolioList(w http.ResponseWriter, r *http.Request) {
	portfolios, err := s.app.LedgerService.ListPortfolios(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"portfolios": portfolios,
	})
}

func (s *Server) handlePortfolioCreate(w http.ResponseWriter, r *http.Request) {
	var portfolio models.Portfolio
	if !DecodeJSON(w, r, &portfolio) {
		return
	}

	created, err := s.app.LedgerService.CreatePortfolio(r.Context(), &portfolio)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, created)
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request, name string) {
	switch r.Method {
	case http.MethodGet:
		portfolio, err := s.app.LedgerService.GetPortfolio(r.Context(), name)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, portfolio)
	case http.MethodDelete:
		if err := s.app.LedgerService.DeletePortfolio(r.Context(), name); err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"deleted": name})
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodDelete)
	}
}

func (s *Server) handlePortfolioBalance(w http.ResponseWriter, r *http.Request, name string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	balance, err := s.app.LedgerService.CurrentBalance(r.Context(), name)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"portfolio": name,
		"balance":   balance,
	})
}

func (s *Server) handlePortfolioRecompute(w http.ResponseWriter, r *http.Request, name string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	portfolio, err := s.app.LedgerService.RecomputeBalance(r.Context(), name)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, portfolio)
}

func (s *Server) handlePortfolioEntries(w http.ResponseWriter, r *http.Request, name string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	year, month, err := parseYearMonth(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	kind := models.EntryKind(r.URL.Query().Get("kind"))
	if !models.ValidEntryKind(kind) {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("kind must be %q or %q", models.EntryKindIncome, models.EntryKindExpense))
		return
	}

	entries, err := s.app.LedgerService.EntriesForMonth(r.Context(), name, kind, year, month)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"portfolio": name,
		"kind":      kind,
		"entries":   entries,
	})
}

func (s *Server) handlePortfolioOccurrences(w http.ResponseWriter, r *http.Request, name string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	year, month, err := parseYearMonth(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	occurrences, err := s.app.RecurringService.OccurrencesForDisplay(r.Context(), name, year, month)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"portfolio":   name,
		"occurrences": occurrences,
	})
}

func (s *Server) handlePortfolioReport(w http.ResponseWriter, r *http.Request, name string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	year, month, err := parseYearMonth(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := s.app.ReportService.MonthlyReport(r.Context(), name, year, month)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, report)
}

func (s *Server) handlePortfolioCalendar(w http.ResponseWriter, r *http.Request, name string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	year, month, err := parseYearMonth(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	cal, err := s.app.ReportService.MonthlyCalendar(r.Context(), name, year, month)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, cal)
}

func (s *Server) handlePortfolioChart(w http.ResponseWriter, r *http.Request, name string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	year, month, err := parseYearMonth(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	report, err := s.app.ReportService.MonthlyReport(ctx, name, year, month)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	png, err := s.app.ReportService.RenderChart(ctx, report)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// --- Entry handlers ---

func (s *Server) handleEntryCreate(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var entry models.LedgerEntry
	if !DecodeJSON(w, r, &entry) {
		return
	}

	created, err := s.app.LedgerService.CreateEntry(r.Context(), &entry)
	if err != nil {
		// A partial reconciliation still wrote the row; return it so the
		// client can follow up with a recompute instead of re-posting.
		var pre *models.PartialReconciliationError
		if created != nil && errors.As(err, &pre) {
			WriteJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"error": pre.Error(),
				"code":  "partial_reconciliation",
				"entry": created,
			})
			return
		}
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, created)
}

func (s *Server) handleEntry(w http.ResponseWriter, r *http.Request, kindStr, id string) {
	kind := models.EntryKind(kindStr)
	if !models.ValidEntryKind(kind) {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("kind must be %q or %q", models.EntryKindIncome, models.EntryKindExpense))
		return
	}

	switch r.Method {
	case http.MethodPut:
		var entry models.LedgerEntry
		if !DecodeJSON(w, r, &entry) {
			return
		}
		entry.ID = id
		entry.Kind = kind

		updated, err := s.app.LedgerService.EditEntry(r.Context(), &entry)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		portfolioName := r.URL.Query().Get("portfolio")
		if err := s.app.LedgerService.DeleteEntry(r.Context(), portfolioName, kind, id); err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"deleted": id})
	default:
		RequireMethod(w, r, http.MethodPut, http.MethodDelete)
	}
}

// --- Recurring expense handlers ---

func (s *Server) handleRecurring(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		defs, err := s.app.RecurringService.ListDefinitions(r.Context(), r.URL.Query().Get("portfolio"))
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"definitions": defs})
	case http.MethodPost:
		var def models.RecurringExpense
		if !DecodeJSON(w, r, &def) {
			return
		}
		created, err := s.app.RecurringService.CreateDefinition(r.Context(), &def)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, created)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleRecurringDefinition(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		def, err := s.app.RecurringService.GetDefinition(r.Context(), id)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, def)
	case http.MethodPut:
		var def models.RecurringExpense
		if !DecodeJSON(w, r, &def) {
			return
		}
		def.ID = id

		updated, err := s.app.RecurringService.UpdateDefinition(r.Context(), &def)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		if err := s.app.RecurringService.DeleteDefinition(r.Context(), id); err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"deleted": id})
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (s *Server) handleRecurringActive(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Active bool `json:"active"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	def, err := s.app.RecurringService.SetActive(r.Context(), id, req.Active)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, def)
}
