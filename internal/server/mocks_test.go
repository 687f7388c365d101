package server

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jortega/bolsillo/internal/interfaces"
	"github.com/jortega/bolsillo/internal/models"
)

// --- Mock services ---

type mockLedgerService struct {
	portfolios map[string]*models.Portfolio
	entries    map[string]*models.LedgerEntry

	// When set, CreateEntry inserts the row but reports a failed balance write.
	partialOnCreate bool
}

func newMockLedgerService() *mockLedgerService {
	return &mockLedgerService{
		portfolios: make(map[string]*models.Portfolio),
		entries:    make(map[string]*models.LedgerEntry),
	}
}

func (m *mockLedgerService) CreatePortfolio(_ context.Context, p *models.Portfolio) (*models.Portfolio, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if _, ok := m.portfolios[p.Name]; ok {
		return nil, models.NewValidationError("name", "portfolio %q already exists", p.Name)
	}
	p.InitialBalance = p.Balance
	m.portfolios[p.Name] = p
	return p, nil
}

func (m *mockLedgerService) GetPortfolio(_ context.Context, name string) (*models.Portfolio, error) {
	p, ok := m.portfolios[name]
	if !ok {
		return nil, &models.NotFoundError{Resource: "portfolio", Key: name}
	}
	return p, nil
}

func (m *mockLedgerService) ListPortfolios(_ context.Context) ([]*models.Portfolio, error) {
	var out []*models.Portfolio
	for _, p := range m.portfolios {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockLedgerService) DeletePortfolio(_ context.Context, name string) error {
	if _, ok := m.portfolios[name]; !ok {
		return &models.NotFoundError{Resource: "portfolio", Key: name}
	}
	delete(m.portfolios, name)
	return nil
}

func (m *mockLedgerService) CreateEntry(_ context.Context, e *models.LedgerEntry) (*models.LedgerEntry, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if _, ok := m.portfolios[e.PortfolioName]; !ok {
		return nil, &models.NotFoundError{Resource: "portfolio", Key: e.PortfolioName}
	}
	if e.ID == "" {
		e.ID = "entry-1"
	}
	m.entries[e.ID] = e
	if m.partialOnCreate {
		return e, &models.PartialReconciliationError{
			PortfolioName: e.PortfolioName, EntryID: e.ID,
			Err: &models.StoreError{Op: "write balance", Err: context.DeadlineExceeded},
		}
	}
	return e, nil
}

func (m *mockLedgerService) EditEntry(_ context.Context, e *models.LedgerEntry) (*models.LedgerEntry, error) {
	old, ok := m.entries[e.ID]
	if !ok {
		return nil, &models.NotFoundError{Resource: string(e.Kind) + " entry", Key: e.ID}
	}
	e.PortfolioName = old.PortfolioName
	if err := e.Validate(); err != nil {
		return nil, err
	}
	m.entries[e.ID] = e
	return e, nil
}

func (m *mockLedgerService) DeleteEntry(_ context.Context, _ string, kind models.EntryKind, id string) error {
	if _, ok := m.entries[id]; !ok {
		return &models.NotFoundError{Resource: string(kind) + " entry", Key: id}
	}
	delete(m.entries, id)
	return nil
}

func (m *mockLedgerService) EntriesForMonth(_ context.Context, portfolioName string, kind models.EntryKind, year int, month time.Month) ([]*models.LedgerEntry, error) {
	if _, ok := m.portfolios[portfolioName]; !ok {
		return nil, &models.NotFoundError{Resource: "portfolio", Key: portfolioName}
	}
	var out []*models.LedgerEntry
	for _, e := range m.entries {
		if e.PortfolioName == portfolioName && e.Kind == kind {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (m *mockLedgerService) CurrentBalance(_ context.Context, portfolioName string) (decimal.Decimal, error) {
	p, ok := m.portfolios[portfolioName]
	if !ok {
		return decimal.Zero, &models.NotFoundError{Resource: "portfolio", Key: portfolioName}
	}
	return p.Balance, nil
}

func (m *mockLedgerService) RecomputeBalance(_ context.Context, portfolioName string) (*models.Portfolio, error) {
	p, ok := m.portfolios[portfolioName]
	if !ok {
		return nil, &models.NotFoundError{Resource: "portfolio", Key: portfolioName}
	}
	return p, nil
}

type mockRecurringService struct {
	defs map[string]*models.RecurringExpense
}

func newMockRecurringService() *mockRecurringService {
	return &mockRecurringService{defs: make(map[string]*models.RecurringExpense)}
}

func (m *mockRecurringService) CreateDefinition(_ context.Context, def *models.RecurringExpense) (*models.RecurringExpense, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	if def.ID == "" {
		def.ID = "def-1"
	}
	m.defs[def.ID] = def
	return def, nil
}

func (m *mockRecurringService) GetDefinition(_ context.Context, id string) (*models.RecurringExpense, error) {
	def, ok := m.defs[id]
	if !ok {
		return nil, &models.NotFoundError{Resource: "recurring expense", Key: id}
	}
	return def, nil
}

func (m *mockRecurringService) ListDefinitions(_ context.Context, portfolioName string) ([]*models.RecurringExpense, error) {
	var out []*models.RecurringExpense
	for _, def := range m.defs {
		if portfolioName == "" || def.PortfolioName == portfolioName {
			out = append(out, def)
		}
	}
	return out, nil
}

func (m *mockRecurringService) UpdateDefinition(_ context.Context, def *models.RecurringExpense) (*models.RecurringExpense, error) {
	if _, ok := m.defs[def.ID]; !ok {
		return nil, &models.NotFoundError{Resource: "recurring expense", Key: def.ID}
	}
	m.defs[def.ID] = def
	return def, nil
}

func (m *mockRecurringService) SetActive(_ context.Context, id string, active bool) (*models.RecurringExpense, error) {
	def, ok := m.defs[id]
	if !ok {
		return nil, &models.NotFoundError{Resource: "recurring expense", Key: id}
	}
	def.Active = active
	return def, nil
}

func (m *mockRecurringService) DeleteDefinition(_ context.Context, id string) error {
	if _, ok := m.defs[id]; !ok {
		return &models.NotFoundError{Resource: "recurring expense", Key: id}
	}
	delete(m.defs, id)
	return nil
}

func (m *mockRecurringService) OccurrencesForDisplay(_ context.Context, portfolioName string, _ int, _ time.Month) ([]models.Occurrence, error) {
	var out []models.Occurrence
	for _, def := range m.defs {
		if def.PortfolioName == portfolioName && def.Active {
			out = append(out, models.Occurrence{
				Date: def.StartDate, PortfolioName: portfolioName,
				Description: models.OccurrencePrefix + def.Description,
				Category:    def.Category, Amount: def.Amount,
			})
		}
	}
	return out, nil
}

type mockReportService struct {
	report *models.MonthlyReport
	cal    *models.MonthlyCalendar
	png    []byte
	err    error
}

func (m *mockReportService) MonthlyReport(_ context.Context, portfolioName string, year int, month time.Month) (*models.MonthlyReport, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.report == nil {
		return &models.MonthlyReport{PortfolioName: portfolioName, Year: year, Month: month}, nil
	}
	return m.report, nil
}

func (m *mockReportService) MonthlyCalendar(_ context.Context, portfolioName string, year int, month time.Month) (*models.MonthlyCalendar, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.cal == nil {
		return &models.MonthlyCalendar{PortfolioName: portfolioName, Year: year, Month: month}, nil
	}
	return m.cal, nil
}

func (m *mockReportService) RenderChart(_ context.Context, _ *models.MonthlyReport) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.png == nil {
		return []byte("\x89PNG\r\n\x1a\nfake"), nil
	}
	return m.png, nil
}

var (
	_ interfaces.LedgerService    = (*mockLedgerService)(nil)
	_ interfaces.RecurringService = (*mockRecurringService)(nil)
	_ interfaces.ReportService    = (*mockReportService)(nil)
)
