package report

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jortega/bolsillo/internal/interfaces"
	"github.com/jortega/bolsillo/internal/models"
)

// --- Mock stores ---

type mockPortfolioStore struct {
	balances map[string]decimal.Decimal
}

func (m *mockPortfolioStore) Save(_ context.Context, _ string, _ *models.Portfolio) error { return nil }
func (m *mockPortfolioStore) Get(_ context.Context, _, name string) (*models.Portfolio, error) {
	return nil, &models.NotFoundError{Resource: "portfolio", Key: name}
}
func (m *mockPortfolioStore) List(_ context.Context, _ string) ([]*models.Portfolio, error) {
	return nil, nil
}
func (m *mockPortfolioStore) Delete(_ context.Context, _, _ string) error { return nil }

func (m *mockPortfolioStore) ReadBalance(_ context.Context, userID, name string) (decimal.Decimal, error) {
	balance, ok := m.balances[userID+":"+name]
	if !ok {
		return decimal.Zero, &models.NotFoundError{Resource: "portfolio", Key: name}
	}
	return balance, nil
}

func (m *mockPortfolioStore) WriteBalance(_ context.Context, userID, name string, balance decimal.Decimal) error {
	m.balances[userID+":"+name] = balance
	return nil
}

type mockLedgerStore struct {
	entries []*models.LedgerEntry
}

func (m *mockLedgerStore) Insert(_ context.Context, _ string, e *models.LedgerEntry) error {
	m.entries = append(m.entries, e)
	return nil
}
func (m *mockLedgerStore) Get(_ context.Context, _ string, kind models.EntryKind, id string) (*models.LedgerEntry, error) {
	return nil, &models.NotFoundError{Resource: string(kind) + " entry", Key: id}
}
func (m *mockLedgerStore) Update(_ context.Context, _ string, _ *models.LedgerEntry) error {
	return nil
}
func (m *mockLedgerStore) Delete(_ context.Context, _ string, _ models.EntryKind, _ string) error {
	return nil
}

func (m *mockLedgerStore) ListRange(_ context.Context, _ string, kind models.EntryKind, portfolioName, from, to string) ([]*models.LedgerEntry, error) {
	var out []*models.LedgerEntry
	for _, e := range m.entries {
		if e.Kind != kind || e.PortfolioName != portfolioName {
			continue
		}
		if from != "" && e.Date < from {
			continue
		}
		if to != "" && e.Date > to {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *mockLedgerStore) DeleteByPortfolio(_ context.Context, _, _ string) (int, error) {
	return 0, nil
}

type mockRecurringStore struct {
	defs []*models.RecurringExpense
}

func (m *mockRecurringStore) Save(_ context.Context, _ string, def *models.RecurringExpense) error {
	m.defs = append(m.defs, def)
	return nil
}
func (m *mockRecurringStore) Get(_ context.Context, _, id string) (*models.RecurringExpense, error) {
	return nil, &models.NotFoundError{Resource: "recurring expense", Key: id}
}

func (m *mockRecurringStore) List(_ context.Context, _, portfolioName string) ([]*models.RecurringExpense, error) {
	var out []*models.RecurringExpense
	for _, def := range m.defs {
		if portfolioName == "" || def.PortfolioName == portfolioName {
			out = append(out, def)
		}
	}
	return out, nil
}

func (m *mockRecurringStore) Delete(_ context.Context, _, _ string) error { return nil }

type mockFileStore struct {
	files map[string][]byte
	types map[string]string
}

func newMockFileStore() *mockFileStore {
	return &mockFileStore{files: make(map[string][]byte), types: make(map[string]string)}
}

func (m *mockFileStore) SaveFile(_ context.Context, category, key string, data []byte, contentType string) error {
	m.files[category+"/"+key] = data
	m.types[category+"/"+key] = contentType
	return nil
}

func (m *mockFileStore) GetFile(_ context.Context, category, key string) ([]byte, string, error) {
	data, ok := m.files[category+"/"+key]
	if !ok {
		return nil, "", fmt.Errorf("file not found: %s/%s", category, key)
	}
	return data, m.types[category+"/"+key], nil
}

func (m *mockFileStore) DeleteFile(_ context.Context, category, key string) error {
	delete(m.files, category+"/"+key)
	return nil
}

func (m *mockFileStore) HasFile(_ context.Context, category, key string) (bool, error) {
	_, ok := m.files[category+"/"+key]
	return ok, nil
}

// --- Mock storage manager ---

type mockStorageManager struct {
	portfolioStore *mockPortfolioStore
	ledgerStore    *mockLedgerStore
	recurringStore *mockRecurringStore
	fileStore      *mockFileStore
}

func newMockStorageManager() *mockStorageManager {
	return &mockStorageManager{
		portfolioStore: &mockPortfolioStore{balances: make(map[string]decimal.Decimal)},
		ledgerStore:    &mockLedgerStore{},
		recurringStore: &mockRecurringStore{},
		fileStore:      newMockFileStore(),
	}
}

func (m *mockStorageManager) PortfolioStore() interfaces.PortfolioStore { return m.portfolioStore }
func (m *mockStorageManager) LedgerStore() interfaces.LedgerStore       { return m.ledgerStore }
func (m *mockStorageManager) RecurringStore() interfaces.RecurringStore { return m.recurringStore }
func (m *mockStorageManager) FileStore() interfaces.FileStore           { return m.fileStore }
func (m *mockStorageManager) Close() error                              { return nil }

var _ interfaces.StorageManager = (*mockStorageManager)(nil)
