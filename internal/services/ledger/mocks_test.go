package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jortega/bolsillo/internal/interfaces"
	"github.com/jortega/bolsillo/internal/models"
)

// --- Mock portfolio store ---

type mockPortfolioStore struct {
	portfolios map[string]*models.Portfolio

	writeBalanceCalls int
	failWriteBalance  bool
}

func newMockPortfolioStore() *mockPortfolioStore {
	return &mockPortfolioStore{portfolios: make(map[string]*models.Portfolio)}
}

func (m *mockPortfolioStore) key(userID, name string) string { return userID + ":" + name }

func (m *mockPortfolioStore) Save(_ context.Context, userID string, p *models.Portfolio) error {
	cp := *p
	m.portfolios[m.key(userID, p.Name)] = &cp
	return nil
}

func (m *mockPortfolioStore) Get(_ context.Context, userID, name string) (*models.Portfolio, error) {
	p, ok := m.portfolios[m.key(userID, name)]
	if !ok {
		return nil, &models.NotFoundError{Resource: "portfolio", Key: name}
	}
	cp := *p
	return &cp, nil
}

func (m *mockPortfolioStore) List(_ context.Context, userID string) ([]*models.Portfolio, error) {
	var out []*models.Portfolio
	for _, p := range m.portfolios {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockPortfolioStore) Delete(_ context.Context, userID, name string) error {
	delete(m.portfolios, m.key(userID, name))
	return nil
}

func (m *mockPortfolioStore) ReadBalance(_ context.Context, userID, name string) (decimal.Decimal, error) {
	p, ok := m.portfolios[m.key(userID, name)]
	if !ok {
		return decimal.Zero, &models.NotFoundError{Resource: "portfolio", Key: name}
	}
	return p.Balance, nil
}

func (m *mockPortfolioStore) WriteBalance(_ context.Context, userID, name string, balance decimal.Decimal) error {
	m.writeBalanceCalls++
	if m.failWriteBalance {
		return fmt.Errorf("injected balance write failure")
	}
	p, ok := m.portfolios[m.key(userID, name)]
	if !ok {
		return &models.NotFoundError{Resource: "portfolio", Key: name}
	}
	p.Balance = balance
	return nil
}

// --- Mock ledger store ---

type mockLedgerStore struct {
	entries map[string]*models.LedgerEntry
	nextID  int
}

func newMockLedgerStore() *mockLedgerStore {
	return &mockLedgerStore{entries: make(map[string]*models.LedgerEntry)}
}

func (m *mockLedgerStore) key(userID string, kind models.EntryKind, id string) string {
	return userID + ":" + string(kind) + ":" + id
}

func (m *mockLedgerStore) Insert(_ context.Context, userID string, e *models.LedgerEntry) error {
	if e.ID == "" {
		m.nextID++
		e.ID = fmt.Sprintf("e%d", m.nextID)
	}
	cp := *e
	m.entries[m.key(userID, e.Kind, e.ID)] = &cp
	return nil
}

func (m *mockLedgerStore) Get(_ context.Context, userID string, kind models.EntryKind, id string) (*models.LedgerEntry, error) {
	e, ok := m.entries[m.key(userID, kind, id)]
	if !ok {
		return nil, &models.NotFoundError{Resource: string(kind) + " entry", Key: id}
	}
	cp := *e
	return &cp, nil
}

func (m *mockLedgerStore) Update(_ context.Context, userID string, e *models.LedgerEntry) error {
	k := m.key(userID, e.Kind, e.ID)
	if _, ok := m.entries[k]; !ok {
		return &models.NotFoundError{Resource: string(e.Kind) + " entry", Key: e.ID}
	}
	cp := *e
	m.entries[k] = &cp
	return nil
}

func (m *mockLedgerStore) Delete(_ context.Context, userID string, kind models.EntryKind, id string) error {
	delete(m.entries, m.key(userID, kind, id))
	return nil
}

func (m *mockLedgerStore) ListRange(_ context.Context, userID string, kind models.EntryKind, portfolioName, from, to string) ([]*models.LedgerEntry, error) {
	var out []*models.LedgerEntry
	for k, e := range m.entries {
		if e.Kind != kind || e.PortfolioName != portfolioName {
			continue
		}
		if k[:len(userID)+1] != userID+":" {
			continue
		}
		if from != "" && e.Date < from {
			continue
		}
		if to != "" && e.Date > to {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockLedgerStore) DeleteByPortfolio(_ context.Context, userID, portfolioName string) (int, error) {
	count := 0
	for k, e := range m.entries {
		if e.PortfolioName == portfolioName && k[:len(userID)+1] == userID+":" {
			delete(m.entries, k)
			count++
		}
	}
	return count, nil
}

// --- Mock recurring store ---

type mockRecurringStore struct {
	defs map[string]*models.RecurringExpense
}

func newMockRecurringStore() *mockRecurringStore {
	return &mockRecurringStore{defs: make(map[string]*models.RecurringExpense)}
}

func (m *mockRecurringStore) Save(_ context.Context, userID string, def *models.RecurringExpense) error {
	if def.ID == "" {
		def.ID = fmt.Sprintf("r%d", len(m.defs)+1)
	}
	cp := *def
	m.defs[userID+":"+def.ID] = &cp
	return nil
}

func (m *mockRecurringStore) Get(_ context.Context, userID, id string) (*models.RecurringExpense, error) {
	def, ok := m.defs[userID+":"+id]
	if !ok {
		return nil, &models.NotFoundError{Resource: "recurring expense", Key: id}
	}
	cp := *def
	return &cp, nil
}

func (m *mockRecurringStore) List(_ context.Context, userID, portfolioName string) ([]*models.RecurringExpense, error) {
	var out []*models.RecurringExpense
	for k, def := range m.defs {
		if k[:len(userID)+1] != userID+":" {
			continue
		}
		if portfolioName != "" && def.PortfolioName != portfolioName {
			continue
		}
		cp := *def
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockRecurringStore) Delete(_ context.Context, userID, id string) error {
	delete(m.defs, userID+":"+id)
	return nil
}

// --- Mock storage manager ---

type mockStorageManager struct {
	portfolioStore *mockPortfolioStore
	ledgerStore    *mockLedgerStore
	recurringStore *mockRecurringStore
}

func newMockStorageManager() *mockStorageManager {
	return &mockStorageManager{
		portfolioStore: newMockPortfolioStore(),
		ledgerStore:    newMockLedgerStore(),
		recurringStore: newMockRecurringStore(),
	}
}

func (m *mockStorageManager) PortfolioStore() interfaces.PortfolioStore { return m.portfolioStore }
func (m *mockStorageManager) LedgerStore() interfaces.LedgerStore       { return m.ledgerStore }
func (m *mockStorageManager) RecurringStore() interfaces.RecurringStore { return m.recurringStore }
func (m *mockStorageManager) FileStore() interfaces.FileStore           { return nil }
func (m *mockStorageManager) Close() error                              { return nil }

var _ interfaces.StorageManager = (*mockStorageManager)(nil)
