// Package interfaces defines service contracts for Bolsillo
package interfaces

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jortega/bolsillo/internal/models"
)

// LedgerService keeps portfolio balances reconciled with their entries. The
// owning user is resolved from the context.
type LedgerService interface {
	// CreatePortfolio registers a new portfolio with its opening balance.
	CreatePortfolio(ctx context.Context, portfolio *models.Portfolio) (*models.Portfolio, error)

	// GetPortfolio retrieves a portfolio with its stored balance.
	GetPortfolio(ctx context.Context, name string) (*models.Portfolio, error)

	// ListPortfolios returns all of the user's portfolios.
	ListPortfolios(ctx context.Context) ([]*models.Portfolio, error)

	// DeletePortfolio removes a portfolio and all of its entries.
	DeletePortfolio(ctx context.Context, name string) error

	// CreateEntry validates and inserts an entry, then adjusts the stored
	// balance by the entry's signed amount.
	CreateEntry(ctx context.Context, entry *models.LedgerEntry) (*models.LedgerEntry, error)

	// EditEntry rewrites an existing entry and applies the amount delta to
	// the stored balance. The entry's ID, PortfolioName, and Kind identify
	// the row; kind itself cannot change.
	EditEntry(ctx context.Context, entry *models.LedgerEntry) (*models.LedgerEntry, error)

	// DeleteEntry removes an entry and reverses its balance effect.
	DeleteEntry(ctx context.Context, portfolioName string, kind models.EntryKind, id string) error

	// EntriesForMonth returns one kind of entries dated within the month.
	EntriesForMonth(ctx context.Context, portfolioName string, kind models.EntryKind, year int, month time.Month) ([]*models.LedgerEntry, error)

	// CurrentBalance reads the stored balance without touching entry rows.
	CurrentBalance(ctx context.Context, portfolioName string) (decimal.Decimal, error)

	// RecomputeBalance rebuilds the stored balance from the initial balance
	// and the full surviving entry history, repairing any drift left behind
	// by a partial reconciliation.
	RecomputeBalance(ctx context.Context, portfolioName string) (*models.Portfolio, error)
}

// RecurringService manages recurring expense definitions and their projection
// onto calendar months. Occurrences are virtual: they never touch balances or
// entry tables.
type RecurringService interface {
	CreateDefinition(ctx context.Context, def *models.RecurringExpense) (*models.RecurringExpense, error)
	GetDefinition(ctx context.Context, id string) (*models.RecurringExpense, error)
	ListDefinitions(ctx context.Context, portfolioName string) ([]*models.RecurringExpense, error)
	UpdateDefinition(ctx context.Context, def *models.RecurringExpense) (*models.RecurringExpense, error)
	SetActive(ctx context.Context, id string, active bool) (*models.RecurringExpense, error)
	DeleteDefinition(ctx context.Context, id string) error

	// OccurrencesForDisplay expands the portfolio's active definitions over
	// one month, sorted by date. Calendar views show these alongside real
	// entries; report totals deliberately leave them out.
	OccurrencesForDisplay(ctx context.Context, portfolioName string, year int, month time.Month) ([]models.Occurrence, error)
}

// ReportService aggregates one portfolio month into totals, category
// breakdowns, and weekly buckets.
type ReportService interface {
	// MonthlyReport fetches the month's rows and current balance and
	// aggregates them. Totals cover stored rows only.
	MonthlyReport(ctx context.Context, portfolioName string, year int, month time.Month) (*models.MonthlyReport, error)

	// MonthlyCalendar returns the day-by-day view: real entries plus virtual
	// recurring occurrences.
	MonthlyCalendar(ctx context.Context, portfolioName string, year int, month time.Month) (*models.MonthlyCalendar, error)

	// RenderChart draws the weekly income/expense buckets as a PNG, stores
	// it in the file store, and returns the image bytes.
	RenderChart(ctx context.Context, report *models.MonthlyReport) ([]byte, error)
}
