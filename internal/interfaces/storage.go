// Package interfaces defines service contracts for Bolsillo
package interfaces

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jortega/bolsillo/internal/models"
)

// StorageManager coordinates all storage backends
type StorageManager interface {
	PortfolioStore() PortfolioStore
	LedgerStore() LedgerStore
	RecurringStore() RecurringStore
	FileStore() FileStore

	// Lifecycle
	Close() error
}

// PortfolioStore manages portfolio rows and their cached balance. All methods
// are scoped by userID; portfolio names are unique per user.
type PortfolioStore interface {
	Save(ctx context.Context, userID string, portfolio *models.Portfolio) error
	Get(ctx context.Context, userID, name string) (*models.Portfolio, error)
	List(ctx context.Context, userID string) ([]*models.Portfolio, error)
	Delete(ctx context.Context, userID, name string) error

	// ReadBalance and WriteBalance are the narrow balance accessors the
	// reconciler uses. Deltas are always computed from a fresh ReadBalance,
	// never from a cached portfolio struct.
	ReadBalance(ctx context.Context, userID, name string) (decimal.Decimal, error)
	WriteBalance(ctx context.Context, userID, name string, balance decimal.Decimal) error
}

// LedgerStore manages income and expense rows. Income and expense live in
// separate tables, so every method takes the entry kind alongside the id.
type LedgerStore interface {
	Insert(ctx context.Context, userID string, entry *models.LedgerEntry) error
	Get(ctx context.Context, userID string, kind models.EntryKind, id string) (*models.LedgerEntry, error)
	Update(ctx context.Context, userID string, entry *models.LedgerEntry) error
	Delete(ctx context.Context, userID string, kind models.EntryKind, id string) error

	// ListRange returns entries of one kind for a portfolio whose date falls
	// in [from, to]. Dates are YYYY-MM-DD strings; the zero-padded format
	// makes lexicographic comparison equivalent to date comparison. Empty
	// from/to leaves that side unbounded.
	ListRange(ctx context.Context, userID string, kind models.EntryKind, portfolioName, from, to string) ([]*models.LedgerEntry, error)

	// DeleteByPortfolio removes every entry of both kinds for a portfolio.
	// Returns the number of rows deleted.
	DeleteByPortfolio(ctx context.Context, userID, portfolioName string) (int, error)
}

// RecurringStore manages recurring expense definitions.
type RecurringStore interface {
	Save(ctx context.Context, userID string, def *models.RecurringExpense) error
	Get(ctx context.Context, userID, id string) (*models.RecurringExpense, error)
	List(ctx context.Context, userID, portfolioName string) ([]*models.RecurringExpense, error)
	Delete(ctx context.Context, userID, id string) error
}

// FileStore provides binary file storage in the database, used for rendered
// report charts.
type FileStore interface {
	SaveFile(ctx context.Context, category, key string, data []byte, contentType string) error
	GetFile(ctx context.Context, category, key string) ([]byte, string, error) // data, contentType, error
	DeleteFile(ctx context.Context, category, key string) error
	HasFile(ctx context.Context, category, key string) (bool, error)
}
