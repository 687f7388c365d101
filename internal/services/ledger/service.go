// Package ledger keeps portfolio balances reconciled with their entry rows.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jortega/bolsillo/internal/calendar"
	"github.com/jortega/bolsillo/internal/common"
	"github.com/jortega/bolsillo/internal/interfaces"
	"github.com/jortega/bolsillo/internal/models"
)

// Service implements LedgerService.
//
// The stored balance is a cache: it must stay exactly equal to
// initial + sum(income) - sum(expense) over the surviving rows. Every mutation
// here is a row write followed by a balance adjustment, two sequential store
// calls with no transaction around them. The adjustment delta is always
// computed from a fresh read, never from a value carried across calls.
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
}

// NewService creates a new ledger service.
func NewService(storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{storage: storage, logger: logger}
}

func (s *Service) CreatePortfolio(ctx context.Context, portfolio *models.Portfolio) (*models.Portfolio, error) {
	if err := portfolio.Validate(); err != nil {
		return nil, err
	}
	userID := common.ResolveUserID(ctx)

	existing, err := s.storage.PortfolioStore().Get(ctx, userID, portfolio.Name)
	if err != nil && !isNotFound(err) {
		return nil, &models.StoreError{Op: "get portfolio", Err: err}
	}
	if existing != nil {
		return nil, models.NewValidationError("name", "portfolio %q already exists", portfolio.Name)
	}

	// The opening balance is both the current and the initial balance. The
	// initial one never moves again; recomputation anchors on it.
	portfolio.InitialBalance = portfolio.Balance
	if err := s.storage.PortfolioStore().Save(ctx, userID, portfolio); err != nil {
		return nil, &models.StoreError{Op: "save portfolio", Err: err}
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("portfolio", portfolio.Name).
		Str("balance", portfolio.Balance.String()).
		Msg("Portfolio created")
	return portfolio, nil
}

func (s *Service) GetPortfolio(ctx context.Context, name string) (*models.Portfolio, error) {
	userID := common.ResolveUserID(ctx)
	portfolio, err := s.storage.PortfolioStore().Get(ctx, userID, name)
	if err != nil {
		if isNotFound(err) {
			return nil, err
		}
		return nil, &models.StoreError{Op: "get portfolio", Err: err}
	}
	return portfolio, nil
}

func (s *Service) ListPortfolios(ctx context.Context) ([]*models.Portfolio, error) {
	userID := common.ResolveUserID(ctx)
	portfolios, err := s.storage.PortfolioStore().List(ctx, userID)
	if err != nil {
		return nil, &models.StoreError{Op: "list portfolios", Err: err}
	}
	return portfolios, nil
}

func (s *Service) DeletePortfolio(ctx context.Context, name string) error {
	userID := common.ResolveUserID(ctx)

	if _, err := s.storage.PortfolioStore().Get(ctx, userID, name); err != nil {
		if isNotFound(err) {
			return err
		}
		return &models.StoreError{Op: "get portfolio", Err: err}
	}

	deleted, err := s.storage.LedgerStore().DeleteByPortfolio(ctx, userID, name)
	if err != nil {
		return &models.StoreError{Op: "delete portfolio entries", Err: err}
	}

	// Recurring definitions reference the portfolio by name; drop them too.
	defs, err := s.storage.RecurringStore().List(ctx, userID, name)
	if err != nil {
		return &models.StoreError{Op: "list recurring definitions", Err: err}
	}
	for _, def := range defs {
		if err := s.storage.RecurringStore().Delete(ctx, userID, def.ID); err != nil {
			return &models.StoreError{Op: "delete recurring definition", Err: err}
		}
	}

	if err := s.storage.PortfolioStore().Delete(ctx, userID, name); err != nil {
		return &models.StoreError{Op: "delete portfolio", Err: err}
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("portfolio", name).
		Int("entries_deleted", deleted).
		Int("definitions_deleted", len(defs)).
		Msg("Portfolio deleted")
	return nil
}

func (s *Service) CreateEntry(ctx context.Context, entry *models.LedgerEntry) (*models.LedgerEntry, error) {
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	userID := common.ResolveUserID(ctx)

	// Missing portfolio is terminal before any mutation.
	if _, err := s.storage.PortfolioStore().Get(ctx, userID, entry.PortfolioName); err != nil {
		if isNotFound(err) {
			return nil, err
		}
		return nil, &models.StoreError{Op: "get portfolio", Err: err}
	}

	if err := s.storage.LedgerStore().Insert(ctx, userID, entry); err != nil {
		return nil, &models.StoreError{Op: "insert entry", Err: err}
	}

	if err := s.adjustBalance(ctx, userID, entry.PortfolioName, entry.Signed()); err != nil {
		// The row is durable; only the cached balance is now stale.
		return entry, &models.PartialReconciliationError{
			PortfolioName: entry.PortfolioName,
			EntryID:       entry.ID,
			Err:           err,
		}
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("portfolio", entry.PortfolioName).
		Str("kind", string(entry.Kind)).
		Str("amount", entry.Amount.String()).
		Str("date", entry.Date).
		Str("entry_id", entry.ID).
		Msg("Entry created")
	return entry, nil
}

func (s *Service) EditEntry(ctx context.Context, entry *models.LedgerEntry) (*models.LedgerEntry, error) {
	if !models.ValidEntryKind(entry.Kind) {
		return nil, models.NewValidationError("kind", "must be %q or %q, got %q",
			models.EntryKindIncome, models.EntryKindExpense, entry.Kind)
	}
	userID := common.ResolveUserID(ctx)

	// Re-read the row right before computing the delta; a stale amount here
	// would corrupt the balance under concurrent edits.
	old, err := s.storage.LedgerStore().Get(ctx, userID, entry.Kind, entry.ID)
	if err != nil {
		if isNotFound(err) {
			return nil, err
		}
		return nil, &models.StoreError{Op: "get entry", Err: err}
	}

	// Kind and owning portfolio are identity, not editable fields.
	entry.PortfolioName = old.PortfolioName
	entry.CreatedAt = old.CreatedAt
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	delta := entry.Amount.Sub(old.Amount)

	if err := s.storage.LedgerStore().Update(ctx, userID, entry); err != nil {
		return nil, &models.StoreError{Op: "update entry", Err: err}
	}

	if !delta.IsZero() {
		// An income that grew adds to the balance; an expense that grew
		// subtracts from it.
		adjustment := delta
		if entry.Kind == models.EntryKindExpense {
			adjustment = delta.Neg()
		}
		if err := s.adjustBalance(ctx, userID, entry.PortfolioName, adjustment); err != nil {
			return entry, &models.PartialReconciliationError{
				PortfolioName: entry.PortfolioName,
				EntryID:       entry.ID,
				Err:           err,
			}
		}
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("portfolio", entry.PortfolioName).
		Str("entry_id", entry.ID).
		Str("delta", delta.String()).
		Msg("Entry updated")
	return entry, nil
}

func (s *Service) DeleteEntry(ctx context.Context, portfolioName string, kind models.EntryKind, id string) error {
	userID := common.ResolveUserID(ctx)

	old, err := s.storage.LedgerStore().Get(ctx, userID, kind, id)
	if err != nil {
		if isNotFound(err) {
			return err
		}
		return &models.StoreError{Op: "get entry", Err: err}
	}

	if err := s.storage.LedgerStore().Delete(ctx, userID, kind, id); err != nil {
		return &models.StoreError{Op: "delete entry", Err: err}
	}

	// Reverse the entry's original balance effect.
	if err := s.adjustBalance(ctx, userID, old.PortfolioName, old.Signed().Neg()); err != nil {
		return &models.PartialReconciliationError{
			PortfolioName: old.PortfolioName,
			EntryID:       id,
			Err:           err,
		}
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("portfolio", old.PortfolioName).
		Str("kind", string(kind)).
		Str("entry_id", id).
		Msg("Entry deleted")
	return nil
}

func (s *Service) EntriesForMonth(ctx context.Context, portfolioName string, kind models.EntryKind, year int, month time.Month) ([]*models.LedgerEntry, error) {
	userID := common.ResolveUserID(ctx)
	from := calendar.MonthStart(year, month).String()
	to := calendar.MonthEnd(year, month).String()

	entries, err := s.storage.LedgerStore().ListRange(ctx, userID, kind, portfolioName, from, to)
	if err != nil {
		return nil, &models.StoreError{Op: "list entries", Err: err}
	}
	return entries, nil
}

func (s *Service) CurrentBalance(ctx context.Context, portfolioName string) (decimal.Decimal, error) {
	userID := common.ResolveUserID(ctx)
	balance, err := s.storage.PortfolioStore().ReadBalance(ctx, userID, portfolioName)
	if err != nil {
		if isNotFound(err) {
			return decimal.Zero, err
		}
		return decimal.Zero, &models.StoreError{Op: "read balance", Err: err}
	}
	return balance, nil
}

// RecomputeBalance rebuilds the cached balance from the initial balance and
// the full entry history. This is the repair path for a balance left stale by
// a PartialReconciliationError.
func (s *Service) RecomputeBalance(ctx context.Context, portfolioName string) (*models.Portfolio, error) {
	userID := common.ResolveUserID(ctx)

	portfolio, err := s.storage.PortfolioStore().Get(ctx, userID, portfolioName)
	if err != nil {
		if isNotFound(err) {
			return nil, err
		}
		return nil, &models.StoreError{Op: "get portfolio", Err: err}
	}

	incomes, err := s.storage.LedgerStore().ListRange(ctx, userID, models.EntryKindIncome, portfolioName, "", "")
	if err != nil {
		return nil, &models.StoreError{Op: "list income entries", Err: err}
	}
	expenses, err := s.storage.LedgerStore().ListRange(ctx, userID, models.EntryKindExpense, portfolioName, "", "")
	if err != nil {
		return nil, &models.StoreError{Op: "list expense entries", Err: err}
	}

	balance := portfolio.InitialBalance
	for _, e := range incomes {
		balance = balance.Add(e.Amount)
	}
	for _, e := range expenses {
		balance = balance.Sub(e.Amount)
	}

	if err := s.storage.PortfolioStore().WriteBalance(ctx, userID, portfolioName, balance); err != nil {
		return nil, &models.StoreError{Op: "write balance", Err: err}
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("portfolio", portfolioName).
		Str("old_balance", portfolio.Balance.String()).
		Str("new_balance", balance.String()).
		Msg("Balance recomputed")

	portfolio.Balance = balance
	return portfolio, nil
}

// adjustBalance applies a signed delta to the stored balance. The balance is
// re-read here, immediately before the write, so concurrent callers each work
// from their own fresh read.
func (s *Service) adjustBalance(ctx context.Context, userID, portfolioName string, delta decimal.Decimal) error {
	if delta.IsZero() {
		return nil
	}
	balance, err := s.storage.PortfolioStore().ReadBalance(ctx, userID, portfolioName)
	if err != nil {
		return err
	}
	return s.storage.PortfolioStore().WriteBalance(ctx, userID, portfolioName, balance.Add(delta))
}

func isNotFound(err error) bool {
	var nf *models.NotFoundError
	return errors.As(err, &nf)
}

// Compile-time check
var _ interfaces.LedgerService = (*Service)(nil)
