package surrealdb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/jortega/bolsillo/internal/common"
	"github.com/jortega/bolsillo/internal/interfaces"
	"github.com/jortega/bolsillo/internal/models"
)

// LedgerStore implements interfaces.LedgerStore using SurrealDB. Income and
// expense rows live in separate tables named after the entry kind.
type LedgerStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// entryRecord is the SurrealDB record shape shared by the income and expense
// tables. Amount travels as a decimal string; the entry id is duplicated into
// a plain field because record IDs don't map cleanly onto struct fields.
type entryRecord struct {
	EntryID       string    `json:"entry_id"`
	UserID        string    `json:"user_id"`
	PortfolioName string    `json:"portfolio_name"`
	Amount        string    `json:"amount"`
	Date          string    `json:"date"`
	Description   string    `json:"description"`
	Category      string    `json:"category,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewLedgerStore creates a new LedgerStore.
func NewLedgerStore(db *surrealdb.DB, logger *common.Logger) *LedgerStore {
	return &LedgerStore{db: db, logger: logger}
}

// tableFor maps an entry kind to its table name.
func tableFor(kind models.EntryKind) (string, error) {
	switch kind {
	case models.EntryKindIncome:
		return "income", nil
	case models.EntryKindExpense:
		return "expense", nil
	default:
		return "", fmt.Errorf("unknown entry kind %q", kind)
	}
}

func (r *entryRecord) toModel(kind models.EntryKind) (*models.LedgerEntry, error) {
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return nil, fmt.Errorf("corrupt amount %q for entry %s: %w", r.Amount, r.EntryID, err)
	}
	return &models.LedgerEntry{
		ID:            r.EntryID,
		PortfolioName: r.PortfolioName,
		Kind:          kind,
		Amount:        amount,
		Date:          r.Date,
		Description:   r.Description,
		Category:      models.Category(r.Category),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}, nil
}

func entryVars(userID string, entry *models.LedgerEntry) map[string]any {
	return map[string]any{
		"entry_id":       entry.ID,
		"user_id":        userID,
		"portfolio_name": entry.PortfolioName,
		"amount":         entry.Amount.String(),
		"date":           entry.Date,
		"description":    entry.Description,
		"category":       string(entry.Category),
		"created_at":     entry.CreatedAt,
		"updated_at":     entry.UpdatedAt,
	}
}

const entrySetClause = `
	entry_id = $entry_id, user_id = $user_id, portfolio_name = $portfolio_name,
	amount = $amount, date = $date, description = $description,
	category = $category, created_at = $created_at, updated_at = $updated_at`

func (s *LedgerStore) Insert(ctx context.Context, userID string, entry *models.LedgerEntry) error {
	table, err := tableFor(entry.Kind)
	if err != nil {
		return err
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	now := time.Now()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now

	sql := "UPSERT $rid SET" + entrySetClause
	vars := entryVars(userID, entry)
	vars["rid"] = surrealmodels.NewRecordID(table, entry.ID)

	if _, err := surrealdb.Query[any](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to insert %s entry: %w", entry.Kind, err)
	}
	return nil
}

func (s *LedgerStore) Get(ctx context.Context, userID string, kind models.EntryKind, id string) (*models.LedgerEntry, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	sql := "SELECT * FROM $rid WHERE user_id = $user_id"
	vars := map[string]any{
		"rid":     surrealmodels.NewRecordID(table, id),
		"user_id": userID,
	}

	results, err := surrealdb.Query[[]entryRecord](ctx, s.db, sql, vars)
	if err != nil {
		if isNotFoundError(err) {
			return nil, &models.NotFoundError{Resource: string(kind) + " entry", Key: id}
		}
		return nil, fmt.Errorf("failed to get %s entry %s: %w", kind, id, err)
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, &models.NotFoundError{Resource: string(kind) + " entry", Key: id}
	}
	return (*results)[0].Result[0].toModel(kind)
}

func (s *LedgerStore) Update(ctx context.Context, userID string, entry *models.LedgerEntry) error {
	table, err := tableFor(entry.Kind)
	if err != nil {
		return err
	}
	entry.UpdatedAt = time.Now()

	sql := "UPDATE $rid SET" + entrySetClause + " WHERE user_id = $user_id"
	vars := entryVars(userID, entry)
	vars["rid"] = surrealmodels.NewRecordID(table, entry.ID)

	if _, err := surrealdb.Query[any](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to update %s entry %s: %w", entry.Kind, entry.ID, err)
	}
	return nil
}

func (s *LedgerStore) Delete(ctx context.Context, userID string, kind models.EntryKind, id string) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}

	sql := "DELETE $rid WHERE user_id = $user_id"
	vars := map[string]any{
		"rid":     surrealmodels.NewRecordID(table, id),
		"user_id": userID,
	}
	if _, err := surrealdb.Query[any](ctx, s.db, sql, vars); err != nil && !isNotFoundError(err) {
		return fmt.Errorf("failed to delete %s entry %s: %w", kind, id, err)
	}
	return nil
}

func (s *LedgerStore) ListRange(ctx context.Context, userID string, kind models.EntryKind, portfolioName, from, to string) ([]*models.LedgerEntry, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	// Dates are zero-padded YYYY-MM-DD strings, so plain string comparison
	// filters the range correctly.
	sql := "SELECT * FROM " + table + " WHERE user_id = $user_id AND portfolio_name = $portfolio_name"
	vars := map[string]any{
		"user_id":        userID,
		"portfolio_name": portfolioName,
	}
	if from != "" {
		sql += " AND date >= $from"
		vars["from"] = from
	}
	if to != "" {
		sql += " AND date <= $to"
		vars["to"] = to
	}
	sql += " ORDER BY date ASC, entry_id ASC"

	results, err := surrealdb.Query[[]entryRecord](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s entries: %w", kind, err)
	}

	entries := make([]*models.LedgerEntry, 0)
	if results != nil && len(*results) > 0 {
		for i := range (*results)[0].Result {
			e, err := (*results)[0].Result[i].toModel(kind)
			if err != nil {
				return nil, err
			}
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func (s *LedgerStore) DeleteByPortfolio(ctx context.Context, userID, portfolioName string) (int, error) {
	deleted := 0
	for _, table := range []string{"income", "expense"} {
		countSQL := "SELECT count() AS cnt FROM " + table +
			" WHERE user_id = $user_id AND portfolio_name = $portfolio_name GROUP ALL"
		vars := map[string]any{
			"user_id":        userID,
			"portfolio_name": portfolioName,
		}
		type countResult struct {
			Cnt int `json:"cnt"`
		}
		countResults, err := surrealdb.Query[[]countResult](ctx, s.db, countSQL, vars)
		if err == nil && countResults != nil && len(*countResults) > 0 && len((*countResults)[0].Result) > 0 {
			deleted += (*countResults)[0].Result[0].Cnt
		}

		deleteSQL := "DELETE " + table + " WHERE user_id = $user_id AND portfolio_name = $portfolio_name"
		if _, err := surrealdb.Query[any](ctx, s.db, deleteSQL, vars); err != nil {
			return deleted, fmt.Errorf("failed to delete %s entries for %q: %w", table, portfolioName, err)
		}
	}
	return deleted, nil
}

// Compile-time check
var _ interfaces.LedgerStore = (*LedgerStore)(nil)
