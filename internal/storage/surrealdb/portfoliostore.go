package surrealdb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/jortega/bolsillo/internal/common"
	"github.com/jortega/bolsillo/internal/interfaces"
	"github.com/jortega/bolsillo/internal/models"
)

// PortfolioStore implements interfaces.PortfolioStore using SurrealDB.
type PortfolioStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// portfolioRecord is the SurrealDB record shape for the portfolio table.
// Money fields travel as decimal strings to survive the CBOR wire format
// without precision loss.
type portfolioRecord struct {
	UserID         string    `json:"user_id"`
	Name           string    `json:"name"`
	Balance        string    `json:"balance"`
	InitialBalance string    `json:"initial_balance"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewPortfolioStore creates a new PortfolioStore.
func NewPortfolioStore(db *surrealdb.DB, logger *common.Logger) *PortfolioStore {
	return &PortfolioStore{db: db, logger: logger}
}

// portfolioRecordID builds a SurrealDB record ID scoped by user.
// Sanitizes dots and slashes to underscores for safe record IDs.
func portfolioRecordID(userID, name string) string {
	return strings.NewReplacer(".", "_", "/", "_", " ", "_").Replace(userID + "_" + name)
}

func (r *portfolioRecord) toModel() (*models.Portfolio, error) {
	balance, err := decimal.NewFromString(r.Balance)
	if err != nil {
		return nil, fmt.Errorf("corrupt balance %q for portfolio %q: %w", r.Balance, r.Name, err)
	}
	initial, err := decimal.NewFromString(r.InitialBalance)
	if err != nil {
		return nil, fmt.Errorf("corrupt initial balance %q for portfolio %q: %w", r.InitialBalance, r.Name, err)
	}
	return &models.Portfolio{
		ID:             r.Name,
		Name:           r.Name,
		Balance:        balance,
		InitialBalance: initial,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}, nil
}

func (s *PortfolioStore) Save(ctx context.Context, userID string, portfolio *models.Portfolio) error {
	now := time.Now()
	if portfolio.CreatedAt.IsZero() {
		portfolio.CreatedAt = now
	}
	portfolio.UpdatedAt = now

	sql := `UPSERT $rid SET
		user_id = $user_id, name = $name, balance = $balance,
		initial_balance = $initial_balance, created_at = $created_at, updated_at = $updated_at`
	vars := map[string]any{
		"rid":             surrealmodels.NewRecordID("portfolio", portfolioRecordID(userID, portfolio.Name)),
		"user_id":         userID,
		"name":            portfolio.Name,
		"balance":         portfolio.Balance.String(),
		"initial_balance": portfolio.InitialBalance.String(),
		"created_at":      portfolio.CreatedAt,
		"updated_at":      portfolio.UpdatedAt,
	}

	if _, err := surrealdb.Query[any](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to save portfolio %q: %w", portfolio.Name, err)
	}
	return nil
}

func (s *PortfolioStore) Get(ctx context.Context, userID, name string) (*models.Portfolio, error) {
	rid := surrealmodels.NewRecordID("portfolio", portfolioRecordID(userID, name))
	record, err := surrealdb.Select[portfolioRecord](ctx, s.db, rid)
	if err != nil {
		if isNotFoundError(err) {
			return nil, &models.NotFoundError{Resource: "portfolio", Key: name}
		}
		return nil, fmt.Errorf("failed to get portfolio %q: %w", name, err)
	}
	if record == nil || record.Name == "" {
		return nil, &models.NotFoundError{Resource: "portfolio", Key: name}
	}
	return record.toModel()
}

func (s *PortfolioStore) List(ctx context.Context, userID string) ([]*models.Portfolio, error) {
	sql := "SELECT * FROM portfolio WHERE user_id = $user_id ORDER BY name ASC"
	vars := map[string]any{"user_id": userID}

	results, err := surrealdb.Query[[]portfolioRecord](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolios: %w", err)
	}

	portfolios := make([]*models.Portfolio, 0)
	if results != nil && len(*results) > 0 {
		for i := range (*results)[0].Result {
			p, err := (*results)[0].Result[i].toModel()
			if err != nil {
				return nil, err
			}
			portfolios = append(portfolios, p)
		}
	}
	return portfolios, nil
}

func (s *PortfolioStore) Delete(ctx context.Context, userID, name string) error {
	rid := surrealmodels.NewRecordID("portfolio", portfolioRecordID(userID, name))
	if _, err := surrealdb.Delete[portfolioRecord](ctx, s.db, rid); err != nil && !isNotFoundError(err) {
		return fmt.Errorf("failed to delete portfolio %q: %w", name, err)
	}
	return nil
}

func (s *PortfolioStore) ReadBalance(ctx context.Context, userID, name string) (decimal.Decimal, error) {
	type balanceRow struct {
		Balance string `json:"balance"`
	}
	sql := "SELECT balance FROM $rid"
	vars := map[string]any{
		"rid": surrealmodels.NewRecordID("portfolio", portfolioRecordID(userID, name)),
	}

	results, err := surrealdb.Query[[]balanceRow](ctx, s.db, sql, vars)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read balance for %q: %w", name, err)
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return decimal.Zero, &models.NotFoundError{Resource: "portfolio", Key: name}
	}

	balance, err := decimal.NewFromString((*results)[0].Result[0].Balance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("corrupt balance for portfolio %q: %w", name, err)
	}
	return balance, nil
}

func (s *PortfolioStore) WriteBalance(ctx context.Context, userID, name string, balance decimal.Decimal) error {
	sql := "UPDATE $rid SET balance = $balance, updated_at = $now"
	vars := map[string]any{
		"rid":     surrealmodels.NewRecordID("portfolio", portfolioRecordID(userID, name)),
		"balance": balance.String(),
		"now":     time.Now(),
	}

	if _, err := surrealdb.Query[any](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to write balance for %q: %w", name, err)
	}
	return nil
}

// Compile-time check
var _ interfaces.PortfolioStore = (*PortfolioStore)(nil)
