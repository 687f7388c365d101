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

// RecurringStore implements interfaces.RecurringStore using SurrealDB.
type RecurringStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// recurringRecord is the SurrealDB record shape for recurring_expense.
type recurringRecord struct {
	DefinitionID  string    `json:"definition_id"`
	UserID        string    `json:"user_id"`
	PortfolioName string    `json:"portfolio_name"`
	Category      string    `json:"category"`
	Amount        string    `json:"amount"`
	StartDate     string    `json:"start_date"`
	FrequencyDays int       `json:"frequency_days"`
	Description   string    `json:"description"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewRecurringStore creates a new RecurringStore.
func NewRecurringStore(db *surrealdb.DB, logger *common.Logger) *RecurringStore {
	return &RecurringStore{db: db, logger: logger}
}

func (r *recurringRecord) toModel() (*models.RecurringExpense, error) {
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return nil, fmt.Errorf("corrupt amount %q for recurring expense %s: %w", r.Amount, r.DefinitionID, err)
	}
	return &models.RecurringExpense{
		ID:            r.DefinitionID,
		PortfolioName: r.PortfolioName,
		Category:      models.Category(r.Category),
		Amount:        amount,
		StartDate:     r.StartDate,
		FrequencyDays: r.FrequencyDays,
		Description:   r.Description,
		Active:        r.Active,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}, nil
}

func (s *RecurringStore) Save(ctx context.Context, userID string, def *models.RecurringExpense) error {
	if def.ID == "" {
		def.ID = uuid.New().String()
	}
	now := time.Now()
	if def.CreatedAt.IsZero() {
		def.CreatedAt = now
	}
	def.UpdatedAt = now

	sql := `UPSERT $rid SET
		definition_id = $definition_id, user_id = $user_id, portfolio_name = $portfolio_name,
		category = $category, amount = $amount, start_date = $start_date,
		frequency_days = $frequency_days, description = $description, active = $active,
		created_at = $created_at, updated_at = $updated_at`
	vars := map[string]any{
		"rid":            surrealmodels.NewRecordID("recurring_expense", def.ID),
		"definition_id":  def.ID,
		"user_id":        userID,
		"portfolio_name": def.PortfolioName,
		"category":       string(def.Category),
		"amount":         def.Amount.String(),
		"start_date":     def.StartDate,
		"frequency_days": def.FrequencyDays,
		"description":    def.Description,
		"active":         def.Active,
		"created_at":     def.CreatedAt,
		"updated_at":     def.UpdatedAt,
	}

	if _, err := surrealdb.Query[any](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to save recurring expense: %w", err)
	}
	return nil
}

func (s *RecurringStore) Get(ctx context.Context, userID, id string) (*models.RecurringExpense, error) {
	sql := "SELECT * FROM $rid WHERE user_id = $user_id"
	vars := map[string]any{
		"rid":     surrealmodels.NewRecordID("recurring_expense", id),
		"user_id": userID,
	}

	results, err := surrealdb.Query[[]recurringRecord](ctx, s.db, sql, vars)
	if err != nil {
		if isNotFoundError(err) {
			return nil, &models.NotFoundError{Resource: "recurring expense", Key: id}
		}
		return nil, fmt.Errorf("failed to get recurring expense %s: %w", id, err)
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, &models.NotFoundError{Resource: "recurring expense", Key: id}
	}
	return (*results)[0].Result[0].toModel()
}

func (s *RecurringStore) List(ctx context.Context, userID, portfolioName string) ([]*models.RecurringExpense, error) {
	sql := "SELECT * FROM recurring_expense WHERE user_id = $user_id"
	vars := map[string]any{"user_id": userID}
	if portfolioName != "" {
		sql += " AND portfolio_name = $portfolio_name"
		vars["portfolio_name"] = portfolioName
	}
	sql += " ORDER BY start_date ASC, definition_id ASC"

	results, err := surrealdb.Query[[]recurringRecord](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list recurring expenses: %w", err)
	}

	defs := make([]*models.RecurringExpense, 0)
	if results != nil && len(*results) > 0 {
		for i := range (*results)[0].Result {
			d, err := (*results)[0].Result[i].toModel()
			if err != nil {
				return nil, err
			}
			defs = append(defs, d)
		}
	}
	return defs, nil
}

func (s *RecurringStore) Delete(ctx context.Context, userID, id string) error {
	sql := "DELETE $rid WHERE user_id = $user_id"
	vars := map[string]any{
		"rid":     surrealmodels.NewRecordID("recurring_expense", id),
		"user_id": userID,
	}
	if _, err := surrealdb.Query[any](ctx, s.db, sql, vars); err != nil && !isNotFoundError(err) {
		return fmt.Errorf("failed to delete recurring expense %s: %w", id, err)
	}
	return nil
}

// Compile-time check
var _ interfaces.RecurringStore = (*RecurringStore)(nil)
