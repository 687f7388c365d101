package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jortega/bolsillo/internal/calendar"
)

// OccurrencePrefix marks ledger descriptions that came from a recurring
// expense definition rather than a hand-entered row.
const OccurrencePrefix = "Gasto fijo: "

// RecurringExpense defines an expense that repeats every FrequencyDays days
// starting at StartDate. Definitions only project occurrences for display;
// they never write ledger rows or touch balances.
type RecurringExpense struct {
	ID            string          `json:"id"`
	PortfolioName string          `json:"portfolio_name"`
	Category      Category        `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	StartDate     string          `json:"start_date"`
	FrequencyDays int             `json:"frequency_days"`
	Description   string          `json:"description"`
	Active        bool            `json:"active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Validate checks the recurring expense fields.
func (r *RecurringExpense) Validate() error {
	if strings.TrimSpace(r.PortfolioName) == "" {
		return NewValidationError("portfolio_name", "portfolio name is required")
	}
	if !ValidCategory(r.Category) {
		return NewValidationError("category", "unknown category %q", r.Category)
	}
	if !r.Amount.IsPositive() {
		return NewValidationError("amount", "must be positive, got %s", r.Amount)
	}
	if _, err := calendar.ParseDate(r.StartDate); err != nil {
		return NewValidationError("start_date", "%v", err)
	}
	if r.FrequencyDays < 1 {
		return NewValidationError("frequency_days", "must be at least 1, got %d", r.FrequencyDays)
	}
	return nil
}

// Occurrence is a single projected hit of a recurring expense. It is derived
// on demand and never stored.
type Occurrence struct {
	Date          string          `json:"date"`
	PortfolioName string          `json:"portfolio_name"`
	Description   string          `json:"description"`
	Category      Category        `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
}

// OccurrenceOn projects the recurring expense onto a concrete date.
func (r *RecurringExpense) OccurrenceOn(date calendar.Date) Occurrence {
	return Occurrence{
		Date:          date.String(),
		PortfolioName: r.PortfolioName,
		Description:   OccurrencePrefix + r.Description,
		Category:      r.Category,
		Amount:        r.Amount,
	}
}
