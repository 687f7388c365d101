// Package models defines data structures for Bolsillo
package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jortega/bolsillo/internal/calendar"
)

// EntryKind categorizes the direction of a ledger entry.
type EntryKind string

const (
	EntryKindIncome  EntryKind = "income"
	EntryKindExpense EntryKind = "expense"
)

// ValidEntryKind returns true if k is a valid entry kind.
func ValidEntryKind(k EntryKind) bool {
	return k == EntryKindIncome || k == EntryKindExpense
}

// Category labels an expense. The set is closed: anything outside it is
// rejected at the boundary rather than stored as free text.
type Category string

const (
	CategoryComida     Category = "comida"
	CategoryHogar      Category = "hogar"
	CategoryTransporte Category = "transporte"
	CategorySalud      Category = "salud"
	CategoryOcio       Category = "ocio"
	CategoryEducacion  Category = "educacion"
	CategoryRopa       Category = "ropa"
	CategoryOtros      Category = "otros"
)

// validCategories lists all accepted expense categories.
var validCategories = map[Category]bool{
	CategoryComida:     true,
	CategoryHogar:      true,
	CategoryTransporte: true,
	CategorySalud:      true,
	CategoryOcio:       true,
	CategoryEducacion:  true,
	CategoryRopa:       true,
	CategoryOtros:      true,
}

// Categories returns the closed category set in display order.
func Categories() []Category {
	return []Category{
		CategoryComida, CategoryHogar, CategoryTransporte, CategorySalud,
		CategoryOcio, CategoryEducacion, CategoryRopa, CategoryOtros,
	}
}

// ValidCategory returns true if c is a valid expense category.
func ValidCategory(c Category) bool {
	return validCategories[c]
}

// Portfolio tracks a named balance for a user. InitialBalance is the balance
// at creation time and never changes afterwards; Balance is maintained
// incrementally as entries come and go, and can always be recomputed as
// initial + income - expense.
type Portfolio struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Balance        decimal.Decimal `json:"balance"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Validate checks the portfolio fields.
func (p *Portfolio) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return NewValidationError("name", "portfolio name is required")
	}
	return nil
}

// LedgerEntry is a single income or expense row. Amount is always positive;
// Kind carries the sign. Date is a YYYY-MM-DD string so stored rows order
// lexicographically by date.
type LedgerEntry struct {
	ID            string          `json:"id"`
	PortfolioName string          `json:"portfolio_name"`
	Kind          EntryKind       `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	Date          string          `json:"date"`
	Description   string          `json:"description"`
	Category      Category        `json:"category,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Validate checks the entry fields. Expense entries require a category from
// the closed set; income entries carry none.
func (e *LedgerEntry) Validate() error {
	if strings.TrimSpace(e.PortfolioName) == "" {
		return NewValidationError("portfolio_name", "portfolio name is required")
	}
	if !ValidEntryKind(e.Kind) {
		return NewValidationError("kind", "must be %q or %q, got %q",
			EntryKindIncome, EntryKindExpense, e.Kind)
	}
	if !e.Amount.IsPositive() {
		return NewValidationError("amount", "must be positive, got %s", e.Amount)
	}
	if _, err := calendar.ParseDate(e.Date); err != nil {
		return NewValidationError("date", "%v", err)
	}
	if e.Kind == EntryKindExpense && !ValidCategory(e.Category) {
		return NewValidationError("category", "unknown category %q", e.Category)
	}
	if e.Kind == EntryKindIncome && e.Category != "" {
		return NewValidationError("category", "income entries carry no category")
	}
	return nil
}

// Signed returns the amount with the sign implied by the kind: positive for
// income, negative for expense.
func (e *LedgerEntry) Signed() decimal.Decimal {
	if e.Kind == EntryKindExpense {
		return e.Amount.Neg()
	}
	return e.Amount
}
