package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryTotal is one slice of the monthly expense breakdown. Percent is the
// share of the month's total expense, rounded to one decimal place, and zero
// when the month had no expense at all.
type CategoryTotal struct {
	Category Category        `json:"category"`
	Count    int             `json:"count"`
	Total    decimal.Decimal `json:"total"`
	Percent  float64         `json:"percent"`
}

// WeekBucket aggregates income and expense over one quarter of the month.
// Months always split into exactly four buckets; the last one absorbs the
// remainder days.
type WeekBucket struct {
	Index        int             `json:"index"`
	StartDate    string          `json:"start_date"`
	EndDate      string          `json:"end_date"`
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
}

// MonthlyReport is the aggregated view of one portfolio for one calendar
// month. Period is explicit; there is no ambient "current month" anywhere.
type MonthlyReport struct {
	PortfolioName  string          `json:"portfolio_name"`
	Year           int             `json:"year"`
	Month          time.Month      `json:"month"`
	TotalIncome    decimal.Decimal `json:"total_income"`
	TotalExpense   decimal.Decimal `json:"total_expense"`
	Net            decimal.Decimal `json:"net"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	FinalBalance   decimal.Decimal `json:"final_balance"`
	// ProjectedRecurring sums the month's unmaterialized recurring
	// occurrences. Informational only: it is never part of TotalExpense.
	ProjectedRecurring decimal.Decimal `json:"projected_recurring"`
	Categories         []CategoryTotal `json:"categories"`
	Weeks              []WeekBucket    `json:"weeks"`
	ChartFile          string          `json:"chart_file,omitempty"`
	GeneratedAt        time.Time       `json:"generated_at"`
}

// CalendarDay is one cell of the monthly calendar view: the manual entries
// dated that day plus the recurring occurrences projected onto it.
type CalendarDay struct {
	Date        string        `json:"date"`
	Entries     []LedgerEntry `json:"entries,omitempty"`
	Occurrences []Occurrence  `json:"occurrences,omitempty"`
}

// MonthlyCalendar is the day-by-day display companion to MonthlyReport.
// Projected occurrences shown here are display-only markers and never count
// toward report totals.
type MonthlyCalendar struct {
	PortfolioName string        `json:"portfolio_name"`
	Year          int           `json:"year"`
	Month         time.Month    `json:"month"`
	Days          []CalendarDay `json:"days"`
}
