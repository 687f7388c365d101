package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jortega/bolsillo/internal/calendar"
	"github.com/jortega/bolsillo/internal/models"
)

// Aggregate folds one month of rows into a MonthlyReport.
//
// Totals cover stored rows only. Recurring occurrences are a projection for
// display; their sum is reported separately as ProjectedRecurring and never
// enters TotalExpense, so report totals and the calendar view deliberately
// disagree when unmaterialized occurrences exist.
//
// The initial balance is derived by undoing the month's net movement from the
// authoritative current balance, not read from storage.
func Aggregate(portfolioName string, year int, month time.Month,
	incomes, expenses []*models.LedgerEntry,
	occurrences []models.Occurrence,
	currentBalance decimal.Decimal) *models.MonthlyReport {

	totalIncome := decimal.Zero
	for _, e := range incomes {
		totalIncome = totalIncome.Add(e.Amount)
	}
	totalExpense := decimal.Zero
	for _, e := range expenses {
		totalExpense = totalExpense.Add(e.Amount)
	}

	projected := decimal.Zero
	for _, occ := range occurrences {
		projected = projected.Add(occ.Amount)
	}

	initialBalance := currentBalance.Sub(totalIncome).Add(totalExpense)
	finalBalance := initialBalance.Add(totalIncome).Sub(totalExpense)

	return &models.MonthlyReport{
		PortfolioName:      portfolioName,
		Year:               year,
		Month:              month,
		TotalIncome:        totalIncome,
		TotalExpense:       totalExpense,
		Net:                totalIncome.Sub(totalExpense),
		InitialBalance:     initialBalance,
		FinalBalance:       finalBalance,
		ProjectedRecurring: projected,
		Categories:         categoryBreakdown(expenses, totalExpense),
		Weeks:              weeklyBuckets(year, month, incomes, expenses),
		GeneratedAt:        time.Now(),
	}
}

// categoryBreakdown groups expenses by category with each group's share of
// the total, one decimal place. Percent stays zero for a month with no
// expense.
func categoryBreakdown(expenses []*models.LedgerEntry, totalExpense decimal.Decimal) []models.CategoryTotal {
	byCategory := make(map[models.Category]*models.CategoryTotal)
	for _, e := range expenses {
		ct, ok := byCategory[e.Category]
		if !ok {
			ct = &models.CategoryTotal{Category: e.Category, Total: decimal.Zero}
			byCategory[e.Category] = ct
		}
		ct.Count++
		ct.Total = ct.Total.Add(e.Amount)
	}

	out := make([]models.CategoryTotal, 0, len(byCategory))
	for _, ct := range byCategory {
		if totalExpense.IsPositive() {
			ct.Percent = ct.Total.Div(totalExpense).Mul(decimal.NewFromInt(100)).Round(1).InexactFloat64()
		}
		out = append(out, *ct)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Total.Equal(out[j].Total) {
			return out[i].Total.GreaterThan(out[j].Total)
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// weeklyBuckets splits the month into exactly four buckets of
// ceil(daysInMonth/4) days; the last bucket absorbs the remainder.
func weeklyBuckets(year int, month time.Month, incomes, expenses []*models.LedgerEntry) []models.WeekBucket {
	daysInMonth := calendar.DaysInMonth(year, month)
	bucketSize := (daysInMonth + 3) / 4
	monthEnd := calendar.MonthEnd(year, month)

	buckets := make([]models.WeekBucket, 4)
	for i := range buckets {
		start := calendar.NewDate(year, month, i*bucketSize+1)
		end := calendar.NewDate(year, month, (i+1)*bucketSize)
		if end.After(monthEnd) {
			end = monthEnd
		}
		buckets[i] = models.WeekBucket{
			Index:        i,
			StartDate:    start.String(),
			EndDate:      end.String(),
			TotalIncome:  decimal.Zero,
			TotalExpense: decimal.Zero,
		}
	}

	bucketIndex := func(date string) int {
		d, err := calendar.ParseDate(date)
		if err != nil {
			return -1
		}
		idx := (d.Day() - 1) / bucketSize
		if idx > 3 {
			idx = 3
		}
		return idx
	}

	for _, e := range incomes {
		if idx := bucketIndex(e.Date); idx >= 0 {
			buckets[idx].TotalIncome = buckets[idx].TotalIncome.Add(e.Amount)
		}
	}
	for _, e := range expenses {
		if idx := bucketIndex(e.Date); idx >= 0 {
			buckets[idx].TotalExpense = buckets[idx].TotalExpense.Add(e.Amount)
		}
	}
	return buckets
}
