// Package report aggregates portfolio months into totals, category
// breakdowns, weekly buckets, and rendered charts.
package report

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jortega/bolsillo/internal/calendar"
	"github.com/jortega/bolsillo/internal/common"
	"github.com/jortega/bolsillo/internal/interfaces"
	"github.com/jortega/bolsillo/internal/models"
	"github.com/jortega/bolsillo/internal/services/recurring"
)

// Service implements ReportService.
type Service struct {
	storage interfaces.StorageManager
	config  common.ReportsConfig
	logger  *common.Logger
}

// NewService creates a new report service.
func NewService(storage interfaces.StorageManager, config common.ReportsConfig, logger *common.Logger) *Service {
	return &Service{storage: storage, config: config, logger: logger}
}

// monthInputs is everything one report needs from storage.
type monthInputs struct {
	incomes  []*models.LedgerEntry
	expenses []*models.LedgerEntry
	defs     []*models.RecurringExpense
	balance  decimal.Decimal
}

// fetchMonth loads the month's rows, the recurring definitions, and the
// current balance concurrently. The four reads are independent.
func (s *Service) fetchMonth(ctx context.Context, userID, portfolioName string, year int, month time.Month) (*monthInputs, error) {
	from := calendar.MonthStart(year, month).String()
	to := calendar.MonthEnd(year, month).String()

	var in monthInputs
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		in.incomes, err = s.storage.LedgerStore().ListRange(gctx, userID, models.EntryKindIncome, portfolioName, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		in.expenses, err = s.storage.LedgerStore().ListRange(gctx, userID, models.EntryKindExpense, portfolioName, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		in.defs, err = s.storage.RecurringStore().List(gctx, userID, portfolioName)
		return err
	})
	g.Go(func() error {
		var err error
		in.balance, err = s.storage.PortfolioStore().ReadBalance(gctx, userID, portfolioName)
		return err
	})
	if err := g.Wait(); err != nil {
		if isNotFound(err) {
			return nil, err
		}
		return nil, &models.StoreError{Op: "fetch month data", Err: err}
	}
	return &in, nil
}

func (s *Service) MonthlyReport(ctx context.Context, portfolioName string, year int, month time.Month) (*models.MonthlyReport, error) {
	userID := common.ResolveUserID(ctx)

	in, err := s.fetchMonth(ctx, userID, portfolioName, year, month)
	if err != nil {
		return nil, err
	}

	occurrences := recurring.Expand(in.defs, year, month)
	report := Aggregate(portfolioName, year, month, in.incomes, in.expenses, occurrences, in.balance)

	s.logger.Debug().
		Str("user_id", userID).
		Str("portfolio", portfolioName).
		Int("year", year).
		Str("month", month.String()).
		Str("total_income", report.TotalIncome.String()).
		Str("total_expense", report.TotalExpense.String()).
		Msg("Monthly report aggregated")
	return report, nil
}

func (s *Service) MonthlyCalendar(ctx context.Context, portfolioName string, year int, month time.Month) (*models.MonthlyCalendar, error) {
	userID := common.ResolveUserID(ctx)

	in, err := s.fetchMonth(ctx, userID, portfolioName, year, month)
	if err != nil {
		return nil, err
	}
	occurrences := recurring.Expand(in.defs, year, month)

	days := make([]models.CalendarDay, calendar.DaysInMonth(year, month))
	for i := range days {
		days[i].Date = calendar.NewDate(year, month, i+1).String()
	}
	place := func(date string) *models.CalendarDay {
		d, err := calendar.ParseDate(date)
		if err != nil {
			return nil
		}
		return &days[d.Day()-1]
	}

	for _, e := range in.incomes {
		if day := place(e.Date); day != nil {
			day.Entries = append(day.Entries, *e)
		}
	}
	for _, e := range in.expenses {
		if day := place(e.Date); day != nil {
			day.Entries = append(day.Entries, *e)
		}
	}
	for _, occ := range occurrences {
		if day := place(occ.Date); day != nil {
			day.Occurrences = append(day.Occurrences, occ)
		}
	}
	for i := range days {
		sort.Slice(days[i].Entries, func(a, b int) bool {
			return days[i].Entries[a].ID < days[i].Entries[b].ID
		})
	}

	return &models.MonthlyCalendar{
		PortfolioName: portfolioName,
		Year:          year,
		Month:         month,
		Days:          days,
	}, nil
}

func (s *Service) RenderChart(ctx context.Context, report *models.MonthlyReport) ([]byte, error) {
	png, err := renderWeeklyChart(report, s.config.ChartWidth, s.config.ChartHeight)
	if err != nil {
		return nil, err
	}

	userID := common.ResolveUserID(ctx)
	key := chartKey(userID, report.PortfolioName, report.Year, report.Month)
	if err := s.storage.FileStore().SaveFile(ctx, "chart", key, png, "image/png"); err != nil {
		return nil, &models.StoreError{Op: "save chart", Err: err}
	}
	report.ChartFile = key

	s.logger.Info().
		Str("user_id", userID).
		Str("portfolio", report.PortfolioName).
		Str("chart_key", key).
		Int("bytes", len(png)).
		Msg("Report chart rendered")
	return png, nil
}

// chartKey names the stored chart for one portfolio month.
func chartKey(userID, portfolioName string, year int, month time.Month) string {
	return fmt.Sprintf("%s/%s/%04d-%02d.png", userID, portfolioName, year, int(month))
}

func isNotFound(err error) bool {
	var nf *models.NotFoundError
	return errors.As(err, &nf)
}

// Compile-time check
var _ interfaces.ReportService = (*Service)(nil)
