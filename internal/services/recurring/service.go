// Package recurring manages recurring expense definitions and their
// projection onto calendar months.
package recurring

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/jortega/bolsillo/internal/common"
	"github.com/jortega/bolsillo/internal/interfaces"
	"github.com/jortega/bolsillo/internal/models"
)

// Service implements RecurringService. Definitions are templates only: they
// never touch balances or entry tables, and deleting one leaves no trace in
// the ledger.
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
}

// NewService creates a new recurring expense service.
func NewService(storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{storage: storage, logger: logger}
}

func (s *Service) CreateDefinition(ctx context.Context, def *models.RecurringExpense) (*models.RecurringExpense, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	userID := common.ResolveUserID(ctx)

	if _, err := s.storage.PortfolioStore().Get(ctx, userID, def.PortfolioName); err != nil {
		if isNotFound(err) {
			return nil, err
		}
		return nil, &models.StoreError{Op: "get portfolio", Err: err}
	}

	if err := s.storage.RecurringStore().Save(ctx, userID, def); err != nil {
		return nil, &models.StoreError{Op: "save recurring definition", Err: err}
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("portfolio", def.PortfolioName).
		Str("definition_id", def.ID).
		Str("start_date", def.StartDate).
		Int("frequency_days", def.FrequencyDays).
		Msg("Recurring expense created")
	return def, nil
}

func (s *Service) GetDefinition(ctx context.Context, id string) (*models.RecurringExpense, error) {
	userID := common.ResolveUserID(ctx)
	def, err := s.storage.RecurringStore().Get(ctx, userID, id)
	if err != nil {
		if isNotFound(err) {
			return nil, err
		}
		return nil, &models.StoreError{Op: "get recurring definition", Err: err}
	}
	return def, nil
}

func (s *Service) ListDefinitions(ctx context.Context, portfolioName string) ([]*models.RecurringExpense, error) {
	userID := common.ResolveUserID(ctx)
	defs, err := s.storage.RecurringStore().List(ctx, userID, portfolioName)
	if err != nil {
		return nil, &models.StoreError{Op: "list recurring definitions", Err: err}
	}
	return defs, nil
}

func (s *Service) UpdateDefinition(ctx context.Context, def *models.RecurringExpense) (*models.RecurringExpense, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	userID := common.ResolveUserID(ctx)

	old, err := s.storage.RecurringStore().Get(ctx, userID, def.ID)
	if err != nil {
		if isNotFound(err) {
			return nil, err
		}
		return nil, &models.StoreError{Op: "get recurring definition", Err: err}
	}

	// The owning portfolio is identity, not an editable field.
	def.PortfolioName = old.PortfolioName
	def.CreatedAt = old.CreatedAt
	if err := s.storage.RecurringStore().Save(ctx, userID, def); err != nil {
		return nil, &models.StoreError{Op: "save recurring definition", Err: err}
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("definition_id", def.ID).
		Msg("Recurring expense updated")
	return def, nil
}

func (s *Service) SetActive(ctx context.Context, id string, active bool) (*models.RecurringExpense, error) {
	userID := common.ResolveUserID(ctx)

	def, err := s.storage.RecurringStore().Get(ctx, userID, id)
	if err != nil {
		if isNotFound(err) {
			return nil, err
		}
		return nil, &models.StoreError{Op: "get recurring definition", Err: err}
	}

	def.Active = active
	if err := s.storage.RecurringStore().Save(ctx, userID, def); err != nil {
		return nil, &models.StoreError{Op: "save recurring definition", Err: err}
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("definition_id", id).
		Bool("active", active).
		Msg("Recurring expense toggled")
	return def, nil
}

func (s *Service) DeleteDefinition(ctx context.Context, id string) error {
	userID := common.ResolveUserID(ctx)

	if _, err := s.storage.RecurringStore().Get(ctx, userID, id); err != nil {
		if isNotFound(err) {
			return err
		}
		return &models.StoreError{Op: "get recurring definition", Err: err}
	}

	if err := s.storage.RecurringStore().Delete(ctx, userID, id); err != nil {
		return &models.StoreError{Op: "delete recurring definition", Err: err}
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("definition_id", id).
		Msg("Recurring expense deleted")
	return nil
}

func (s *Service) OccurrencesForDisplay(ctx context.Context, portfolioName string, year int, month time.Month) ([]models.Occurrence, error) {
	userID := common.ResolveUserID(ctx)

	defs, err := s.storage.RecurringStore().List(ctx, userID, portfolioName)
	if err != nil {
		return nil, &models.StoreError{Op: "list recurring definitions", Err: err}
	}

	occurrences := Expand(defs, year, month)
	sort.Slice(occurrences, func(i, j int) bool {
		if occurrences[i].Date != occurrences[j].Date {
			return occurrences[i].Date < occurrences[j].Date
		}
		return occurrences[i].Description < occurrences[j].Description
	})
	return occurrences, nil
}

func isNotFound(err error) bool {
	var nf *models.NotFoundError
	return errors.As(err, &nf)
}

// Compile-time check
var _ interfaces.RecurringService = (*Service)(nil)
