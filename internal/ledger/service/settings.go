package service

import (
	"context"
	"strings"

	"github.com/smallbiznis/rythudepot/internal/ledger/domain"
	"go.uber.org/zap"
)

func (s *Service) GetSettings(ctx context.Context) (domain.Settings, error) {
	var out domain.Settings
	err := s.view(ctx, "get_settings", func(ctx context.Context, uow domain.UnitOfWork) error {
		settings, err := uow.Settings(ctx)
		out = settings
		return err
	})
	return out, err
}

// UpdateSettings overwrites the fields set in patch and keeps the rest.
func (s *Service) UpdateSettings(ctx context.Context, patch domain.SettingsPatch) (domain.Settings, error) {
	if patch.InterestRate != nil && patch.InterestRate.IsNegative() {
		return domain.Settings{}, domain.NewValidationError("interestRate", domain.ErrInvalidAmount)
	}
	if patch.LastBillNumber != nil && *patch.LastBillNumber < 0 {
		return domain.Settings{}, domain.NewValidationError("lastBillNumber", domain.ErrInvalidQuantity)
	}
	if patch.LastReturnNumber != nil && *patch.LastReturnNumber < 0 {
		return domain.Settings{}, domain.NewValidationError("lastReturnNumber", domain.ErrInvalidQuantity)
	}

	var updated domain.Settings
	err := s.mutate(ctx, "update_settings", func(ctx context.Context, uow domain.UnitOfWork) (revertFunc, error) {
		before, err := uow.Settings(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.checkCounters(ctx, uow, patch); err != nil {
			return nil, err
		}
		updated = before
		if patch.DealerName != nil {
			updated.DealerName = strings.TrimSpace(*patch.DealerName)
		}
		if patch.Address != nil {
			updated.Address = strings.TrimSpace(*patch.Address)
		}
		if patch.GSTNumber != nil {
			updated.GSTNumber = strings.TrimSpace(*patch.GSTNumber)
		}
		if patch.Phone != nil {
			updated.Phone = strings.TrimSpace(*patch.Phone)
		}
		if patch.LastBillNumber != nil {
			updated.LastBillNumber = *patch.LastBillNumber
		}
		if patch.LastReturnNumber != nil {
			updated.LastReturnNumber = *patch.LastReturnNumber
		}
		if patch.InterestRate != nil {
			updated.InterestRate = *patch.InterestRate
		}
		uow.SetSettings(updated)
		return func(ctx context.Context, uow domain.UnitOfWork) error {
			uow.SetSettings(before)
			return nil
		}, nil
	})
	if err != nil {
		return domain.Settings{}, err
	}

	s.log.Info("settings updated", zap.String("interest_rate", updated.InterestRate.String()))
	if patch.InterestRate != nil && updated.InterestRate.IsZero() {
		s.log.Warn("interest rate set to zero, dues will accrue no interest")
	}
	return updated, nil
}

// checkCounters refuses to move a document counter below a number that is
// already on a bill or return. Moving it forward is allowed.
func (s *Service) checkCounters(ctx context.Context, uow domain.UnitOfWork, patch domain.SettingsPatch) error {
	if patch.LastBillNumber != nil {
		bills, err := uow.Bills(ctx)
		if err != nil {
			return err
		}
		var highest int64
		for _, b := range bills {
			highest = max(highest, b.BillNo)
		}
		if *patch.LastBillNumber < highest {
			return domain.NewValidationError("lastBillNumber", domain.ErrNumberIssued)
		}
	}
	if patch.LastReturnNumber != nil {
		returns, err := uow.Returns(ctx)
		if err != nil {
			return err
		}
		var highest int64
		for _, r := range returns {
			highest = max(highest, r.ReturnNo)
		}
		if *patch.LastReturnNumber < highest {
			return domain.NewValidationError("lastReturnNumber", domain.ErrNumberIssued)
		}
	}
	return nil
}
