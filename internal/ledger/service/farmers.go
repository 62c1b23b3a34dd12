package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rythudepot/internal/ledger/domain"
	"go.uber.org/zap"
)

func (s *Service) CreateFarmer(ctx context.Context, req domain.CreateFarmerRequest) (domain.Farmer, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Farmer{}, domain.NewValidationError("name", domain.ErrInvalidName)
	}
	if req.Balance.IsNegative() {
		return domain.Farmer{}, domain.NewValidationError("balance", domain.ErrInvalidAmount)
	}
	if !validDate(req.NextVisitDate) {
		return domain.Farmer{}, domain.NewValidationError("nextVisitDate", domain.ErrInvalidDate)
	}

	farmer := domain.Farmer{
		ID:            s.genID.Generate(),
		Name:          name,
		FatherName:    strings.TrimSpace(req.FatherName),
		Village:       strings.TrimSpace(req.Village),
		Mandal:        strings.TrimSpace(req.Mandal),
		District:      strings.TrimSpace(req.District),
		Pin:           strings.TrimSpace(req.Pin),
		Mobile:        strings.TrimSpace(req.Mobile),
		Balance:       req.Balance,
		NextVisitDate: req.NextVisitDate,
		LastUpdated:   s.now(),
	}

	err := s.mutate(ctx, "create_farmer", func(ctx context.Context, uow domain.UnitOfWork) (revertFunc, error) {
		farmers, err := uow.Farmers(ctx)
		if err != nil {
			return nil, err
		}
		uow.SetFarmers(append(farmers, farmer))
		return func(ctx context.Context, uow domain.UnitOfWork) error {
			return removeFarmer(ctx, uow, farmer.ID)
		}, nil
	})
	if err != nil {
		return domain.Farmer{}, err
	}

	s.log.Info("farmer created", zap.String("farmer_id", farmer.ID.String()))
	return farmer, nil
}

func (s *Service) UpdateFarmer(ctx context.Context, id snowflake.ID, patch domain.FarmerPatch) (domain.Farmer, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return domain.Farmer{}, domain.NewValidationError("name", domain.ErrInvalidName)
	}
	if patch.Balance != nil && patch.Balance.IsNegative() {
		return domain.Farmer{}, domain.NewValidationError("balance", domain.ErrInvalidAmount)
	}
	if patch.NextVisitDate != nil && !validDate(*patch.NextVisitDate) {
		return domain.Farmer{}, domain.NewValidationError("nextVisitDate", domain.ErrInvalidDate)
	}

	var updated domain.Farmer
	err := s.mutate(ctx, "update_farmer", func(ctx context.Context, uow domain.UnitOfWork) (revertFunc, error) {
		farmers, err := uow.Farmers(ctx)
		if err != nil {
			return nil, err
		}
		i := indexOf(farmers, func(f domain.Farmer) bool { return f.ID == id })
		if i < 0 {
			return nil, domain.ErrFarmerNotFound
		}
		before := farmers[i]
		updated = applyFarmerPatch(before, patch)
		updated.LastUpdated = s.now()
		farmers[i] = updated
		uow.SetFarmers(farmers)
		return func(ctx context.Context, uow domain.UnitOfWork) error {
			return replaceFarmer(ctx, uow, before)
		}, nil
	})
	if err != nil {
		return domain.Farmer{}, err
	}

	s.log.Info("farmer updated", zap.String("farmer_id", id.String()))
	return updated, nil
}

func (s *Service) DeleteFarmer(ctx context.Context, id snowflake.ID) (domain.Farmer, error) {
	var removed domain.Farmer
	err := s.mutate(ctx, "delete_farmer", func(ctx context.Context, uow domain.UnitOfWork) (revertFunc, error) {
		farmers, err := uow.Farmers(ctx)
		if err != nil {
			return nil, err
		}
		i := indexOf(farmers, func(f domain.Farmer) bool { return f.ID == id })
		if i < 0 {
			return nil, domain.ErrFarmerNotFound
		}
		removed = farmers[i]
		uow.SetFarmers(removeAt(farmers, i))
		return func(ctx context.Context, uow domain.UnitOfWork) error {
			farmers, err := uow.Farmers(ctx)
			if err != nil {
				return err
			}
			uow.SetFarmers(insertAt(farmers, i, removed))
			return nil
		}, nil
	})
	if err != nil {
		return domain.Farmer{}, err
	}

	s.log.Info("farmer deleted", zap.String("farmer_id", id.String()))
	return removed, nil
}

func (s *Service) GetFarmer(ctx context.Context, id snowflake.ID) (domain.Farmer, error) {
	var out domain.Farmer
	err := s.view(ctx, "get_farmer", func(ctx context.Context, uow domain.UnitOfWork) error {
		farmers, err := uow.Farmers(ctx)
		if err != nil {
			return err
		}
		i := indexOf(farmers, func(f domain.Farmer) bool { return f.ID == id })
		if i < 0 {
			return domain.ErrFarmerNotFound
		}
		out = farmers[i]
		return nil
	})
	return out, err
}

func (s *Service) ListFarmers(ctx context.Context) ([]domain.Farmer, error) {
	out := []domain.Farmer{}
	err := s.view(ctx, "list_farmers", func(ctx context.Context, uow domain.UnitOfWork) error {
		farmers, err := uow.Farmers(ctx)
		out = append(out, farmers...)
		return err
	})
	return out, err
}

func applyFarmerPatch(f domain.Farmer, p domain.FarmerPatch) domain.Farmer {
	if p.Name != nil {
		f.Name = strings.TrimSpace(*p.Name)
	}
	if p.FatherName != nil {
		f.FatherName = strings.TrimSpace(*p.FatherName)
	}
	if p.Village != nil {
		f.Village = strings.TrimSpace(*p.Village)
	}
	if p.Mandal != nil {
		f.Mandal = strings.TrimSpace(*p.Mandal)
	}
	if p.District != nil {
		f.District = strings.TrimSpace(*p.District)
	}
	if p.Pin != nil {
		f.Pin = strings.TrimSpace(*p.Pin)
	}
	if p.Mobile != nil {
		f.Mobile = strings.TrimSpace(*p.Mobile)
	}
	if p.Balance != nil {
		f.Balance = *p.Balance
	}
	if p.NextVisitDate != nil {
		f.NextVisitDate = *p.NextVisitDate
	}
	return f
}

func removeFarmer(ctx context.Context, uow domain.UnitOfWork, id snowflake.ID) error {
	farmers, err := uow.Farmers(ctx)
	if err != nil {
		return err
	}
	i := indexOf(farmers, func(f domain.Farmer) bool { return f.ID == id })
	if i < 0 {
		return domain.ErrFarmerNotFound
	}
	uow.SetFarmers(removeAt(farmers, i))
	return nil
}

// replaceFarmer restores a whole prior record, lastUpdated included.
func replaceFarmer(ctx context.Context, uow domain.UnitOfWork, prior domain.Farmer) error {
	farmers, err := uow.Farmers(ctx)
	if err != nil {
		return err
	}
	i := indexOf(farmers, func(f domain.Farmer) bool { return f.ID == prior.ID })
	if i < 0 {
		return domain.ErrFarmerNotFound
	}
	farmers[i] = prior
	uow.SetFarmers(farmers)
	return nil
}
