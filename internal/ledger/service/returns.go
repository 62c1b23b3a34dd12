package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rythudepot/internal/ledger/domain"
	"go.uber.org/zap"
)

// CreateReturn reserves the next return number and puts the returned
// quantities back into stock. Returns are not checked against earlier sales.
func (s *Service) CreateReturn(ctx context.Context, req domain.CreateReturnRequest) (domain.Return, error) {
	if req.FarmerID == 0 {
		return domain.Return{}, domain.NewValidationError("farmerId", domain.ErrMissingFarmer)
	}
	if len(req.Items) == 0 {
		return domain.Return{}, domain.NewValidationError("items", domain.ErrEmptyItems)
	}
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return domain.Return{}, domain.NewValidationError(fmt.Sprintf("items[%d].quantity", i), domain.ErrInvalidQuantity)
		}
		if item.Rate != nil && item.Rate.IsNegative() {
			return domain.Return{}, domain.NewValidationError(fmt.Sprintf("items[%d].rate", i), domain.ErrInvalidAmount)
		}
	}

	var ret domain.Return
	err := s.mutate(ctx, "create_return", func(ctx context.Context, uow domain.UnitOfWork) (revertFunc, error) {
		farmers, err := uow.Farmers(ctx)
		if err != nil {
			return nil, err
		}
		fi := indexOf(farmers, func(f domain.Farmer) bool { return f.ID == req.FarmerID })
		if fi < 0 {
			return nil, domain.NewValidationError("farmerId", domain.ErrFarmerNotFound)
		}
		products, err := uow.Products(ctx)
		if err != nil {
			return nil, err
		}
		returns, err := uow.Returns(ctx)
		if err != nil {
			return nil, err
		}
		settings, err := uow.Settings(ctx)
		if err != nil {
			return nil, err
		}

		returnNo := settings.LastReturnNumber + 1
		ret = domain.Return{
			ID:       s.genID.Generate(),
			ReturnNo: returnNo,
			Farmer:   farmers[fi],
			Reason:   strings.TrimSpace(req.Reason),
			Date:     s.now(),
		}
		for i, item := range req.Items {
			pi := indexOf(products, func(p domain.Product) bool { return p.ID == item.ProductID })
			if pi < 0 {
				return nil, domain.NewValidationError(fmt.Sprintf("items[%d].productId", i), domain.ErrProductNotFound)
			}
			rate := products[pi].Rate
			if item.Rate != nil {
				rate = *item.Rate
			}
			line := domain.ReturnItem{
				ProductID:   item.ProductID,
				ProductName: products[pi].ProductName,
				Quantity:    item.Quantity,
				Rate:        rate,
				Amount:      rate.Mul(decimal.NewFromInt(item.Quantity)),
			}
			products[pi].StockInHand += item.Quantity
			ret.Items = append(ret.Items, line)
			ret.Total = ret.Total.Add(line.Amount)
		}
		settings.LastReturnNumber = returnNo

		uow.SetProducts(products)
		uow.SetReturns(append(returns, ret))
		uow.SetSettings(settings)

		created := ret
		return func(ctx context.Context, uow domain.UnitOfWork) error {
			return revertCreateReturn(ctx, uow, created)
		}, nil
	})
	if err != nil {
		return domain.Return{}, err
	}

	s.obsMetrics.RecordReturnCreated(ctx)
	s.log.Info("return created",
		zap.String("return_id", ret.ID.String()),
		zap.Int64("return_no", ret.ReturnNo),
		zap.String("farmer_id", ret.Farmer.ID.String()),
		zap.String("total", ret.Total.StringFixed(2)),
	)
	return ret, nil
}

func revertCreateReturn(ctx context.Context, uow domain.UnitOfWork, ret domain.Return) error {
	returns, err := uow.Returns(ctx)
	if err != nil {
		return err
	}
	i := indexOf(returns, func(r domain.Return) bool { return r.ID == ret.ID })
	if i < 0 {
		return domain.ErrReturnNotFound
	}
	uow.SetReturns(removeAt(returns, i))

	if err := moveReturnStock(ctx, uow, ret, -1); err != nil {
		return err
	}

	settings, err := uow.Settings(ctx)
	if err != nil {
		return err
	}
	if settings.LastReturnNumber == ret.ReturnNo {
		settings.LastReturnNumber--
		uow.SetSettings(settings)
	}
	return nil
}

// moveReturnStock applies the return's quantities with the given sign.
// Taking stock out fails if any product would go negative.
func moveReturnStock(ctx context.Context, uow domain.UnitOfWork, ret domain.Return, sign int64) error {
	products, err := uow.Products(ctx)
	if err != nil {
		return err
	}
	for _, item := range ret.Items {
		if err := moveStock(products, item.ProductID, sign*item.Quantity); err != nil && !errors.Is(err, domain.ErrProductNotFound) {
			return err
		}
	}
	uow.SetProducts(products)
	return nil
}

// DeleteReturn removes the return. Under the reverse policy the returned
// quantities leave stock again.
func (s *Service) DeleteReturn(ctx context.Context, id snowflake.ID) (domain.Return, error) {
	reverse := s.deletePolicy == domain.DeleteReverse

	var removed domain.Return
	err := s.mutate(ctx, "delete_return", func(ctx context.Context, uow domain.UnitOfWork) (revertFunc, error) {
		returns, err := uow.Returns(ctx)
		if err != nil {
			return nil, err
		}
		i := indexOf(returns, func(r domain.Return) bool { return r.ID == id })
		if i < 0 {
			return nil, domain.ErrReturnNotFound
		}
		removed = returns[i]
		uow.SetReturns(removeAt(returns, i))
		if reverse {
			if err := moveReturnStock(ctx, uow, removed, -1); err != nil {
				return nil, err
			}
		}

		ret := removed
		return func(ctx context.Context, uow domain.UnitOfWork) error {
			returns, err := uow.Returns(ctx)
			if err != nil {
				return err
			}
			uow.SetReturns(insertAt(returns, i, ret))
			if reverse {
				return moveReturnStock(ctx, uow, ret, 1)
			}
			return nil
		}, nil
	})
	if err != nil {
		return domain.Return{}, err
	}

	s.log.Info("return deleted",
		zap.String("return_id", id.String()),
		zap.Int64("return_no", removed.ReturnNo),
		zap.String("policy", string(s.deletePolicy)),
	)
	return removed, nil
}

func (s *Service) ListReturns(ctx context.Context) ([]domain.Return, error) {
	out := []domain.Return{}
	err := s.view(ctx, "list_returns", func(ctx context.Context, uow domain.UnitOfWork) error {
		returns, err := uow.Returns(ctx)
		out = append(out, returns...)
		return err
	})
	return out, err
}
