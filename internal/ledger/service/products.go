package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rythudepot/internal/ledger/domain"
	"go.uber.org/zap"
)

func (s *Service) CreateProduct(ctx context.Context, req domain.CreateProductRequest) (domain.Product, error) {
	product := domain.Product{
		HSN:         strings.TrimSpace(req.HSN),
		ProductName: strings.TrimSpace(req.ProductName),
		BatchNo:     strings.TrimSpace(req.BatchNo),
		MnfDate:     strings.TrimSpace(req.MnfDate),
		ExpDate:     strings.TrimSpace(req.ExpDate),
		Size:        req.Size,
		Rate:        req.Rate,
		Discount:    req.Discount,
		CGST:        req.CGST,
		SGST:        req.SGST,
		Amount:      req.Amount,
		StockInHand: req.StockInHand,
	}
	if err := validateProduct(product); err != nil {
		return domain.Product{}, err
	}
	product.ID = s.genID.Generate()

	err := s.mutate(ctx, "create_product", func(ctx context.Context, uow domain.UnitOfWork) (revertFunc, error) {
		products, err := uow.Products(ctx)
		if err != nil {
			return nil, err
		}
		uow.SetProducts(append(products, product))
		return func(ctx context.Context, uow domain.UnitOfWork) error {
			products, err := uow.Products(ctx)
			if err != nil {
				return err
			}
			i := indexOf(products, func(p domain.Product) bool { return p.ID == product.ID })
			if i < 0 {
				return domain.ErrProductNotFound
			}
			uow.SetProducts(removeAt(products, i))
			return nil
		}, nil
	})
	if err != nil {
		return domain.Product{}, err
	}

	s.log.Info("product created",
		zap.String("product_id", product.ID.String()),
		zap.Int64("stock_in_hand", product.StockInHand),
	)
	return product, nil
}

// UpdateProduct merges patch into the product. The amount is stored as
// given; callers recompute it when pricing fields change.
func (s *Service) UpdateProduct(ctx context.Context, id snowflake.ID, patch domain.ProductPatch) (domain.Product, error) {
	var updated domain.Product
	err := s.mutate(ctx, "update_product", func(ctx context.Context, uow domain.UnitOfWork) (revertFunc, error) {
		products, err := uow.Products(ctx)
		if err != nil {
			return nil, err
		}
		i := indexOf(products, func(p domain.Product) bool { return p.ID == id })
		if i < 0 {
			return nil, domain.ErrProductNotFound
		}
		before := products[i]
		updated = applyProductPatch(before, patch)
		if err := validateProduct(updated); err != nil {
			return nil, err
		}
		products[i] = updated
		uow.SetProducts(products)
		return func(ctx context.Context, uow domain.UnitOfWork) error {
			return replaceProduct(ctx, uow, before)
		}, nil
	})
	if err != nil {
		return domain.Product{}, err
	}

	s.log.Info("product updated", zap.String("product_id", id.String()))
	return updated, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id snowflake.ID) (domain.Product, error) {
	var removed domain.Product
	err := s.mutate(ctx, "delete_product", func(ctx context.Context, uow domain.UnitOfWork) (revertFunc, error) {
		products, err := uow.Products(ctx)
		if err != nil {
			return nil, err
		}
		i := indexOf(products, func(p domain.Product) bool { return p.ID == id })
		if i < 0 {
			return nil, domain.ErrProductNotFound
		}
		removed = products[i]
		uow.SetProducts(removeAt(products, i))
		return func(ctx context.Context, uow domain.UnitOfWork) error {
			products, err := uow.Products(ctx)
			if err != nil {
				return err
			}
			uow.SetProducts(insertAt(products, i, removed))
			return nil
		}, nil
	})
	if err != nil {
		return domain.Product{}, err
	}

	s.log.Info("product deleted", zap.String("product_id", id.String()))
	return removed, nil
}

func (s *Service) GetProduct(ctx context.Context, id snowflake.ID) (domain.Product, error) {
	var out domain.Product
	err := s.view(ctx, "get_product", func(ctx context.Context, uow domain.UnitOfWork) error {
		products, err := uow.Products(ctx)
		if err != nil {
			return err
		}
		i := indexOf(products, func(p domain.Product) bool { return p.ID == id })
		if i < 0 {
			return domain.ErrProductNotFound
		}
		out = products[i]
		return nil
	})
	return out, err
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	out := []domain.Product{}
	err := s.view(ctx, "list_products", func(ctx context.Context, uow domain.UnitOfWork) error {
		products, err := uow.Products(ctx)
		out = append(out, products...)
		return err
	})
	return out, err
}

// AdjustProductStock subtracts delta from the stock in hand; a negative
// delta adds stock. A result below zero is rejected.
func (s *Service) AdjustProductStock(ctx context.Context, id snowflake.ID, delta int64) (domain.Product, error) {
	var updated domain.Product
	err := s.mutate(ctx, "adjust_stock", func(ctx context.Context, uow domain.UnitOfWork) (revertFunc, error) {
		products, err := uow.Products(ctx)
		if err != nil {
			return nil, err
		}
		i := indexOf(products, func(p domain.Product) bool { return p.ID == id })
		if i < 0 {
			return nil, domain.ErrProductNotFound
		}
		before := products[i]
		if err := moveStock(products, id, -delta); err != nil {
			return nil, err
		}
		updated = products[i]
		uow.SetProducts(products)
		return func(ctx context.Context, uow domain.UnitOfWork) error {
			return replaceProduct(ctx, uow, before)
		}, nil
	})
	if err != nil {
		return domain.Product{}, err
	}

	s.log.Info("product stock adjusted",
		zap.String("product_id", id.String()),
		zap.Int64("delta", delta),
		zap.Int64("stock_in_hand", updated.StockInHand),
	)
	return updated, nil
}

// moveStock adds change to the product's stock in place. It fails without
// touching products when the result would be negative.
func moveStock(products []domain.Product, id snowflake.ID, change int64) error {
	i := indexOf(products, func(p domain.Product) bool { return p.ID == id })
	if i < 0 {
		return domain.ErrProductNotFound
	}
	next := products[i].StockInHand + change
	if next < 0 {
		return domain.NewValidationError("quantity", domain.ErrInsufficientStock)
	}
	products[i].StockInHand = next
	return nil
}

func replaceProduct(ctx context.Context, uow domain.UnitOfWork, prior domain.Product) error {
	products, err := uow.Products(ctx)
	if err != nil {
		return err
	}
	i := indexOf(products, func(p domain.Product) bool { return p.ID == prior.ID })
	if i < 0 {
		return domain.ErrProductNotFound
	}
	products[i] = prior
	uow.SetProducts(products)
	return nil
}

func validateProduct(p domain.Product) error {
	if p.ProductName == "" {
		return domain.NewValidationError("productName", domain.ErrInvalidName)
	}
	if !p.Size.Valid() {
		return domain.NewValidationError("size", domain.ErrInvalidSize)
	}
	if !validDate(p.MnfDate) {
		return domain.NewValidationError("mnfDate", domain.ErrInvalidDate)
	}
	if !validDate(p.ExpDate) {
		return domain.NewValidationError("expDate", domain.ErrInvalidDate)
	}
	if err := nonNegative(
		amountField{"rate", p.Rate},
		amountField{"discount", p.Discount},
		amountField{"cgst", p.CGST},
		amountField{"sgst", p.SGST},
		amountField{"amount", p.Amount},
	); err != nil {
		return err
	}
	if p.StockInHand < 0 {
		return domain.NewValidationError("stockInHand", domain.ErrInvalidQuantity)
	}
	return nil
}

func applyProductPatch(p domain.Product, patch domain.ProductPatch) domain.Product {
	if patch.HSN != nil {
		p.HSN = strings.TrimSpace(*patch.HSN)
	}
	if patch.ProductName != nil {
		p.ProductName = strings.TrimSpace(*patch.ProductName)
	}
	if patch.BatchNo != nil {
		p.BatchNo = strings.TrimSpace(*patch.BatchNo)
	}
	if patch.MnfDate != nil {
		p.MnfDate = strings.TrimSpace(*patch.MnfDate)
	}
	if patch.ExpDate != nil {
		p.ExpDate = strings.TrimSpace(*patch.ExpDate)
	}
	if patch.Size != nil {
		p.Size = *patch.Size
	}
	if patch.Rate != nil {
		p.Rate = *patch.Rate
	}
	if patch.Discount != nil {
		p.Discount = *patch.Discount
	}
	if patch.CGST != nil {
		p.CGST = *patch.CGST
	}
	if patch.SGST != nil {
		p.SGST = *patch.SGST
	}
	if patch.Amount != nil {
		p.Amount = *patch.Amount
	}
	if patch.StockInHand != nil {
		p.StockInHand = *patch.StockInHand
	}
	return p
}

type amountField struct {
	name  string
	value decimal.Decimal
}

// nonNegative reports the first negative field.
func nonNegative(fields ...amountField) error {
	for _, f := range fields {
		if f.value.IsNegative() {
			return domain.NewValidationError(f.name, domain.ErrInvalidAmount)
		}
	}
	return nil
}
