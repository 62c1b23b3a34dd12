package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rythudepot/internal/ledger/domain"
	"go.uber.org/zap"
)

const (
	saleSupplier = "Sale"
	saleRemarks  = "Sale"

	billNoDateLayout = "02/01/2006"
)

// CreateBill reserves the next bill number, prices every line from the
// product record, moves stock out and writes one register row per line.
// Lines asking for more than the stock in hand are rejected.
func (s *Service) CreateBill(ctx context.Context, req domain.CreateBillRequest) (domain.Bill, error) {
	if req.FarmerID == 0 {
		return domain.Bill{}, domain.NewValidationError("farmerId", domain.ErrMissingFarmer)
	}
	if len(req.Items) == 0 {
		return domain.Bill{}, domain.NewValidationError("items", domain.ErrEmptyItems)
	}
	mode := req.PaymentMode
	if mode == "" {
		mode = domain.PaymentModeCash
	}
	if !mode.Valid() {
		return domain.Bill{}, domain.NewValidationError("paymentMode", domain.ErrInvalidPaymentMode)
	}
	if req.AmountPaid.IsNegative() {
		return domain.Bill{}, domain.NewValidationError("amountPaid", domain.ErrInvalidAmount)
	}
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return domain.Bill{}, domain.NewValidationError(fmt.Sprintf("items[%d].quantity", i), domain.ErrInvalidQuantity)
		}
	}

	var bill domain.Bill
	err := s.mutate(ctx, "create_bill", func(ctx context.Context, uow domain.UnitOfWork) (revertFunc, error) {
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
		register, err := uow.StockRegister(ctx)
		if err != nil {
			return nil, err
		}
		bills, err := uow.Bills(ctx)
		if err != nil {
			return nil, err
		}
		settings, err := uow.Settings(ctx)
		if err != nil {
			return nil, err
		}

		now := s.now()
		local := now.In(s.loc)
		billNo := settings.LastBillNumber + 1
		bill = domain.Bill{
			ID:          s.genID.Generate(),
			BillNo:      billNo,
			Farmer:      farmers[fi],
			PaymentMode: mode,
			AmountPaid:  req.AmountPaid,
			Date:        now,
		}
		billID := bill.ID

		for i, item := range req.Items {
			pi := indexOf(products, func(p domain.Product) bool { return p.ID == item.ProductID })
			if pi < 0 {
				return nil, domain.NewValidationError(fmt.Sprintf("items[%d].productId", i), domain.ErrProductNotFound)
			}
			product := products[pi]
			line := priceLine(product, item)
			if err := nonNegative(
				amountField{fmt.Sprintf("items[%d].rate", i), line.Rate},
				amountField{fmt.Sprintf("items[%d].discount", i), line.Discount},
				amountField{fmt.Sprintf("items[%d].cgst", i), line.CGST},
				amountField{fmt.Sprintf("items[%d].sgst", i), line.SGST},
			); err != nil {
				return nil, err
			}
			base := line.Rate.Mul(decimal.NewFromInt(line.Quantity)).Sub(line.Discount)
			if base.IsNegative() {
				return nil, domain.NewValidationError(fmt.Sprintf("items[%d].discount", i), domain.ErrInvalidAmount)
			}

			before := product.StockInHand
			if err := moveStock(products, product.ID, -line.Quantity); err != nil {
				return nil, domain.NewValidationError(fmt.Sprintf("items[%d].quantity", i), domain.ErrInsufficientStock)
			}
			after := products[pi].StockInHand

			bill.Subtotal = bill.Subtotal.Add(base)
			bill.TotalCGST = bill.TotalCGST.Add(domain.TaxAmount(base, line.CGST))
			bill.TotalSGST = bill.TotalSGST.Add(domain.TaxAmount(base, line.SGST))
			bill.Items = append(bill.Items, line)

			register = append(register, domain.StockRegisterEntry{
				ID:              s.genID.Generate(),
				SlNo:            len(register) + 1,
				DateOfReceipt:   local.Format(domain.DateLayout),
				Supplier:        saleSupplier,
				InsecticideName: product.ProductName,
				BatchNo:         product.BatchNo,
				MnfDate:         product.MnfDate,
				ExpDate:         product.ExpDate,
				QtyReceived:     0,
				QtyInHand:       after,
				Total:           before,
				Sold:            line.Quantity,
				Balance:         after,
				BillNoDate:      fmt.Sprintf("%d / %s", billNo, local.Format(billNoDateLayout)),
				PurchaserName:   bill.Farmer.Name,
				Remarks:         saleRemarks,
				BillID:          &billID,
			})
		}

		bill.Total = bill.Subtotal.Add(bill.TotalCGST).Add(bill.TotalSGST)
		bill.Status = domain.DeriveStatus(bill.AmountPaid, bill.Total)
		settings.LastBillNumber = billNo

		uow.SetProducts(products)
		uow.SetStockRegister(register)
		uow.SetBills(append(bills, bill))
		uow.SetSettings(settings)

		created := bill
		return func(ctx context.Context, uow domain.UnitOfWork) error {
			return revertCreateBill(ctx, uow, created)
		}, nil
	})
	if err != nil {
		return domain.Bill{}, err
	}

	s.obsMetrics.RecordBillCreated(ctx, string(bill.PaymentMode), string(bill.Status))
	s.log.Info("bill created",
		zap.String("bill_id", bill.ID.String()),
		zap.Int64("bill_no", bill.BillNo),
		zap.String("farmer_id", bill.Farmer.ID.String()),
		zap.String("total", bill.Total.StringFixed(2)),
		zap.String("status", string(bill.Status)),
	)
	return bill, nil
}

// priceLine snapshots the product onto a bill line, applying any overrides.
func priceLine(p domain.Product, item domain.BillItemRequest) domain.LineItem {
	line := domain.LineItem{
		ProductID:   p.ID,
		ProductName: p.ProductName,
		HSN:         p.HSN,
		BatchNo:     p.BatchNo,
		MnfDate:     p.MnfDate,
		ExpDate:     p.ExpDate,
		Size:        p.Size,
		Quantity:    item.Quantity,
		Rate:        p.Rate,
		Discount:    p.Discount,
		CGST:        p.CGST,
		SGST:        p.SGST,
	}
	if item.Rate != nil {
		line.Rate = *item.Rate
	}
	if item.Discount != nil {
		line.Discount = *item.Discount
	}
	if item.CGST != nil {
		line.CGST = *item.CGST
	}
	if item.SGST != nil {
		line.SGST = *item.SGST
	}
	line.Amount = domain.LineAmount(line.Quantity, line.Rate, line.Discount, line.CGST, line.SGST)
	return line
}

// revertCreateBill removes the bill with all its side effects and hands
// its number back so numbering stays gap-free.
func revertCreateBill(ctx context.Context, uow domain.UnitOfWork, bill domain.Bill) error {
	bills, err := uow.Bills(ctx)
	if err != nil {
		return err
	}
	i := indexOf(bills, func(b domain.Bill) bool { return b.ID == bill.ID })
	if i < 0 {
		return domain.ErrBillNotFound
	}
	uow.SetBills(removeAt(bills, i))

	if err := restockBill(ctx, uow, bill); err != nil {
		return err
	}
	if _, err := removeBillRegisterRows(ctx, uow, bill.ID); err != nil {
		return err
	}

	settings, err := uow.Settings(ctx)
	if err != nil {
		return err
	}
	if settings.LastBillNumber == bill.BillNo {
		settings.LastBillNumber--
		uow.SetSettings(settings)
	}
	return nil
}

// restockBill puts every line's quantity back. Lines whose product has
// since been deleted are skipped.
func restockBill(ctx context.Context, uow domain.UnitOfWork, bill domain.Bill) error {
	products, err := uow.Products(ctx)
	if err != nil {
		return err
	}
	for _, item := range bill.Items {
		if err := moveStock(products, item.ProductID, item.Quantity); err != nil && !errors.Is(err, domain.ErrProductNotFound) {
			return err
		}
	}
	uow.SetProducts(products)
	return nil
}

// unstockBill takes every line's quantity out again.
func unstockBill(ctx context.Context, uow domain.UnitOfWork, bill domain.Bill) error {
	products, err := uow.Products(ctx)
	if err != nil {
		return err
	}
	for _, item := range bill.Items {
		if err := moveStock(products, item.ProductID, -item.Quantity); err != nil && !errors.Is(err, domain.ErrProductNotFound) {
			return err
		}
	}
	uow.SetProducts(products)
	return nil
}

func (s *Service) UpdateBill(ctx context.Context, id snowflake.ID, patch domain.BillPatch) (domain.Bill, error) {
	if patch.AmountPaid != nil && patch.AmountPaid.IsNegative() {
		return domain.Bill{}, domain.NewValidationError("amountPaid", domain.ErrInvalidAmount)
	}
	if patch.PaymentMode != nil && !patch.PaymentMode.Valid() {
		return domain.Bill{}, domain.NewValidationError("paymentMode", domain.ErrInvalidPaymentMode)
	}

	var updated domain.Bill
	err := s.mutate(ctx, "update_bill", func(ctx context.Context, uow domain.UnitOfWork) (revertFunc, error) {
		bills, err := uow.Bills(ctx)
		if err != nil {
			return nil, err
		}
		i := indexOf(bills, func(b domain.Bill) bool { return b.ID == id })
		if i < 0 {
			return nil, domain.ErrBillNotFound
		}
		before := bills[i]
		updated = before
		if patch.AmountPaid != nil {
			updated.AmountPaid = *patch.AmountPaid
		}
		if patch.PaymentMode != nil {
			updated.PaymentMode = *patch.PaymentMode
		}
		updated.Status = domain.DeriveStatus(updated.AmountPaid, updated.Total)
		now := s.now()
		updated.LastUpdated = &now
		bills[i] = updated
		uow.SetBills(bills)
		return func(ctx context.Context, uow domain.UnitOfWork) error {
			return replaceBill(ctx, uow, before)
		}, nil
	})
	if err != nil {
		return domain.Bill{}, err
	}

	s.log.Info("bill updated",
		zap.String("bill_id", id.String()),
		zap.String("amount_paid", updated.AmountPaid.StringFixed(2)),
		zap.String("status", string(updated.Status)),
	)
	return updated, nil
}

// DeleteBill removes the bill. Under the reverse policy its stock is put
// back and its register rows are removed as well.
func (s *Service) DeleteBill(ctx context.Context, id snowflake.ID) (domain.Bill, error) {
	reverse := s.deletePolicy == domain.DeleteReverse

	var removed domain.Bill
	err := s.mutate(ctx, "delete_bill", func(ctx context.Context, uow domain.UnitOfWork) (revertFunc, error) {
		bills, err := uow.Bills(ctx)
		if err != nil {
			return nil, err
		}
		i := indexOf(bills, func(b domain.Bill) bool { return b.ID == id })
		if i < 0 {
			return nil, domain.ErrBillNotFound
		}
		removed = bills[i]
		uow.SetBills(removeAt(bills, i))

		var rows []indexedEntry
		if reverse {
			if err := restockBill(ctx, uow, removed); err != nil {
				return nil, err
			}
			if rows, err = removeBillRegisterRows(ctx, uow, removed.ID); err != nil {
				return nil, err
			}
		}

		bill := removed
		return func(ctx context.Context, uow domain.UnitOfWork) error {
			bills, err := uow.Bills(ctx)
			if err != nil {
				return err
			}
			uow.SetBills(insertAt(bills, i, bill))
			if !reverse {
				return nil
			}
			if err := unstockBill(ctx, uow, bill); err != nil {
				return err
			}
			return restoreRegisterRows(ctx, uow, rows)
		}, nil
	})
	if err != nil {
		return domain.Bill{}, err
	}

	s.log.Info("bill deleted",
		zap.String("bill_id", id.String()),
		zap.Int64("bill_no", removed.BillNo),
		zap.String("policy", string(s.deletePolicy)),
	)
	return removed, nil
}

func replaceBill(ctx context.Context, uow domain.UnitOfWork, prior domain.Bill) error {
	bills, err := uow.Bills(ctx)
	if err != nil {
		return err
	}
	i := indexOf(bills, func(b domain.Bill) bool { return b.ID == prior.ID })
	if i < 0 {
		return domain.ErrBillNotFound
	}
	bills[i] = prior
	uow.SetBills(bills)
	return nil
}

func (s *Service) GetBill(ctx context.Context, id snowflake.ID) (domain.Bill, error) {
	return s.findBill(ctx, "get_bill", func(b domain.Bill) bool { return b.ID == id })
}

func (s *Service) GetBillByNumber(ctx context.Context, billNo int64) (domain.Bill, error) {
	return s.findBill(ctx, "get_bill_by_number", func(b domain.Bill) bool { return b.BillNo == billNo })
}

func (s *Service) findBill(ctx context.Context, op string, match func(domain.Bill) bool) (domain.Bill, error) {
	var out domain.Bill
	err := s.view(ctx, op, func(ctx context.Context, uow domain.UnitOfWork) error {
		bills, err := uow.Bills(ctx)
		if err != nil {
			return err
		}
		i := indexOf(bills, match)
		if i < 0 {
			return domain.ErrBillNotFound
		}
		out = bills[i]
		return nil
	})
	return out, err
}

func (s *Service) ListBills(ctx context.Context, filter domain.ListBillsFilter) ([]domain.Bill, error) {
	return s.filterBills(ctx, "list_bills", func(b domain.Bill) bool {
		if filter.FarmerID != 0 && b.Farmer.ID != filter.FarmerID {
			return false
		}
		if filter.Status != "" && b.Status != filter.Status {
			return false
		}
		return true
	})
}

// ListTodaysSales returns bills dated on the current depot calendar day.
func (s *Service) ListTodaysSales(ctx context.Context) ([]domain.Bill, error) {
	y, m, d := s.clock.Now().In(s.loc).Date()
	return s.filterBills(ctx, "list_todays_sales", func(b domain.Bill) bool {
		by, bm, bd := b.Date.In(s.loc).Date()
		return by == y && bm == m && bd == d
	})
}

// ListMonthlySales returns bills dated in the current depot calendar month.
func (s *Service) ListMonthlySales(ctx context.Context) ([]domain.Bill, error) {
	y, m, _ := s.clock.Now().In(s.loc).Date()
	return s.filterBills(ctx, "list_monthly_sales", func(b domain.Bill) bool {
		by, bm, _ := b.Date.In(s.loc).Date()
		return by == y && bm == m
	})
}

func (s *Service) ListOutstandingBills(ctx context.Context) ([]domain.Bill, error) {
	return s.filterBills(ctx, "list_outstanding_bills", func(b domain.Bill) bool {
		return b.Status == domain.BillStatusPending || b.Status == domain.BillStatusPartial
	})
}

func (s *Service) filterBills(ctx context.Context, op string, keep func(domain.Bill) bool) ([]domain.Bill, error) {
	out := []domain.Bill{}
	err := s.view(ctx, op, func(ctx context.Context, uow domain.UnitOfWork) error {
		bills, err := uow.Bills(ctx)
		if err != nil {
			return err
		}
		for _, b := range bills {
			if keep(b) {
				out = append(out, b)
			}
		}
		return nil
	})
	return out, err
}
