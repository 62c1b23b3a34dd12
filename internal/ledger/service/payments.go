package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rythudepot/internal/ledger/domain"
	"go.uber.org/zap"
)

func (s *Service) normalizePayment(req domain.PaymentRequest) (domain.PaymentRequest, error) {
	if req.BillID == 0 {
		return req, domain.NewValidationError("billId", domain.ErrBillNotFound)
	}
	if !req.Amount.IsPositive() {
		return req, domain.NewValidationError("amount", domain.ErrInvalidAmount)
	}
	req.PaymentDate = strings.TrimSpace(req.PaymentDate)
	if req.PaymentDate == "" {
		req.PaymentDate = s.today()
	}
	if !validDate(req.PaymentDate) {
		return req, domain.NewValidationError("paymentDate", domain.ErrInvalidDate)
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = domain.PaymentModeCash
	}
	if !req.PaymentMethod.Valid() {
		return req, domain.NewValidationError("paymentMethod", domain.ErrInvalidPaymentMode)
	}
	return req, nil
}

func (s *Service) newPaymentRecord(req domain.PaymentRequest, bill domain.Bill) domain.PaymentRecord {
	return domain.PaymentRecord{
		ID:            s.genID.Generate(),
		BillID:        bill.ID,
		BillNo:        bill.BillNo,
		FarmerID:      bill.Farmer.ID,
		FarmerName:    bill.Farmer.Name,
		Amount:        req.Amount,
		PaymentDate:   req.PaymentDate,
		PaymentMethod: req.PaymentMethod,
		CreatedAt:     s.now(),
	}
}

// CreatePaymentRecord appends a payment record without touching the bill
// or the farmer. Payment records are append-only and cannot be undone.
func (s *Service) CreatePaymentRecord(ctx context.Context, req domain.PaymentRequest) (domain.PaymentRecord, error) {
	req, err := s.normalizePayment(req)
	if err != nil {
		return domain.PaymentRecord{}, err
	}

	var record domain.PaymentRecord
	err = s.mutate(ctx, "create_payment_record", func(ctx context.Context, uow domain.UnitOfWork) (revertFunc, error) {
		bills, err := uow.Bills(ctx)
		if err != nil {
			return nil, err
		}
		i := indexOf(bills, func(b domain.Bill) bool { return b.ID == req.BillID })
		if i < 0 {
			return nil, domain.ErrBillNotFound
		}
		payments, err := uow.Payments(ctx)
		if err != nil {
			return nil, err
		}
		record = s.newPaymentRecord(req, bills[i])
		uow.SetPayments(append(payments, record))
		return nil, nil
	})
	if err != nil {
		return domain.PaymentRecord{}, err
	}

	s.log.Info("payment record created",
		zap.String("payment_id", record.ID.String()),
		zap.String("bill_id", record.BillID.String()),
		zap.String("amount", record.Amount.StringFixed(2)),
	)
	return record, nil
}

// PostPayment records a payment against a bill in one unit of work: the
// payment record is appended, the bill's amount paid and status move, and
// the farmer's running balance drops by the amount (never below zero).
// If any write fails none of them are kept.
func (s *Service) PostPayment(ctx context.Context, req domain.PaymentRequest) (domain.PostPaymentResult, error) {
	req, err := s.normalizePayment(req)
	if err != nil {
		return domain.PostPaymentResult{}, err
	}

	var result domain.PostPaymentResult
	err = s.mutate(ctx, "post_payment", func(ctx context.Context, uow domain.UnitOfWork) (revertFunc, error) {
		bills, err := uow.Bills(ctx)
		if err != nil {
			return nil, err
		}
		bi := indexOf(bills, func(b domain.Bill) bool { return b.ID == req.BillID })
		if bi < 0 {
			return nil, domain.ErrBillNotFound
		}
		bill := bills[bi]
		if req.Amount.GreaterThan(bill.Outstanding()) {
			return nil, domain.NewValidationError("amount", domain.ErrOverpayment)
		}

		payments, err := uow.Payments(ctx)
		if err != nil {
			return nil, err
		}
		farmers, err := uow.Farmers(ctx)
		if err != nil {
			return nil, err
		}

		now := s.now()
		record := s.newPaymentRecord(req, bill)
		uow.SetPayments(append(payments, record))

		bill.AmountPaid = bill.AmountPaid.Add(req.Amount)
		bill.Status = domain.DeriveStatus(bill.AmountPaid, bill.Total)
		bill.LastUpdated = &now
		bills[bi] = bill
		uow.SetBills(bills)

		result = domain.PostPaymentResult{Payment: record, Bill: bill}
		if fi := indexOf(farmers, func(f domain.Farmer) bool { return f.ID == bill.Farmer.ID }); fi >= 0 {
			farmer := farmers[fi]
			farmer.Balance = decimal.Max(decimal.Zero, farmer.Balance.Sub(req.Amount))
			farmer.LastUpdated = now
			farmers[fi] = farmer
			uow.SetFarmers(farmers)
			result.Farmer = &farmer
		}
		return nil, nil
	})
	if err != nil {
		return domain.PostPaymentResult{}, err
	}

	s.obsMetrics.RecordPaymentPosted(ctx, string(req.PaymentMethod))
	s.log.Info("payment posted",
		zap.String("payment_id", result.Payment.ID.String()),
		zap.String("bill_id", result.Bill.ID.String()),
		zap.Int64("bill_no", result.Bill.BillNo),
		zap.String("amount", req.Amount.StringFixed(2)),
		zap.String("status", string(result.Bill.Status)),
	)
	return result, nil
}

// ListPaymentRecords lists payments for one bill, or all when billID is 0.
func (s *Service) ListPaymentRecords(ctx context.Context, billID snowflake.ID) ([]domain.PaymentRecord, error) {
	out := []domain.PaymentRecord{}
	err := s.view(ctx, "list_payment_records", func(ctx context.Context, uow domain.UnitOfWork) error {
		payments, err := uow.Payments(ctx)
		if err != nil {
			return err
		}
		for _, p := range payments {
			if billID == 0 || p.BillID == billID {
				out = append(out, p)
			}
		}
		return nil
	})
	return out, err
}
