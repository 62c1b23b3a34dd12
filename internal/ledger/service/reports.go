package service

import (
	"context"
	"slices"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rythudepot/internal/interest"
	"github.com/smallbiznis/rythudepot/internal/ledger/domain"
	"go.uber.org/zap"
)

const defaultLowStockThreshold = 10

// BillInterestBasis adapts a bill for the interest calculator.
func BillInterestBasis(b domain.Bill) interest.Basis {
	return interest.Basis{
		Total:       b.Total,
		AmountPaid:  b.AmountPaid,
		Date:        b.Date,
		LastUpdated: b.LastUpdated,
	}
}

// Summary aggregates the dashboard figures as of now.
func (s *Service) Summary(ctx context.Context) (domain.Summary, error) {
	now := s.clock.Now()
	y, m, d := now.In(s.loc).Date()

	out := domain.Summary{
		BillsByStatus: map[domain.BillStatus]int{
			domain.BillStatusPending: 0,
			domain.BillStatusPartial: 0,
			domain.BillStatusPaid:    0,
		},
		AsOf: now.UTC(),
	}
	err := s.view(ctx, "summary", func(ctx context.Context, uow domain.UnitOfWork) error {
		bills, err := uow.Bills(ctx)
		if err != nil {
			return err
		}
		farmers, err := uow.Farmers(ctx)
		if err != nil {
			return err
		}
		products, err := uow.Products(ctx)
		if err != nil {
			return err
		}
		settings, err := uow.Settings(ctx)
		if err != nil {
			return err
		}

		for _, b := range bills {
			out.BillsByStatus[b.Status]++
			by, bm, bd := b.Date.In(s.loc).Date()
			if by == y && bm == m {
				out.MonthlySales = out.MonthlySales.Add(b.Total)
				if bd == d {
					out.TodaySales = out.TodaySales.Add(b.Total)
					out.TodayCollected = out.TodayCollected.Add(b.AmountPaid)
				}
			}
			if b.Status != domain.BillStatusPaid {
				out.OutstandingAmount = out.OutstandingAmount.Add(b.Outstanding())
				out.AccruedInterest = out.AccruedInterest.Add(interest.AsOfNow(BillInterestBasis(b), now, settings.InterestRate))
			}
		}
		out.AccruedInterest = out.AccruedInterest.Round(2)
		out.FarmerCount = len(farmers)
		out.ProductCount = len(products)
		return nil
	})
	return out, err
}

// FarmerDues reports what each farmer owes across their bills. Interest on
// the outstanding amount runs from the farmer's last update: projected to
// the next visit date when one is set, otherwise counted in whole days up
// to now. A zero farmerID reports every farmer.
func (s *Service) FarmerDues(ctx context.Context, farmerID snowflake.ID) ([]domain.FarmerDue, error) {
	now := s.clock.Now()
	out := []domain.FarmerDue{}
	err := s.view(ctx, "farmer_dues", func(ctx context.Context, uow domain.UnitOfWork) error {
		farmers, err := uow.Farmers(ctx)
		if err != nil {
			return err
		}
		bills, err := uow.Bills(ctx)
		if err != nil {
			return err
		}
		settings, err := uow.Settings(ctx)
		if err != nil {
			return err
		}

		found := false
		for _, f := range farmers {
			if farmerID != 0 && f.ID != farmerID {
				continue
			}
			found = true
			out = append(out, s.farmerDue(f, bills, settings.InterestRate, now))
		}
		if farmerID != 0 && !found {
			return domain.ErrFarmerNotFound
		}
		return nil
	})
	return out, err
}

func (s *Service) farmerDue(f domain.Farmer, bills []domain.Bill, rate decimal.Decimal, now time.Time) domain.FarmerDue {
	due := domain.FarmerDue{Farmer: f, InterestTo: now.UTC()}
	for _, b := range bills {
		if b.Farmer.ID != f.ID {
			continue
		}
		due.TotalBilled = due.TotalBilled.Add(b.Total)
		due.TotalPaid = due.TotalPaid.Add(b.AmountPaid)
	}
	due.Outstanding = due.TotalBilled.Sub(due.TotalPaid)

	if due.Outstanding.IsPositive() {
		start := f.LastUpdated
		if start.IsZero() {
			start = now
		}
		basis := interest.Basis{Total: due.Outstanding, Date: start}
		if target, ok := s.visitDate(f); ok {
			due.Interest = interest.AsOfDate(basis, target, rate)
			due.InterestTo = target.UTC()
		} else {
			due.Interest = interest.DailyAccrued(basis, now, rate)
		}
	}
	due.Interest = due.Interest.Round(2)
	due.TotalPayable = due.Outstanding.Add(due.Interest)
	return due
}

// visitDate reads the farmer's next visit as the start of that depot day.
func (s *Service) visitDate(f domain.Farmer) (time.Time, bool) {
	if f.NextVisitDate == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(domain.DateLayout, f.NextVisitDate, s.loc)
	if err != nil {
		s.log.Warn("ignoring malformed next visit date",
			zap.String("farmer_id", f.ID.String()),
			zap.String("next_visit_date", f.NextVisitDate),
		)
		return time.Time{}, false
	}
	return t, true
}

// LowStock lists products at or under the configured threshold, lowest
// stock first.
func (s *Service) LowStock(ctx context.Context) ([]domain.Product, error) {
	threshold := int64(defaultLowStockThreshold)
	if s.depot != nil {
		threshold = s.depot.Get().LowStockThreshold
	}

	out := []domain.Product{}
	err := s.view(ctx, "low_stock", func(ctx context.Context, uow domain.UnitOfWork) error {
		products, err := uow.Products(ctx)
		if err != nil {
			return err
		}
		for _, p := range products {
			if p.StockInHand <= threshold {
				out = append(out, p)
			}
		}
		slices.SortStableFunc(out, func(a, b domain.Product) int {
			switch {
			case a.StockInHand < b.StockInHand:
				return -1
			case a.StockInHand > b.StockInHand:
				return 1
			}
			return 0
		})
		return nil
	})
	return out, err
}
