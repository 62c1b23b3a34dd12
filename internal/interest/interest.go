// Package interest computes simple penalty interest on outstanding bill
// balances using a flat 30-day month.
package interest

import (
	"time"

	"github.com/shopspring/decimal"
)

// DaysPerMonth is the calendar-agnostic month length used for proration.
const DaysPerMonth = 30

// DefaultMonthlyRate is the depot's default rate in percent per month.
var DefaultMonthlyRate = decimal.NewFromInt(2)

// DayCount selects how elapsed time is converted to days.
type DayCount int

const (
	// Fractional counts partial days.
	Fractional DayCount = iota
	// WholeDays floors elapsed time to complete days.
	WholeDays
)

func (d DayCount) String() string {
	switch d {
	case WholeDays:
		return "whole_days"
	default:
		return "fractional"
	}
}

var (
	nanosPerDay = decimal.NewFromInt(int64(24 * time.Hour))
	hundred     = decimal.NewFromInt(100)
	monthDays   = decimal.NewFromInt(DaysPerMonth)
)

// Basis is the part of a bill interest is computed from.
type Basis struct {
	Total       decimal.Decimal
	AmountPaid  decimal.Decimal
	Date        time.Time
	LastUpdated *time.Time
}

// Principal is the unpaid part of the bill.
func (b Basis) Principal() decimal.Decimal {
	return b.Total.Sub(b.AmountPaid)
}

// Start is the accrual start: the last update when present, else the bill date.
func (b Basis) Start() time.Time {
	if b.LastUpdated != nil && !b.LastUpdated.IsZero() {
		return *b.LastUpdated
	}
	return b.Date
}

// Accrue returns principal × rate% × elapsedDays / 30.
// Non-positive principals and non-positive spans accrue nothing.
func Accrue(principal decimal.Decimal, from, to time.Time, monthlyRate decimal.Decimal, dc DayCount) decimal.Decimal {
	if !principal.IsPositive() {
		return decimal.Zero
	}
	elapsed := to.Sub(from)
	if elapsed <= 0 {
		return decimal.Zero
	}

	var numerator, denominator decimal.Decimal
	switch dc {
	case WholeDays:
		days := int64(elapsed / (24 * time.Hour))
		if days <= 0 {
			return decimal.Zero
		}
		numerator = principal.Mul(monthlyRate).Mul(decimal.NewFromInt(days))
		denominator = monthDays.Mul(hundred)
	default:
		numerator = principal.Mul(monthlyRate).Mul(decimal.NewFromInt(int64(elapsed)))
		denominator = nanosPerDay.Mul(monthDays).Mul(hundred)
	}
	return numerator.Div(denominator)
}

// AsOfNow is the interest accrued from the bill's start until now.
func AsOfNow(b Basis, now time.Time, monthlyRate decimal.Decimal) decimal.Decimal {
	return Accrue(b.Principal(), b.Start(), now, monthlyRate, Fractional)
}

// AsOfDate projects the interest that will have accrued by target.
func AsOfDate(b Basis, target time.Time, monthlyRate decimal.Decimal) decimal.Decimal {
	return Accrue(b.Principal(), b.Start(), target, monthlyRate, Fractional)
}

// DailyAccrued counts only whole elapsed days.
func DailyAccrued(b Basis, now time.Time, monthlyRate decimal.Decimal) decimal.Decimal {
	return Accrue(b.Principal(), b.Start(), now, monthlyRate, WholeDays)
}
