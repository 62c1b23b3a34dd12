package domain

import "github.com/shopspring/decimal"

type BillStatus string

const (
	BillStatusPending BillStatus = "pending"
	BillStatusPartial BillStatus = "partial"
	BillStatusPaid    BillStatus = "paid"
)

// DeriveStatus maps the amount paid against the bill total.
func DeriveStatus(amountPaid, total decimal.Decimal) BillStatus {
	switch {
	case amountPaid.GreaterThanOrEqual(total):
		return BillStatusPaid
	case amountPaid.IsPositive():
		return BillStatusPartial
	default:
		return BillStatusPending
	}
}

type PaymentMode string

const (
	PaymentModeCash   PaymentMode = "Cash"
	PaymentModeUPI    PaymentMode = "UPI"
	PaymentModeCard   PaymentMode = "Card"
	PaymentModeCredit PaymentMode = "Credit"
)

func (m PaymentMode) Valid() bool {
	switch m {
	case PaymentModeCash, PaymentModeUPI, PaymentModeCard, PaymentModeCredit:
		return true
	}
	return false
}

// Size is a packaging size sold at the depot.
type Size string

var allowedSizes = []Size{
	"50ml", "100ml", "120ml", "150ml", "200ml", "250ml",
	"400ml", "500ml", "600ml", "800ml", "1L", "5L", "1Kg",
}

func AllowedSizes() []Size {
	out := make([]Size, len(allowedSizes))
	copy(out, allowedSizes)
	return out
}

func (s Size) Valid() bool {
	for _, allowed := range allowedSizes {
		if s == allowed {
			return true
		}
	}
	return false
}

var hundred = decimal.NewFromInt(100)

// LineAmount is (quantity*rate - discount) plus cgst and sgst percentages.
func LineAmount(quantity int64, rate, discount, cgst, sgst decimal.Decimal) decimal.Decimal {
	base := rate.Mul(decimal.NewFromInt(quantity)).Sub(discount)
	return base.Add(TaxAmount(base, cgst)).Add(TaxAmount(base, sgst))
}

// TaxAmount is pct percent of base.
func TaxAmount(base, pct decimal.Decimal) decimal.Decimal {
	return base.Mul(pct).Div(hundred)
}

// ProductAmount is the single-unit amount shown on the product list.
func ProductAmount(p Product) decimal.Decimal {
	return LineAmount(1, p.Rate, p.Discount, p.CGST, p.SGST)
}

// DeletePolicy decides what deleting a bill or return does to stock.
type DeletePolicy string

const (
	// DeleteRetain removes the document only; stock and register rows stay.
	DeleteRetain DeletePolicy = "retain"
	// DeleteReverse also undoes the document's stock movement and, for bills,
	// its register rows.
	DeleteReverse DeletePolicy = "reverse"
)
