package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// DefaultInterestRate is the monthly percentage used until settings say otherwise.
var DefaultInterestRate = decimal.NewFromInt(2)

// DefaultSettings is what an empty depot starts with.
func DefaultSettings() Settings {
	return Settings{InterestRate: DefaultInterestRate}
}

type Repository interface {
	Begin(ctx context.Context) UnitOfWork
}

// UnitOfWork loads collections lazily and writes every changed collection
// in one Commit. Discarding it without Commit leaves storage untouched.
type UnitOfWork interface {
	Farmers(ctx context.Context) ([]Farmer, error)
	SetFarmers(items []Farmer)

	Products(ctx context.Context) ([]Product, error)
	SetProducts(items []Product)

	Bills(ctx context.Context) ([]Bill, error)
	SetBills(items []Bill)

	Payments(ctx context.Context) ([]PaymentRecord, error)
	SetPayments(items []PaymentRecord)

	Returns(ctx context.Context) ([]Return, error)
	SetReturns(items []Return)

	StockRegister(ctx context.Context) ([]StockRegisterEntry, error)
	SetStockRegister(items []StockRegisterEntry)

	Settings(ctx context.Context) (Settings, error)
	SetSettings(settings Settings)

	Commit(ctx context.Context) error
}
