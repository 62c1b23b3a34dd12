package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/smallbiznis/rythudepot/internal/ledger/domain"
	"github.com/smallbiznis/rythudepot/internal/storage"
)

type repository struct {
	backend storage.Backend
}

func Provide(backend storage.Backend) domain.Repository {
	return &repository{backend: backend}
}

func (r *repository) Begin(ctx context.Context) domain.UnitOfWork {
	return &unitOfWork{
		backend:  r.backend,
		farmers:  document[[]domain.Farmer]{key: domain.KeyFarmers},
		products: document[[]domain.Product]{key: domain.KeyProducts},
		bills:    document[[]domain.Bill]{key: domain.KeyBills},
		payments: document[[]domain.PaymentRecord]{key: domain.KeyPayments},
		returns:  document[[]domain.Return]{key: domain.KeyReturns},
		register: document[[]domain.StockRegisterEntry]{key: domain.KeyStockRegister},
		settings: document[domain.Settings]{key: domain.KeySettings, empty: domain.DefaultSettings},
	}
}

// document is one persisted collection cached for the life of a unit of work.
type document[T any] struct {
	key    string
	value  T
	loaded bool
	dirty  bool
	empty  func() T
}

func (d *document[T]) get(ctx context.Context, backend storage.Backend) (T, error) {
	if d.loaded {
		return d.value, nil
	}
	raw, err := backend.Load(ctx, d.key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		if d.empty != nil {
			d.value = d.empty()
		}
	case err != nil:
		var zero T
		return zero, err
	default:
		// Fields missing from an older payload keep their defaults.
		var value T
		if d.empty != nil {
			value = d.empty()
		}
		if err := json.Unmarshal(raw, &value); err != nil {
			var zero T
			return zero, fmt.Errorf("decode %s: %w", d.key, err)
		}
		d.value = value
	}
	d.loaded = true
	return d.value, nil
}

func (d *document[T]) set(value T) {
	d.value = value
	d.loaded = true
	d.dirty = true
}

func (d *document[T]) record() (storage.Record, bool, error) {
	if !d.dirty {
		return storage.Record{}, false, nil
	}
	payload, err := json.Marshal(d.value)
	if err != nil {
		return storage.Record{}, false, fmt.Errorf("encode %s: %w", d.key, err)
	}
	return storage.Record{Key: d.key, Payload: payload}, true, nil
}

type unitOfWork struct {
	backend storage.Backend

	farmers  document[[]domain.Farmer]
	products document[[]domain.Product]
	bills    document[[]domain.Bill]
	payments document[[]domain.PaymentRecord]
	returns  document[[]domain.Return]
	register document[[]domain.StockRegisterEntry]
	settings document[domain.Settings]
}

func (u *unitOfWork) Farmers(ctx context.Context) ([]domain.Farmer, error) {
	return u.farmers.get(ctx, u.backend)
}

func (u *unitOfWork) SetFarmers(items []domain.Farmer) { u.farmers.set(items) }

func (u *unitOfWork) Products(ctx context.Context) ([]domain.Product, error) {
	return u.products.get(ctx, u.backend)
}

func (u *unitOfWork) SetProducts(items []domain.Product) { u.products.set(items) }

func (u *unitOfWork) Bills(ctx context.Context) ([]domain.Bill, error) {
	return u.bills.get(ctx, u.backend)
}

func (u *unitOfWork) SetBills(items []domain.Bill) { u.bills.set(items) }

func (u *unitOfWork) Payments(ctx context.Context) ([]domain.PaymentRecord, error) {
	return u.payments.get(ctx, u.backend)
}

func (u *unitOfWork) SetPayments(items []domain.PaymentRecord) { u.payments.set(items) }

func (u *unitOfWork) Returns(ctx context.Context) ([]domain.Return, error) {
	return u.returns.get(ctx, u.backend)
}

func (u *unitOfWork) SetReturns(items []domain.Return) { u.returns.set(items) }

func (u *unitOfWork) StockRegister(ctx context.Context) ([]domain.StockRegisterEntry, error) {
	return u.register.get(ctx, u.backend)
}

func (u *unitOfWork) SetStockRegister(items []domain.StockRegisterEntry) { u.register.set(items) }

func (u *unitOfWork) Settings(ctx context.Context) (domain.Settings, error) {
	return u.settings.get(ctx, u.backend)
}

func (u *unitOfWork) SetSettings(settings domain.Settings) { u.settings.set(settings) }

// Commit writes every changed collection in a single backend Save.
func (u *unitOfWork) Commit(ctx context.Context) error {
	var records []storage.Record
	for _, rec := range []func() (storage.Record, bool, error){
		u.farmers.record,
		u.products.record,
		u.bills.record,
		u.payments.record,
		u.returns.record,
		u.register.record,
		u.settings.record,
	} {
		r, ok, err := rec()
		if err != nil {
			return err
		}
		if ok {
			records = append(records, r)
		}
	}
	if len(records) == 0 {
		return nil
	}
	if err := u.backend.Save(ctx, records); err != nil {
		return err
	}
	for _, dirty := range []*bool{
		&u.farmers.dirty, &u.products.dirty, &u.bills.dirty, &u.payments.dirty,
		&u.returns.dirty, &u.register.dirty, &u.settings.dirty,
	} {
		*dirty = false
	}
	return nil
}
