package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rythudepot/internal/clock"
	"github.com/smallbiznis/rythudepot/internal/ledger/domain"
	"github.com/smallbiznis/rythudepot/internal/ledger/repository"
	"github.com/smallbiznis/rythudepot/internal/ledger/service"
	"github.com/smallbiznis/rythudepot/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var t0 = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

type fixture struct {
	svc     domain.Service
	backend *memory.Backend
	clock   *clock.FakeClock
}

func newFixture(t *testing.T, policy domain.DeletePolicy) *fixture {
	t.Helper()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	backend := memory.New()
	fc := clock.NewFakeClock(t0)
	svc := service.NewService(service.Params{
		Repo:  repository.Provide(backend),
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fc,
		Options: service.Options{
			Location:     time.UTC,
			DeletePolicy: policy,
		},
	})
	return &fixture{svc: svc, backend: backend, clock: fc}
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func ptr[T any](v T) *T {
	return &v
}

func (f *fixture) farmer(t *testing.T, name string) domain.Farmer {
	t.Helper()
	farmer, err := f.svc.CreateFarmer(context.Background(), domain.CreateFarmerRequest{
		Name:     name,
		Village:  "Vaddigunta Kandriga",
		Mandal:   "Naidupeta",
		District: "Tirupati",
		Pin:      "524421",
		Mobile:   "9876543210",
	})
	require.NoError(t, err)
	return farmer
}

func (f *fixture) product(t *testing.T, name, rate, discount string, stock int64) domain.Product {
	t.Helper()
	product, err := f.svc.CreateProduct(context.Background(), domain.CreateProductRequest{
		HSN:         "38089199",
		ProductName: name,
		BatchNo:     "B-" + name,
		MnfDate:     "2024-01-01",
		ExpDate:     "2026-01-01",
		Size:        "500ml",
		Rate:        dec(rate),
		Discount:    dec(discount),
		StockInHand: stock,
	})
	require.NoError(t, err)
	return product
}

func (f *fixture) stockOf(t *testing.T, id snowflake.ID) int64 {
	t.Helper()
	p, err := f.svc.GetProduct(context.Background(), id)
	require.NoError(t, err)
	return p.StockInHand
}

func TestCreateFarmer_Validation(t *testing.T) {
	f := newFixture(t, domain.DeleteRetain)
	ctx := context.Background()

	_, err := f.svc.CreateFarmer(ctx, domain.CreateFarmerRequest{Name: "  "})
	assert.True(t, domain.IsValidation(err))
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = f.svc.CreateFarmer(ctx, domain.CreateFarmerRequest{Name: "Ramaiah", Balance: dec("-1")})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = f.svc.CreateFarmer(ctx, domain.CreateFarmerRequest{Name: "Ramaiah", NextVisitDate: "15/06/2024"})
	assert.ErrorIs(t, err, domain.ErrInvalidDate)

	farmers, err := f.svc.ListFarmers(ctx)
	require.NoError(t, err)
	assert.Empty(t, farmers)
}

func TestUpdateFarmer_StampsLastUpdated(t *testing.T) {
	f := newFixture(t, domain.DeleteRetain)
	ctx := context.Background()
	farmer := f.farmer(t, "Ramaiah")
	assert.Equal(t, t0, farmer.LastUpdated)

	f.clock.Advance(time.Hour)
	updated, err := f.svc.UpdateFarmer(ctx, farmer.ID, domain.FarmerPatch{Village: ptr("Chalivendram")})
	require.NoError(t, err)
	assert.Equal(t, "Chalivendram", updated.Village)
	assert.Equal(t, "Ramaiah", updated.Name)
	assert.Equal(t, t0.Add(time.Hour), updated.LastUpdated)
}

func TestFarmer_NotFound(t *testing.T) {
	f := newFixture(t, domain.DeleteRetain)
	ctx := context.Background()

	_, err := f.svc.UpdateFarmer(ctx, 42, domain.FarmerPatch{Name: ptr("x")})
	assert.ErrorIs(t, err, domain.ErrFarmerNotFound)
	_, err = f.svc.DeleteFarmer(ctx, 42)
	assert.ErrorIs(t, err, domain.ErrFarmerNotFound)
	_, err = f.svc.GetFarmer(ctx, 42)
	assert.ErrorIs(t, err, domain.ErrFarmerNotFound)
}

func TestCreateProduct_RejectsUnknownSize(t *testing.T) {
	f := newFixture(t, domain.DeleteRetain)

	_, err := f.svc.CreateProduct(context.Background(), domain.CreateProductRequest{
		ProductName: "Monocrotophos",
		Size:        "2L",
		Rate:        dec("100"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidSize)
}

func TestAdjustProductStock(t *testing.T) {
	f := newFixture(t, domain.DeleteRetain)
	ctx := context.Background()
	p := f.product(t, "Imidacloprid", "85", "0", 4)

	got, err := f.svc.AdjustProductStock(ctx, p.ID, -6)
	require.NoError(t, err)
	assert.EqualValues(t, 10, got.StockInHand)

	got, err = f.svc.AdjustProductStock(ctx, p.ID, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 7, got.StockInHand)

	_, err = f.svc.AdjustProductStock(ctx, p.ID, 8)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.EqualValues(t, 7, f.stockOf(t, p.ID))
}
