package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/smallbiznis/rythudepot/internal/ledger/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateSettings_RefusesBillCounterRewind(t *testing.T) {
	f := newFixture(t, domain.DeleteRetain)
	ctx := context.Background()
	setup := f.billSetup(t)

	bill, err := f.svc.CreateBill(ctx, setup.request("0"))
	require.NoError(t, err)
	require.EqualValues(t, 1, bill.BillNo)

	_, err = f.svc.UpdateSettings(ctx, domain.SettingsPatch{LastBillNumber: ptr(int64(0))})
	require.ErrorIs(t, err, domain.ErrNumberIssued)
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "lastBillNumber", verr.Field)

	settings, err := f.svc.GetSettings(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, settings.LastBillNumber)

	next, err := f.svc.CreateBill(ctx, domain.CreateBillRequest{
		FarmerID:    setup.farmer.ID,
		Items:       []domain.BillItemRequest{{ProductID: setup.pesticide.ID, Quantity: 1}},
		PaymentMode: domain.PaymentModeCash,
		AmountPaid:  dec("0"),
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, next.BillNo)
}

func TestUpdateSettings_AllowsCounterToMoveForward(t *testing.T) {
	f := newFixture(t, domain.DeleteRetain)
	ctx := context.Background()
	setup := f.billSetup(t)

	_, err := f.svc.CreateBill(ctx, setup.request("0"))
	require.NoError(t, err)

	_, err = f.svc.UpdateSettings(ctx, domain.SettingsPatch{LastBillNumber: ptr(int64(1))})
	require.NoError(t, err)
	_, err = f.svc.UpdateSettings(ctx, domain.SettingsPatch{LastBillNumber: ptr(int64(40))})
	require.NoError(t, err)

	bill, err := f.svc.CreateBill(ctx, domain.CreateBillRequest{
		FarmerID:    setup.farmer.ID,
		Items:       []domain.BillItemRequest{{ProductID: setup.pesticide.ID, Quantity: 1}},
		PaymentMode: domain.PaymentModeCash,
		AmountPaid:  dec("0"),
	})
	require.NoError(t, err)
	assert.EqualValues(t, 41, bill.BillNo)
}

func TestUpdateSettings_RefusesReturnCounterRewind(t *testing.T) {
	f := newFixture(t, domain.DeleteRetain)
	ctx := context.Background()
	farmer := f.farmer(t, "Ramaiah")
	product := f.product(t, "Imidacloprid", "85", "0", 4)

	for range 2 {
		_, err := f.svc.CreateReturn(ctx, domain.CreateReturnRequest{
			FarmerID: farmer.ID,
			Items:    []domain.ReturnItemRequest{{ProductID: product.ID, Quantity: 1}},
			Reason:   "leaking",
		})
		require.NoError(t, err)
	}

	_, err := f.svc.UpdateSettings(ctx, domain.SettingsPatch{LastReturnNumber: ptr(int64(1))})
	require.ErrorIs(t, err, domain.ErrNumberIssued)
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "lastReturnNumber", verr.Field)

	settings, err := f.svc.GetSettings(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, settings.LastReturnNumber)
}

func TestUpdateSettings_ZeroInterestRateIsKept(t *testing.T) {
	f := newFixture(t, domain.DeleteRetain)
	ctx := context.Background()

	updated, err := f.svc.UpdateSettings(ctx, domain.SettingsPatch{InterestRate: ptr(dec("0"))})
	require.NoError(t, err)
	assert.True(t, updated.InterestRate.IsZero())

	settings, err := f.svc.GetSettings(ctx)
	require.NoError(t, err)
	assert.True(t, settings.InterestRate.IsZero())
}

func TestLists_EmptyCollectionsAreNotNil(t *testing.T) {
	f := newFixture(t, domain.DeleteRetain)
	ctx := context.Background()

	farmers, err := f.svc.ListFarmers(ctx)
	require.NoError(t, err)
	assert.NotNil(t, farmers)
	assert.Empty(t, farmers)

	products, err := f.svc.ListProducts(ctx)
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)

	returns, err := f.svc.ListReturns(ctx)
	require.NoError(t, err)
	assert.NotNil(t, returns)
	assert.Empty(t, returns)

	register, err := f.svc.ListStockRegister(ctx)
	require.NoError(t, err)
	assert.NotNil(t, register)
	assert.Empty(t, register)
}
