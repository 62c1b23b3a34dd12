package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/rythudepot/internal/ledger/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type billSetup struct {
	farmer    domain.Farmer
	pesticide domain.Product
	fungicide domain.Product
}

func (f *fixture) billSetup(t *testing.T) billSetup {
	t.Helper()
	return billSetup{
		farmer:    f.farmer(t, "Ramaiah"),
		pesticide: f.product(t, "Imidacloprid", "85", "5", 10),
		fungicide: f.product(t, "Mancozeb", "180", "10", 5),
	}
}

func (s billSetup) request(paid string) domain.CreateBillRequest {
	return domain.CreateBillRequest{
		FarmerID: s.farmer.ID,
		Items: []domain.BillItemRequest{
			{ProductID: s.pesticide.ID, Quantity: 3},
			{ProductID: s.fungicide.ID, Quantity: 2},
		},
		PaymentMode: domain.PaymentModeCredit,
		AmountPaid:  dec(paid),
	}
}

func TestCreateBill_TotalsStockAndRegister(t *testing.T) {
	f := newFixture(t, domain.DeleteRetain)
	ctx := context.Background()
	setup := f.billSetup(t)

	bill, err := f.svc.CreateBill(ctx, setup.request("0"))
	require.NoError(t, err)

	assert.EqualValues(t, 1, bill.BillNo)
	assert.True(t, dec("600").Equal(bill.Subtotal))
	assert.True(t, dec("600").Equal(bill.Total), bill.Total.String())
	assert.True(t, dec("250").Equal(bill.Items[0].Amount))
	assert.True(t, dec("350").Equal(bill.Items[1].Amount))
	assert.Equal(t, domain.BillStatusPending, bill.Status)
	assert.Equal(t, setup.farmer.ID, bill.Farmer.ID)

	assert.EqualValues(t, 7, f.stockOf(t, setup.pesticide.ID))
	assert.EqualValues(t, 3, f.stockOf(t, setup.fungicide.ID))

	register, err := f.svc.ListStockRegister(ctx)
	require.NoError(t, err)
	require.Len(t, register, 2)

	row := register[0]
	assert.Equal(t, 1, row.SlNo)
	assert.Equal(t, "Sale", row.Supplier)
	assert.Equal(t, "Imidacloprid", row.InsecticideName)
	assert.EqualValues(t, 0, row.QtyReceived)
	assert.EqualValues(t, 10, row.Total)
	assert.EqualValues(t, 3, row.Sold)
	assert.EqualValues(t, 7, row.Balance)
	assert.EqualValues(t, 7, row.QtyInHand)
	assert.Equal(t, "1 / 15/06/2024", row.BillNoDate)
	assert.Equal(t, "Ramaiah", row.PurchaserName)
	assert.Equal(t, "2024-06-15", row.DateOfReceipt)
	require.NotNil(t, row.BillID)
	assert.Equal(t, bill.ID, *row.BillID)
	assert.Equal(t, 2, register[1].SlNo)
	assert.EqualValues(t, 2, register[1].Sold)
}

func TestCreateBill_AppliesTaxPercentages(t *testing.T) {
	f := newFixture(t, domain.DeleteRetain)
	ctx := context.Background()
	farmer := f.farmer(t, "Ramaiah")
	product := f.product(t, "Chlorpyrifos", "100", "0", 10)

	bill, err := f.svc.CreateBill(ctx, domain.CreateBillRequest{
		FarmerID: farmer.ID,
		Items: []domain.BillItemRequest{
			{ProductID: product.ID, Quantity: 2, CGST: ptr(dec("9")), SGST: ptr(dec("9"))},
		},
	})
	require.NoError(t, err)
	assert.True(t, dec("200").Equal(bill.Subtotal))
	assert.True(t, dec("18").Equal(bill.TotalCGST))
	assert.True(t, dec("18").Equal(bill.TotalSGST))
	assert.True(t, dec("236").Equal(bill.Total))
	assert.Equal(t, domain.PaymentModeCash, bill.PaymentMode)
}

func TestCreateBill_StatusFollowsAmountPaid(t *testing.T) {
	cases := []struct {
		paid string
		want domain.BillStatus
	}{
		{"0", domain.BillStatusPending},
		{"100", domain.BillStatusPartial},
		{"600", domain.BillStatusPaid},
		{"650", domain.BillStatusPaid},
	}
	for _, tc := range cases {
		t.Run(tc.paid, func(t *testing.T) {
			f := newFixture(t, domain.DeleteRetain)
			bill, err := f.svc.CreateBill(context.Background(), f.billSetup(t).request(tc.paid))
			require.NoError(t, err)
			assert.Equal(t, tc.want, bill.Status)
		})
	}
}

func TestCreateBill_NumbersAreSequentialAndIndependentOfReturns(t *testing.T) {
	f := newFixture(t, domain.DeleteRetain)
	ctx := context.Background()
	setup := f.billSetup(t)
	stock, err := f.svc.AdjustProductStock(ctx, setup.fungicide.ID, -20)
	require.NoError(t, err)
	require.EqualValues(t, 25, stock.StockInHand)

	for want := int64(1); want <= 3; want++ {
		bill, err := f.svc.CreateBill(ctx, setup.request("0"))
		require.NoError(t, err)
		assert.Equal(t, want, bill.BillNo)

		ret, err := f.svc.CreateReturn(ctx, domain.CreateReturnRequest{
			FarmerID: setup.farmer.ID,
			Items:    []domain.ReturnItemRequest{{ProductID: setup.pesticide.ID, Quantity: 1}},
		})
		require.NoError(t, err)
		assert.Equal(t, want, ret.ReturnNo)
	}

	settings, err := f.svc.GetSettings(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, settings.LastBillNumber)
	assert.EqualValues(t, 3, settings.LastReturnNumber)

	byNo, err := f.svc.GetBillByNumber(ctx, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 2, byNo.BillNo)
}

func TestCreateBill_InsufficientStockWritesNothing(t *testing.T) {
	f := newFixture(t, domain.DeleteRetain)
	ctx := context.Background()
	setup := f.billSetup(t)

	req := setup.request("0")
	req.Items[1].Quantity = 6
	_, err := f.svc.CreateBill(ctx, req)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.EqualValues(t, 10, f.stockOf(t, setup.pesticide.ID))
	assert.EqualValues(t, 5, f.stockOf(t, setup.fungicide.ID))

	bills, err := f.svc.ListBills(ctx, domain.ListBillsFilter{})
	require.NoError(t, err)
	assert.Empty(t, bills)
	register, err := f.svc.ListStockRegister(ctx)
	require.NoError(t, err)
	assert.Empty(t, register)
	settings, err := f.svc.GetSettings(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, settings.LastBillNumber)
}

func TestCreateBill_Validation(t *testing.T) {
	f := newFixture(t, domain.DeleteRetain)
	ctx := context.Background()
	setup := f.billSetup(t)

	_, err := f.svc.CreateBill(ctx, domain.CreateBillRequest{Items: setup.request("0").Items})
	assert.ErrorIs(t, err, domain.ErrMissingFarmer)

	_, err = f.svc.CreateBill(ctx, domain.CreateBillRequest{FarmerID: setup.farmer.ID})
	assert.ErrorIs(t, err, domain.ErrEmptyItems)

	req := setup.request("0")
	req.PaymentMode = "Cheque"
	_, err = f.svc.CreateBill(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentMode)

	req = setup.request("0")
	req.Items[0].Quantity = 0
	_, err = f.svc.CreateBill(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	req = setup.request("0")
	req.FarmerID = 99
	_, err = f.svc.CreateBill(ctx, req)
	assert.ErrorIs(t, err, domain.ErrFarmerNotFound)
	assert.True(t, domain.IsValidation(err))
}

func TestUpdateBill_RederivesStatus(t *testing.T) {
	f := newFixture(t, domain.DeleteRetain)
	ctx := context.Background()
	bill, err := f.svc.CreateBill(ctx, f.billSetup(t).request("0"))
	require.NoError(t, err)

	updated, err := f.svc.UpdateBill(ctx, bill.ID, domain.BillPatch{AmountPaid: ptr(dec("600"))})
	require.NoError(t, err)
	assert.Equal(t, domain.BillStatusPaid, updated.Status)
	require.NotNil(t, updated.LastUpdated)
	assert.Equal(t, t0, *updated.LastUpdated)

	outstanding, err := f.svc.ListOutstandingBills(ctx)
	require.NoError(t, err)
	assert.Empty(t, outstanding)
}

func TestDeleteBill_RetainKeepsStock(t *testing.T) {
	f := newFixture(t, domain.DeleteRetain)
	ctx := context.Background()
	setup := f.billSetup(t)
	bill, err := f.svc.CreateBill(ctx, setup.request("0"))
	require.NoError(t, err)

	_, err = f.svc.DeleteBill(ctx, bill.ID)
	require.NoError(t, err)

	_, err = f.svc.GetBill(ctx, bill.ID)
	assert.ErrorIs(t, err, domain.ErrBillNotFound)
	assert.EqualValues(t, 7, f.stockOf(t, setup.pesticide.ID))
	register, err := f.svc.ListStockRegister(ctx)
	require.NoError(t, err)
	assert.Len(t, register, 2)
}

func TestDeleteBill_ReverseRestocksAndRenumbers(t *testing.T) {
	f := newFixture(t, domain.DeleteReverse)
	ctx := context.Background()
	setup := f.billSetup(t)

	_, err := f.svc.CreateStockRegisterEntry(ctx, domain.StockRegisterRequest{
		Supplier:        "Coromandel",
		InsecticideName: "Imidacloprid",
		QtyReceived:     10,
		QtyInHand:       10,
		Total:           10,
		Balance:         10,
	})
	require.NoError(t, err)
	bill, err := f.svc.CreateBill(ctx, setup.request("0"))
	require.NoError(t, err)
	_, err = f.svc.CreateStockRegisterEntry(ctx, domain.StockRegisterRequest{Supplier: "Dhanuka", InsecticideName: "Mancozeb"})
	require.NoError(t, err)

	_, err = f.svc.DeleteBill(ctx, bill.ID)
	require.NoError(t, err)

	assert.EqualValues(t, 10, f.stockOf(t, setup.pesticide.ID))
	assert.EqualValues(t, 5, f.stockOf(t, setup.fungicide.ID))

	register, err := f.svc.ListStockRegister(ctx)
	require.NoError(t, err)
	require.Len(t, register, 2)
	assert.Equal(t, "Coromandel", register[0].Supplier)
	assert.Equal(t, 1, register[0].SlNo)
	assert.Equal(t, "Dhanuka", register[1].Supplier)
	assert.Equal(t, 2, register[1].SlNo)

	_, err = f.svc.Undo(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 7, f.stockOf(t, setup.pesticide.ID))
	register, err = f.svc.ListStockRegister(ctx)
	require.NoError(t, err)
	require.Len(t, register, 4)
	for i, row := range register {
		assert.Equal(t, i+1, row.SlNo)
	}
	assert.Equal(t, "Dhanuka", register[3].Supplier)
}

func TestListBills_Filters(t *testing.T) {
	f := newFixture(t, domain.DeleteRetain)
	ctx := context.Background()
	setup := f.billSetup(t)
	other := f.farmer(t, "Subbamma")

	_, err := f.svc.CreateBill(ctx, setup.request("600"))
	require.NoError(t, err)
	req := setup.request("0")
	req.FarmerID = other.ID
	req.Items = req.Items[:1]
	_, err = f.svc.CreateBill(ctx, req)
	require.NoError(t, err)

	mine, err := f.svc.ListBills(ctx, domain.ListBillsFilter{FarmerID: setup.farmer.ID})
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	pending, err := f.svc.ListBills(ctx, domain.ListBillsFilter{Status: domain.BillStatusPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, other.ID, pending[0].Farmer.ID)

	today, err := f.svc.ListTodaysSales(ctx)
	require.NoError(t, err)
	assert.Len(t, today, 2)

	f.clock.Advance(24 * time.Hour)
	today, err = f.svc.ListTodaysSales(ctx)
	require.NoError(t, err)
	assert.Empty(t, today)
	month, err := f.svc.ListMonthlySales(ctx)
	require.NoError(t, err)
	assert.Len(t, month, 2)
}
