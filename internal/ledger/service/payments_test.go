package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/smallbiznis/rythudepot/internal/ledger/domain"
	"github.com/smallbiznis/rythudepot/internal/undo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) creditBill(t *testing.T, balance string) domain.Bill {
	t.Helper()
	ctx := context.Background()
	setup := f.billSetup(t)
	_, err := f.svc.UpdateFarmer(ctx, setup.farmer.ID, domain.FarmerPatch{Balance: ptr(dec(balance))})
	require.NoError(t, err)
	bill, err := f.svc.CreateBill(ctx, setup.request("0"))
	require.NoError(t, err)
	return bill
}

func TestPostPayment_UpdatesBillFarmerAndRecords(t *testing.T) {
	f := newFixture(t, domain.DeleteRetain)
	ctx := context.Background()
	bill := f.creditBill(t, "2500")

	res, err := f.svc.PostPayment(ctx, domain.PaymentRequest{
		BillID:        bill.ID,
		Amount:        dec("100"),
		PaymentMethod: domain.PaymentModeUPI,
	})
	require.NoError(t, err)

	assert.True(t, dec("100").Equal(res.Bill.AmountPaid))
	assert.Equal(t, domain.BillStatusPartial, res.Bill.Status)
	require.NotNil(t, res.Bill.LastUpdated)
	require.NotNil(t, res.Farmer)
	assert.True(t, dec("2400").Equal(res.Farmer.Balance))
	assert.Equal(t, "2024-06-15", res.Payment.PaymentDate)
	assert.Equal(t, bill.BillNo, res.Payment.BillNo)

	stored, err := f.svc.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BillStatusPartial, stored.Status)

	farmer, err := f.svc.GetFarmer(ctx, bill.Farmer.ID)
	require.NoError(t, err)
	assert.True(t, dec("2400").Equal(farmer.Balance))

	records, err := f.svc.ListPaymentRecords(ctx, bill.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.PaymentModeUPI, records[0].PaymentMethod)

	res, err = f.svc.PostPayment(ctx, domain.PaymentRequest{BillID: bill.ID, Amount: dec("500")})
	require.NoError(t, err)
	assert.Equal(t, domain.BillStatusPaid, res.Bill.Status)
	assert.Equal(t, domain.PaymentModeCash, res.Payment.PaymentMethod)
}

func TestPostPayment_BalanceNeverNegative(t *testing.T) {
	f := newFixture(t, domain.DeleteRetain)
	bill := f.creditBill(t, "50")

	res, err := f.svc.PostPayment(context.Background(), domain.PaymentRequest{BillID: bill.ID, Amount: dec("200")})
	require.NoError(t, err)
	require.NotNil(t, res.Farmer)
	assert.True(t, res.Farmer.Balance.IsZero())
}

func TestPostPayment_RejectsOverpayment(t *testing.T) {
	f := newFixture(t, domain.DeleteRetain)
	ctx := context.Background()
	bill := f.creditBill(t, "2500")

	_, err := f.svc.PostPayment(ctx, domain.PaymentRequest{BillID: bill.ID, Amount: dec("600.01")})
	assert.ErrorIs(t, err, domain.ErrOverpayment)
	assert.True(t, domain.IsValidation(err))

	records, err := f.svc.ListPaymentRecords(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestPostPayment_AllOrNothing(t *testing.T) {
	f := newFixture(t, domain.DeleteRetain)
	ctx := context.Background()
	bill := f.creditBill(t, "2500")

	f.backend.FailSaves(errors.New("disk full"))
	_, err := f.svc.PostPayment(ctx, domain.PaymentRequest{BillID: bill.ID, Amount: dec("100")})
	require.Error(t, err)
	f.backend.FailSaves(nil)

	stored, err := f.svc.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	assert.True(t, stored.AmountPaid.IsZero())
	assert.Equal(t, domain.BillStatusPending, stored.Status)

	farmer, err := f.svc.GetFarmer(ctx, bill.Farmer.ID)
	require.NoError(t, err)
	assert.True(t, dec("2500").Equal(farmer.Balance))

	records, err := f.svc.ListPaymentRecords(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestPostPayment_IsNotUndoable(t *testing.T) {
	f := newFixture(t, domain.DeleteRetain)
	ctx := context.Background()
	bill := f.creditBill(t, "0")

	_, err := f.svc.PostPayment(ctx, domain.PaymentRequest{BillID: bill.ID, Amount: dec("100")})
	require.NoError(t, err)

	_, err = f.svc.Undo(ctx)
	assert.ErrorIs(t, err, undo.ErrNothingToUndo)
}

func TestPayment_Validation(t *testing.T) {
	f := newFixture(t, domain.DeleteRetain)
	ctx := context.Background()
	bill := f.creditBill(t, "0")

	_, err := f.svc.PostPayment(ctx, domain.PaymentRequest{BillID: bill.ID, Amount: dec("0")})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = f.svc.PostPayment(ctx, domain.PaymentRequest{BillID: bill.ID, Amount: dec("1"), PaymentDate: "yesterday"})
	assert.ErrorIs(t, err, domain.ErrInvalidDate)

	_, err = f.svc.PostPayment(ctx, domain.PaymentRequest{BillID: 12345, Amount: dec("1")})
	assert.ErrorIs(t, err, domain.ErrBillNotFound)
}

func TestCreatePaymentRecord_LeavesBillUntouched(t *testing.T) {
	f := newFixture(t, domain.DeleteRetain)
	ctx := context.Background()
	bill := f.creditBill(t, "0")

	rec, err := f.svc.CreatePaymentRecord(ctx, domain.PaymentRequest{
		BillID:      bill.ID,
		Amount:      dec("75"),
		PaymentDate: "2024-06-10",
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-06-10", rec.PaymentDate)
	assert.Equal(t, bill.Farmer.Name, rec.FarmerName)

	stored, err := f.svc.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	assert.True(t, stored.AmountPaid.IsZero())
}
