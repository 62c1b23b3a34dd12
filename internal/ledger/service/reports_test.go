package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/rythudepot/internal/ledger/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummary(t *testing.T) {
	f := newFixture(t, domain.DeleteRetain)
	ctx := context.Background()
	setup := f.billSetup(t)

	_, err := f.svc.CreateBill(ctx, setup.request("600"))
	require.NoError(t, err)
	req := setup.request("100")
	req.Items = req.Items[:1]
	_, err = f.svc.CreateBill(ctx, req)
	require.NoError(t, err)

	summary, err := f.svc.Summary(ctx)
	require.NoError(t, err)
	assert.True(t, dec("850").Equal(summary.TodaySales), summary.TodaySales.String())
	assert.True(t, dec("700").Equal(summary.TodayCollected))
	assert.True(t, dec("850").Equal(summary.MonthlySales))
	assert.True(t, dec("150").Equal(summary.OutstandingAmount))
	assert.True(t, summary.AccruedInterest.IsZero())
	assert.Equal(t, 1, summary.BillsByStatus[domain.BillStatusPaid])
	assert.Equal(t, 1, summary.BillsByStatus[domain.BillStatusPartial])
	assert.Equal(t, 0, summary.BillsByStatus[domain.BillStatusPending])
	assert.Equal(t, 1, summary.FarmerCount)
	assert.Equal(t, 2, summary.ProductCount)

	// 150 outstanding for 30 days at 2% a month.
	f.clock.Advance(30 * 24 * time.Hour)
	summary, err = f.svc.Summary(ctx)
	require.NoError(t, err)
	assert.True(t, dec("3").Equal(summary.AccruedInterest), summary.AccruedInterest.String())
	assert.True(t, summary.TodaySales.IsZero())
}

func TestFarmerDues_ProjectsToNextVisit(t *testing.T) {
	f := newFixture(t, domain.DeleteRetain)
	ctx := context.Background()
	farmer, err := f.svc.CreateFarmer(ctx, domain.CreateFarmerRequest{
		Name:          "Ramaiah",
		NextVisitDate: "2024-07-30",
	})
	require.NoError(t, err)
	product := f.product(t, "Imidacloprid", "1500", "0", 5)

	_, err = f.svc.CreateBill(ctx, domain.CreateBillRequest{
		FarmerID: farmer.ID,
		Items:    []domain.BillItemRequest{{ProductID: product.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	dues, err := f.svc.FarmerDues(ctx, farmer.ID)
	require.NoError(t, err)
	require.Len(t, dues, 1)
	due := dues[0]
	assert.True(t, dec("1500").Equal(due.Outstanding))
	assert.True(t, dec("45").Equal(due.Interest), due.Interest.String())
	assert.True(t, dec("1545").Equal(due.TotalPayable))
	assert.Equal(t, time.Date(2024, 7, 30, 0, 0, 0, 0, time.UTC), due.InterestTo)
}

func TestFarmerDues_CountsWholeDaysWithoutVisit(t *testing.T) {
	f := newFixture(t, domain.DeleteRetain)
	ctx := context.Background()
	farmer := f.farmer(t, "Ramaiah")
	product := f.product(t, "Imidacloprid", "1500", "0", 5)

	_, err := f.svc.CreateBill(ctx, domain.CreateBillRequest{
		FarmerID: farmer.ID,
		Items:    []domain.BillItemRequest{{ProductID: product.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	f.clock.Advance(45*24*time.Hour + 5*time.Hour)
	dues, err := f.svc.FarmerDues(ctx, 0)
	require.NoError(t, err)
	require.Len(t, dues, 1)
	assert.True(t, dec("45").Equal(dues[0].Interest), dues[0].Interest.String())

	_, err = f.svc.FarmerDues(ctx, 777)
	assert.ErrorIs(t, err, domain.ErrFarmerNotFound)
}

func TestLowStock(t *testing.T) {
	f := newFixture(t, domain.DeleteRetain)
	f.product(t, "Imidacloprid", "85", "0", 8)
	f.product(t, "Mancozeb", "180", "0", 50)
	f.product(t, "Chlorpyrifos", "120", "0", 3)

	low, err := f.svc.LowStock(context.Background())
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "Chlorpyrifos", low[0].ProductName)
	assert.Equal(t, "Imidacloprid", low[1].ProductName)
}
