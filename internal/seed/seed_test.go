package seed

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rythudepot/internal/config"
	"github.com/smallbiznis/rythudepot/internal/ledger/domain"
	"github.com/smallbiznis/rythudepot/internal/ledger/repository"
	"github.com/smallbiznis/rythudepot/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return node
}

func TestApply_FillsEmptyDepotOnce(t *testing.T) {
	ctx := context.Background()
	repo := repository.Provide(memory.New())
	node := newNode(t)

	res, err := Apply(ctx, repo, Defaults(node), config.DefaultDepotConfig())
	require.NoError(t, err)
	assert.Equal(t, Result{Farmers: 5, Products: 5, StockRegister: 2, Settings: true}, res)

	uow := repo.Begin(ctx)
	settings, err := uow.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Sri Sai Rythu Depot", settings.DealerName)
	assert.Equal(t, "37CZCPM6609Q1ZN", settings.GSTNumber)
	assert.True(t, settings.InterestRate.Equal(domain.DefaultInterestRate))
	assert.EqualValues(t, 0, settings.LastBillNumber)

	products, err := uow.Products(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Monocrotophos 36% SL", products[0].ProductName)
	assert.EqualValues(t, 120, products[0].StockInHand)

	res, err = Apply(ctx, repo, Defaults(node), config.DefaultDepotConfig())
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)

	farmers, err := repo.Begin(ctx).Farmers(ctx)
	require.NoError(t, err)
	assert.Len(t, farmers, 5)
}

func TestApply_KeepsExistingCollections(t *testing.T) {
	ctx := context.Background()
	repo := repository.Provide(memory.New())
	node := newNode(t)

	uow := repo.Begin(ctx)
	uow.SetFarmers([]domain.Farmer{{ID: node.Generate(), Name: "Only Farmer"}})
	require.NoError(t, uow.Commit(ctx))

	res, err := Apply(ctx, repo, Defaults(node), config.DefaultDepotConfig())
	require.NoError(t, err)
	assert.Zero(t, res.Farmers)
	assert.Equal(t, 5, res.Products)

	farmers, err := repo.Begin(ctx).Farmers(ctx)
	require.NoError(t, err)
	require.Len(t, farmers, 1)
	assert.Equal(t, "Only Farmer", farmers[0].Name)
}

func TestDefaults_RegisterRowsBalance(t *testing.T) {
	for _, row := range Defaults(newNode(t)).StockRegister {
		assert.Equal(t, row.Total-row.Sold, row.Balance)
		assert.Equal(t, "Opening Stock", row.Remarks)
	}
}

func workbook(t *testing.T, sheets map[string][][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for name, rows := range sheets {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}
	require.NoError(t, f.DeleteSheet("Sheet1"))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestReadWorkbook(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	buf := workbook(t, map[string][][]any{
		SheetFarmers: {
			{"Name", "Father Name", "Village", "PIN", "Mobile", "Balance", "Next Visit Date"},
			{"Ravi Kumar", "Subba Rao", "Chalivendram", "524421", "9876543210", "2,500", "15/07/2024"},
			{"", "skipped"},
		},
		SheetProducts: {
			{"HSN", "Product Name", "Size", "Rate", "Discount", "CGST", "SGST", "Stock In Hand"},
			{"38089100", "Monocrotophos 36% SL", "250ml", "85", "5", "9", "9", "120"},
		},
	})

	data, err := ReadWorkbook(buf, newNode(t), now)
	require.NoError(t, err)

	require.Len(t, data.Farmers, 1)
	farmer := data.Farmers[0]
	assert.Equal(t, "Subba Rao", farmer.FatherName)
	assert.True(t, farmer.Balance.Equal(decimalOf(t, "2500")))
	assert.Equal(t, "2024-07-15", farmer.NextVisitDate)
	assert.Equal(t, now, farmer.LastUpdated)

	require.Len(t, data.Products, 1)
	product := data.Products[0]
	assert.Equal(t, domain.Size("250ml"), product.Size)
	assert.EqualValues(t, 120, product.StockInHand)
	assert.True(t, product.Amount.Equal(decimalOf(t, "94.4")), product.Amount.String())

	assert.Nil(t, data.StockRegister)
}

func TestReadWorkbook_RejectsBadRows(t *testing.T) {
	buf := workbook(t, map[string][][]any{
		SheetProducts: {
			{"Product Name", "Size", "Rate"},
			{"Monocrotophos 36% SL", "2L", "85"},
		},
	})
	_, err := ReadWorkbook(buf, newNode(t), time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidSize)

	buf = workbook(t, map[string][][]any{
		SheetStockRegister: {
			{"Supplier", "Qty Received"},
			{"Bayer", "10"},
		},
	})
	_, err = ReadWorkbook(buf, newNode(t), time.Now())
	assert.ErrorContains(t, err, "missing required column insecticideName")
}

func decimalOf(t *testing.T, v string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(v)
	require.NoError(t, err)
	return d
}
