package seed

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rythudepot/internal/ledger/domain"
)

const openingStock = "Opening Stock"

// Defaults is the depot's opening data: a handful of regular farmers, the
// pesticides on the shelf and their opening register rows.
func Defaults(node *snowflake.Node) Data {
	farmer := func(name, father, village, mandal, district, pin, mobile string, balance int64, updated string) domain.Farmer {
		at, _ := time.Parse(time.RFC3339, updated)
		return domain.Farmer{
			ID:          node.Generate(),
			Name:        name,
			FatherName:  father,
			Village:     village,
			Mandal:      mandal,
			District:    district,
			Pin:         pin,
			Mobile:      mobile,
			Balance:     decimal.NewFromInt(balance),
			LastUpdated: at,
		}
	}
	product := func(hsn, name, batch, mnf, exp string, size domain.Size, rate, discount int64, amount string, stock int64) domain.Product {
		return domain.Product{
			ID:          node.Generate(),
			HSN:         hsn,
			ProductName: name,
			BatchNo:     batch,
			MnfDate:     mnf,
			ExpDate:     exp,
			Size:        size,
			Rate:        decimal.NewFromInt(rate),
			Discount:    decimal.NewFromInt(discount),
			CGST:        decimal.Zero,
			SGST:        decimal.Zero,
			Amount:      decimal.RequireFromString(amount),
			StockInHand: stock,
		}
	}
	opening := func(slNo int, supplier, name, batch, mnf, exp string, received, sold int64) domain.StockRegisterEntry {
		return domain.StockRegisterEntry{
			ID:              node.Generate(),
			SlNo:            slNo,
			DateOfReceipt:   "2024-12-01",
			Supplier:        supplier,
			InsecticideName: name,
			BatchNo:         batch,
			MnfDate:         mnf,
			ExpDate:         exp,
			QtyReceived:     received,
			QtyInHand:       received - sold,
			Total:           received,
			Sold:            sold,
			Balance:         received - sold,
			Remarks:         openingStock,
		}
	}

	return Data{
		Farmers: []domain.Farmer{
			farmer("Ravi Kumar", "Subba Rao", "Chalivendram", "Naidupeta", "Tirupati", "524421", "9876543210", 2500, "2024-12-01T00:00:00Z"),
			farmer("Lakshmi Devi", "Krishna Murthy", "Vaddigunta Kandriga", "Naidupeta", "Tirupati", "524421", "8765432109", 1800, "2024-11-15T00:00:00Z"),
			farmer("Suresh Babu", "Rama Rao", "Pellakuru", "Naidupeta", "Tirupati", "524421", "7654321098", 0, "2024-12-20T00:00:00Z"),
			farmer("Anitha Reddy", "Venkat Reddy", "Chittoor", "Chittoor", "Chittoor", "517001", "6543210987", 3200, "2024-10-30T00:00:00Z"),
			farmer("Manjula", "Narayana", "Tirupati", "Tirupati", "Tirupati", "517501", "5432109876", 900, "2024-11-20T00:00:00Z"),
		},
		Products: []domain.Product{
			product("38089100", "Monocrotophos 36% SL", "MCR2024001", "2024-01-15", "2026-01-15", "250ml", 85, 5, "91.8", 120),
			product("38089200", "Chlorpyriphos 20% EC", "CPF2024002", "2024-02-10", "2026-02-10", "500ml", 180, 10, "201.96", 85),
			product("38089300", "Imidacloprid 17.8% SL", "IMD2024003", "2024-01-20", "2026-01-20", "100ml", 45, 2, "50.94", 200),
			product("38089400", "Lambda Cyhalothrin 5% EC", "LCH2024004", "2024-03-05", "2026-03-05", "50ml", 35, 0, "41.30", 150),
			product("38089500", "Profenofos 50% EC", "PRF2024005", "2024-02-28", "2026-02-28", "1L", 320, 15, "362.02", 75),
		},
		StockRegister: []domain.StockRegisterEntry{
			opening(1, "Bayer CropScience", "Monocrotophos 36% SL", "MCR2024001", "2024-01-15", "2026-01-15", 200, 80),
			opening(2, "Tata Rallis", "Chlorpyriphos 20% EC", "CPF2024002", "2024-02-10", "2026-02-10", 120, 35),
		},
	}
}
