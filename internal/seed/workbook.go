package seed

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rythudepot/internal/ledger/domain"
	"github.com/xuri/excelize/v2"
)

const (
	SheetFarmers       = "Farmers"
	SheetProducts      = "Products"
	SheetStockRegister = "StockRegister"
)

var farmerColumns = map[string]string{
	"name":          "name",
	"farmername":    "name",
	"fathername":    "fatherName",
	"village":       "village",
	"mandal":        "mandal",
	"district":      "district",
	"pin":           "pin",
	"pincode":       "pin",
	"mobile":        "mobile",
	"phone":         "mobile",
	"balance":       "balance",
	"nextvisitdate": "nextVisitDate",
	"nextvisit":     "nextVisitDate",
}

var productColumns = map[string]string{
	"hsn":         "hsn",
	"hsncode":     "hsn",
	"productname": "productName",
	"product":     "productName",
	"batchno":     "batchNo",
	"batch":       "batchNo",
	"mnfdate":     "mnfDate",
	"expdate":     "expDate",
	"size":        "size",
	"rate":        "rate",
	"discount":    "discount",
	"cgst":        "cgst",
	"sgst":        "sgst",
	"amount":      "amount",
	"stockinhand": "stockInHand",
	"stock":       "stockInHand",
}

var registerColumns = map[string]string{
	"dateofreceipt":      "dateOfReceipt",
	"supplier":           "supplier",
	"insecticidename":    "insecticideName",
	"insecticide":        "insecticideName",
	"batchno":            "batchNo",
	"mnfdate":            "mnfDate",
	"expdate":            "expDate",
	"qtyreceived":        "qtyReceived",
	"qtyinhand":          "qtyInHand",
	"total":              "total",
	"sold":               "sold",
	"balance":            "balance",
	"billnodate":         "billNoDate",
	"purchasername":      "purchaserName",
	"purchasersignature": "purchaserSignature",
	"remarks":            "remarks",
}

// ReadWorkbook parses the Farmers, Products and StockRegister sheets. A
// missing sheet leaves its collection nil so the caller can fall back to
// the defaults. Rows without a name are skipped.
func ReadWorkbook(r io.Reader, node *snowflake.Node, now time.Time) (Data, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return Data{}, fmt.Errorf("open seed workbook: %w", err)
	}
	defer file.Close()

	var data Data
	sheets := map[string]bool{}
	for _, name := range file.GetSheetList() {
		sheets[name] = true
	}

	if sheets[SheetFarmers] {
		err := eachRow(file, SheetFarmers, farmerColumns, "name", func(row sheetRow) error {
			balance, err := row.decimal("balance")
			if err != nil {
				return err
			}
			visit, err := row.date("nextVisitDate")
			if err != nil {
				return err
			}
			data.Farmers = append(data.Farmers, domain.Farmer{
				ID:            node.Generate(),
				Name:          row.text("name"),
				FatherName:    row.text("fatherName"),
				Village:       row.text("village"),
				Mandal:        row.text("mandal"),
				District:      row.text("district"),
				Pin:           row.text("pin"),
				Mobile:        row.text("mobile"),
				Balance:       balance,
				NextVisitDate: visit,
				LastUpdated:   now,
			})
			return nil
		})
		if err != nil {
			return Data{}, err
		}
	}

	if sheets[SheetProducts] {
		err := eachRow(file, SheetProducts, productColumns, "productName", func(row sheetRow) error {
			p := domain.Product{
				ID:          node.Generate(),
				HSN:         row.text("hsn"),
				ProductName: row.text("productName"),
				BatchNo:     row.text("batchNo"),
				Size:        domain.Size(row.text("size")),
			}
			if !p.Size.Valid() {
				return row.errorf("size", domain.ErrInvalidSize)
			}
			var err error
			if p.MnfDate, err = row.date("mnfDate"); err != nil {
				return err
			}
			if p.ExpDate, err = row.date("expDate"); err != nil {
				return err
			}
			for _, f := range []struct {
				field string
				dst   *decimal.Decimal
			}{
				{"rate", &p.Rate},
				{"discount", &p.Discount},
				{"cgst", &p.CGST},
				{"sgst", &p.SGST},
				{"amount", &p.Amount},
			} {
				if *f.dst, err = row.decimal(f.field); err != nil {
					return err
				}
			}
			if row.text("amount") == "" {
				p.Amount = domain.ProductAmount(p)
			}
			if p.StockInHand, err = row.integer("stockInHand"); err != nil {
				return err
			}
			data.Products = append(data.Products, p)
			return nil
		})
		if err != nil {
			return Data{}, err
		}
	}

	if sheets[SheetStockRegister] {
		err := eachRow(file, SheetStockRegister, registerColumns, "insecticideName", func(row sheetRow) error {
			e := domain.StockRegisterEntry{
				ID:                 node.Generate(),
				SlNo:               len(data.StockRegister) + 1,
				Supplier:           row.text("supplier"),
				InsecticideName:    row.text("insecticideName"),
				BatchNo:            row.text("batchNo"),
				BillNoDate:         row.text("billNoDate"),
				PurchaserName:      row.text("purchaserName"),
				PurchaserSignature: row.text("purchaserSignature"),
				Remarks:            row.text("remarks"),
			}
			var err error
			for _, f := range []struct {
				field string
				dst   *string
			}{
				{"dateOfReceipt", &e.DateOfReceipt},
				{"mnfDate", &e.MnfDate},
				{"expDate", &e.ExpDate},
			} {
				if *f.dst, err = row.date(f.field); err != nil {
					return err
				}
			}
			for _, f := range []struct {
				field string
				dst   *int64
			}{
				{"qtyReceived", &e.QtyReceived},
				{"qtyInHand", &e.QtyInHand},
				{"total", &e.Total},
				{"sold", &e.Sold},
				{"balance", &e.Balance},
			} {
				if *f.dst, err = row.integer(f.field); err != nil {
					return err
				}
			}
			data.StockRegister = append(data.StockRegister, e)
			return nil
		})
		if err != nil {
			return Data{}, err
		}
	}

	return data, nil
}

type sheetRow struct {
	sheet   string
	line    int
	cells   []string
	columns map[string]int
}

func eachRow(file *excelize.File, sheet string, aliases map[string]string, required string, fn func(sheetRow) error) error {
	rows, err := file.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("read %s rows: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil
	}

	columns := mapColumns(rows[0], aliases)
	if _, ok := columns[required]; !ok {
		return fmt.Errorf("%s: missing required column %s", sheet, required)
	}
	for i := 1; i < len(rows); i++ {
		row := sheetRow{sheet: sheet, line: i + 1, cells: rows[i], columns: columns}
		if row.text(required) == "" {
			continue
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	return nil
}

func mapColumns(header []string, aliases map[string]string) map[string]int {
	mapped := make(map[string]int)
	for idx, col := range header {
		canonical, ok := aliases[normalizeHeader(col)]
		if !ok {
			continue
		}
		if _, exists := mapped[canonical]; !exists {
			mapped[canonical] = idx
		}
	}
	return mapped
}

// normalizeHeader keeps only lowercase letters and digits, so "Father Name",
// "father_name" and "FatherName" all match.
func normalizeHeader(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(raw) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (r sheetRow) text(field string) string {
	idx, ok := r.columns[field]
	if !ok || idx >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[idx])
}

func (r sheetRow) errorf(field string, err error) error {
	return fmt.Errorf("%s row %d %s: %w", r.sheet, r.line, field, err)
}

func (r sheetRow) decimal(field string) (decimal.Decimal, error) {
	raw := strings.ReplaceAll(r.text(field), ",", "")
	if raw == "" {
		return decimal.Zero, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, r.errorf(field, domain.ErrInvalidAmount)
	}
	if value.IsNegative() {
		return decimal.Zero, r.errorf(field, domain.ErrInvalidAmount)
	}
	return value, nil
}

func (r sheetRow) integer(field string) (int64, error) {
	raw := strings.ReplaceAll(r.text(field), ",", "")
	if raw == "" {
		return 0, nil
	}
	asFloat, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.Mod(asFloat, 1) != 0 || asFloat < 0 {
		return 0, r.errorf(field, domain.ErrInvalidQuantity)
	}
	return int64(asFloat), nil
}

var dateLayouts = []string{domain.DateLayout, "02/01/2006", "02-01-2006", "01-02-06"}

// date accepts ISO dates, the day-first forms used on depot paperwork and
// excelize's default short date format.
func (r sheetRow) date(field string) (string, error) {
	raw := r.text(field)
	if raw == "" {
		return "", nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(domain.DateLayout), nil
		}
	}
	return "", r.errorf(field, domain.ErrInvalidDate)
}
