package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Collection keys used by the persistence backend.
const (
	KeyFarmers       = "depot_farmers"
	KeyProducts      = "depot_products"
	KeyBills         = "depot_bills"
	KeyPayments      = "depot_payments"
	KeyReturns       = "depot_returns"
	KeyStockRegister = "depot_stock_register"
	KeySettings      = "depot_settings"
)

// DateLayout is the calendar date format stored on records.
const DateLayout = "2006-01-02"

type Farmer struct {
	ID            snowflake.ID    `json:"id"`
	Name          string          `json:"name"`
	FatherName    string          `json:"fatherName"`
	Village       string          `json:"village"`
	Mandal        string          `json:"mandal"`
	District      string          `json:"district"`
	Pin           string          `json:"pin"`
	Mobile        string          `json:"mobile"`
	Balance       decimal.Decimal `json:"balance"`
	NextVisitDate string          `json:"nextVisitDate,omitempty"`
	LastUpdated   time.Time       `json:"lastUpdated"`
}

type Product struct {
	ID          snowflake.ID    `json:"id"`
	HSN         string          `json:"hsn"`
	ProductName string          `json:"productName"`
	BatchNo     string          `json:"batchNo"`
	MnfDate     string          `json:"mnfDate"`
	ExpDate     string          `json:"expDate"`
	Size        Size            `json:"size"`
	Rate        decimal.Decimal `json:"rate"`
	Discount    decimal.Decimal `json:"discount"`
	CGST        decimal.Decimal `json:"cgst"`
	SGST        decimal.Decimal `json:"sgst"`
	Amount      decimal.Decimal `json:"amount"`
	StockInHand int64           `json:"stockInHand"`
}

// LineItem is a product snapshot on a bill.
type LineItem struct {
	ProductID   snowflake.ID    `json:"productId"`
	ProductName string          `json:"productName"`
	HSN         string          `json:"hsn"`
	BatchNo     string          `json:"batchNo"`
	MnfDate     string          `json:"mnfDate"`
	ExpDate     string          `json:"expDate"`
	Size        Size            `json:"size"`
	Quantity    int64           `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Discount    decimal.Decimal `json:"discount"`
	CGST        decimal.Decimal `json:"cgst"`
	SGST        decimal.Decimal `json:"sgst"`
	Amount      decimal.Decimal `json:"amount"`
}

type Bill struct {
	ID          snowflake.ID    `json:"id"`
	BillNo      int64           `json:"billNo"`
	Farmer      Farmer          `json:"farmer"`
	Items       []LineItem      `json:"items"`
	PaymentMode PaymentMode     `json:"paymentMode"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	TotalCGST   decimal.Decimal `json:"totalCgst"`
	TotalSGST   decimal.Decimal `json:"totalSgst"`
	Total       decimal.Decimal `json:"total"`
	AmountPaid  decimal.Decimal `json:"amountPaid"`
	Status      BillStatus      `json:"status"`
	Date        time.Time       `json:"date"`
	LastUpdated *time.Time      `json:"lastUpdated,omitempty"`
}

// Outstanding is what remains to be paid on the bill.
func (b Bill) Outstanding() decimal.Decimal {
	return b.Total.Sub(b.AmountPaid)
}

type PaymentRecord struct {
	ID            snowflake.ID    `json:"id"`
	BillID        snowflake.ID    `json:"billId"`
	BillNo        int64           `json:"billNo"`
	FarmerID      snowflake.ID    `json:"farmerId"`
	FarmerName    string          `json:"farmerName"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   string          `json:"paymentDate"`
	PaymentMethod PaymentMode     `json:"paymentMethod"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// ReturnItem carries no tax; its amount is quantity times rate.
type ReturnItem struct {
	ProductID   snowflake.ID    `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int64           `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

type Return struct {
	ID       snowflake.ID    `json:"id"`
	ReturnNo int64           `json:"returnNo"`
	Farmer   Farmer          `json:"farmer"`
	Items    []ReturnItem    `json:"items"`
	Total    decimal.Decimal `json:"total"`
	Reason   string          `json:"reason"`
	Date     time.Time       `json:"date"`
}

type StockRegisterEntry struct {
	ID                 snowflake.ID  `json:"id"`
	SlNo               int           `json:"slNo"`
	DateOfReceipt      string        `json:"dateOfReceipt"`
	Supplier           string        `json:"supplier"`
	InsecticideName    string        `json:"insecticideName"`
	BatchNo            string        `json:"batchNo"`
	MnfDate            string        `json:"mnfDate"`
	ExpDate            string        `json:"expDate"`
	QtyReceived        int64         `json:"qtyReceived"`
	QtyInHand          int64         `json:"qtyInHand"`
	Total              int64         `json:"total"`
	Sold               int64         `json:"sold"`
	Balance            int64         `json:"balance"`
	BillNoDate         string        `json:"billNoDate"`
	PurchaserName      string        `json:"purchaserName"`
	PurchaserSignature string        `json:"purchaserSignature"`
	Remarks            string        `json:"remarks"`
	BillID             *snowflake.ID `json:"billId,omitempty"`
}

type Settings struct {
	DealerName       string          `json:"dealerName"`
	Address          string          `json:"address"`
	GSTNumber        string          `json:"gstNumber"`
	Phone            string          `json:"phone"`
	LastBillNumber   int64           `json:"lastBillNumber"`
	LastReturnNumber int64           `json:"lastReturnNumber"`
	InterestRate     decimal.Decimal `json:"interestRate"`
}
