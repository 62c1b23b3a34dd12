package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type CreateFarmerRequest struct {
	Name          string
	FatherName    string
	Village       string
	Mandal        string
	District      string
	Pin           string
	Mobile        string
	Balance       decimal.Decimal
	NextVisitDate string
}

// FarmerPatch holds the fields to overwrite; nil fields are kept.
type FarmerPatch struct {
	Name          *string
	FatherName    *string
	Village       *string
	Mandal        *string
	District      *string
	Pin           *string
	Mobile        *string
	Balance       *decimal.Decimal
	NextVisitDate *string
}

type CreateProductRequest struct {
	HSN         string
	ProductName string
	BatchNo     string
	MnfDate     string
	ExpDate     string
	Size        Size
	Rate        decimal.Decimal
	Discount    decimal.Decimal
	CGST        decimal.Decimal
	SGST        decimal.Decimal
	Amount      decimal.Decimal
	StockInHand int64
}

type ProductPatch struct {
	HSN         *string
	ProductName *string
	BatchNo     *string
	MnfDate     *string
	ExpDate     *string
	Size        *Size
	Rate        *decimal.Decimal
	Discount    *decimal.Decimal
	CGST        *decimal.Decimal
	SGST        *decimal.Decimal
	Amount      *decimal.Decimal
	StockInHand *int64
}

// BillItemRequest sells Quantity units of a product. Pricing fields fall
// back to the product's current values when nil.
type BillItemRequest struct {
	ProductID snowflake.ID
	Quantity  int64
	Rate      *decimal.Decimal
	Discount  *decimal.Decimal
	CGST      *decimal.Decimal
	SGST      *decimal.Decimal
}

type CreateBillRequest struct {
	FarmerID    snowflake.ID
	Items       []BillItemRequest
	PaymentMode PaymentMode
	AmountPaid  decimal.Decimal
}

type BillPatch struct {
	AmountPaid  *decimal.Decimal
	PaymentMode *PaymentMode
}

type ListBillsFilter struct {
	FarmerID snowflake.ID
	Status   BillStatus
}

type ReturnItemRequest struct {
	ProductID snowflake.ID
	Quantity  int64
	Rate      *decimal.Decimal
}

type CreateReturnRequest struct {
	FarmerID snowflake.ID
	Items    []ReturnItemRequest
	Reason   string
}

type PaymentRequest struct {
	BillID        snowflake.ID
	Amount        decimal.Decimal
	PaymentDate   string
	PaymentMethod PaymentMode
}

// PostPaymentResult is the state of every record touched by a posting.
type PostPaymentResult struct {
	Payment PaymentRecord `json:"payment"`
	Bill    Bill          `json:"bill"`
	Farmer  *Farmer       `json:"farmer,omitempty"`
}

type StockRegisterRequest struct {
	DateOfReceipt      string
	Supplier           string
	InsecticideName    string
	BatchNo            string
	MnfDate            string
	ExpDate            string
	QtyReceived        int64
	QtyInHand          int64
	Total              int64
	Sold               int64
	Balance            int64
	BillNoDate         string
	PurchaserName      string
	PurchaserSignature string
	Remarks            string
}

type StockRegisterPatch struct {
	DateOfReceipt      *string
	Supplier           *string
	InsecticideName    *string
	BatchNo            *string
	MnfDate            *string
	ExpDate            *string
	QtyReceived        *int64
	QtyInHand          *int64
	Total              *int64
	Sold               *int64
	Balance            *int64
	BillNoDate         *string
	PurchaserName      *string
	PurchaserSignature *string
	Remarks            *string
}

type SettingsPatch struct {
	DealerName       *string
	Address          *string
	GSTNumber        *string
	Phone            *string
	LastBillNumber   *int64
	LastReturnNumber *int64
	InterestRate     *decimal.Decimal
}

type Summary struct {
	TodaySales        decimal.Decimal    `json:"todaySales"`
	TodayCollected    decimal.Decimal    `json:"todayCollected"`
	MonthlySales      decimal.Decimal    `json:"monthlySales"`
	OutstandingAmount decimal.Decimal    `json:"outstandingAmount"`
	AccruedInterest   decimal.Decimal    `json:"accruedInterest"`
	BillsByStatus     map[BillStatus]int `json:"billsByStatus"`
	FarmerCount       int                `json:"farmerCount"`
	ProductCount      int                `json:"productCount"`
	AsOf              time.Time          `json:"asOf"`
}

type FarmerDue struct {
	Farmer       Farmer          `json:"farmer"`
	TotalBilled  decimal.Decimal `json:"totalBilled"`
	TotalPaid    decimal.Decimal `json:"totalPaid"`
	Outstanding  decimal.Decimal `json:"outstanding"`
	Interest     decimal.Decimal `json:"interest"`
	TotalPayable decimal.Decimal `json:"totalPayable"`
	InterestTo   time.Time       `json:"interestTo"`
}

type UndoResult struct {
	Kind string    `json:"kind"`
	At   time.Time `json:"at"`
}

type Service interface {
	CreateFarmer(ctx context.Context, req CreateFarmerRequest) (Farmer, error)
	UpdateFarmer(ctx context.Context, id snowflake.ID, patch FarmerPatch) (Farmer, error)
	DeleteFarmer(ctx context.Context, id snowflake.ID) (Farmer, error)
	GetFarmer(ctx context.Context, id snowflake.ID) (Farmer, error)
	ListFarmers(ctx context.Context) ([]Farmer, error)

	CreateProduct(ctx context.Context, req CreateProductRequest) (Product, error)
	UpdateProduct(ctx context.Context, id snowflake.ID, patch ProductPatch) (Product, error)
	DeleteProduct(ctx context.Context, id snowflake.ID) (Product, error)
	GetProduct(ctx context.Context, id snowflake.ID) (Product, error)
	ListProducts(ctx context.Context) ([]Product, error)
	AdjustProductStock(ctx context.Context, id snowflake.ID, delta int64) (Product, error)

	CreateBill(ctx context.Context, req CreateBillRequest) (Bill, error)
	UpdateBill(ctx context.Context, id snowflake.ID, patch BillPatch) (Bill, error)
	DeleteBill(ctx context.Context, id snowflake.ID) (Bill, error)
	GetBill(ctx context.Context, id snowflake.ID) (Bill, error)
	GetBillByNumber(ctx context.Context, billNo int64) (Bill, error)
	ListBills(ctx context.Context, filter ListBillsFilter) ([]Bill, error)
	ListTodaysSales(ctx context.Context) ([]Bill, error)
	ListMonthlySales(ctx context.Context) ([]Bill, error)
	ListOutstandingBills(ctx context.Context) ([]Bill, error)

	CreateReturn(ctx context.Context, req CreateReturnRequest) (Return, error)
	DeleteReturn(ctx context.Context, id snowflake.ID) (Return, error)
	ListReturns(ctx context.Context) ([]Return, error)

	CreatePaymentRecord(ctx context.Context, req PaymentRequest) (PaymentRecord, error)
	PostPayment(ctx context.Context, req PaymentRequest) (PostPaymentResult, error)
	ListPaymentRecords(ctx context.Context, billID snowflake.ID) ([]PaymentRecord, error)

	CreateStockRegisterEntry(ctx context.Context, req StockRegisterRequest) (StockRegisterEntry, error)
	UpdateStockRegisterEntry(ctx context.Context, id snowflake.ID, patch StockRegisterPatch) (StockRegisterEntry, error)
	DeleteStockRegisterEntry(ctx context.Context, id snowflake.ID) (StockRegisterEntry, error)
	ListStockRegister(ctx context.Context) ([]StockRegisterEntry, error)

	GetSettings(ctx context.Context) (Settings, error)
	UpdateSettings(ctx context.Context, patch SettingsPatch) (Settings, error)

	Summary(ctx context.Context) (Summary, error)
	FarmerDues(ctx context.Context, farmerID snowflake.ID) ([]FarmerDue, error)
	LowStock(ctx context.Context) ([]Product, error)

	Undo(ctx context.Context) (UndoResult, error)
}
