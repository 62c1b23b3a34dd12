package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rythudepot/internal/ledger/domain"
)

type billItemRequest struct {
	ProductID snowflake.ID     `json:"productId" binding:"required"`
	Quantity  int64            `json:"quantity" binding:"required,gt=0"`
	Rate      *decimal.Decimal `json:"rate"`
	Discount  *decimal.Decimal `json:"discount"`
	CGST      *decimal.Decimal `json:"cgst"`
	SGST      *decimal.Decimal `json:"sgst"`
}

type createBillRequest struct {
	FarmerID    snowflake.ID       `json:"farmerId" binding:"required"`
	Items       []billItemRequest  `json:"items" binding:"required,min=1,unique=ProductID,dive"`
	PaymentMode domain.PaymentMode `json:"paymentMode"`
	AmountPaid  decimal.Decimal    `json:"amountPaid"`
}

type updateBillRequest struct {
	AmountPaid  *decimal.Decimal    `json:"amountPaid"`
	PaymentMode *domain.PaymentMode `json:"paymentMode"`
}

func (s *Server) CreateBill(c *gin.Context) {
	var req createBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	items := make([]domain.BillItemRequest, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, domain.BillItemRequest{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Rate:      item.Rate,
			Discount:  item.Discount,
			CGST:      item.CGST,
			SGST:      item.SGST,
		})
	}

	resp, err := s.ledger.CreateBill(c.Request.Context(), domain.CreateBillRequest{
		FarmerID:    req.FarmerID,
		Items:       items,
		PaymentMode: req.PaymentMode,
		AmountPaid:  req.AmountPaid,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateBill(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	resp, err := s.ledger.UpdateBill(c.Request.Context(), id, domain.BillPatch{
		AmountPaid:  req.AmountPaid,
		PaymentMode: req.PaymentMode,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteBill(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := s.ledger.DeleteBill(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetBill(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := s.ledger.GetBill(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetBillByNumber(c *gin.Context) {
	billNo, ok := parseInt64Param(c, "billNo")
	if !ok {
		return
	}
	resp, err := s.ledger.GetBillByNumber(c.Request.Context(), billNo)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListBills(c *gin.Context) {
	farmerID, err := parseOptionalSnowflakeID(c.Query("farmerId"))
	if err != nil {
		AbortWithError(c, newValidationError("farmerId", "invalid_id", "invalid farmerId"))
		return
	}

	status := domain.BillStatus(c.Query("status"))
	switch status {
	case "", domain.BillStatusPending, domain.BillStatusPartial, domain.BillStatusPaid:
	default:
		AbortWithError(c, newValidationError("status", "invalid_status", "status must be pending, partial or paid"))
		return
	}

	resp, err := s.ledger.ListBills(c.Request.Context(), domain.ListBillsFilter{
		FarmerID: farmerID,
		Status:   status,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListTodaysSales(c *gin.Context) {
	resp, err := s.ledger.ListTodaysSales(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListMonthlySales(c *gin.Context) {
	resp, err := s.ledger.ListMonthlySales(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListOutstandingBills(c *gin.Context) {
	resp, err := s.ledger.ListOutstandingBills(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
