package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rythudepot/internal/ledger/domain"
)

type paymentRequest struct {
	BillID        snowflake.ID       `json:"billId"`
	Amount        decimal.Decimal    `json:"amount"`
	PaymentDate   string             `json:"paymentDate"`
	PaymentMethod domain.PaymentMode `json:"paymentMethod"`
}

func (r paymentRequest) toDomain(billID snowflake.ID) domain.PaymentRequest {
	return domain.PaymentRequest{
		BillID:        billID,
		Amount:        r.Amount,
		PaymentDate:   r.PaymentDate,
		PaymentMethod: r.PaymentMethod,
	}
}

// PostPayment applies a payment to the bill in the path and adjusts the
// farmer balance in the same commit.
func (s *Server) PostPayment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	resp, err := s.ledger.PostPayment(c.Request.Context(), req.toDomain(id))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListBillPayments(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if _, err := s.ledger.GetBill(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}
	resp, err := s.ledger.ListPaymentRecords(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// CreatePaymentRecord only appends to the payment history.
func (s *Server) CreatePaymentRecord(c *gin.Context) {
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	resp, err := s.ledger.CreatePaymentRecord(c.Request.Context(), req.toDomain(req.BillID))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListPaymentRecords(c *gin.Context) {
	billID, err := parseOptionalSnowflakeID(c.Query("billId"))
	if err != nil {
		AbortWithError(c, newValidationError("billId", "invalid_id", "invalid billId"))
		return
	}

	resp, err := s.ledger.ListPaymentRecords(c.Request.Context(), billID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
