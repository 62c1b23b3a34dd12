package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/rythudepot/internal/ledger/domain"
)

type stockRegisterRequest struct {
	DateOfReceipt      string `json:"dateOfReceipt"`
	Supplier           string `json:"supplier"`
	InsecticideName    string `json:"insecticideName" binding:"required"`
	BatchNo            string `json:"batchNo"`
	MnfDate            string `json:"mnfDate"`
	ExpDate            string `json:"expDate"`
	QtyReceived        int64  `json:"qtyReceived" binding:"gte=0"`
	QtyInHand          int64  `json:"qtyInHand" binding:"gte=0"`
	Total              int64  `json:"total" binding:"gte=0"`
	Sold               int64  `json:"sold" binding:"gte=0"`
	Balance            int64  `json:"balance"`
	BillNoDate         string `json:"billNoDate"`
	PurchaserName      string `json:"purchaserName"`
	PurchaserSignature string `json:"purchaserSignature"`
	Remarks            string `json:"remarks"`
}

type stockRegisterPatchRequest struct {
	DateOfReceipt      *string `json:"dateOfReceipt"`
	Supplier           *string `json:"supplier"`
	InsecticideName    *string `json:"insecticideName" binding:"omitempty,min=1"`
	BatchNo            *string `json:"batchNo"`
	MnfDate            *string `json:"mnfDate"`
	ExpDate            *string `json:"expDate"`
	QtyReceived        *int64  `json:"qtyReceived" binding:"omitempty,gte=0"`
	QtyInHand          *int64  `json:"qtyInHand" binding:"omitempty,gte=0"`
	Total              *int64  `json:"total" binding:"omitempty,gte=0"`
	Sold               *int64  `json:"sold" binding:"omitempty,gte=0"`
	Balance            *int64  `json:"balance"`
	BillNoDate         *string `json:"billNoDate"`
	PurchaserName      *string `json:"purchaserName"`
	PurchaserSignature *string `json:"purchaserSignature"`
	Remarks            *string `json:"remarks"`
}

func (s *Server) CreateStockRegisterEntry(c *gin.Context) {
	var req stockRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	resp, err := s.ledger.CreateStockRegisterEntry(c.Request.Context(), domain.StockRegisterRequest(req))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateStockRegisterEntry(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req stockRegisterPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	resp, err := s.ledger.UpdateStockRegisterEntry(c.Request.Context(), id, domain.StockRegisterPatch(req))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteStockRegisterEntry(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := s.ledger.DeleteStockRegisterEntry(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListStockRegister(c *gin.Context) {
	resp, err := s.ledger.ListStockRegister(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
