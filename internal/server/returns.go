package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rythudepot/internal/ledger/domain"
)

type returnItemRequest struct {
	ProductID snowflake.ID     `json:"productId" binding:"required"`
	Quantity  int64            `json:"quantity" binding:"required,gt=0"`
	Rate      *decimal.Decimal `json:"rate"`
}

type createReturnRequest struct {
	FarmerID snowflake.ID        `json:"farmerId" binding:"required"`
	Items    []returnItemRequest `json:"items" binding:"required,min=1,dive"`
	Reason   string              `json:"reason"`
}

func (s *Server) CreateReturn(c *gin.Context) {
	var req createReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	items := make([]domain.ReturnItemRequest, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, domain.ReturnItemRequest{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Rate:      item.Rate,
		})
	}

	resp, err := s.ledger.CreateReturn(c.Request.Context(), domain.CreateReturnRequest{
		FarmerID: req.FarmerID,
		Items:    items,
		Reason:   req.Reason,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) DeleteReturn(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := s.ledger.DeleteReturn(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListReturns(c *gin.Context) {
	resp, err := s.ledger.ListReturns(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
