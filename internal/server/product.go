package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rythudepot/internal/ledger/domain"
)

type createProductRequest struct {
	HSN         string          `json:"hsn"`
	ProductName string          `json:"productName" binding:"required"`
	BatchNo     string          `json:"batchNo"`
	MnfDate     string          `json:"mnfDate"`
	ExpDate     string          `json:"expDate"`
	Size        domain.Size     `json:"size" binding:"required"`
	Rate        decimal.Decimal `json:"rate"`
	Discount    decimal.Decimal `json:"discount"`
	CGST        decimal.Decimal `json:"cgst"`
	SGST        decimal.Decimal `json:"sgst"`
	StockInHand int64           `json:"stockInHand" binding:"gte=0"`
}

type updateProductRequest struct {
	HSN         *string          `json:"hsn"`
	ProductName *string          `json:"productName" binding:"omitempty,min=1"`
	BatchNo     *string          `json:"batchNo"`
	MnfDate     *string          `json:"mnfDate"`
	ExpDate     *string          `json:"expDate"`
	Size        *domain.Size     `json:"size"`
	Rate        *decimal.Decimal `json:"rate"`
	Discount    *decimal.Decimal `json:"discount"`
	CGST        *decimal.Decimal `json:"cgst"`
	SGST        *decimal.Decimal `json:"sgst"`
	StockInHand *int64           `json:"stockInHand" binding:"omitempty,gte=0"`
}

type adjustStockRequest struct {
	Quantity int64 `json:"quantity" binding:"required"`
}

// CreateProduct computes the single-unit amount shown on the product list;
// the ledger stores whatever amount it is given.
func (s *Server) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	product := domain.CreateProductRequest{
		HSN:         req.HSN,
		ProductName: req.ProductName,
		BatchNo:     req.BatchNo,
		MnfDate:     req.MnfDate,
		ExpDate:     req.ExpDate,
		Size:        req.Size,
		Rate:        req.Rate,
		Discount:    req.Discount,
		CGST:        req.CGST,
		SGST:        req.SGST,
		StockInHand: req.StockInHand,
	}
	product.Amount = domain.LineAmount(1, product.Rate, product.Discount, product.CGST, product.SGST)

	resp, err := s.ledger.CreateProduct(c.Request.Context(), product)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

// UpdateProduct recomputes the amount from the merged pricing fields when
// any of them change.
func (s *Server) UpdateProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	ctx := c.Request.Context()
	patch := domain.ProductPatch{
		HSN:         req.HSN,
		ProductName: req.ProductName,
		BatchNo:     req.BatchNo,
		MnfDate:     req.MnfDate,
		ExpDate:     req.ExpDate,
		Size:        req.Size,
		Rate:        req.Rate,
		Discount:    req.Discount,
		CGST:        req.CGST,
		SGST:        req.SGST,
		StockInHand: req.StockInHand,
	}
	if req.Rate != nil || req.Discount != nil || req.CGST != nil || req.SGST != nil {
		current, err := s.ledger.GetProduct(ctx, id)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		merged := current
		for _, f := range []struct {
			src *decimal.Decimal
			dst *decimal.Decimal
		}{
			{req.Rate, &merged.Rate},
			{req.Discount, &merged.Discount},
			{req.CGST, &merged.CGST},
			{req.SGST, &merged.SGST},
		} {
			if f.src != nil {
				*f.dst = *f.src
			}
		}
		amount := domain.ProductAmount(merged)
		patch.Amount = &amount
	}

	resp, err := s.ledger.UpdateProduct(ctx, id, patch)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := s.ledger.DeleteProduct(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := s.ledger.GetProduct(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListProducts(c *gin.Context) {
	resp, err := s.ledger.ListProducts(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// AdjustProductStock takes quantity out of stock; a negative quantity
// puts stock back.
func (s *Server) AdjustProductStock(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req adjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	resp, err := s.ledger.AdjustProductStock(c.Request.Context(), id, req.Quantity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListLowStock(c *gin.Context) {
	resp, err := s.ledger.LowStock(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
