package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rythudepot/internal/ledger/domain"
)

type updateSettingsRequest struct {
	DealerName       *string          `json:"dealerName"`
	Address          *string          `json:"address"`
	GSTNumber        *string          `json:"gstNumber"`
	Phone            *string          `json:"phone"`
	LastBillNumber   *int64           `json:"lastBillNumber" binding:"omitempty,gte=0"`
	LastReturnNumber *int64           `json:"lastReturnNumber" binding:"omitempty,gte=0"`
	InterestRate     *decimal.Decimal `json:"interestRate"`
}

func (s *Server) GetSettings(c *gin.Context) {
	resp, err := s.ledger.GetSettings(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateSettings(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	resp, err := s.ledger.UpdateSettings(c.Request.Context(), domain.SettingsPatch(req))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
