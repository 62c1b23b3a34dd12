package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rythudepot/internal/ledger/domain"
)

type createFarmerRequest struct {
	Name          string          `json:"name" binding:"required"`
	FatherName    string          `json:"fatherName"`
	Village       string          `json:"village"`
	Mandal        string          `json:"mandal"`
	District      string          `json:"district"`
	Pin           string          `json:"pin" binding:"omitempty,numeric,len=6"`
	Mobile        string          `json:"mobile" binding:"omitempty,numeric,len=10"`
	Balance       decimal.Decimal `json:"balance"`
	NextVisitDate string          `json:"nextVisitDate"`
}

type updateFarmerRequest struct {
	Name          *string          `json:"name" binding:"omitempty,min=1"`
	FatherName    *string          `json:"fatherName"`
	Village       *string          `json:"village"`
	Mandal        *string          `json:"mandal"`
	District      *string          `json:"district"`
	Pin           *string          `json:"pin" binding:"omitempty,numeric,len=6"`
	Mobile        *string          `json:"mobile" binding:"omitempty,numeric,len=10"`
	Balance       *decimal.Decimal `json:"balance"`
	NextVisitDate *string          `json:"nextVisitDate"`
}

func (s *Server) CreateFarmer(c *gin.Context) {
	var req createFarmerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	resp, err := s.ledger.CreateFarmer(c.Request.Context(), domain.CreateFarmerRequest{
		Name:          req.Name,
		FatherName:    req.FatherName,
		Village:       req.Village,
		Mandal:        req.Mandal,
		District:      req.District,
		Pin:           req.Pin,
		Mobile:        req.Mobile,
		Balance:       req.Balance,
		NextVisitDate: req.NextVisitDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateFarmer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateFarmerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	resp, err := s.ledger.UpdateFarmer(c.Request.Context(), id, domain.FarmerPatch{
		Name:          req.Name,
		FatherName:    req.FatherName,
		Village:       req.Village,
		Mandal:        req.Mandal,
		District:      req.District,
		Pin:           req.Pin,
		Mobile:        req.Mobile,
		Balance:       req.Balance,
		NextVisitDate: req.NextVisitDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteFarmer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := s.ledger.DeleteFarmer(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetFarmer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := s.ledger.GetFarmer(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListFarmers(c *gin.Context) {
	resp, err := s.ledger.ListFarmers(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetFarmerDues(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := s.ledger.FarmerDues(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if len(resp) == 0 {
		AbortWithError(c, domain.ErrFarmerNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp[0]})
}
