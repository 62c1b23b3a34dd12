package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) GetSummary(c *gin.Context) {
	resp, err := s.ledger.Summary(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// ListDues reports every farmer with interest accrued up to their next
// visit date, or up to today when none is set.
func (s *Server) ListDues(c *gin.Context) {
	resp, err := s.ledger.FarmerDues(c.Request.Context(), 0)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// Undo reverts the most recent ledger change while it is still inside the
// undo window.
func (s *Server) Undo(c *gin.Context) {
	resp, err := s.ledger.Undo(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
