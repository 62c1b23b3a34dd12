package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RequireJSON rejects request bodies that are not JSON. Requests without a
// body pass through.
func RequireJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPatch, http.MethodPut:
		default:
			c.Next()
			return
		}
		if c.Request.ContentLength == 0 {
			c.Next()
			return
		}
		if !strings.EqualFold(c.ContentType(), gin.MIMEJSON) {
			AbortWithError(c, ErrUnsupportedMediaType)
			return
		}
		c.Next()
	}
}

func noRoute(c *gin.Context) {
	AbortWithError(c, ErrNotFound)
}
