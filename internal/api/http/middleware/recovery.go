package middleware

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/authkeeper-server/internal/logger"
)

// Recovery turns handler panics into a 500 response with the standard error body.
func Recovery(logger *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, rec any) {
		logger.Error("HTTP handler panic",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"panic", rec)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Internal Server Error",
		})
	})
}
