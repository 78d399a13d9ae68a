package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /
func rootHandler(c *gin.Context) {
	c.String(http.StatusOK, "NearMex Backend is running!")
}

// GET /health
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}
