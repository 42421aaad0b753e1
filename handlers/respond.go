package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-svc/checkout"
	"storefront-svc/upstream"
)

// respondError maps service errors onto the gateway's response taxonomy:
// staged-session absence is 404, validation rejections are 400, upstream
// errors keep their status and message (401/403 pass through so the browser
// drops its credentials), and transport failures become 502.
func respondError(c *gin.Context, err error) {
	if errors.Is(err, checkout.ErrNoSession) {
		c.JSON(http.StatusNotFound, gin.H{"error": checkout.ErrNoSession.Error()})
		return
	}
	if checkout.IsValidation(err) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var apiErr *upstream.APIError
	if errors.As(err, &apiErr) {
		c.JSON(apiErr.Status, gin.H{"error": apiErr.Message})
		return
	}

	c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to reach server"})
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
