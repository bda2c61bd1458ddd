package http

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nutriscan/backend/internal/domain"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// Error bodies returned to clients. Details stay in the server log.
const (
	errProductNotFound = "Product not found"
	errServer          = "Server error"
)

// BarcodeChecker builds a nutrition report for a barcode
type BarcodeChecker interface {
	Check(ctx context.Context, barcode string) (*domain.Report, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	checker BarcodeChecker
}

// NewHandler creates a new HTTP handler
func NewHandler(checker BarcodeChecker) *Handler {
	return &Handler{checker: checker}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "nutriscan-backend",
		"version": Version,
	})
}

// CheckBarcode handles GET /api/check/:barcode.
// An unknown product is answered with 200 and an error field, so clients can
// tell it apart from a failure, which is a 500 with a generic body.
func (h *Handler) CheckBarcode(c *gin.Context) {
	barcode := c.Param("barcode")

	if h.checker == nil {
		log.Printf("[HTTP] request %s: nutrition check not configured", RequestID(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": errServer})
		return
	}

	report, err := h.checker.Check(c.Request.Context(), barcode)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			c.JSON(http.StatusOK, gin.H{"error": errProductNotFound})
			return
		}
		log.Printf("[HTTP] request %s: check %q failed: %v", RequestID(c), barcode, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errServer})
		return
	}

	c.JSON(http.StatusOK, report)
}
