package escrow

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"land-ledger/loan-portal/loan-portal-backend/pkg/money"
)

// Handler handles HTTP requests for escrow operations
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new escrow handler
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers escrow routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/escrow")
	{
		group.GET("/:propertyId", h.getAccount)
		group.PUT("/:propertyId", h.configure)
		group.POST("/:propertyId/tax-payouts", h.markTaxesPaid)
	}
}

// configure handles PUT /api/v1/escrow/:propertyId
func (h *Handler) configure(c *gin.Context) {
	propertyID, err := uuid.Parse(c.Param("propertyId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property id"})
		return
	}

	var req ConfigureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := h.service.Configure(c.Request.Context(), propertyID, &req)
	if err != nil {
		h.logger.Error("Failed to configure escrow schedule", zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// getAccount handles GET /api/v1/escrow/:propertyId
func (h *Handler) getAccount(c *gin.Context) {
	propertyID, err := uuid.Parse(c.Param("propertyId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property id"})
		return
	}

	summary, err := h.service.GetAccount(c.Request.Context(), propertyID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

type taxPayoutRequest struct {
	Amount string `json:"amount" binding:"required"`
}

// markTaxesPaid handles POST /api/v1/escrow/:propertyId/tax-payouts
func (h *Handler) markTaxesPaid(c *gin.Context) {
	propertyID, err := uuid.Parse(c.Param("propertyId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property id"})
		return
	}

	var req taxPayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	amount, err := money.Parse(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := h.service.MarkTaxesPaid(c.Request.Context(), propertyID, amount)
	if err != nil {
		h.logger.Error("Failed to record tax payout", zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}
