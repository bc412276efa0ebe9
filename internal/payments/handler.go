package payments

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"land-ledger/loan-portal/loan-portal-backend/internal/engine"
)

// Handler handles HTTP requests for payment operations
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new payments handler
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers payment routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	payments := router.Group("/payments")
	{
		payments.POST("/gateway", h.gatewayWebhook)
		payments.POST("/manual", h.recordManual)
	}
	router.GET("/loans/:id/payments", h.loanHistory)
}

// gatewayWebhook handles POST /api/v1/payments/gateway
func (h *Handler) gatewayWebhook(c *gin.Context) {
	var req GatewayPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, err := h.service.RecordGateway(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err, "Failed to apply gateway payment")
		return
	}

	c.JSON(http.StatusCreated, payment)
}

// recordManual handles POST /api/v1/payments/manual
func (h *Handler) recordManual(c *gin.Context) {
	var req ManualPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, err := h.service.RecordManual(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err, "Failed to record manual payment")
		return
	}

	c.JSON(http.StatusCreated, payment)
}

// loanHistory handles GET /api/v1/loans/:id/payments
func (h *Handler) loanHistory(c *gin.Context) {
	loanID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid loan ID"})
		return
	}

	page := h.getIntParam(c, "page", 1)
	pageSize := h.getIntParam(c, "page_size", 20)

	history, err := h.service.History(c.Request.Context(), loanID, page, pageSize)
	if err != nil {
		h.logger.Error("Failed to list payments", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"payments": history, "page": page, "page_size": pageSize})
}

func (h *Handler) respondError(c *gin.Context, err error, logMsg string) {
	var invalid *engine.InvalidInputError
	var belowMin *engine.PaymentBelowMinimumError
	var exceeds *engine.PaymentExceedsBalanceError
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "loan not found"})
	case errors.As(err, &invalid), errors.As(err, &belowMin), errors.As(err, &exceeds):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrAlreadyPaidOff), errors.Is(err, engine.ErrLoanNotActive):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error(logMsg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (h *Handler) getIntParam(c *gin.Context, name string, defaultValue int) int {
	if value := c.Query(name); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
