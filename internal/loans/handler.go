package loans

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"land-ledger/loan-portal/loan-portal-backend/internal/engine"
	"land-ledger/loan-portal/loan-portal-backend/pkg/money"
)

// Handler handles HTTP requests for loan operations
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new loans handler
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers loan routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	loans := router.Group("/loans")
	{
		loans.POST("", h.originate)
		loans.GET("", h.listLoans)
		loans.GET("/:id", h.getLoan)

		// Schedule and alerting controls
		loans.PUT("/:id/due-day", h.setDueDay)
		loans.PUT("/:id/alerts", h.setAlerts)

		// Delinquency administration
		loans.POST("/:id/notices", h.recordNotice)
		loans.POST("/:id/late-fee/waive", h.waiveLateFee)

		// Default resolution and lifecycle
		loans.POST("/:id/default", h.markDefaulted)
		loans.POST("/:id/archive", h.archive)
		loans.POST("/:id/unarchive", h.unarchive)
		loans.POST("/:id/deletion-proposals", h.proposeDeletion)
		loans.DELETE("/:id", h.confirmDeletion)
	}
}

// originate handles POST /api/v1/loans
func (h *Handler) originate(c *gin.Context) {
	var req OriginateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	loan, err := h.service.Originate(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err, "Failed to originate loan")
		return
	}

	c.JSON(http.StatusCreated, loan)
}

// listLoans handles GET /api/v1/loans
func (h *Handler) listLoans(c *gin.Context) {
	filters := &ListFilters{
		Page:     h.getIntParam(c, "page", 1),
		PageSize: h.getIntParam(c, "page_size", 20),
	}
	if status := c.Query("status"); status != "" {
		s := engine.LoanStatus(status)
		filters.Status = &s
	}
	if customer := c.Query("customer_key"); customer != "" {
		filters.CustomerKey = &customer
	}
	if c.Query("overdue") == "true" {
		now := time.Now()
		filters.OverdueAsOf = &now
	}

	details, err := h.service.List(c.Request.Context(), filters, time.Now())
	if err != nil {
		h.logger.Error("Failed to list loans", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"loans": details, "page": filters.Page, "page_size": filters.PageSize})
}

// getLoan handles GET /api/v1/loans/:id
func (h *Handler) getLoan(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	detail, err := h.service.Get(c.Request.Context(), id, time.Now())
	if err != nil {
		h.respondError(c, err, "Failed to get loan")
		return
	}

	c.JSON(http.StatusOK, detail)
}

// setDueDay handles PUT /api/v1/loans/:id/due-day
func (h *Handler) setDueDay(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req struct {
		DueDay int `json:"due_day" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	loan, err := h.service.SetDueDay(c.Request.Context(), id, req.DueDay)
	if err != nil {
		h.respondError(c, err, "Failed to set due day")
		return
	}

	c.JSON(http.StatusOK, loan)
}

// setAlerts handles PUT /api/v1/loans/:id/alerts
func (h *Handler) setAlerts(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req struct {
		Disabled *bool `json:"disabled" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	loan, err := h.service.SetAlertsDisabled(c.Request.Context(), id, *req.Disabled)
	if err != nil {
		h.respondError(c, err, "Failed to update alerts")
		return
	}

	c.JSON(http.StatusOK, loan)
}

// recordNotice handles POST /api/v1/loans/:id/notices
func (h *Handler) recordNotice(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req struct {
		PostalCost string `json:"postal_cost" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	postal, err := money.Parse(req.PostalCost)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	loan, err := h.service.RecordNotice(c.Request.Context(), id, postal, time.Now())
	if err != nil {
		h.respondError(c, err, "Failed to record notice")
		return
	}

	c.JSON(http.StatusOK, loan)
}

// waiveLateFee handles POST /api/v1/loans/:id/late-fee/waive
func (h *Handler) waiveLateFee(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	loan, err := h.service.WaiveLateFee(c.Request.Context(), id, time.Now())
	if err != nil {
		h.respondError(c, err, "Failed to waive late fee")
		return
	}

	c.JSON(http.StatusOK, loan)
}

// markDefaulted handles POST /api/v1/loans/:id/default
func (h *Handler) markDefaulted(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req DefaultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.service.MarkDefaulted(c.Request.Context(), id, &req)
	if err != nil {
		h.respondError(c, err, "Failed to mark loan defaulted")
		return
	}

	c.JSON(http.StatusOK, record)
}

// archive handles POST /api/v1/loans/:id/archive
func (h *Handler) archive(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	loan, err := h.service.Archive(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "Failed to archive loan")
		return
	}

	c.JSON(http.StatusOK, loan)
}

// unarchive handles POST /api/v1/loans/:id/unarchive
func (h *Handler) unarchive(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	loan, err := h.service.Unarchive(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "Failed to unarchive loan")
		return
	}

	c.JSON(http.StatusOK, loan)
}

// proposeDeletion handles POST /api/v1/loans/:id/deletion-proposals
func (h *Handler) proposeDeletion(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	token, expires, err := h.service.ProposeDeletion(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "Failed to propose deletion")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"confirmation_token": token, "expires_at": expires})
}

// confirmDeletion handles DELETE /api/v1/loans/:id?token=...
func (h *Handler) confirmDeletion(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	token, err := uuid.Parse(c.Query("token"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid confirmation token"})
		return
	}

	if err := h.service.ConfirmDeletion(c.Request.Context(), id, token); err != nil {
		h.respondError(c, err, "Failed to delete loan")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Loan deleted"})
}

func (h *Handler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid loan ID"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) respondError(c *gin.Context, err error, logMsg string) {
	var invalid *engine.InvalidInputError
	var tooLow *engine.PaymentTooLowError
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "loan not found"})
	case errors.As(err, &invalid), errors.As(err, &tooLow):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrLoanNotActive),
		errors.Is(err, engine.ErrAlreadyPaidOff),
		errors.Is(err, engine.ErrIrreversibleAction):
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
