package notifications

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handler handles HTTP requests for delinquency alerts
type Handler struct {
	service *Service
	hub     *Hub
	logger  *zap.Logger
}

// NewHandler creates a new notifications handler
func NewHandler(service *Service, hub *Hub, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		hub:     hub,
		logger:  logger,
	}
}

// RegisterRoutes registers alert routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	alerts := router.Group("/alerts")
	{
		alerts.GET("", h.listAlerts)
		alerts.POST("/:id/acknowledge", h.acknowledge)
	}
	router.GET("/ws", h.subscribe)
}

// listAlerts handles GET /api/v1/alerts
func (h *Handler) listAlerts(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	alerts, err := h.service.List(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list alerts", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

// acknowledge handles POST /api/v1/alerts/:id/acknowledge
func (h *Handler) acknowledge(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert ID"})
		return
	}

	if err := h.service.Acknowledge(c.Request.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "alert not found or already acknowledged"})
			return
		}
		h.logger.Error("Failed to acknowledge alert", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Alert acknowledged"})
}

// subscribe handles GET /api/v1/ws
func (h *Handler) subscribe(c *gin.Context) {
	h.hub.ServeWS(c.Writer, c.Request)
}
