package reports

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for reporting operations
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new reports handler
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers reporting routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/reports")
	{
		reports.GET("/portfolio", h.portfolio)
		reports.GET("/revenue", h.revenue)
		reports.GET("/escrow", h.escrow)
		reports.GET("/defaults", h.defaults)
		reports.GET("/trends", h.trends)
		reports.GET("/export", h.export)
	}
}

// portfolio handles GET /api/v1/reports/portfolio
func (h *Handler) portfolio(c *gin.Context) {
	summary, err := h.service.Portfolio(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to build portfolio summary", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// revenue handles GET /api/v1/reports/revenue?from=2026-01-01&to=2026-02-01
func (h *Handler) revenue(c *gin.Context) {
	from, to, err := h.parseRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := h.service.Revenue(c.Request.Context(), from, to)
	if err != nil {
		h.logger.Error("Failed to build revenue summary", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// escrow handles GET /api/v1/reports/escrow
func (h *Handler) escrow(c *gin.Context) {
	summary, err := h.service.Escrow(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to build escrow summary", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// defaults handles GET /api/v1/reports/defaults
func (h *Handler) defaults(c *gin.Context) {
	summary, err := h.service.Defaults(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to build default summary", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// trends handles GET /api/v1/reports/trends?months=12
func (h *Handler) trends(c *gin.Context) {
	months := 12
	if raw := c.Query("months"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			months = parsed
		}
	}

	trends, err := h.service.Trends(c.Request.Context(), months)
	if err != nil {
		h.logger.Error("Failed to list trends", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"trends": trends})
}

// export handles GET /api/v1/reports/export
func (h *Handler) export(c *gin.Context) {
	from, to, err := h.parseRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filename := fmt.Sprintf("portfolio-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := h.service.ExportWorkbook(c.Request.Context(), c.Writer, from, to); err != nil {
		h.logger.Error("Failed to export workbook", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (h *Handler) parseRange(c *gin.Context) (time.Time, time.Time, error) {
	var from, to time.Time
	var err error
	if raw := c.Query("from"); raw != "" {
		if from, err = time.Parse("2006-01-02", raw); err != nil {
			return from, to, fmt.Errorf("invalid from date: %w", err)
		}
	}
	if raw := c.Query("to"); raw != "" {
		if to, err = time.Parse("2006-01-02", raw); err != nil {
			return from, to, fmt.Errorf("invalid to date: %w", err)
		}
	}
	return from, to, nil
}
