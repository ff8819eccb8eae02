package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/neighbourhood/backend/internal/application/atmview"
)

// ATMHandler serves the mirrored machine list and its aggregate stats
type ATMHandler struct {
	BaseHandler
	service *atmview.Service
	logger  *zap.Logger
}

// NewATMHandler creates a new ATM handler
func NewATMHandler(service *atmview.Service, logger *zap.Logger) *ATMHandler {
	return &ATMHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers ATM routes
func (h *ATMHandler) RegisterRoutes(rg *gin.RouterGroup) {
	atms := rg.Group("/atms")
	{
		atms.GET("", h.List)
		atms.GET("/stats", h.Stats)
	}
}

// List godoc
// @ID listATMs
// @Summary List mirrored ATM/ABM records
// @Description Returns the current mirrored snapshot, optionally filtered by parish
// @Tags atms
// @Produce json
// @Param parish query string false "Filter by parish name"
// @Success 200 {object} dto.Response{data=[]atmview.ATMResponse}
// @Router /atms [get]
func (h *ATMHandler) List(c *gin.Context) {
	parish := c.Query("parish")

	records, err := h.service.List(c.Request.Context(), parish)
	if err != nil {
		h.logger.Error("Failed to list ATMs", zap.Error(err))
		h.HandleError(c, err)
		return
	}
	h.Success(c, records)
}

// Stats godoc
// @ID getATMStats
// @Summary Get aggregate mirror statistics
// @Description Returns totals, working/down counts, parish coverage and snapshot age
// @Tags atms
// @Produce json
// @Success 200 {object} dto.Response{data=atmview.StatsResponse}
// @Router /atms/stats [get]
func (h *ATMHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to compute ATM stats", zap.Error(err))
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}
