package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/neighbourhood/backend/internal/infrastructure/scheduler"
	"github.com/neighbourhood/backend/internal/interfaces/http/dto"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping() error
}

// CacheStatser exposes tier hit counters for the coordinate cache
type CacheStatser interface {
	Stats() (l1Hits, l2Hits, misses int64)
}

// SystemHandler handles health, system info and ingestion control
type SystemHandler struct {
	BaseHandler
	db        Pinger
	cache     CacheStatser
	scheduler *scheduler.IngestionScheduler
	logger    *zap.Logger
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db Pinger, cache CacheStatser, sched *scheduler.IngestionScheduler, logger *zap.Logger) *SystemHandler {
	return &SystemHandler{
		db:        db,
		cache:     cache,
		scheduler: sched,
		logger:    logger,
		startTime: time.Now(),
	}
}

// RegisterRoutes registers system routes
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	system := rg.Group("/system")
	{
		system.GET("/info", h.GetSystemInfo)
		system.GET("/health", h.Health)
	}
	ingestion := rg.Group("/ingestion")
	{
		ingestion.GET("/status", h.IngestionStatus)
		ingestion.POST("/trigger", h.TriggerIngestion)
	}
}

// CacheStats holds coordinate cache tier counters
type CacheStats struct {
	MemoryHits     int64 `json:"memory_hits"`
	RedisHits      int64 `json:"redis_hits"`
	PersistentMiss int64 `json:"persistent_misses"`
}

// HealthResponse represents the health check payload
type HealthResponse struct {
	Status   string      `json:"status" example:"healthy"`
	Database string      `json:"database" example:"up"`
	Cache    *CacheStats `json:"cache,omitempty"`
	Uptime   string      `json:"uptime" example:"1h30m45s"`
}

// Health godoc
// @ID           getHealth
// @Summary      Health check
// @Description  Reports database reachability and coordinate cache counters
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=handler.HealthResponse}
// @Failure      503 {object} dto.Response{data=handler.HealthResponse}
// @Router       /system/health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:   "healthy",
		Database: "up",
		Uptime:   time.Since(h.startTime).Round(time.Second).String(),
	}

	status := http.StatusOK
	if err := h.db.Ping(); err != nil {
		h.logger.Warn("Health check: database unreachable", zap.Error(err))
		resp.Status = "degraded"
		resp.Database = "down"
		status = http.StatusServiceUnavailable
	}

	if h.cache != nil {
		l1, l2, misses := h.cache.Stats()
		resp.Cache = &CacheStats{MemoryHits: l1, RedisHits: l2, PersistentMiss: misses}
	}

	c.JSON(status, dto.NewSuccessResponse(resp))
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name" example:"ATM Status Backend"`
	Version   string `json:"version" example:"1.0.0"`
	GoVersion string `json:"go_version" example:"go1.24.0"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// GetSystemInfo godoc
// @ID           getSystemInfo
// @Summary      Get system information
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=handler.SystemInfoResponse}
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      "ATM Status Backend",
		Version:   "1.0.0",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

// IngestionStatus godoc
// @ID           getIngestionStatus
// @Summary      Get ingestion cycle status
// @Description  Returns the scheduler state and last-cycle counters
// @Tags         ingestion
// @Produce      json
// @Success      200 {object} dto.Response{data=scheduler.CycleStatus}
// @Router       /ingestion/status [get]
func (h *SystemHandler) IngestionStatus(c *gin.Context) {
	h.Success(c, h.scheduler.Status())
}

// TriggerIngestion godoc
// @ID           triggerIngestion
// @Summary      Trigger an ingestion cycle
// @Description  Runs a cycle immediately unless one is already in flight
// @Tags         ingestion
// @Produce      json
// @Success      200 {object} dto.Response{data=scheduler.CycleStatus}
// @Failure      409 {object} dto.Response
// @Router       /ingestion/trigger [post]
func (h *SystemHandler) TriggerIngestion(c *gin.Context) {
	if !h.scheduler.TriggerNow(c.Request.Context()) {
		h.Conflict(c, "An ingestion cycle is already running")
		return
	}
	h.Success(c, h.scheduler.Status())
}
