package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/neighbourhood/backend/internal/application/atmview"
	"github.com/neighbourhood/backend/internal/application/recommendation"
	"github.com/neighbourhood/backend/internal/domain/geo"
)

// RecommendationMetrics counts served recommendation requests. Optional.
type RecommendationMetrics interface {
	RecordRecommendation(ctx context.Context, results int)
}

// RecommendationHandler serves ranked and preference-filtered results.
// Both endpoints work anonymously; a bearer token switches them to the
// caller's stored preferences.
type RecommendationHandler struct {
	BaseHandler
	service *recommendation.Service
	metrics RecommendationMetrics
	logger  *zap.Logger
}

// NewRecommendationHandler creates a new recommendation handler
func NewRecommendationHandler(service *recommendation.Service, logger *zap.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		service: service,
		logger:  logger,
	}
}

// SetMetrics attaches a metrics sink
func (h *RecommendationHandler) SetMetrics(m RecommendationMetrics) {
	h.metrics = m
}

// RegisterRoutes registers recommendation routes
func (h *RecommendationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	recs := rg.Group("/recommendations")
	{
		recs.GET("", h.Recommend)
		recs.GET("/filtered", h.Filtered)
	}
}

// Recommend godoc
// @ID getRecommendations
// @Summary Get ranked ATM recommendations
// @Description Returns the top-k machines for the caller's position, scored against their preferences
// @Tags recommendations
// @Produce json
// @Param lat query number true "Caller latitude"
// @Param lng query number true "Caller longitude"
// @Param limit query int false "Number of results (default 3)"
// @Success 200 {object} dto.Response{data=[]recommendation.Recommendation}
// @Failure 400 {object} dto.Response
// @Security BearerAuth
// @Router /recommendations [get]
func (h *RecommendationHandler) Recommend(c *gin.Context) {
	position, ok := h.parsePosition(c)
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.BadRequest(c, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	userID := h.callerID(c)
	recs, err := h.service.Recommend(c.Request.Context(), userID, *position, limit)
	if err != nil {
		h.logger.Error("Failed to generate recommendations", zap.Error(err))
		h.HandleError(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordRecommendation(c.Request.Context(), len(recs))
	}
	h.Success(c, recs)
}

// Filtered godoc
// @ID getFilteredATMs
// @Summary Get preference-filtered ATM candidates
// @Description Applies the cascading preference filter to the mirror; loosens tier by tier rather than returning empty
// @Tags recommendations
// @Produce json
// @Param lat query number false "Caller latitude"
// @Param lng query number false "Caller longitude"
// @Success 200 {object} dto.Response{data=[]atmview.ATMResponse}
// @Security BearerAuth
// @Router /recommendations/filtered [get]
func (h *RecommendationHandler) Filtered(c *gin.Context) {
	var position *geo.Coordinates
	if c.Query("lat") != "" || c.Query("lng") != "" {
		parsed, ok := h.parsePosition(c)
		if !ok {
			return
		}
		position = parsed
	}

	userID := h.callerID(c)
	subset, err := h.service.FilterForUser(c.Request.Context(), userID, position)
	if err != nil {
		h.logger.Error("Failed to filter candidates", zap.Error(err))
		h.HandleError(c, err)
		return
	}

	out := make([]atmview.ATMResponse, 0, len(subset))
	for i := range subset {
		out = append(out, atmview.NewATMResponse(&subset[i]))
	}
	h.Success(c, out)
}

// parsePosition reads and validates lat/lng query parameters
func (h *RecommendationHandler) parsePosition(c *gin.Context) (*geo.Coordinates, bool) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		h.BadRequest(c, "lat must be a valid number")
		return nil, false
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		h.BadRequest(c, "lng must be a valid number")
		return nil, false
	}
	coords, err := geo.NewCoordinates(lat, lng)
	if err != nil {
		h.HandleError(c, err)
		return nil, false
	}
	return &coords, true
}

// callerID resolves the authenticated user, or uuid.Nil for anonymous
// callers who get the default preference set.
func (h *RecommendationHandler) callerID(c *gin.Context) uuid.UUID {
	userID, err := getUserID(c)
	if err != nil {
		return uuid.Nil
	}
	return userID
}
