package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/neighbourhood/backend/internal/application/preference"
)

// PreferenceHandler manages the caller's stored recommendation
// preferences. All routes require authentication.
type PreferenceHandler struct {
	BaseHandler
	service *preference.Service
	authMW  gin.HandlerFunc
	logger  *zap.Logger
}

// NewPreferenceHandler creates a new preference handler
func NewPreferenceHandler(service *preference.Service, authMW gin.HandlerFunc, logger *zap.Logger) *PreferenceHandler {
	return &PreferenceHandler{
		service: service,
		authMW:  authMW,
		logger:  logger,
	}
}

// RegisterRoutes registers preference routes behind JWT auth
func (h *PreferenceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	prefs := rg.Group("/preferences", h.authMW)
	{
		prefs.GET("", h.Get)
		prefs.PUT("", h.Save)
	}
}

// Get godoc
// @ID getPreferences
// @Summary Get the caller's preferences
// @Description Returns stored preferences, or the permissive defaults when none were ever saved
// @Tags preferences
// @Produce json
// @Success 200 {object} dto.Response{data=preference.PreferencesResponse}
// @Failure 401 {object} dto.Response
// @Security BearerAuth
// @Router /preferences [get]
func (h *PreferenceHandler) Get(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	prefs, err := h.service.Get(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to load preferences", zap.Error(err))
		h.HandleError(c, err)
		return
	}
	h.Success(c, prefs)
}

// Save godoc
// @ID savePreferences
// @Summary Save the caller's preferences
// @Description Merges the given fields into the stored preference set and returns the result
// @Tags preferences
// @Accept json
// @Produce json
// @Param request body preference.SavePreferencesRequest true "Preference update"
// @Success 200 {object} dto.Response{data=preference.PreferencesResponse}
// @Failure 400 {object} dto.Response
// @Failure 401 {object} dto.Response
// @Security BearerAuth
// @Router /preferences [put]
func (h *PreferenceHandler) Save(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req preference.SavePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	saved, err := h.service.Save(c.Request.Context(), userID, req)
	if err != nil {
		h.logger.Error("Failed to save preferences",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		h.HandleError(c, err)
		return
	}
	h.Success(c, saved)
}
