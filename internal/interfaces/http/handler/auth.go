package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/neighbourhood/backend/internal/application/identity"
	"github.com/neighbourhood/backend/internal/interfaces/http/middleware"
)

// AuthHandler handles signup, login and token introspection
type AuthHandler struct {
	BaseHandler
	service *identity.AuthService
	logger  *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(service *identity.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers auth routes
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/signup", h.Signup)
		auth.POST("/login", h.Login)
		auth.GET("/me", h.Me)
	}
}

// Signup godoc
// @ID signup
// @Summary Register a new account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body identity.SignupRequest true "Signup payload"
// @Success 201 {object} dto.Response{data=identity.AuthResponse}
// @Failure 400 {object} dto.Response
// @Failure 409 {object} dto.Response
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req identity.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.service.Signup(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Login godoc
// @ID login
// @Summary Authenticate and receive a token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body identity.LoginRequest true "Login payload"
// @Success 200 {object} dto.Response{data=identity.AuthResponse}
// @Failure 400 {object} dto.Response
// @Failure 401 {object} dto.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req identity.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Me godoc
// @ID getCurrentUser
// @Summary Get the account behind the presented token
// @Tags auth
// @Produce json
// @Success 200 {object} dto.Response{data=identity.UserResponse}
// @Failure 401 {object} dto.Response
// @Security BearerAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	header := c.GetHeader(middleware.AuthHeaderKey)
	if !strings.HasPrefix(header, middleware.BearerPrefix) {
		h.Unauthorized(c, "Bearer token required")
		return
	}
	token := strings.TrimPrefix(header, middleware.BearerPrefix)

	user, err := h.service.Verify(c.Request.Context(), token)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}
