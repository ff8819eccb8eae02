package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/neighbourhood/backend/internal/infrastructure/auth"
	"github.com/neighbourhood/backend/internal/interfaces/http/dto"
)

// JWT context keys
const (
	JWTClaimsKey  = "jwt_claims"
	JWTUserIDKey  = "jwt_user_id"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// JWTAuthMiddleware rejects requests without a valid bearer token and
// stores the claims in the gin context
func JWTAuthMiddleware(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := validateBearer(c, jwtService)
		if err != nil {
			code := dto.ErrCodeUnauthorized
			if errors.Is(err, auth.ErrExpiredToken) {
				code = dto.ErrCodeTokenExpired
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(code, err.Error()))
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Next()
	}
}

// OptionalJWTMiddleware stores claims when a valid token is present and
// lets anonymous requests through untouched
func OptionalJWTMiddleware(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(AuthHeaderKey) == "" {
			c.Next()
			return
		}
		if claims, err := validateBearer(c, jwtService); err == nil {
			c.Set(JWTClaimsKey, claims)
			c.Set(JWTUserIDKey, claims.UserID)
		}
		c.Next()
	}
}

// GetJWTUserID returns the authenticated user ID, or empty for anonymous
func GetJWTUserID(c *gin.Context) string {
	return c.GetString(JWTUserIDKey)
}

// GetJWTClaims returns the validated claims, if any
func GetJWTClaims(c *gin.Context) (*auth.Claims, bool) {
	value, ok := c.Get(JWTClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := value.(*auth.Claims)
	return claims, ok
}

func validateBearer(c *gin.Context, jwtService *auth.JWTService) (*auth.Claims, error) {
	header := c.GetHeader(AuthHeaderKey)
	if header == "" {
		return nil, errors.New("missing authorization header")
	}
	if !strings.HasPrefix(header, BearerPrefix) {
		return nil, errors.New("invalid authorization header format")
	}
	token := strings.TrimPrefix(header, BearerPrefix)
	if token == "" {
		return nil, errors.New("missing token")
	}
	return jwtService.ValidateToken(token)
}
