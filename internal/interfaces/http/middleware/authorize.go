package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lumina/storefront/internal/domain/identity"
	"github.com/lumina/storefront/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// AuthorizeConfig holds configuration for the authorization middleware
type AuthorizeConfig struct {
	// Logger for denied requests
	Logger *zap.Logger
}

// Authorize checks the authenticated principal against the access policy.
// The action is derived from the HTTP method unless one is given.
// Must run after JWTAuthMiddleware.
func Authorize(resource string, action ...string) gin.HandlerFunc {
	return AuthorizeWithConfig(AuthorizeConfig{}, resource, action...)
}

// AuthorizeWithConfig is Authorize with custom config
func AuthorizeWithConfig(cfg AuthorizeConfig, resource string, action ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := GetPrincipal(c)
		if principal == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeUnauthorized, "Authentication required", getRequestID(c)))
			return
		}

		act := ActionForMethod(c.Request.Method)
		if len(action) > 0 && action[0] != "" {
			act = action[0]
		}

		if !identity.CanAccess(principal, resource, act) {
			if cfg.Logger != nil {
				cfg.Logger.Warn("Access denied",
					zap.String("user_id", principal.UserID.String()),
					zap.String("role", string(principal.Role)),
					zap.String("resource", resource),
					zap.String("action", act),
				)
			}
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeForbidden, "Forbidden", getRequestID(c)))
			return
		}

		c.Next()
	}
}

// ActionForMethod maps an HTTP method to a policy action
func ActionForMethod(method string) string {
	switch method {
	case http.MethodPost:
		return identity.ActionCreate
	case http.MethodPut, http.MethodPatch, http.MethodDelete:
		return identity.ActionUpdate
	default:
		return identity.ActionRead
	}
}
