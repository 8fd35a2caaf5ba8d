package middleware

import (
	"net/http"
	"strings"

	"donationhub/internal/utils"
	"donationhub/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthRequired.
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

// AuthRequired verifies the identity provider's bearer token and sets the caller's
// user id in the context. Roles are looked up from the stored profile, not trusted
// from the token.
func AuthRequired(secretKey, issuer string, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization header required")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			utils.ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", "Bearer token required")
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(tokenString, secretKey, issuer)
		if err != nil {
			log.LogSecurityEvent("invalid_token", "low", map[string]interface{}{
				"path":      c.FullPath(),
				"client_ip": c.ClientIP(),
				"error":     err.Error(),
			})
			utils.ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token")
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		if claims.Role != "" {
			c.Set(ContextRole, claims.Role)
		}

		c.Next()
	}
}

// CurrentUserID returns the id set by AuthRequired.
func CurrentUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get(ContextUserID)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}
