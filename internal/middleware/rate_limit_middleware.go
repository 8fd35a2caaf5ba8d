package middleware

import (
	"strconv"
	"time"

	"donationhub/internal/services"
	"donationhub/internal/utils"
	"donationhub/pkg/logger"

	"github.com/gin-gonic/gin"
)

// RateLimit allows limit requests per minute per caller, keyed by user id when
// authenticated and by client IP otherwise. A nil cache or a Redis failure lets
// the request through.
func RateLimit(cacheService services.CacheService, limit int64, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cacheService == nil || limit <= 0 {
			c.Next()
			return
		}

		key := "ip:" + c.ClientIP()
		if userID, ok := CurrentUserID(c); ok {
			key = "user:" + userID
		}

		result, err := cacheService.CheckRateLimit(c.Request.Context(), key, limit, time.Minute)
		if err != nil {
			log.LogDegraded("redis", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))

		if !result.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())))
			utils.TooManyRequestsResponse(c)
			c.Abort()
			return
		}

		c.Next()
	}
}
