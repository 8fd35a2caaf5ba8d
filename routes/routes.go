package routes

import (
	handlers "donationhub/internal/handlers/shared"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups everything the API mounts.
type Handlers struct {
	Posting      *handlers.PostingHandler
	Feed         *handlers.FeedHandler
	User         *handlers.UserHandler
	Message      *handlers.MessageHandler
	Notification *handlers.NotificationHandler
	Location     *handlers.LocationHandler
	Upload       *handlers.UploadHandler
	Geocode      *handlers.GeocodeHandler
	Payment      *handlers.PaymentHandler
	Health       *handlers.HealthHandler
}

// Setup mounts the public probes on router and every API route under /api/v1.
// protected runs before each authenticated route, typically auth then rate limit.
func Setup(router *gin.Engine, h *Handlers, protected ...gin.HandlerFunc) {
	router.GET("/health", h.Health.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	v1.Use(protected...)
	{
		SetupPostingRoutes(v1, h.Posting, h.Message)
		SetupUserRoutes(v1, h.User, h.Feed, h.Notification, h.Location)
		SetupUtilityRoutes(v1, h.Upload, h.Geocode, h.Payment)
	}
}
