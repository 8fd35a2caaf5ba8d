package routes

import (
	handlers "donationhub/internal/handlers/shared"

	"github.com/gin-gonic/gin"
)

// SetupUserRoutes sets up profiles, the per-role feed, notifications and volunteer tracking.
func SetupUserRoutes(
	r *gin.RouterGroup,
	userHandler *handlers.UserHandler,
	feedHandler *handlers.FeedHandler,
	notificationHandler *handlers.NotificationHandler,
	locationHandler *handlers.LocationHandler,
) {
	users := r.Group("/users")
	{
		users.POST("", userHandler.Register)
		users.GET("/me", userHandler.GetMe)
		users.GET("/:id", userHandler.GetUser)
		users.PUT("/:id", userHandler.UpdateUser)
		users.PATCH("/:id", userHandler.UpdateUser)
	}

	r.GET("/feed", feedHandler.GetFeed)

	notifications := r.Group("/notifications")
	{
		notifications.GET("", notificationHandler.ListNotifications)
		notifications.PATCH("/:id/read", notificationHandler.MarkAsRead)
	}

	r.POST("/volunteers/me/location", locationHandler.UpdateLocation)
}

// SetupUtilityRoutes sets up uploads, geocoding and the platform fee.
func SetupUtilityRoutes(
	r *gin.RouterGroup,
	uploadHandler *handlers.UploadHandler,
	geocodeHandler *handlers.GeocodeHandler,
	paymentHandler *handlers.PaymentHandler,
) {
	r.POST("/uploads", uploadHandler.UploadImage)

	geocode := r.Group("/geocode")
	{
		geocode.GET("/reverse", geocodeHandler.Reverse)
		geocode.GET("/forward", geocodeHandler.Forward)
	}

	r.POST("/payments/platform-fee", paymentHandler.PayPlatformFee)
}
