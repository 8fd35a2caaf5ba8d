package routes

import (
	handlers "donationhub/internal/handlers/shared"

	"github.com/gin-gonic/gin"
)

// SetupPostingRoutes sets up posting CRUD, lifecycle transitions, ratings and chat.
func SetupPostingRoutes(r *gin.RouterGroup, postingHandler *handlers.PostingHandler, messageHandler *handlers.MessageHandler) {
	postings := r.Group("/postings")
	{
		postings.GET("", postingHandler.ListPostings)
		postings.POST("", postingHandler.CreatePosting)
		postings.GET("/:id", postingHandler.GetPosting)
		postings.PUT("/:id", postingHandler.ReplacePosting)
		postings.PATCH("/:id", postingHandler.UpdatePosting)
		postings.DELETE("/:id", postingHandler.CancelPosting)

		// Lifecycle
		postings.POST("/:id/claim", postingHandler.ClaimPosting)
		postings.POST("/:id/interest", postingHandler.ExpressInterest)
		postings.POST("/:id/pickup-evidence", postingHandler.UploadPickupEvidence)
		postings.POST("/:id/pickup/approve", postingHandler.ApprovePickup)
		postings.POST("/:id/pickup/reject", postingHandler.RejectPickup)
		postings.POST("/:id/delivery-evidence", postingHandler.UploadDeliveryEvidence)
		postings.POST("/:id/delivery/approve", postingHandler.ApproveDelivery)
		postings.POST("/:id/delivery/reject", postingHandler.RejectDelivery)

		postings.POST("/:id/ratings", postingHandler.SubmitRating)
		postings.POST("/:id/safety-check", postingHandler.CheckSafety)

		// Chat
		postings.GET("/:id/messages", messageHandler.ListMessages)
		postings.POST("/:id/messages", messageHandler.SendMessage)
	}
}
