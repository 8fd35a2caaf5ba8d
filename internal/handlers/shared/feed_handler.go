package handlers

import (
	"donationhub/internal/middleware"
	"donationhub/internal/services"
	"donationhub/internal/utils"
	"donationhub/internal/visibility"

	"github.com/gin-gonic/gin"
)

type FeedHandler struct {
	feedService services.FeedService
}

func NewFeedHandler(feedService services.FeedService) *FeedHandler {
	return &FeedHandler{feedService: feedService}
}

// GetFeed returns the caller's postings for ?tab=, defaulting to the role's first tab.
// Optional lat and lng replace the saved address for radius filtering.
func (h *FeedHandler) GetFeed(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	current, err := queryCoordinate(c)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	feed, err := h.feedService.Feed(c.Request.Context(), userID, visibility.Tab(c.Query("tab")), current)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Feed retrieved", feed, &utils.Meta{Count: len(feed.Postings)})
}
