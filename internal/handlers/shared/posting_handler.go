package handlers

import (
	"strings"

	"donationhub/internal/lifecycle"
	"donationhub/internal/models"
	"donationhub/internal/repositories/interfaces"
	"donationhub/internal/services"
	"donationhub/internal/utils"

	"github.com/gin-gonic/gin"
)

type PostingHandler struct {
	postingService services.PostingService
	ratingService  services.RatingService
	userService    services.UserService
}

func NewPostingHandler(postingService services.PostingService, ratingService services.RatingService, userService services.UserService) *PostingHandler {
	return &PostingHandler{
		postingService: postingService,
		ratingService:  ratingService,
		userService:    userService,
	}
}

// CreatePosting publishes a donation. The body must reference a paid platform fee.
func (h *PostingHandler) CreatePosting(c *gin.Context) {
	actor, ok := currentActor(c, h.userService)
	if !ok {
		return
	}

	var req models.CreatePostingRequest
	if !bindJSON(c, &req) {
		return
	}

	posting, err := h.postingService.CreatePosting(c.Request.Context(), actor, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "Posting created", posting)
}

func (h *PostingHandler) GetPosting(c *gin.Context) {
	posting, err := h.postingService.GetPosting(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Posting retrieved", posting)
}

// ListPostings supports donor_id, volunteer_id, orphanage_id and a comma separated status filter.
func (h *PostingHandler) ListPostings(c *gin.Context) {
	filter := interfaces.PostingFilter{
		DonorID:     c.Query("donor_id"),
		VolunteerID: c.Query("volunteer_id"),
		OrphanageID: c.Query("orphanage_id"),
	}
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			status := models.PostingStatus(strings.ToUpper(strings.TrimSpace(s)))
			if !status.IsValid() {
				utils.BadRequestResponse(c, "Unknown status "+s)
				return
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}

	postings, err := h.postingService.ListPostings(c.Request.Context(), filter)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Postings retrieved", postings, &utils.Meta{Count: len(postings)})
}

// ReplacePosting handles PUT with the full editable content.
func (h *PostingHandler) ReplacePosting(c *gin.Context) {
	actor, ok := currentActor(c, h.userService)
	if !ok {
		return
	}

	var req models.ReplacePostingRequest
	if !bindJSON(c, &req) {
		return
	}

	posting, err := h.postingService.ReplacePosting(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Posting updated", posting)
}

// UpdatePosting handles PATCH. Only content fields are accepted.
func (h *PostingHandler) UpdatePosting(c *gin.Context) {
	actor, ok := currentActor(c, h.userService)
	if !ok {
		return
	}

	var req models.PostingContentUpdate
	if !bindJSON(c, &req) {
		return
	}

	posting, err := h.postingService.UpdatePosting(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Posting updated", posting)
}

// CancelPosting withdraws a posting that no volunteer has picked up yet.
func (h *PostingHandler) CancelPosting(c *gin.Context) {
	h.transition(c, lifecycle.Cancel{}, "Posting cancelled")
}

func (h *PostingHandler) ClaimPosting(c *gin.Context) {
	var req models.ClaimRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	h.transition(c, lifecycle.ClaimPosting{Address: req.Address}, "Donation requested")
}

func (h *PostingHandler) ExpressInterest(c *gin.Context) {
	h.transition(c, lifecycle.ExpressInterest{}, "Interest recorded")
}

func (h *PostingHandler) UploadPickupEvidence(c *gin.Context) {
	var req models.EvidenceRequest
	if !bindJSON(c, &req) {
		return
	}
	h.transition(c, lifecycle.UploadPickupEvidence{ImageURL: req.ImageURL, Location: req.Location}, "Pickup evidence submitted")
}

func (h *PostingHandler) ApprovePickup(c *gin.Context) {
	h.transition(c, lifecycle.ApprovePickup{}, "Pickup approved")
}

func (h *PostingHandler) RejectPickup(c *gin.Context) {
	h.transition(c, lifecycle.RejectPickup{}, "Pickup rejected")
}

func (h *PostingHandler) UploadDeliveryEvidence(c *gin.Context) {
	var req models.EvidenceRequest
	if !bindJSON(c, &req) {
		return
	}
	h.transition(c, lifecycle.UploadDeliveryEvidence{ImageURL: req.ImageURL}, "Delivery evidence submitted")
}

func (h *PostingHandler) ApproveDelivery(c *gin.Context) {
	h.transition(c, lifecycle.ApproveDelivery{}, "Delivery approved")
}

func (h *PostingHandler) RejectDelivery(c *gin.Context) {
	h.transition(c, lifecycle.RejectDelivery{}, "Delivery rejected")
}

func (h *PostingHandler) transition(c *gin.Context, ev lifecycle.Event, message string) {
	actor, ok := currentActor(c, h.userService)
	if !ok {
		return
	}

	posting, err := h.postingService.Transition(c.Request.Context(), actor, c.Param("id"), ev)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, message, posting)
}

// SubmitRating rates another party once the donation is delivered. A pending user
// aggregate is reported through meta.degraded; the rating itself is stored.
func (h *PostingHandler) SubmitRating(c *gin.Context) {
	actor, ok := currentActor(c, h.userService)
	if !ok {
		return
	}

	var req models.RatingRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.ratingService.SubmitRating(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	if !result.UserStatsUpdated {
		utils.SuccessResponseWithMeta(c, "Rating saved; profile totals will update shortly", result, &utils.Meta{Degraded: true})
		return
	}
	utils.SuccessResponse(c, "Rating submitted", result)
}

// CheckSafety runs the advisory classifier. The verdict never blocks approval.
func (h *PostingHandler) CheckSafety(c *gin.Context) {
	actor, ok := currentActor(c, h.userService)
	if !ok {
		return
	}

	check, err := h.postingService.CheckSafety(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Safety check completed", check, &utils.Meta{Degraded: check.Degraded})
}
