package handlers

import (
	"donationhub/internal/models"
	"donationhub/internal/services"
	"donationhub/internal/utils"

	"github.com/gin-gonic/gin"
)

type LocationHandler struct {
	locationService services.LocationService
	userService     services.UserService
}

func NewLocationHandler(locationService services.LocationService, userService services.UserService) *LocationHandler {
	return &LocationHandler{
		locationService: locationService,
		userService:     userService,
	}
}

// UpdateLocation pushes the volunteer's position onto every posting they are carrying.
// A throttled update is not an error; the client simply sends the next one later.
func (h *LocationHandler) UpdateLocation(c *gin.Context) {
	actor, ok := currentActor(c, h.userService)
	if !ok {
		return
	}

	var req models.Coordinate
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.locationService.UpdateLocation(c.Request.Context(), actor, req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	message := "Location updated"
	if result.Throttled {
		message = "Location update skipped"
	}
	utils.SuccessResponse(c, message, result)
}
