package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"donationhub/internal/apperrors"
	"donationhub/internal/lifecycle"
	"donationhub/internal/middleware"
	"donationhub/internal/models"
	"donationhub/internal/services"
	"donationhub/internal/utils"
	"donationhub/internal/validators"

	"github.com/gin-gonic/gin"
)

// bindJSON decodes the body into req and runs struct validation. It writes the
// error response itself and reports whether the handler should continue.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body: "+err.Error())
		return false
	}
	if errs := validators.ValidateStruct(req); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.Fields())
		return false
	}
	return true
}

// currentActor resolves the authenticated caller to their stored profile.
func currentActor(c *gin.Context, users services.UserService) (lifecycle.Actor, bool) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return lifecycle.Actor{}, false
	}

	actor, err := users.Actor(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			utils.ErrorResponse(c, http.StatusForbidden, "PROFILE_REQUIRED", "Register a profile before using this endpoint")
			return lifecycle.Actor{}, false
		}
		utils.AppErrorResponse(c, err)
		return lifecycle.Actor{}, false
	}
	return actor, true
}

// queryCoordinate reads an optional lat/lng pair. Both or neither must be present.
func queryCoordinate(c *gin.Context) (*models.Coordinate, error) {
	latStr, lngStr := c.Query("lat"), c.Query("lng")
	if latStr == "" && lngStr == "" {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil || lat < -90 || lat > 90 {
		return nil, apperrors.NewValidation("lat must be a number between -90 and 90")
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil || lng < -180 || lng > 180 {
		return nil, apperrors.NewValidation("lng must be a number between -180 and 180")
	}
	return &models.Coordinate{Lat: lat, Lng: lng}, nil
}
