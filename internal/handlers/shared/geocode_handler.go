package handlers

import (
	"strings"

	"donationhub/internal/services"
	"donationhub/internal/utils"

	"github.com/gin-gonic/gin"
)

type GeocodeHandler struct {
	geocodingService services.GeocodingService
}

func NewGeocodeHandler(geocodingService services.GeocodingService) *GeocodeHandler {
	return &GeocodeHandler{geocodingService: geocodingService}
}

// Reverse fills an address form from the device position. A geocoder outage still
// answers 200 with a blank address and meta.degraded set.
func (h *GeocodeHandler) Reverse(c *gin.Context) {
	coord, err := queryCoordinate(c)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	if coord == nil {
		utils.BadRequestResponse(c, "lat and lng are required")
		return
	}

	result := h.geocodingService.ReverseGeocode(c.Request.Context(), coord.Lat, coord.Lng)
	utils.SuccessResponseWithMeta(c, "Address resolved", result, &utils.Meta{Degraded: result.Degraded})
}

func (h *GeocodeHandler) Forward(c *gin.Context) {
	result, err := h.geocodingService.Geocode(c.Request.Context(), strings.TrimSpace(c.Query("address")))
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Coordinates resolved", result, &utils.Meta{Degraded: result.Degraded})
}
