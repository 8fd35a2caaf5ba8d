package handlers

import (
	"donationhub/internal/models"
	"donationhub/internal/services"
	"donationhub/internal/utils"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	feeService  services.FeeService
	userService services.UserService
}

func NewPaymentHandler(feeService services.FeeService, userService services.UserService) *PaymentHandler {
	return &PaymentHandler{
		feeService:  feeService,
		userService: userService,
	}
}

// PayPlatformFee charges the fixed fee. The receipt reference goes into the
// fee_reference of the posting it pays for.
func (h *PaymentHandler) PayPlatformFee(c *gin.Context) {
	actor, ok := currentActor(c, h.userService)
	if !ok {
		return
	}

	var req models.PlatformFeeRequest
	if !bindJSON(c, &req) {
		return
	}

	receipt, err := h.feeService.Charge(c.Request.Context(), actor, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "Platform fee paid", receipt)
}
