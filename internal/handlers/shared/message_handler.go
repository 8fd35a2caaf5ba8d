package handlers

import (
	"donationhub/internal/models"
	"donationhub/internal/services"
	"donationhub/internal/utils"
	"donationhub/internal/validators"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	messageService services.MessageService
	userService    services.UserService
}

func NewMessageHandler(messageService services.MessageService, userService services.UserService) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		userService:    userService,
	}
}

func (h *MessageHandler) SendMessage(c *gin.Context) {
	actor, ok := currentActor(c, h.userService)
	if !ok {
		return
	}

	var req models.SendMessageRequest
	if !bindJSON(c, &req) {
		return
	}

	message, err := h.messageService.Send(c.Request.Context(), actor, c.Param("id"), validators.SanitizeInput(req.Text))
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "Message sent", message)
}

// ListMessages returns the chat oldest first, paginated with page and page_size.
func (h *MessageHandler) ListMessages(c *gin.Context) {
	actor, ok := currentActor(c, h.userService)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	messages, err := h.messageService.List(c.Request.Context(), actor, c.Param("id"), params)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Messages retrieved", messages, &utils.Meta{Count: len(messages)})
}
