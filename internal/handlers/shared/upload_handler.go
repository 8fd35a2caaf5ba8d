package handlers

import (
	"donationhub/internal/services"
	"donationhub/internal/utils"

	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	uploadService services.UploadService
	userService   services.UserService
}

func NewUploadHandler(uploadService services.UploadService, userService services.UserService) *UploadHandler {
	return &UploadHandler{
		uploadService: uploadService,
		userService:   userService,
	}
}

// UploadImage accepts a multipart "file" and a "kind" of donation, pickup or delivery.
func (h *UploadHandler) UploadImage(c *gin.Context) {
	actor, ok := currentActor(c, h.userService)
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "file is required")
		return
	}

	file, err := header.Open()
	if err != nil {
		utils.BadRequestResponse(c, utils.ErrFileUploadFailed)
		return
	}
	defer file.Close()

	kind := services.UploadKind(c.DefaultPostForm("kind", string(services.UploadKindDonation)))
	image, err := h.uploadService.UploadImage(c.Request.Context(), actor, kind, header.Filename, header.Size, file)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "Image uploaded", image)
}
