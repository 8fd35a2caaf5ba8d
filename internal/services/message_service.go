package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"donationhub/internal/apperrors"
	"donationhub/internal/lifecycle"
	"donationhub/internal/models"
	"donationhub/internal/repositories/interfaces"
	"donationhub/internal/utils"
	"donationhub/pkg/logger"

	"github.com/google/uuid"
)

// MessageService is the per-posting chat between donor, requester and volunteer.
type MessageService interface {
	Send(ctx context.Context, sender lifecycle.Actor, postingID, text string) (*models.Message, error)
	List(ctx context.Context, reader lifecycle.Actor, postingID string, params *utils.PaginationParams) ([]*models.Message, error)
}

type messageService struct {
	messageRepo         interfaces.MessageRepository
	postingRepo         interfaces.PostingRepository
	notificationService NotificationService
	logger              *logger.Logger
}

func NewMessageService(
	messageRepo interfaces.MessageRepository,
	postingRepo interfaces.PostingRepository,
	notificationService NotificationService,
	logger *logger.Logger,
) MessageService {
	return &messageService{
		messageRepo:         messageRepo,
		postingRepo:         postingRepo,
		notificationService: notificationService,
		logger:              logger,
	}
}

func (s *messageService) Send(ctx context.Context, sender lifecycle.Actor, postingID, text string) (*models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewValidation("message text is required")
	}

	posting, err := s.authorize(ctx, sender, postingID)
	if err != nil {
		return nil, err
	}

	message := &models.Message{
		ID:         uuid.NewString(),
		PostingID:  postingID,
		SenderID:   sender.ID,
		SenderName: sender.Name,
		SenderRole: sender.Role,
		Text:       text,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	if s.notificationService != nil {
		preview := fmt.Sprintf("%s: %s", sender.Name, utils.TruncateString(text, 80))
		for _, party := range posting.Parties() {
			if party == sender.ID {
				continue
			}
			if err := s.notificationService.Notify(ctx, party, postingID, models.NotificationTypeMessage, preview); err != nil {
				s.logger.WithPostingID(postingID).WithError(err).Warn("Failed to write message notification")
			}
		}
	}

	return message, nil
}

func (s *messageService) List(ctx context.Context, reader lifecycle.Actor, postingID string, params *utils.PaginationParams) ([]*models.Message, error) {
	if _, err := s.authorize(ctx, reader, postingID); err != nil {
		return nil, err
	}
	return s.messageRepo.ListByPosting(ctx, postingID, params.GetLimit(), params.GetSkip())
}

func (s *messageService) authorize(ctx context.Context, actor lifecycle.Actor, postingID string) (*models.Posting, error) {
	posting, err := s.postingRepo.GetByID(ctx, postingID)
	if err != nil {
		return nil, err
	}
	if !posting.IsParty(actor.ID) {
		return nil, apperrors.NewForbidden("only the parties of this donation can use its chat")
	}
	return posting, nil
}
