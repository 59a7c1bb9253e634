package services

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// NotificationService delivers operator hand-offs over the messaging channel.
type NotificationService interface {
	NotifyBrief(ctx context.Context, brief string) error
}

type notificationService struct {
	whatsappService WhatsAppService
	adminPhone      string
	logger          *zap.Logger
}

func NewNotificationService(whatsappService WhatsAppService, adminPhone string, logger *zap.Logger) NotificationService {
	return &notificationService{
		whatsappService: whatsappService,
		adminPhone:      NormalizePhone(adminPhone),
		logger:          logger,
	}
}

func (s *notificationService) NotifyBrief(ctx context.Context, brief string) error {
	if s.adminPhone == "" {
		return errors.New("admin phone number not configured")
	}
	if err := s.whatsappService.SendMessage(ctx, s.adminPhone, brief); err != nil {
		return err
	}
	s.logger.Info("brief sent to admin", zap.String("phone", s.adminPhone))
	return nil
}
