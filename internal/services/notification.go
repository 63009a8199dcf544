package services

import (
	"context"
	"fmt"

	"posteventcalendar/internal/domain"
)

type emailNotificationChannel struct {
	userRepo domain.UserRepository
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailNotificationChannel returns a NotificationChannel that delivers
// invite notifications by email, using the payload's message key as the
// template name.
func NewEmailNotificationChannel(userRepo domain.UserRepository, mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.NotificationChannel {
	return &emailNotificationChannel{userRepo: userRepo, mailer: mailer, renderer: renderer}
}

func (c *emailNotificationChannel) Send(ctx context.Context, userID int64, payload *domain.NotificationPayload) error {
	if payload == nil {
		return fmt.Errorf("notification payload is nil")
	}
	user, err := c.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get notification recipient: %w", err)
	}
	data := &domain.EventInvitationEmailData{
		Email:      user.Email,
		Name:       user.DisplayName(),
		TopicTitle: payload.TopicTitle,
		AuthorName: payload.AuthorName,
		PostNumber: payload.PostNumber,
	}
	subject, htmlBody, textBody, err := c.renderer.Render(payload.MessageKey, data)
	if err != nil {
		return fmt.Errorf("render %s template: %w", payload.MessageKey, err)
	}
	if err := c.mailer.Send(user.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("send %s email: %w", payload.MessageKey, err)
	}
	return nil
}
