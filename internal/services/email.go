package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"churchsite/internal/domain"
)

const templateRegistrationConfirmed = "registration_confirmed"

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns the service that renders and sends registrant notifications.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

func (s *emailService) SendRegistrationConfirmed(ctx context.Context, data *domain.RegistrationConfirmedEmailData) error {
	if data == nil || data.Email == "" {
		return errors.New("registration confirmed email: recipient is missing")
	}
	if err := s.send(ctx, templateRegistrationConfirmed, data.Email, data); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "registration confirmed email sent", "to", data.Email, "event_title", data.EventTitle)
	return nil
}

func (s *emailService) send(ctx context.Context, template, to string, data any) error {
	subject, htmlBody, textBody, err := s.renderer.Render(template, data)
	if err != nil {
		return fmt.Errorf("render %s: %w", template, err)
	}
	if err := s.mailer.Send(ctx, to, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("send %s: %w", template, err)
	}
	return nil
}
