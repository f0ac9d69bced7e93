package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"churchsite/internal/domain"
)

type registrationService struct {
	eventRepo      domain.EventRepository
	regRepo        domain.EventRegistrationRepository
	contextTimeout time.Duration
	now            func() time.Time
}

// NewRegistrationService returns the public registration flow.
func NewRegistrationService(eventRepo domain.EventRepository, regRepo domain.EventRegistrationRepository, timeout time.Duration) domain.RegistrationService {
	return &registrationService{
		eventRepo:      eventRepo,
		regRepo:        regRepo,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func (s *registrationService) SubmitRegistration(ctx context.Context, input domain.RegistrationInput) (*domain.EventRegistration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	verr := &domain.ValidationError{}
	required(verr, "eventId", &input.EventID)
	required(verr, "fullName", &input.FullName)
	required(verr, "email", &input.Email)
	required(verr, "phoneNumber", &input.PhoneNumber)
	required(verr, "location", &input.Location)
	input.Email = domain.NormalizeEmail(input.Email)
	validEmail(verr, "email", input.Email)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	event, err := s.eventRepo.GetByID(ctx, input.EventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("submit registration: get event: %w", err)
	}
	if !event.IsActive {
		return nil, domain.ErrNotFound
	}

	// Fast path for a friendly error; the unique index decides under concurrency.
	_, err = s.regRepo.GetByEventAndEmail(ctx, event.ID, input.Email)
	switch {
	case err == nil:
		return nil, domain.ErrDuplicateRegistration
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("submit registration: check duplicate: %w", err)
	}

	reg := domain.NewEventRegistration(event.ID, input.FullName, input.Email, input.PhoneNumber, input.Location,
		domain.OptionalString(input.Notes), s.now())
	if err := s.regRepo.CreateWithinCapacity(ctx, reg); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound),
			errors.Is(err, domain.ErrDuplicateRegistration),
			errors.Is(err, domain.ErrCapacityExceeded):
			return nil, err
		}
		return nil, fmt.Errorf("submit registration: %w", err)
	}
	return reg, nil
}

func (s *registrationService) ListRegistrations(ctx context.Context, filter domain.RegistrationFilter) ([]*domain.EventRegistration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if filter.Status != "" {
		if _, ok := domain.ParseRegistrationStatus(string(filter.Status)); !ok {
			return nil, domain.NewValidationError("status", "must be one of pending, confirmed, cancelled")
		}
	}
	regs, err := s.regRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return regs, nil
}
