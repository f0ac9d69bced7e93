package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"churchsite/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	regRepo        domain.EventRegistrationRepository
	emailService   domain.EmailService
	logger         *slog.Logger
	contextTimeout time.Duration
	loc            *time.Location
	now            func() time.Time
}

// NewEventService returns the admin event service. loc is used to interpret dates
// without an offset and to format CSV exports.
func NewEventService(eventRepo domain.EventRepository,
	regRepo domain.EventRegistrationRepository,
	emailService domain.EmailService,
	logger *slog.Logger,
	timeout time.Duration,
	loc *time.Location,
) domain.EventService {
	if loc == nil {
		loc = time.UTC
	}
	return &eventService{
		eventRepo:      eventRepo,
		regRepo:        regRepo,
		emailService:   emailService,
		logger:         logger,
		contextTimeout: timeout,
		loc:            loc,
		now:            time.Now,
	}
}

// applyEventInput validates input and copies it onto e. Empty optional strings become nil.
func (s *eventService) applyEventInput(e *domain.Event, input domain.EventInput) error {
	verr := &domain.ValidationError{}
	required(verr, "title", &input.Title)
	required(verr, "date", &input.Date)
	var date time.Time
	if input.Date != "" {
		d, ok := domain.ParseDate(input.Date, s.loc)
		if !ok {
			verr.Add("date", "must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
		}
		date = d
	}
	maxRegs := domain.OptionalInt(input.MaxRegistrations)
	if maxRegs != nil && *maxRegs < 1 {
		verr.Add("maxRegistrations", "must be at least 1")
	}
	if err := verr.OrNil(); err != nil {
		return err
	}

	e.Title = input.Title
	e.Description = domain.OptionalString(input.Description)
	e.Date = date
	e.Location = domain.OptionalString(input.Location)
	e.ImageURL = domain.OptionalString(input.ImageURL)
	e.DriveLink = domain.OptionalString(input.DriveLink)
	e.MaxRegistrations = maxRegs
	if input.IsActive != nil {
		e.IsActive = *input.IsActive
	}
	return nil
}

func (s *eventService) CreateEvent(ctx context.Context, input domain.EventInput) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event := &domain.Event{IsActive: true}
	if err := s.applyEventInput(event, input); err != nil {
		return nil, err
	}
	now := s.now()
	event.CreatedAt = now
	event.UpdatedAt = now
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, id string, input domain.EventInput) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: get event: %w", err)
	}
	if err := s.applyEventInput(event, input); err != nil {
		return nil, err
	}
	event.UpdatedAt = s.now()
	if err := s.eventRepo.Update(ctx, event); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

// DeleteEvent removes the event and all of its registrations.
func (s *eventService) DeleteEvent(ctx context.Context, id string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	removed, err := s.eventRepo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("delete event: %w", err)
	}
	return removed, nil
}

func (s *eventService) ListEvents(ctx context.Context) ([]*domain.EventWithRegistrations, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return s.withRegistrations(ctx, events)
}

func (s *eventService) GetEvent(ctx context.Context, id string) (*domain.EventWithRegistrations, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	out, err := s.withRegistrations(ctx, []*domain.Event{event})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// withRegistrations embeds each event's registrations, oldest first.
func (s *eventService) withRegistrations(ctx context.Context, events []*domain.Event) ([]*domain.EventWithRegistrations, error) {
	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	regs, err := s.regRepo.ListByEventIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	byEvent := make(map[string][]*domain.EventRegistration, len(events))
	for _, r := range regs {
		byEvent[r.EventID] = append(byEvent[r.EventID], r)
	}
	out := make([]*domain.EventWithRegistrations, 0, len(events))
	for _, e := range events {
		list := byEvent[e.ID]
		if list == nil {
			list = []*domain.EventRegistration{}
		}
		active := 0
		for _, r := range list {
			if r.Status != domain.StatusCancelled {
				active++
			}
		}
		out = append(out, &domain.EventWithRegistrations{Event: e, RegisteredCount: active, Registrations: list})
	}
	return out, nil
}

func (s *eventService) ListPublicEvents(ctx context.Context) ([]*domain.PublicEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list public events: %w", err)
	}
	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	counts, err := s.regRepo.CountActiveByEventIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("count registrations: %w", err)
	}
	out := make([]*domain.PublicEvent, 0, len(events))
	for _, e := range events {
		out = append(out, domain.NewPublicEvent(e, counts[e.ID]))
	}
	return out, nil
}

func (s *eventService) GetPublicEvent(ctx context.Context, id string) (*domain.PublicEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get public event: %w", err)
	}
	if !event.IsActive {
		return nil, domain.ErrNotFound
	}
	counts, err := s.regRepo.CountActiveByEventIDs(ctx, []string{event.ID})
	if err != nil {
		return nil, fmt.Errorf("count registrations: %w", err)
	}
	return domain.NewPublicEvent(event, counts[event.ID]), nil
}

// SetRegistrationStatus moves a registration to any of the three statuses. Moving into
// confirmed triggers a best-effort confirmation email.
func (s *eventService) SetRegistrationStatus(ctx context.Context, registrationID, status string) (*domain.EventRegistration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	newStatus, ok := domain.ParseRegistrationStatus(status)
	if !ok {
		return nil, domain.NewValidationError("status", "must be one of pending, confirmed, cancelled")
	}
	current, err := s.regRepo.GetByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("set registration status: get registration: %w", err)
	}
	updated, err := s.regRepo.UpdateStatus(ctx, registrationID, newStatus)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("set registration status: %w", err)
	}
	if newStatus == domain.StatusConfirmed && current.Status != domain.StatusConfirmed {
		s.notifyConfirmed(ctx, updated)
	}
	return updated, nil
}

func (s *eventService) notifyConfirmed(ctx context.Context, reg *domain.EventRegistration) {
	if s.emailService == nil {
		return
	}
	event, err := s.eventRepo.GetByID(ctx, reg.EventID)
	if err != nil {
		s.logger.WarnContext(ctx, "confirmation email skipped", "op", "set_registration_status",
			"registration_id", reg.ID, "event_id", reg.EventID, "err", err)
		return
	}
	data := &domain.RegistrationConfirmedEmailData{
		Email:         reg.Email,
		FullName:      reg.FullName,
		EventTitle:    event.Title,
		EventDate:     event.Date.In(s.loc),
		EventLocation: deref(event.Location),
	}
	if err := s.emailService.SendRegistrationConfirmed(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "confirmation email failed", "op", "set_registration_status",
			"registration_id", reg.ID, "event_id", reg.EventID, "err", err)
	}
}

func (s *eventService) ExportRegistrations(ctx context.Context, eventID string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("export registrations: get event: %w", err)
	}
	regs, err := s.regRepo.ListByEventIDs(ctx, []string{eventID})
	if err != nil {
		return nil, fmt.Errorf("export registrations: %w", err)
	}
	out, err := registrationsCSV(regs, s.loc)
	if err != nil {
		return nil, fmt.Errorf("export registrations: encode csv: %w", err)
	}
	return out, nil
}
