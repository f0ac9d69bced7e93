package domain

import (
	"context"
	"time"
)

// Event is a scheduled occurrence (service, conference, outreach) the public can register for.
// swagger:model Event
type Event struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      *string   `json:"description"`
	Date             time.Time `json:"date"`
	Location         *string   `json:"location"`
	ImageURL         *string   `json:"imageUrl"`
	DriveLink        *string   `json:"driveLink"`
	IsActive         bool      `json:"isActive"`
	MaxRegistrations *int      `json:"maxRegistrations"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// EventInput carries the raw admin form values for create and update.
// MaxRegistrations is kept as text: blank or non-numeric means unlimited.
type EventInput struct {
	Title            string
	Description      string
	Date             string
	Location         string
	ImageURL         string
	DriveLink        string
	IsActive         *bool
	MaxRegistrations string
}

// EventWithRegistrations is the admin view of an event.
// swagger:model EventWithRegistrations
type EventWithRegistrations struct {
	*Event
	RegisteredCount int                  `json:"registeredCount"`
	Registrations   []*EventRegistration `json:"registrations"`
}

// PublicEvent is the public view of an active event. It never carries registrant data.
// swagger:model PublicEvent
type PublicEvent struct {
	*Event
	RegisteredCount int  `json:"registeredCount"`
	SpotsLeft       *int `json:"spotsLeft"`
}

// NewPublicEvent builds the public view from an event and its non-cancelled registration count.
func NewPublicEvent(e *Event, registered int) *PublicEvent {
	pe := &PublicEvent{Event: e, RegisteredCount: registered}
	if e.MaxRegistrations != nil {
		left := *e.MaxRegistrations - registered
		if left < 0 {
			left = 0
		}
		pe.SpotsLeft = &left
	}
	return pe
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	Update(ctx context.Context, event *Event) error
	// Delete removes the event together with its registrations and returns how many registrations were removed.
	Delete(ctx context.Context, id string) (int, error)
	// List returns events ordered by date descending. activeOnly restricts to is_active = true.
	List(ctx context.Context, activeOnly bool) ([]*Event, error)
}

// EventService defines admin event management and registration moderation.
type EventService interface {
	CreateEvent(ctx context.Context, input EventInput) (*Event, error)
	UpdateEvent(ctx context.Context, id string, input EventInput) (*Event, error)
	DeleteEvent(ctx context.Context, id string) (removedRegistrations int, err error)
	ListEvents(ctx context.Context) ([]*EventWithRegistrations, error)
	ListPublicEvents(ctx context.Context) ([]*PublicEvent, error)
	GetEvent(ctx context.Context, id string) (*EventWithRegistrations, error)
	GetPublicEvent(ctx context.Context, id string) (*PublicEvent, error)
	SetRegistrationStatus(ctx context.Context, registrationID, status string) (*EventRegistration, error)
	ExportRegistrations(ctx context.Context, eventID string) ([]byte, error)
}
