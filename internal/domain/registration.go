package domain

import (
	"context"
	"time"
)

// RegistrationStatus is the moderation state of a registration.
type RegistrationStatus string

const (
	StatusPending   RegistrationStatus = "pending"
	StatusConfirmed RegistrationStatus = "confirmed"
	StatusCancelled RegistrationStatus = "cancelled"
)

// ParseRegistrationStatus reports whether s names one of the three statuses.
func ParseRegistrationStatus(s string) (RegistrationStatus, bool) {
	switch RegistrationStatus(s) {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return RegistrationStatus(s), true
	}
	return "", false
}

// EventRegistration is a public user's request to attend an event.
// swagger:model EventRegistration
type EventRegistration struct {
	ID          string             `json:"id"`
	EventID     string             `json:"eventId"`
	EventTitle  string             `json:"eventTitle,omitempty"`
	FullName    string             `json:"fullName"`
	Email       string             `json:"email"`
	PhoneNumber string             `json:"phoneNumber"`
	Location    string             `json:"location"`
	Notes       *string            `json:"notes"`
	Status      RegistrationStatus `json:"status"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// NewEventRegistration returns a pending registration. ID is set by the repository on create.
func NewEventRegistration(eventID, fullName, email, phone, location string, notes *string, now time.Time) *EventRegistration {
	return &EventRegistration{
		EventID:     eventID,
		FullName:    fullName,
		Email:       email,
		PhoneNumber: phone,
		Location:    location,
		Notes:       notes,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// RegistrationInput is a public registration submission.
type RegistrationInput struct {
	EventID     string
	FullName    string
	Email       string
	PhoneNumber string
	Location    string
	Notes       string
}

// RegistrationFilter narrows the admin registration list. Zero values mean "any".
type RegistrationFilter struct {
	EventID string
	Status  RegistrationStatus
}

// EventRegistrationRepository defines storage operations for event registrations.
type EventRegistrationRepository interface {
	// CreateWithinCapacity inserts reg atomically with the capacity check.
	// Returns ErrNotFound when the event is missing or inactive, ErrCapacityExceeded when the
	// event is full and ErrDuplicateRegistration on a unique (event_id, email) violation.
	CreateWithinCapacity(ctx context.Context, reg *EventRegistration) error
	GetByID(ctx context.Context, id string) (*EventRegistration, error)
	GetByEventAndEmail(ctx context.Context, eventID, email string) (*EventRegistration, error)
	List(ctx context.Context, filter RegistrationFilter) ([]*EventRegistration, error)
	// ListByEventIDs returns registrations for the given events, oldest first.
	ListByEventIDs(ctx context.Context, eventIDs []string) ([]*EventRegistration, error)
	// CountActiveByEventIDs counts non-cancelled registrations per event.
	CountActiveByEventIDs(ctx context.Context, eventIDs []string) (map[string]int, error)
	UpdateStatus(ctx context.Context, id string, status RegistrationStatus) (*EventRegistration, error)
}

// RegistrationService handles public registration submissions and the admin registration list.
type RegistrationService interface {
	SubmitRegistration(ctx context.Context, input RegistrationInput) (*EventRegistration, error)
	ListRegistrations(ctx context.Context, filter RegistrationFilter) ([]*EventRegistration, error)
}
