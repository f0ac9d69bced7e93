package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"churchsite/internal/delivery/http/helpers"
	"churchsite/internal/domain"
)

// RegisterRequest is the request body for POST /events/register.
type RegisterRequest struct {
	EventID     string `json:"eventId"`
	FullName    string `json:"fullName" validate:"max=200"`
	Email       string `json:"email" validate:"max=254"`
	PhoneNumber string `json:"phoneNumber" validate:"max=50"`
	Location    string `json:"location" validate:"max=200"`
	Notes       string `json:"notes" validate:"max=2000"`
}

// UpdateRegistrationStatusRequest is the request body for PUT /events/register.
type UpdateRegistrationStatusRequest struct {
	ID     string `json:"id" validate:"required,uuid"`
	Status string `json:"status" validate:"required,oneof=pending confirmed cancelled"`
}

type RegistrationController struct {
	Logger        *slog.Logger
	Registrations domain.RegistrationService
	Events        domain.EventService
	now           func() time.Time
}

func NewRegistrationController(logger *slog.Logger, registrations domain.RegistrationService, events domain.EventService) *RegistrationController {
	return &RegistrationController{
		Logger:        logger,
		Registrations: registrations,
		Events:        events,
		now:           time.Now,
	}
}

// Submit godoc
// @Summary Register for an event
// @Description Public registration. The new registration is pending. Rate limited per client IP.
// @Tags registrations
// @Accept json
// @Produce json
// @Param body body RegisterRequest true "Registration form"
// @Success 201 {object} helpers.APIResponse "data contains the registration"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: duplicate_registration or capacity_exceeded"
// @Failure 429 {object} helpers.APIResponse "error.code: too_many_requests"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/register [post]
func (c *RegistrationController) Submit(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if id := strings.TrimSpace(req.EventID); id != "" {
		if _, err := uuid.Parse(id); err != nil {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
	}
	reg, err := c.Registrations.SubmitRegistration(r.Context(), domain.RegistrationInput{
		EventID:     req.EventID,
		FullName:    req.FullName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Location:    req.Location,
		Notes:       req.Notes,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, "submit registration", err, "event_id", req.EventID)
		return
	}
	c.Logger.InfoContext(r.Context(), "registration submitted", "event_id", reg.EventID, "registration_id", reg.ID)
	helpers.WriteJSONSuccess(w, http.StatusCreated, reg)
}

// List godoc
// @Summary List registrations
// @Description Newest first, with the owning event title.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventId query string false "Event ID (UUID)"
// @Param status query string false "pending, confirmed or cancelled"
// @Success 200 {object} helpers.APIResponse "data is []EventRegistration"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/register [get]
func (c *RegistrationController) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.RegistrationFilter{Status: domain.RegistrationStatus(strings.TrimSpace(q.Get("status")))}
	if raw := q.Get("eventId"); raw != "" {
		eventID, ok := helpers.ParseID(w, "eventId", raw)
		if !ok {
			return
		}
		filter.EventID = eventID
	}
	regs, err := c.Registrations.ListRegistrations(r.Context(), filter)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, "list registrations", err, "event_id", filter.EventID)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, regs)
}

// UpdateStatus godoc
// @Summary Set a registration's status
// @Description Any status may move to any other. Moving to confirmed emails the registrant.
// @Tags registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UpdateRegistrationStatusRequest true "Registration id and new status"
// @Success 200 {object} helpers.APIResponse "data contains the updated registration"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/register [put]
func (c *RegistrationController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateRegistrationStatusRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	reg, err := c.Events.SetRegistrationStatus(r.Context(), req.ID, req.Status)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, "set registration status", err, "registration_id", req.ID)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, reg)
}

// Export godoc
// @Summary Export an event's registrations as CSV
// @Tags registrations
// @Produce text/csv
// @Security BearerAuth
// @Param eventId query string true "Event ID (UUID)"
// @Success 200 {file} file "CSV attachment"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/register/export [get]
func (c *RegistrationController) Export(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.ParseID(w, "eventId", r.URL.Query().Get("eventId"))
	if !ok {
		return
	}
	body, err := c.Events.ExportRegistrations(r.Context(), eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, "export registrations", err, "event_id", eventID)
		return
	}
	helpers.WriteCSV(w, "registrations", c.now(), body)
}
