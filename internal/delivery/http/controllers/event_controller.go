package controllers

import (
	"log/slog"
	"net/http"

	"churchsite/internal/delivery/http/helpers"
	"churchsite/internal/delivery/http/middleware"
	"churchsite/internal/domain"
)

// EventRequest is the request body for POST /events.
type EventRequest struct {
	Title            string     `json:"title" validate:"max=200"`
	Description      string     `json:"description"`
	Date             string     `json:"date"`
	Location         string     `json:"location" validate:"max=200"`
	ImageURL         string     `json:"imageUrl" validate:"omitempty,url"`
	DriveLink        string     `json:"driveLink" validate:"omitempty,url"`
	IsActive         *bool      `json:"isActive"`
	MaxRegistrations *FormValue `json:"maxRegistrations" swaggertype:"string"`
}

func (r EventRequest) input() domain.EventInput {
	return domain.EventInput{
		Title:            r.Title,
		Description:      r.Description,
		Date:             r.Date,
		Location:         r.Location,
		ImageURL:         r.ImageURL,
		DriveLink:        r.DriveLink,
		IsActive:         r.IsActive,
		MaxRegistrations: r.MaxRegistrations.String(),
	}
}

// UpdateEventRequest is the request body for PUT /events.
type UpdateEventRequest struct {
	ID string `json:"id" validate:"required,uuid"`
	EventRequest
}

// DeleteEventResponse reports the removed event and how many registrations went with it.
type DeleteEventResponse struct {
	ID                   string `json:"id"`
	DeletedRegistrations int    `json:"deletedRegistrations"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// ListEvents godoc
// @Summary List events
// @Description With an admin token: every event with its registrations. Otherwise: active events only, with registration counts and no registrant data. Newest date first.
// @Tags events
// @Produce json
// @Param Authorization header string false "Bearer admin token"
// @Success 200 {object} helpers.APIResponse "data is []EventWithRegistrations (admin) or []PublicEvent"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.AdminIDFromContext(r.Context()); ok {
		events, err := c.Service.ListEvents(r.Context())
		if err != nil {
			helpers.WriteServiceError(w, r, c.Logger, "list events", err)
			return
		}
		helpers.WriteJSONSuccess(w, http.StatusOK, events)
		return
	}
	events, err := c.Service.ListPublicEvents(r.Context())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, "list public events", err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// GetEvent godoc
// @Summary Get an event
// @Description Admins get any event with registrations; the public gets active events only.
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data is EventWithRegistrations (admin) or PublicEvent"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.ParseID(w, "eventID", r.PathValue("eventID"))
	if !ok {
		return
	}
	if _, admin := middleware.AdminIDFromContext(r.Context()); admin {
		event, err := c.Service.GetEvent(r.Context(), eventID)
		if err != nil {
			helpers.WriteServiceError(w, r, c.Logger, "get event", err, "event_id", eventID)
			return
		}
		helpers.WriteJSONSuccess(w, http.StatusOK, event)
		return
	}
	event, err := c.Service.GetPublicEvent(r.Context(), eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, "get public event", err, "event_id", eventID)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// CreateEvent godoc
// @Summary Create an event
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body EventRequest true "Event data"
// @Success 201 {object} helpers.APIResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.CreateEvent(r.Context(), req.input())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, "create event", err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Replaces the event fields. isActive keeps its stored value when omitted.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body UpdateEventRequest true "Event data including id"
// @Success 200 {object} helpers.APIResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [put]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.UpdateEvent(r.Context(), req.ID, req.input())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, "update event", err, "event_id", req.ID)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Deletes the event and all of its registrations.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id query string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data is DeleteEventResponse"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.ParseID(w, "id", r.URL.Query().Get("id"))
	if !ok {
		return
	}
	removed, err := c.Service.DeleteEvent(r.Context(), eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, "delete event", err, "event_id", eventID)
		return
	}
	c.Logger.InfoContext(r.Context(), "event deleted", "event_id", eventID, "deleted_registrations", removed)
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteEventResponse{ID: eventID, DeletedRegistrations: removed})
}
