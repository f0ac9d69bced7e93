package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"churchsite/internal/delivery/http/helpers"
	"churchsite/internal/delivery/http/middleware"
	"churchsite/internal/domain"
)

// AttendanceRequest is the request body for POST /attendance. On PUT, omitted fields keep their value.
type AttendanceRequest struct {
	ServiceDate        *string    `json:"serviceDate"`
	ServiceType        *string    `json:"serviceType"`
	MemberName         *string    `json:"memberName" validate:"omitempty,max=200"`
	MemberID           *string    `json:"memberId" validate:"omitempty,max=100"`
	Phone              *string    `json:"phone" validate:"omitempty,max=50"`
	Email              *string    `json:"email" validate:"omitempty,max=254"`
	Address            *string    `json:"address" validate:"omitempty,max=500"`
	Age                *FormValue `json:"age" swaggertype:"string"`
	Gender             *string    `json:"gender"`
	IsVisitor          *bool      `json:"isVisitor"`
	IsFirstTimeVisitor *bool      `json:"isFirstTimeVisitor"`
	Notes              *string    `json:"notes" validate:"omitempty,max=2000"`
	RecordedBy         *string    `json:"recordedBy" validate:"omitempty,max=200"`
}

func (r AttendanceRequest) input() domain.AttendanceInput {
	return domain.AttendanceInput{
		ServiceDate:        r.ServiceDate,
		ServiceType:        r.ServiceType,
		MemberName:         r.MemberName,
		MemberID:           r.MemberID,
		Phone:              r.Phone,
		Email:              r.Email,
		Address:            r.Address,
		Age:                r.Age.Ptr(),
		Gender:             r.Gender,
		IsVisitor:          r.IsVisitor,
		IsFirstTimeVisitor: r.IsFirstTimeVisitor,
		Notes:              r.Notes,
		RecordedBy:         r.RecordedBy,
	}
}

// UpdateAttendanceRequest is the request body for PUT /attendance.
type UpdateAttendanceRequest struct {
	ID string `json:"id" validate:"required,uuid"`
	AttendanceRequest
}

type AttendanceController struct {
	Logger   *slog.Logger
	Service  domain.AttendanceService
	Location *time.Location
	now      func() time.Time
}

// NewAttendanceController returns the attendance controller. loc interprets the date filter.
func NewAttendanceController(logger *slog.Logger, svc domain.AttendanceService, loc *time.Location) *AttendanceController {
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceController{
		Logger:   logger,
		Service:  svc,
		Location: loc,
		now:      time.Now,
	}
}

// firstQuery returns the first non-blank value among the given query keys.
func firstQuery(r *http.Request, keys ...string) (key, value string) {
	q := r.URL.Query()
	for _, k := range keys {
		if v := strings.TrimSpace(q.Get(k)); v != "" {
			return k, v
		}
	}
	return keys[0], ""
}

// parseFilter reads serviceDate, serviceType, memberName and isVisitor from the query string.
// date and search are accepted as short forms. It writes a 400 and returns false on a malformed value.
func (c *AttendanceController) parseFilter(w http.ResponseWriter, r *http.Request) (domain.AttendanceFilter, bool) {
	q := r.URL.Query()
	var filter domain.AttendanceFilter
	verr := &domain.ValidationError{}

	if key, raw := firstQuery(r, "serviceDate", "date"); raw != "" {
		d, ok := domain.ParseDate(raw, c.Location)
		if !ok {
			verr.Add(key, "must be a date (YYYY-MM-DD)")
		}
		filter.ServiceDate = &d
	}
	if raw := strings.TrimSpace(q.Get("serviceType")); raw != "" && raw != "all" {
		st, ok := domain.ParseServiceType(raw)
		if !ok {
			verr.Add("serviceType", "is not a known service type")
		}
		filter.ServiceType = st
	}
	_, filter.MemberName = firstQuery(r, "memberName", "search")
	filter.IsVisitor = helpers.ParseBool(r, "isVisitor")

	if verr.HasErrors() {
		helpers.WriteJSONErrorDetails(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid input", verr.Fields)
		return filter, false
	}
	return filter, true
}

// List godoc
// @Summary List attendance records
// @Description Filtered and paginated, newest service date first. Default limit 50, maximum 200.
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param serviceDate query string false "Calendar day (YYYY-MM-DD)"
// @Param serviceType query string false "Service type"
// @Param memberName query string false "Member name substring (case-insensitive)"
// @Param isVisitor query bool false "Visitors only (true) or members only (false)"
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 50, max 200)"
// @Success 200 {object} helpers.APIResponse "data is AttendancePage"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /attendance [get]
func (c *AttendanceController) List(w http.ResponseWriter, r *http.Request) {
	filter, ok := c.parseFilter(w, r)
	if !ok {
		return
	}
	page, err := c.Service.ListRecords(r.Context(), filter, helpers.ParsePagination(r))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, "list attendance", err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, page)
}

// Summary godoc
// @Summary Summarize attendance
// @Description Totals for the records matching the same filters as the list.
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param serviceDate query string false "Calendar day (YYYY-MM-DD)"
// @Param serviceType query string false "Service type"
// @Param memberName query string false "Member name substring"
// @Param isVisitor query bool false "Visitor filter"
// @Success 200 {object} helpers.APIResponse "data is AttendanceSummary"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /attendance/summary [get]
func (c *AttendanceController) Summary(w http.ResponseWriter, r *http.Request) {
	filter, ok := c.parseFilter(w, r)
	if !ok {
		return
	}
	summary, err := c.Service.Summarize(r.Context(), filter)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, "summarize attendance", err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, summary)
}

// Export godoc
// @Summary Export attendance as CSV
// @Description Every record matching the filters, without pagination.
// @Tags attendance
// @Produce text/csv
// @Security BearerAuth
// @Param serviceDate query string false "Calendar day (YYYY-MM-DD)"
// @Param serviceType query string false "Service type"
// @Param memberName query string false "Member name substring"
// @Param isVisitor query bool false "Visitor filter"
// @Success 200 {file} file "CSV attachment"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /attendance/export [get]
func (c *AttendanceController) Export(w http.ResponseWriter, r *http.Request) {
	filter, ok := c.parseFilter(w, r)
	if !ok {
		return
	}
	body, err := c.Service.ExportRecords(r.Context(), filter)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, "export attendance", err)
		return
	}
	helpers.WriteCSV(w, "attendance", c.now().In(c.Location), body)
}

// Create godoc
// @Summary Record attendance
// @Description serviceDate, serviceType and memberName are required.
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body AttendanceRequest true "Attendance record"
// @Success 201 {object} helpers.APIResponse "data contains the record"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /attendance [post]
func (c *AttendanceController) Create(w http.ResponseWriter, r *http.Request) {
	var req AttendanceRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	input := req.input()
	if input.RecordedBy == nil {
		if adminID, ok := middleware.AdminIDFromContext(r.Context()); ok {
			input.RecordedBy = &adminID
		}
	}
	rec, err := c.Service.CreateRecord(r.Context(), input)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, "create attendance record", err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, rec)
}

// Update godoc
// @Summary Update an attendance record
// @Description Partial update: omitted fields keep their stored value.
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UpdateAttendanceRequest true "Record id and changed fields"
// @Success 200 {object} helpers.APIResponse "data contains the record"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /attendance [put]
func (c *AttendanceController) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateAttendanceRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	rec, err := c.Service.UpdateRecord(r.Context(), req.ID, req.input())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, "update attendance record", err, "record_id", req.ID)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, rec)
}

// Delete godoc
// @Summary Delete an attendance record
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param id query string true "Record ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data.id is the deleted record"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /attendance [delete]
func (c *AttendanceController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.ParseID(w, "id", r.URL.Query().Get("id"))
	if !ok {
		return
	}
	if err := c.Service.DeleteRecord(r.Context(), id); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, "delete attendance record", err, "record_id", id)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"id": id})
}
