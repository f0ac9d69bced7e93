package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"churchsite/internal/delivery/http/helpers"
	"churchsite/internal/delivery/http/middleware"
	"churchsite/internal/domain"

	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const (
	eventID1 = "6f1c2f9e-8f8a-4d5b-9a55-3d8f0f0a1b2c"
	regID1   = "0b9a3c7e-1d2f-4a5b-8c9d-0e1f2a3b4c5d"
	adminID1 = "a1a1a1a1-b2b2-4c3c-8d4d-e5e5e5e5e5e5"
)

func newRequest(method, target, body string) *http.Request {
	var rdr io.Reader
	if body != "" {
		rdr = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func asAdmin(req *http.Request) *http.Request {
	return req.WithContext(middleware.SetAdminID(req.Context(), adminID1))
}

// decodeEnvelope decodes the response envelope and, when dest is non-nil, its data.
func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, dest any) helpers.APIResponse {
	t.Helper()
	var envelope helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope), "response must be valid JSON envelope")
	if dest != nil {
		require.Nil(t, envelope.Error, "success response must have error nil")
		raw, err := json.Marshal(envelope.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, dest))
	}
	return envelope
}

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	err             error
	events          []*domain.EventWithRegistrations
	publicEvents    []*domain.PublicEvent
	event           *domain.Event
	removed         int
	csv             []byte
	reg             *domain.EventRegistration
	lastInput       domain.EventInput
	lastID          string
	lastStatus      string
	adminListCalled bool
}

func (f *fakeEventService) CreateEvent(ctx context.Context, input domain.EventInput) (*domain.Event, error) {
	f.lastInput = input
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Event{ID: eventID1, Title: input.Title}, nil
}

func (f *fakeEventService) UpdateEvent(ctx context.Context, id string, input domain.EventInput) (*domain.Event, error) {
	f.lastID, f.lastInput = id, input
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Event{ID: id, Title: input.Title}, nil
}

func (f *fakeEventService) DeleteEvent(ctx context.Context, id string) (int, error) {
	f.lastID = id
	return f.removed, f.err
}

func (f *fakeEventService) ListEvents(ctx context.Context) ([]*domain.EventWithRegistrations, error) {
	f.adminListCalled = true
	return f.events, f.err
}

func (f *fakeEventService) ListPublicEvents(ctx context.Context) ([]*domain.PublicEvent, error) {
	return f.publicEvents, f.err
}

func (f *fakeEventService) GetEvent(ctx context.Context, id string) (*domain.EventWithRegistrations, error) {
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	return &domain.EventWithRegistrations{Event: f.event, Registrations: []*domain.EventRegistration{}}, nil
}

func (f *fakeEventService) GetPublicEvent(ctx context.Context, id string) (*domain.PublicEvent, error) {
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	return domain.NewPublicEvent(f.event, 0), nil
}

func (f *fakeEventService) SetRegistrationStatus(ctx context.Context, id, status string) (*domain.EventRegistration, error) {
	f.lastID, f.lastStatus = id, status
	if f.err != nil {
		return nil, f.err
	}
	return &domain.EventRegistration{ID: id, Status: domain.RegistrationStatus(status)}, nil
}

func (f *fakeEventService) ExportRegistrations(ctx context.Context, eventID string) ([]byte, error) {
	f.lastID = eventID
	return f.csv, f.err
}

// fakeRegistrationService implements domain.RegistrationService for handler tests.
type fakeRegistrationService struct {
	err        error
	lastInput  domain.RegistrationInput
	lastFilter domain.RegistrationFilter
	regs       []*domain.EventRegistration
	called     bool
}

func (f *fakeRegistrationService) SubmitRegistration(ctx context.Context, input domain.RegistrationInput) (*domain.EventRegistration, error) {
	f.called = true
	f.lastInput = input
	if f.err != nil {
		return nil, f.err
	}
	return &domain.EventRegistration{ID: regID1, EventID: input.EventID, FullName: input.FullName, Email: input.Email, Status: domain.StatusPending}, nil
}

func (f *fakeRegistrationService) ListRegistrations(ctx context.Context, filter domain.RegistrationFilter) ([]*domain.EventRegistration, error) {
	f.lastFilter = filter
	return f.regs, f.err
}

// fakeAttendanceService implements domain.AttendanceService for handler tests.
type fakeAttendanceService struct {
	err        error
	lastInput  domain.AttendanceInput
	lastID     string
	lastFilter domain.AttendanceFilter
	lastPage   domain.PaginationParams
	called     bool
}

func (f *fakeAttendanceService) CreateRecord(ctx context.Context, input domain.AttendanceInput) (*domain.AttendanceRecord, error) {
	f.lastInput = input
	if f.err != nil {
		return nil, f.err
	}
	return &domain.AttendanceRecord{ID: regID1, MemberName: *input.MemberName}, nil
}

func (f *fakeAttendanceService) UpdateRecord(ctx context.Context, id string, input domain.AttendanceInput) (*domain.AttendanceRecord, error) {
	f.lastID, f.lastInput = id, input
	if f.err != nil {
		return nil, f.err
	}
	return &domain.AttendanceRecord{ID: id}, nil
}

func (f *fakeAttendanceService) DeleteRecord(ctx context.Context, id string) error {
	f.lastID = id
	return f.err
}

func (f *fakeAttendanceService) ListRecords(ctx context.Context, filter domain.AttendanceFilter, page domain.PaginationParams) (*domain.AttendancePage, error) {
	f.called = true
	f.lastFilter, f.lastPage = filter, page
	if f.err != nil {
		return nil, f.err
	}
	return &domain.AttendancePage{Records: []*domain.AttendanceRecord{}, Pagination: domain.NewPagination(domain.PaginationParams{Page: 1, Limit: 50}, 0)}, nil
}

func (f *fakeAttendanceService) Summarize(ctx context.Context, filter domain.AttendanceFilter) (*domain.AttendanceSummary, error) {
	f.called = true
	f.lastFilter = filter
	if f.err != nil {
		return nil, f.err
	}
	return &domain.AttendanceSummary{Total: 3, Members: 2, Visitors: 1}, nil
}

func (f *fakeAttendanceService) ExportRecords(ctx context.Context, filter domain.AttendanceFilter) ([]byte, error) {
	f.called = true
	f.lastFilter = filter
	if f.err != nil {
		return nil, f.err
	}
	return []byte("Service Date,Service Type\n"), nil
}
