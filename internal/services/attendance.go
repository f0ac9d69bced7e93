package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"churchsite/internal/domain"
)

// Attendance list paging bounds.
const (
	DefaultAttendanceLimit = 50
	MaxAttendanceLimit     = 200
)

type attendanceService struct {
	repo           domain.AttendanceRepository
	contextTimeout time.Duration
	loc            *time.Location
	now            func() time.Time
}

// NewAttendanceService returns the attendance registry. loc decides calendar days.
func NewAttendanceService(repo domain.AttendanceRepository, timeout time.Duration, loc *time.Location) domain.AttendanceService {
	if loc == nil {
		loc = time.UTC
	}
	return &attendanceService{
		repo:           repo,
		contextTimeout: timeout,
		loc:            loc,
		now:            time.Now,
	}
}

// applyAttendanceInput copies the non-nil fields of input onto rec and validates the result.
func (s *attendanceService) applyAttendanceInput(rec *domain.AttendanceRecord, input domain.AttendanceInput) error {
	verr := &domain.ValidationError{}

	if input.ServiceDate != nil {
		d, ok := domain.ParseDate(*input.ServiceDate, s.loc)
		switch {
		case strings.TrimSpace(*input.ServiceDate) == "":
			verr.Add("serviceDate", "is required")
		case !ok:
			verr.Add("serviceDate", "must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
		default:
			rec.ServiceDate = d
		}
	}
	if input.ServiceType != nil {
		raw := strings.TrimSpace(*input.ServiceType)
		st, ok := domain.ParseServiceType(raw)
		switch {
		case raw == "":
			verr.Add("serviceType", "is required")
		case !ok:
			verr.Add("serviceType", "is not a known service type")
		default:
			rec.ServiceType = st
		}
	}
	if input.MemberName != nil {
		rec.MemberName = strings.TrimSpace(*input.MemberName)
	}
	if input.MemberID != nil {
		rec.MemberID = domain.NormalizeOptional(input.MemberID)
	}
	if input.Phone != nil {
		rec.Phone = domain.NormalizeOptional(input.Phone)
	}
	if input.Email != nil {
		rec.Email = domain.NormalizeOptional(input.Email)
		if rec.Email != nil {
			e := domain.NormalizeEmail(*rec.Email)
			rec.Email = &e
			validEmail(verr, "email", e)
		}
	}
	if input.Address != nil {
		rec.Address = domain.NormalizeOptional(input.Address)
	}
	if input.Age != nil {
		rec.Age = domain.OptionalInt(*input.Age)
		if rec.Age != nil && *rec.Age < 0 {
			verr.Add("age", "must not be negative")
		}
	}
	if input.Gender != nil {
		rec.Gender = domain.NormalizeOptional(input.Gender)
		if rec.Gender != nil {
			g := strings.ToLower(*rec.Gender)
			if g != "male" && g != "female" {
				verr.Add("gender", "must be male, female or empty")
			}
			rec.Gender = &g
		}
	}
	if input.IsVisitor != nil {
		rec.IsVisitor = *input.IsVisitor
	}
	if input.IsFirstTimeVisitor != nil {
		rec.IsFirstTimeVisitor = *input.IsFirstTimeVisitor
	}
	if input.Notes != nil {
		rec.Notes = domain.NormalizeOptional(input.Notes)
	}
	if input.RecordedBy != nil {
		rec.RecordedBy = domain.NormalizeOptional(input.RecordedBy)
	}

	if rec.ServiceDate.IsZero() && input.ServiceDate == nil {
		verr.Add("serviceDate", "is required")
	}
	if rec.ServiceType == "" && input.ServiceType == nil {
		verr.Add("serviceType", "is required")
	}
	if rec.MemberName == "" {
		verr.Add("memberName", "is required")
	}
	return verr.OrNil()
}

func (s *attendanceService) CreateRecord(ctx context.Context, input domain.AttendanceInput) (*domain.AttendanceRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	rec := &domain.AttendanceRecord{}
	if err := s.applyAttendanceInput(rec, input); err != nil {
		return nil, err
	}
	now := s.now()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("create attendance record: %w", err)
	}
	return rec, nil
}

// UpdateRecord applies a partial update: nil input fields keep their stored value.
func (s *attendanceService) UpdateRecord(ctx context.Context, id string, input domain.AttendanceInput) (*domain.AttendanceRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update attendance record: get record: %w", err)
	}
	if err := s.applyAttendanceInput(rec, input); err != nil {
		return nil, err
	}
	rec.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, rec); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update attendance record: %w", err)
	}
	return rec, nil
}

func (s *attendanceService) DeleteRecord(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete attendance record: %w", err)
	}
	return nil
}

// NormalizeAttendancePage applies the default and maximum page size.
func NormalizeAttendancePage(p domain.PaginationParams) domain.PaginationParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultAttendanceLimit
	}
	if p.Limit > MaxAttendanceLimit {
		p.Limit = MaxAttendanceLimit
	}
	return p
}

// localizeFilter pins the date filter to the configured time zone so the day bounds follow it.
func (s *attendanceService) localizeFilter(filter domain.AttendanceFilter) domain.AttendanceFilter {
	if filter.ServiceDate != nil {
		d := filter.ServiceDate.In(s.loc)
		filter.ServiceDate = &d
	}
	return filter
}

func (s *attendanceService) ListRecords(ctx context.Context, filter domain.AttendanceFilter, page domain.PaginationParams) (*domain.AttendancePage, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	filter = s.localizeFilter(filter)
	page = NormalizeAttendancePage(page)
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list attendance records: count: %w", err)
	}
	records, err := s.repo.List(ctx, filter, &page)
	if err != nil {
		return nil, fmt.Errorf("list attendance records: %w", err)
	}
	return &domain.AttendancePage{
		Records:    records,
		Pagination: domain.NewPagination(page, total),
	}, nil
}

func (s *attendanceService) Summarize(ctx context.Context, filter domain.AttendanceFilter) (*domain.AttendanceSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	summary, err := s.repo.Summarize(ctx, s.localizeFilter(filter))
	if err != nil {
		return nil, fmt.Errorf("summarize attendance: %w", err)
	}
	return summary, nil
}

// ExportRecords renders every record matching filter, in list order, as CSV.
func (s *attendanceService) ExportRecords(ctx context.Context, filter domain.AttendanceFilter) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	records, err := s.repo.List(ctx, s.localizeFilter(filter), nil)
	if err != nil {
		return nil, fmt.Errorf("export attendance: %w", err)
	}
	out, err := attendanceCSV(records, s.loc)
	if err != nil {
		return nil, fmt.Errorf("export attendance: encode csv: %w", err)
	}
	return out, nil
}
