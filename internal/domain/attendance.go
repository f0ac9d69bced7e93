package domain

import (
	"context"
	"time"
)

// ServiceType enumerates the kinds of services attendance is recorded for.
type ServiceType string

const (
	ServiceSunday    ServiceType = "sunday_service"
	ServiceMidweek   ServiceType = "midweek_service"
	ServicePrayer    ServiceType = "prayer_meeting"
	ServiceYouth     ServiceType = "youth_service"
	ServiceSpecial   ServiceType = "special_service"
	ServiceTypeOther ServiceType = "other"
)

// ServiceTypes lists every accepted service type in display order.
var ServiceTypes = []ServiceType{ServiceSunday, ServiceMidweek, ServicePrayer, ServiceYouth, ServiceSpecial, ServiceTypeOther}

// ParseServiceType reports whether s names a known service type.
func ParseServiceType(s string) (ServiceType, bool) {
	for _, st := range ServiceTypes {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// AttendanceRecord logs one person's presence at a service.
// swagger:model AttendanceRecord
type AttendanceRecord struct {
	ID                 string      `json:"id"`
	ServiceDate        time.Time   `json:"serviceDate"`
	ServiceType        ServiceType `json:"serviceType"`
	MemberName         string      `json:"memberName"`
	MemberID           *string     `json:"memberId"`
	Phone              *string     `json:"phone"`
	Email              *string     `json:"email"`
	Address            *string     `json:"address"`
	Age                *int        `json:"age"`
	Gender             *string     `json:"gender"`
	IsVisitor          bool        `json:"isVisitor"`
	IsFirstTimeVisitor bool        `json:"isFirstTimeVisitor"`
	Notes              *string     `json:"notes"`
	RecordedBy         *string     `json:"recordedBy"`
	CreatedAt          time.Time   `json:"createdAt"`
	UpdatedAt          time.Time   `json:"updatedAt"`
}

// AttendanceInput carries form values for create (all fields) and partial update (nil = unchanged).
// Age is kept as text: blank or non-numeric means no age.
type AttendanceInput struct {
	ServiceDate        *string
	ServiceType        *string
	MemberName         *string
	MemberID           *string
	Phone              *string
	Email              *string
	Address            *string
	Age                *string
	Gender             *string
	IsVisitor          *bool
	IsFirstTimeVisitor *bool
	Notes              *string
	RecordedBy         *string
}

// AttendanceFilter narrows attendance queries. Nil/zero fields mean "any".
type AttendanceFilter struct {
	// ServiceDate selects the whole calendar day containing it.
	ServiceDate *time.Time
	ServiceType ServiceType
	// MemberName matches as a case-insensitive substring.
	MemberName string
	IsVisitor  *bool
}

// AttendancePage is one page of records plus pagination metadata.
// swagger:model AttendancePage
type AttendancePage struct {
	Records    []*AttendanceRecord `json:"records"`
	Pagination Pagination          `json:"pagination"`
}

// AttendanceSummary aggregates records matching a filter.
// swagger:model AttendanceSummary
type AttendanceSummary struct {
	Total             int `json:"total"`
	Members           int `json:"members"`
	Visitors          int `json:"visitors"`
	FirstTimeVisitors int `json:"firstTimeVisitors"`
}

// AttendanceRepository defines storage for attendance records.
type AttendanceRepository interface {
	Create(ctx context.Context, rec *AttendanceRecord) error
	GetByID(ctx context.Context, id string) (*AttendanceRecord, error)
	Update(ctx context.Context, rec *AttendanceRecord) error
	Delete(ctx context.Context, id string) error
	// List returns matching records ordered by service date descending.
	// A nil page returns every matching record.
	List(ctx context.Context, filter AttendanceFilter, page *PaginationParams) ([]*AttendanceRecord, error)
	Count(ctx context.Context, filter AttendanceFilter) (int, error)
	Summarize(ctx context.Context, filter AttendanceFilter) (*AttendanceSummary, error)
}

// AttendanceService is the attendance registry.
type AttendanceService interface {
	CreateRecord(ctx context.Context, input AttendanceInput) (*AttendanceRecord, error)
	UpdateRecord(ctx context.Context, id string, input AttendanceInput) (*AttendanceRecord, error)
	DeleteRecord(ctx context.Context, id string) error
	ListRecords(ctx context.Context, filter AttendanceFilter, page PaginationParams) (*AttendancePage, error)
	Summarize(ctx context.Context, filter AttendanceFilter) (*AttendanceSummary, error)
	ExportRecords(ctx context.Context, filter AttendanceFilter) ([]byte, error)
}
