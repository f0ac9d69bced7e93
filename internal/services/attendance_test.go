package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"churchsite/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func attendanceInput(date, serviceType, name string) domain.AttendanceInput {
	return domain.AttendanceInput{
		ServiceDate: strPtr(date),
		ServiceType: strPtr(serviceType),
		MemberName:  strPtr(name),
	}
}

func TestAttendanceService_CreateRecord(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		input      domain.AttendanceInput
		wantFields []string
		check      func(t *testing.T, rec *domain.AttendanceRecord)
	}{
		{
			name: "optional fields normalised",
			input: domain.AttendanceInput{
				ServiceDate: strPtr("2025-03-02T09:00"),
				ServiceType: strPtr("sunday_service"),
				MemberName:  strPtr(" John Doe "),
				Phone:       strPtr("  "),
				Email:       strPtr(" John@Example.com "),
				Age:         strPtr("thirty"),
				Gender:      strPtr("Male"),
				IsVisitor:   boolPtr(true),
			},
			check: func(t *testing.T, rec *domain.AttendanceRecord) {
				assert.Equal(t, "John Doe", rec.MemberName)
				assert.Nil(t, rec.Phone)
				assert.Nil(t, rec.Age)
				assert.Equal(t, "john@example.com", *rec.Email)
				assert.Equal(t, "male", *rec.Gender)
				assert.True(t, rec.IsVisitor)
				assert.Equal(t, time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC), rec.ServiceDate)
			},
		},
		{
			name: "numeric age",
			input: func() domain.AttendanceInput {
				in := attendanceInput("2025-03-02", "youth_service", "Ada")
				in.Age = strPtr("17")
				return in
			}(),
			check: func(t *testing.T, rec *domain.AttendanceRecord) {
				require.NotNil(t, rec.Age)
				assert.Equal(t, 17, *rec.Age)
			},
		},
		{
			name:       "required fields",
			input:      domain.AttendanceInput{},
			wantFields: []string{"serviceDate", "serviceType", "memberName"},
		},
		{
			name:       "blank required fields",
			input:      attendanceInput(" ", "", "  "),
			wantFields: []string{"serviceDate", "serviceType", "memberName"},
		},
		{
			name: "unknown service type and gender",
			input: func() domain.AttendanceInput {
				in := attendanceInput("2025-03-02", "concert", "X")
				in.Gender = strPtr("robot")
				return in
			}(),
			wantFields: []string{"serviceType", "gender"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeAttendanceRepo()
			svc := NewAttendanceService(repo, time.Second, time.UTC)
			rec, err := svc.CreateRecord(ctx, tt.input)
			if tt.wantFields != nil {
				var verr *domain.ValidationError
				require.True(t, errors.As(err, &verr))
				got := make([]string, 0)
				for _, f := range verr.Fields {
					got = append(got, f.Field)
				}
				assert.ElementsMatch(t, tt.wantFields, got)
				assert.Empty(t, repo.byID)
				return
			}
			require.NoError(t, err)
			require.NotEmpty(t, rec.ID)
			tt.check(t, rec)
		})
	}
}

func TestAttendanceService_UpdateRecord_partial(t *testing.T) {
	ctx := context.Background()
	repo := newFakeAttendanceRepo()
	svc := NewAttendanceService(repo, time.Second, time.UTC)

	in := attendanceInput("2025-03-02", "sunday_service", "John")
	in.Phone = strPtr("0800")
	rec, err := svc.CreateRecord(ctx, in)
	require.NoError(t, err)

	updated, err := svc.UpdateRecord(ctx, rec.ID, domain.AttendanceInput{Notes: strPtr("arrived late"), IsFirstTimeVisitor: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, "John", updated.MemberName)
	assert.Equal(t, "0800", *updated.Phone)
	assert.Equal(t, "arrived late", *updated.Notes)
	assert.True(t, updated.IsFirstTimeVisitor)
	assert.Equal(t, domain.ServiceSunday, updated.ServiceType)

	cleared, err := svc.UpdateRecord(ctx, rec.ID, domain.AttendanceInput{Phone: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, cleared.Phone)

	_, err = svc.UpdateRecord(ctx, rec.ID, domain.AttendanceInput{MemberName: strPtr(" ")})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.UpdateRecord(ctx, "att-404", domain.AttendanceInput{})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAttendanceService_DeleteRecord(t *testing.T) {
	ctx := context.Background()
	repo := newFakeAttendanceRepo()
	svc := NewAttendanceService(repo, time.Second, time.UTC)

	rec, err := svc.CreateRecord(ctx, attendanceInput("2025-03-02", "sunday_service", "John"))
	require.NoError(t, err)
	require.NoError(t, svc.DeleteRecord(ctx, rec.ID))
	require.ErrorIs(t, svc.DeleteRecord(ctx, rec.ID), domain.ErrNotFound)
}

func TestAttendanceService_ListRecords_pagination(t *testing.T) {
	ctx := context.Background()
	repo := newFakeAttendanceRepo()
	svc := NewAttendanceService(repo, time.Second, time.UTC)
	base := time.Date(2025, 1, 5, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 125; i++ {
		date := base.Add(time.Duration(i) * time.Hour).Format(time.RFC3339)
		_, err := svc.CreateRecord(ctx, attendanceInput(date, "sunday_service", fmt.Sprintf("Member %d", i)))
		require.NoError(t, err)
	}

	tests := []struct {
		page      int
		wantCount int
	}{
		{page: 1, wantCount: 50},
		{page: 2, wantCount: 50},
		{page: 3, wantCount: 25},
		{page: 4, wantCount: 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("page %d", tt.page), func(t *testing.T) {
			res, err := svc.ListRecords(ctx, domain.AttendanceFilter{}, domain.PaginationParams{Page: tt.page, Limit: 50})
			require.NoError(t, err)
			assert.Len(t, res.Records, tt.wantCount)
			assert.Equal(t, domain.Pagination{Page: tt.page, Limit: 50, Total: 125, Pages: 3}, res.Pagination)
		})
	}

	res, err := svc.ListRecords(ctx, domain.AttendanceFilter{}, domain.PaginationParams{Page: 1, Limit: 50})
	require.NoError(t, err)
	assert.True(t, res.Records[0].ServiceDate.After(res.Records[1].ServiceDate), "service date descending")

	res, err = svc.ListRecords(ctx, domain.AttendanceFilter{}, domain.PaginationParams{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pagination.Page)
	assert.Equal(t, DefaultAttendanceLimit, res.Pagination.Limit)

	res, err = svc.ListRecords(ctx, domain.AttendanceFilter{}, domain.PaginationParams{Page: 1, Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, MaxAttendanceLimit, res.Pagination.Limit)
	assert.Len(t, res.Records, 125)
}

func TestAttendanceService_ListRecords_filters(t *testing.T) {
	ctx := context.Background()
	repo := newFakeAttendanceRepo()
	svc := NewAttendanceService(repo, time.Second, time.UTC)

	seed := []struct {
		date, typ, name string
		visitor         bool
	}{
		{"2025-03-02T08:00:00Z", "sunday_service", "John Smith", false},
		{"2025-03-02T23:59:00Z", "sunday_service", "Mary Johnson", true},
		{"2025-03-03T00:00:00Z", "sunday_service", "Peter Pan", false},
		{"2025-03-05T18:00:00Z", "midweek_service", "john doe", true},
	}
	for _, s := range seed {
		in := attendanceInput(s.date, s.typ, s.name)
		in.IsVisitor = boolPtr(s.visitor)
		_, err := svc.CreateRecord(ctx, in)
		require.NoError(t, err)
	}

	day := time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		filter    domain.AttendanceFilter
		wantNames []string
	}{
		{name: "calendar day", filter: domain.AttendanceFilter{ServiceDate: &day}, wantNames: []string{"Mary Johnson", "John Smith"}},
		{name: "service type", filter: domain.AttendanceFilter{ServiceType: domain.ServiceMidweek}, wantNames: []string{"john doe"}},
		{name: "name substring case-insensitive", filter: domain.AttendanceFilter{MemberName: "JOHN"}, wantNames: []string{"john doe", "Mary Johnson", "John Smith"}},
		{name: "visitors", filter: domain.AttendanceFilter{IsVisitor: boolPtr(true)}, wantNames: []string{"john doe", "Mary Johnson"}},
		{name: "combined", filter: domain.AttendanceFilter{ServiceDate: &day, IsVisitor: boolPtr(false)}, wantNames: []string{"John Smith"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.ListRecords(ctx, tt.filter, domain.PaginationParams{Page: 1, Limit: 50})
			require.NoError(t, err)
			got := make([]string, 0, len(res.Records))
			for _, r := range res.Records {
				got = append(got, r.MemberName)
			}
			assert.Equal(t, tt.wantNames, got)
			assert.Equal(t, len(tt.wantNames), res.Pagination.Total)
		})
	}
}

func TestAttendanceService_dayFollowsConfiguredZone(t *testing.T) {
	ctx := context.Background()
	repo := newFakeAttendanceRepo()
	wat := time.FixedZone("WAT", 60*60)
	svc := NewAttendanceService(repo, time.Second, wat)

	// 23:30 UTC on the 1st is 00:30 on the 2nd in WAT.
	_, err := svc.CreateRecord(ctx, attendanceInput("2025-03-01T23:30:00Z", "sunday_service", "Night Owl"))
	require.NoError(t, err)

	day := time.Date(2025, 3, 2, 0, 0, 0, 0, wat)
	res, err := svc.ListRecords(ctx, domain.AttendanceFilter{ServiceDate: &day}, domain.PaginationParams{})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
}

func TestAttendanceService_SummarizeAndExport(t *testing.T) {
	ctx := context.Background()
	repo := newFakeAttendanceRepo()
	svc := NewAttendanceService(repo, time.Second, time.UTC)

	member := attendanceInput("2025-03-02T09:00:00Z", "sunday_service", "Smith, John")
	member.Notes = strPtr(`said "amen", twice`)
	member.Age = strPtr("40")
	_, err := svc.CreateRecord(ctx, member)
	require.NoError(t, err)
	visitor := attendanceInput("2025-03-02T10:00:00Z", "sunday_service", "Mary")
	visitor.IsVisitor = boolPtr(true)
	visitor.IsFirstTimeVisitor = boolPtr(true)
	_, err = svc.CreateRecord(ctx, visitor)
	require.NoError(t, err)

	summary, err := svc.Summarize(ctx, domain.AttendanceFilter{})
	require.NoError(t, err)
	assert.Equal(t, &domain.AttendanceSummary{Total: 2, Members: 1, Visitors: 1, FirstTimeVisitors: 1}, summary)

	out, err := svc.ExportRecords(ctx, domain.AttendanceFilter{})
	require.NoError(t, err)
	rows, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Service Date", "Service Type", "Member Name", "Member ID", "Phone", "Email", "Address", "Age", "Gender", "Visitor", "First Time Visitor", "Notes", "Recorded By", "Created At"}, rows[0])
	assert.Equal(t, "Mary", rows[1][2])
	assert.Equal(t, "Yes", rows[1][9])
	assert.Equal(t, "Smith, John", rows[2][2])
	assert.Equal(t, "40", rows[2][7])
	assert.Equal(t, `said "amen", twice`, rows[2][11])
	assert.Equal(t, "2025-03-02 09:00", rows[2][0])
}
