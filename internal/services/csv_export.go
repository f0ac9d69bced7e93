package services

import (
	"bytes"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"

	"churchsite/internal/domain"
)

// csvDateLayout is the date format used in every CSV export.
const csvDateLayout = "2006-01-02 15:04"

type registrationCSVRow struct {
	Name             string `csv:"Name"`
	Email            string `csv:"Email"`
	Phone            string `csv:"Phone"`
	Location         string `csv:"Location"`
	Notes            string `csv:"Notes"`
	Status           string `csv:"Status"`
	RegistrationDate string `csv:"Registration Date"`
}

type attendanceCSVRow struct {
	ServiceDate      string `csv:"Service Date"`
	ServiceType      string `csv:"Service Type"`
	MemberName       string `csv:"Member Name"`
	MemberID         string `csv:"Member ID"`
	Phone            string `csv:"Phone"`
	Email            string `csv:"Email"`
	Address          string `csv:"Address"`
	Age              string `csv:"Age"`
	Gender           string `csv:"Gender"`
	Visitor          string `csv:"Visitor"`
	FirstTimeVisitor string `csv:"First Time Visitor"`
	Notes            string `csv:"Notes"`
	RecordedBy       string `csv:"Recorded By"`
	CreatedAt        string `csv:"Created At"`
}

// registrationsCSV renders registrations in the given order. gocsv quotes fields
// containing commas, quotes or newlines.
func registrationsCSV(regs []*domain.EventRegistration, loc *time.Location) ([]byte, error) {
	rows := make([]*registrationCSVRow, 0, len(regs))
	for _, r := range regs {
		rows = append(rows, &registrationCSVRow{
			Name:             r.FullName,
			Email:            r.Email,
			Phone:            r.PhoneNumber,
			Location:         r.Location,
			Notes:            deref(r.Notes),
			Status:           string(r.Status),
			RegistrationDate: formatCSVDate(r.CreatedAt, loc),
		})
	}
	var buf bytes.Buffer
	if err := gocsv.Marshal(rows, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func attendanceCSV(records []*domain.AttendanceRecord, loc *time.Location) ([]byte, error) {
	rows := make([]*attendanceCSVRow, 0, len(records))
	for _, r := range records {
		row := &attendanceCSVRow{
			ServiceDate:      formatCSVDate(r.ServiceDate, loc),
			ServiceType:      string(r.ServiceType),
			MemberName:       r.MemberName,
			MemberID:         deref(r.MemberID),
			Phone:            deref(r.Phone),
			Email:            deref(r.Email),
			Address:          deref(r.Address),
			Gender:           deref(r.Gender),
			Visitor:          yesNo(r.IsVisitor),
			FirstTimeVisitor: yesNo(r.IsFirstTimeVisitor),
			Notes:            deref(r.Notes),
			RecordedBy:       deref(r.RecordedBy),
			CreatedAt:        formatCSVDate(r.CreatedAt, loc),
		}
		if r.Age != nil {
			row.Age = strconv.Itoa(*r.Age)
		}
		rows = append(rows, row)
	}
	var buf bytes.Buffer
	if err := gocsv.Marshal(rows, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatCSVDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(csvDateLayout)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
