package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"churchsite/internal/domain"
)

const attendanceColumns = `id, service_date, service_type, member_name, member_id, phone, email, address, age, gender, is_visitor, is_first_time_visitor, notes, recorded_by, created_at, updated_at`

type attendanceRepository struct {
	DB *sql.DB
}

func NewAttendanceRepository(db *sql.DB) domain.AttendanceRepository {
	return &attendanceRepository{
		DB: db,
	}
}

func scanAttendance(s rowScanner) (*domain.AttendanceRecord, error) {
	rec := &domain.AttendanceRecord{}
	var memberID, phone, email, address, gender, notes, recordedBy sql.NullString
	var age sql.NullInt64
	err := s.Scan(&rec.ID, &rec.ServiceDate, &rec.ServiceType, &rec.MemberName, &memberID, &phone, &email, &address,
		&age, &gender, &rec.IsVisitor, &rec.IsFirstTimeVisitor, &notes, &recordedBy, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	rec.MemberID = fromNullString(memberID)
	rec.Phone = fromNullString(phone)
	rec.Email = fromNullString(email)
	rec.Address = fromNullString(address)
	rec.Age = fromNullInt(age)
	rec.Gender = fromNullString(gender)
	rec.Notes = fromNullString(notes)
	rec.RecordedBy = fromNullString(recordedBy)
	return rec, nil
}

// escapeLike escapes LIKE metacharacters so user input matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// attendanceWhere builds the WHERE clause and its positional args for filter.
func attendanceWhere(filter domain.AttendanceFilter) (string, []any) {
	var conds []string
	var args []any
	if filter.ServiceDate != nil {
		start, end := domain.DayBounds(*filter.ServiceDate, filter.ServiceDate.Location())
		args = append(args, start, end)
		conds = append(conds, fmt.Sprintf("service_date >= $%d AND service_date < $%d", len(args)-1, len(args)))
	}
	if filter.ServiceType != "" {
		args = append(args, string(filter.ServiceType))
		conds = append(conds, fmt.Sprintf("service_type = $%d", len(args)))
	}
	if name := strings.TrimSpace(filter.MemberName); name != "" {
		args = append(args, "%"+escapeLike(name)+"%")
		conds = append(conds, fmt.Sprintf("member_name ILIKE $%d", len(args)))
	}
	if filter.IsVisitor != nil {
		args = append(args, *filter.IsVisitor)
		conds = append(conds, fmt.Sprintf("is_visitor = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *attendanceRepository) Create(ctx context.Context, rec *domain.AttendanceRecord) error {
	query := `
		INSERT INTO attendance_records (service_date, service_type, member_name, member_id, phone, email, address, age, gender,
			is_visitor, is_first_time_visitor, notes, recorded_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		rec.ServiceDate, string(rec.ServiceType), rec.MemberName, rec.MemberID, rec.Phone, rec.Email, rec.Address, rec.Age, rec.Gender,
		rec.IsVisitor, rec.IsFirstTimeVisitor, rec.Notes, rec.RecordedBy, rec.CreatedAt, rec.UpdatedAt,
	).Scan(&rec.ID)
}

func (r *attendanceRepository) GetByID(ctx context.Context, id string) (*domain.AttendanceRecord, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendance_records WHERE id = $1`
	rec, err := scanAttendance(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (r *attendanceRepository) Update(ctx context.Context, rec *domain.AttendanceRecord) error {
	query := `
		UPDATE attendance_records
		SET service_date = $1, service_type = $2, member_name = $3, member_id = $4, phone = $5, email = $6, address = $7,
		    age = $8, gender = $9, is_visitor = $10, is_first_time_visitor = $11, notes = $12, recorded_by = $13, updated_at = $14
		WHERE id = $15
	`
	res, err := r.DB.ExecContext(ctx, query,
		rec.ServiceDate, string(rec.ServiceType), rec.MemberName, rec.MemberID, rec.Phone, rec.Email, rec.Address,
		rec.Age, rec.Gender, rec.IsVisitor, rec.IsFirstTimeVisitor, rec.Notes, rec.RecordedBy, rec.UpdatedAt, rec.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *attendanceRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM attendance_records WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *attendanceRepository) List(ctx context.Context, filter domain.AttendanceFilter, page *domain.PaginationParams) ([]*domain.AttendanceRecord, error) {
	where, args := attendanceWhere(filter)
	query := `SELECT ` + attendanceColumns + ` FROM attendance_records` + where + ` ORDER BY service_date DESC, created_at DESC`
	if page != nil {
		args = append(args, page.Limit, page.Offset())
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	records := make([]*domain.AttendanceRecord, 0)
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *attendanceRepository) Count(ctx context.Context, filter domain.AttendanceFilter) (int, error) {
	where, args := attendanceWhere(filter)
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM attendance_records`+where, args...).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (r *attendanceRepository) Summarize(ctx context.Context, filter domain.AttendanceFilter) (*domain.AttendanceSummary, error) {
	where, args := attendanceWhere(filter)
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE NOT is_visitor),
		       COUNT(*) FILTER (WHERE is_visitor),
		       COUNT(*) FILTER (WHERE is_first_time_visitor)
		FROM attendance_records` + where
	s := &domain.AttendanceSummary{}
	if err := r.DB.QueryRowContext(ctx, query, args...).Scan(&s.Total, &s.Members, &s.Visitors, &s.FirstTimeVisitors); err != nil {
		return nil, err
	}
	return s, nil
}
