package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"churchsite/internal/domain"
)

const registrationColumns = `id, event_id, full_name, email, phone_number, location, notes, status, created_at, updated_at`

type eventRegistrationRepository struct {
	DB *sql.DB
}

func NewEventRegistrationRepository(db *sql.DB) domain.EventRegistrationRepository {
	return &eventRegistrationRepository{
		DB: db,
	}
}

func scanRegistration(s rowScanner, withTitle bool) (*domain.EventRegistration, error) {
	reg := &domain.EventRegistration{}
	var notes sql.NullString
	dest := []any{&reg.ID, &reg.EventID}
	if withTitle {
		dest = append(dest, &reg.EventTitle)
	}
	dest = append(dest, &reg.FullName, &reg.Email, &reg.PhoneNumber, &reg.Location, &notes, &reg.Status, &reg.CreatedAt, &reg.UpdatedAt)
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}
	reg.Notes = fromNullString(notes)
	return reg, nil
}

// CreateWithinCapacity locks the event row so concurrent submissions for the same event
// serialise on it, then re-checks duplicates and capacity before inserting. The unique
// (event_id, email) index stays the final guard.
func (r *eventRegistrationRepository) CreateWithinCapacity(ctx context.Context, reg *domain.EventRegistration) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin registration: %w", err)
	}

	var isActive bool
	var maxRegs sql.NullInt64
	err = tx.QueryRowContext(ctx, `SELECT is_active, max_registrations FROM events WHERE id = $1 FOR UPDATE`, reg.EventID).
		Scan(&isActive, &maxRegs)
	if err != nil {
		_ = tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("lock event: %w", err)
	}
	if !isActive {
		_ = tx.Rollback()
		return domain.ErrNotFound
	}

	var exists bool
	err = tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM event_registrations WHERE event_id = $1 AND email = $2)`, reg.EventID, reg.Email).
		Scan(&exists)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("check duplicate registration: %w", err)
	}
	if exists {
		_ = tx.Rollback()
		return domain.ErrDuplicateRegistration
	}

	if maxRegs.Valid {
		var count int64
		err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM event_registrations WHERE event_id = $1 AND status <> 'cancelled'`, reg.EventID).
			Scan(&count)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("count registrations: %w", err)
		}
		if count >= maxRegs.Int64 {
			_ = tx.Rollback()
			return domain.ErrCapacityExceeded
		}
	}

	query := `
		INSERT INTO event_registrations (event_id, full_name, email, phone_number, location, notes, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err = tx.QueryRowContext(ctx, query,
		reg.EventID, reg.FullName, reg.Email, reg.PhoneNumber, reg.Location, reg.Notes, string(reg.Status), reg.CreatedAt, reg.UpdatedAt,
	).Scan(&reg.ID)
	if err != nil {
		_ = tx.Rollback()
		switch {
		case isPQCode(err, pqUniqueViolation):
			return domain.ErrDuplicateRegistration
		case isPQCode(err, pqForeignKeyViolation):
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert registration: %w", err)
	}
	if err := tx.Commit(); err != nil {
		if isPQCode(err, pqUniqueViolation) {
			return domain.ErrDuplicateRegistration
		}
		return fmt.Errorf("commit registration: %w", err)
	}
	return nil
}

func (r *eventRegistrationRepository) GetByID(ctx context.Context, id string) (*domain.EventRegistration, error) {
	query := `SELECT ` + registrationColumns + ` FROM event_registrations WHERE id = $1`
	reg, err := scanRegistration(r.DB.QueryRowContext(ctx, query, id), false)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *eventRegistrationRepository) GetByEventAndEmail(ctx context.Context, eventID, email string) (*domain.EventRegistration, error) {
	query := `SELECT ` + registrationColumns + ` FROM event_registrations WHERE event_id = $1 AND email = $2`
	reg, err := scanRegistration(r.DB.QueryRowContext(ctx, query, eventID, email), false)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *eventRegistrationRepository) List(ctx context.Context, filter domain.RegistrationFilter) ([]*domain.EventRegistration, error) {
	var where []string
	var args []any
	if filter.EventID != "" {
		args = append(args, filter.EventID)
		where = append(where, fmt.Sprintf("r.event_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("r.status = $%d", len(args)))
	}
	query := `
		SELECT r.id, r.event_id, e.title, r.full_name, r.email, r.phone_number, r.location, r.notes, r.status, r.created_at, r.updated_at
		FROM event_registrations r
		INNER JOIN events e ON e.id = r.event_id`
	if len(where) > 0 {
		query += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	query += "\n\t\tORDER BY r.created_at DESC"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	regs := make([]*domain.EventRegistration, 0)
	for rows.Next() {
		reg, err := scanRegistration(rows, true)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

func (r *eventRegistrationRepository) ListByEventIDs(ctx context.Context, eventIDs []string) ([]*domain.EventRegistration, error) {
	regs := make([]*domain.EventRegistration, 0)
	if len(eventIDs) == 0 {
		return regs, nil
	}
	query := `
		SELECT ` + registrationColumns + `
		FROM event_registrations
		WHERE event_id = ANY($1)
		ORDER BY created_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(eventIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		reg, err := scanRegistration(rows, false)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

func (r *eventRegistrationRepository) CountActiveByEventIDs(ctx context.Context, eventIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(eventIDs))
	if len(eventIDs) == 0 {
		return counts, nil
	}
	query := `
		SELECT event_id, COUNT(*)
		FROM event_registrations
		WHERE event_id = ANY($1) AND status <> 'cancelled'
		GROUP BY event_id
	`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(eventIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var eventID string
		var n int
		if err := rows.Scan(&eventID, &n); err != nil {
			return nil, err
		}
		counts[eventID] = n
	}
	return counts, rows.Err()
}

func (r *eventRegistrationRepository) UpdateStatus(ctx context.Context, id string, status domain.RegistrationStatus) (*domain.EventRegistration, error) {
	query := `
		UPDATE event_registrations
		SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + registrationColumns
	reg, err := scanRegistration(r.DB.QueryRowContext(ctx, query, string(status), id), false)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}
