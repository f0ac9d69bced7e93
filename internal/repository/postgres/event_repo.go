package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"churchsite/internal/domain"
)

const eventColumns = `id, title, description, date, location, image_url, drive_link, is_active, max_registrations, created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func scanEvent(s rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var desc, loc, img, drive sql.NullString
	var maxRegs sql.NullInt64
	if err := s.Scan(&e.ID, &e.Title, &desc, &e.Date, &loc, &img, &drive, &e.IsActive, &maxRegs, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.Description = fromNullString(desc)
	e.Location = fromNullString(loc)
	e.ImageURL = fromNullString(img)
	e.DriveLink = fromNullString(drive)
	e.MaxRegistrations = fromNullInt(maxRegs)
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, description, date, location, image_url, drive_link, is_active, max_registrations, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Title, e.Description, e.Date, e.Location, e.ImageURL, e.DriveLink, e.IsActive, e.MaxRegistrations, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events
		SET title = $1, description = $2, date = $3, location = $4, image_url = $5, drive_link = $6,
		    is_active = $7, max_registrations = $8, updated_at = $9
		WHERE id = $10
		RETURNING created_at
	`
	err := r.DB.QueryRowContext(ctx, query,
		e.Title, e.Description, e.Date, e.Location, e.ImageURL, e.DriveLink, e.IsActive, e.MaxRegistrations, e.UpdatedAt, e.ID,
	).Scan(&e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

// Delete removes the event's registrations and then the event in one transaction.
// The foreign key also cascades; deleting explicitly lets us report the count.
func (r *eventRepository) Delete(ctx context.Context, id string) (int, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin delete event: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM event_registrations WHERE event_id = $1`, id)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("delete registrations: %w", err)
	}
	removed, _ := res.RowsAffected()

	res, err = tx.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("delete event: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		_ = tx.Rollback()
		return 0, domain.ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit delete event: %w", err)
	}
	return int(removed), nil
}

func (r *eventRepository) List(ctx context.Context, activeOnly bool) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY date DESC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
