package postgres

import (
	"context"
	"database/sql"
	"errors"

	"churchsite/internal/domain"
)

const pastorColumns = `id, name, title, bio, image_url, email, phone, sort_order, is_active, created_at, updated_at`

type pastorRepository struct {
	DB *sql.DB
}

func NewPastorRepository(db *sql.DB) domain.PastorRepository {
	return &pastorRepository{
		DB: db,
	}
}

func scanPastor(s rowScanner) (*domain.Pastor, error) {
	p := &domain.Pastor{}
	var title, bio, img, email, phone sql.NullString
	if err := s.Scan(&p.ID, &p.Name, &title, &bio, &img, &email, &phone, &p.SortOrder, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Title = fromNullString(title)
	p.Bio = fromNullString(bio)
	p.ImageURL = fromNullString(img)
	p.Email = fromNullString(email)
	p.Phone = fromNullString(phone)
	return p, nil
}

func (r *pastorRepository) Create(ctx context.Context, p *domain.Pastor) error {
	query := `
		INSERT INTO pastors (name, title, bio, image_url, email, phone, sort_order, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		p.Name, p.Title, p.Bio, p.ImageURL, p.Email, p.Phone, p.SortOrder, p.IsActive, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
}

func (r *pastorRepository) GetByID(ctx context.Context, id string) (*domain.Pastor, error) {
	p, err := scanPastor(r.DB.QueryRowContext(ctx, `SELECT `+pastorColumns+` FROM pastors WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *pastorRepository) Update(ctx context.Context, p *domain.Pastor) error {
	query := `
		UPDATE pastors
		SET name = $1, title = $2, bio = $3, image_url = $4, email = $5, phone = $6, sort_order = $7, is_active = $8, updated_at = $9
		WHERE id = $10
	`
	res, err := r.DB.ExecContext(ctx, query,
		p.Name, p.Title, p.Bio, p.ImageURL, p.Email, p.Phone, p.SortOrder, p.IsActive, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *pastorRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM pastors WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *pastorRepository) List(ctx context.Context, activeOnly bool) ([]*domain.Pastor, error) {
	query := `SELECT ` + pastorColumns + ` FROM pastors`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY sort_order ASC, name ASC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	pastors := make([]*domain.Pastor, 0)
	for rows.Next() {
		p, err := scanPastor(rows)
		if err != nil {
			return nil, err
		}
		pastors = append(pastors, p)
	}
	return pastors, rows.Err()
}
