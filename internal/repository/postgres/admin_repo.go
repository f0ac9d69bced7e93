package postgres

import (
	"context"
	"database/sql"
	"errors"

	"churchsite/internal/domain"
)

type adminRepository struct {
	DB *sql.DB
}

func NewAdminRepository(db *sql.DB) domain.AdminRepository {
	return &adminRepository{DB: db}
}

func (r *adminRepository) Create(ctx context.Context, a *domain.AdminUser) error {
	query := `
		INSERT INTO admin_users (email, password_hash, salt, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, a.Email, a.PasswordHash, a.Salt, a.Name, a.CreatedAt, a.UpdatedAt).Scan(&a.ID)
}

func (r *adminRepository) GetByEmail(ctx context.Context, email string) (*domain.AdminUser, error) {
	query := `
		SELECT id, email, password_hash, salt, name, created_at, updated_at
		FROM admin_users
		WHERE email = $1
	`
	return r.getOne(ctx, query, email)
}

func (r *adminRepository) GetByID(ctx context.Context, id string) (*domain.AdminUser, error) {
	query := `
		SELECT id, email, password_hash, salt, name, created_at, updated_at
		FROM admin_users
		WHERE id = $1
	`
	return r.getOne(ctx, query, id)
}

func (r *adminRepository) getOne(ctx context.Context, query string, arg string) (*domain.AdminUser, error) {
	a := &domain.AdminUser{}
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Salt, &a.Name, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *adminRepository) UpdatePassword(ctx context.Context, id, hash, salt string) error {
	query := `
		UPDATE admin_users
		SET password_hash = $1, salt = $2, updated_at = NOW()
		WHERE id = $3
	`
	res, err := r.DB.ExecContext(ctx, query, hash, salt, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
