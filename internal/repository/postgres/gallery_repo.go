package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"churchsite/internal/domain"
)

const galleryColumns = `id, title, description, image_url, category, sort_order, is_active, created_at, updated_at`

type galleryRepository struct {
	DB *sql.DB
}

func NewGalleryRepository(db *sql.DB) domain.GalleryRepository {
	return &galleryRepository{
		DB: db,
	}
}

func scanGalleryImage(s rowScanner) (*domain.GalleryImage, error) {
	img := &domain.GalleryImage{}
	var desc, category sql.NullString
	if err := s.Scan(&img.ID, &img.Title, &desc, &img.ImageURL, &category, &img.SortOrder, &img.IsActive, &img.CreatedAt, &img.UpdatedAt); err != nil {
		return nil, err
	}
	img.Description = fromNullString(desc)
	img.Category = fromNullString(category)
	return img, nil
}

func (r *galleryRepository) Create(ctx context.Context, img *domain.GalleryImage) error {
	query := `
		INSERT INTO gallery_images (title, description, image_url, category, sort_order, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		img.Title, img.Description, img.ImageURL, img.Category, img.SortOrder, img.IsActive, img.CreatedAt, img.UpdatedAt,
	).Scan(&img.ID)
}

func (r *galleryRepository) GetByID(ctx context.Context, id string) (*domain.GalleryImage, error) {
	img, err := scanGalleryImage(r.DB.QueryRowContext(ctx, `SELECT `+galleryColumns+` FROM gallery_images WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return img, nil
}

func (r *galleryRepository) Update(ctx context.Context, img *domain.GalleryImage) error {
	query := `
		UPDATE gallery_images
		SET title = $1, description = $2, image_url = $3, category = $4, sort_order = $5, is_active = $6, updated_at = $7
		WHERE id = $8
	`
	res, err := r.DB.ExecContext(ctx, query,
		img.Title, img.Description, img.ImageURL, img.Category, img.SortOrder, img.IsActive, img.UpdatedAt, img.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *galleryRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM gallery_images WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *galleryRepository) List(ctx context.Context, activeOnly bool, category string) ([]*domain.GalleryImage, error) {
	var conds []string
	var args []any
	if activeOnly {
		conds = append(conds, "is_active = TRUE")
	}
	if category != "" {
		args = append(args, category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	query := `SELECT ` + galleryColumns + ` FROM gallery_images`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY sort_order ASC, created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	images := make([]*domain.GalleryImage, 0)
	for rows.Next() {
		img, err := scanGalleryImage(rows)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}
