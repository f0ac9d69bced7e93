package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"churchsite/internal/domain"
)

const postColumns = `id, title, slug, excerpt, content, content_html, image_url, author, published, published_at, created_at, updated_at`

type postRepository struct {
	DB *sql.DB
}

func NewPostRepository(db *sql.DB) domain.PostRepository {
	return &postRepository{
		DB: db,
	}
}

func scanPost(s rowScanner) (*domain.Post, error) {
	p := &domain.Post{}
	var excerpt, img, author sql.NullString
	var publishedAt sql.NullTime
	err := s.Scan(&p.ID, &p.Title, &p.Slug, &excerpt, &p.Content, &p.ContentHTML, &img, &author, &p.Published, &publishedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Excerpt = fromNullString(excerpt)
	p.ImageURL = fromNullString(img)
	p.Author = fromNullString(author)
	p.PublishedAt = fromNullTime(publishedAt)
	return p, nil
}

func (r *postRepository) Create(ctx context.Context, p *domain.Post) error {
	query := `
		INSERT INTO posts (title, slug, excerpt, content, content_html, image_url, author, published, published_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		p.Title, p.Slug, p.Excerpt, p.Content, p.ContentHTML, p.ImageURL, p.Author, p.Published, p.PublishedAt, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	if isPQCode(err, pqUniqueViolation) {
		return fmt.Errorf("slug %q: %w", p.Slug, domain.ErrInvalidInput)
	}
	return err
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	return r.getOne(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
}

func (r *postRepository) GetBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	return r.getOne(ctx, `SELECT `+postColumns+` FROM posts WHERE slug = $1`, slug)
}

func (r *postRepository) getOne(ctx context.Context, query string, arg any) (*domain.Post, error) {
	p, err := scanPost(r.DB.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// SlugExists reports whether slug is taken by a post other than excludeID.
func (r *postRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	var exists bool
	var err error
	if excludeID == "" {
		err = r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM posts WHERE slug = $1)`, slug).Scan(&exists)
	} else {
		err = r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM posts WHERE slug = $1 AND id <> $2)`, slug, excludeID).Scan(&exists)
	}
	return exists, err
}

func (r *postRepository) Update(ctx context.Context, p *domain.Post) error {
	query := `
		UPDATE posts
		SET title = $1, slug = $2, excerpt = $3, content = $4, content_html = $5, image_url = $6, author = $7,
		    published = $8, published_at = $9, updated_at = $10
		WHERE id = $11
	`
	res, err := r.DB.ExecContext(ctx, query,
		p.Title, p.Slug, p.Excerpt, p.Content, p.ContentHTML, p.ImageURL, p.Author, p.Published, p.PublishedAt, p.UpdatedAt, p.ID,
	)
	if err != nil {
		if isPQCode(err, pqUniqueViolation) {
			return fmt.Errorf("slug %q: %w", p.Slug, domain.ErrInvalidInput)
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postRepository) List(ctx context.Context, publishedOnly bool, page domain.PaginationParams) ([]*domain.Post, int, error) {
	where := ""
	if publishedOnly {
		where = ` WHERE published = TRUE`
	}
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`+where).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `SELECT ` + postColumns + ` FROM posts` + where +
		` ORDER BY COALESCE(published_at, created_at) DESC LIMIT $1 OFFSET $2`
	rows, err := r.DB.QueryContext(ctx, query, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	posts := make([]*domain.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, err
		}
		posts = append(posts, p)
	}
	return posts, total, rows.Err()
}
