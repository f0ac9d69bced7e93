package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"churchsite/internal/domain"
)

// Post list paging bounds.
const (
	DefaultPostLimit = 10
	MaxPostLimit     = 50
)

type contentService struct {
	pastorRepo     domain.PastorRepository
	galleryRepo    domain.GalleryRepository
	postRepo       domain.PostRepository
	subRepo        domain.SubscriptionRepository
	renderer       domain.MarkdownRenderer
	contextTimeout time.Duration
	now            func() time.Time
}

// NewContentService returns the service for pastors, gallery images, posts and subscriptions.
func NewContentService(pastorRepo domain.PastorRepository,
	galleryRepo domain.GalleryRepository,
	postRepo domain.PostRepository,
	subRepo domain.SubscriptionRepository,
	renderer domain.MarkdownRenderer,
	timeout time.Duration,
) domain.ContentService {
	return &contentService{
		pastorRepo:     pastorRepo,
		galleryRepo:    galleryRepo,
		postRepo:       postRepo,
		subRepo:        subRepo,
		renderer:       renderer,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func notFoundOr(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Pastors

func applyPastorInput(p *domain.Pastor, input domain.PastorInput) error {
	verr := &domain.ValidationError{}
	required(verr, "name", &input.Name)
	email := domain.NormalizeOptional(&input.Email)
	if email != nil {
		e := domain.NormalizeEmail(*email)
		email = &e
		validEmail(verr, "email", e)
	}
	if err := verr.OrNil(); err != nil {
		return err
	}
	p.Name = input.Name
	p.Title = domain.OptionalString(input.Title)
	p.Bio = domain.OptionalString(input.Bio)
	p.ImageURL = domain.OptionalString(input.ImageURL)
	p.Email = email
	p.Phone = domain.OptionalString(input.Phone)
	p.SortOrder = input.SortOrder
	if input.IsActive != nil {
		p.IsActive = *input.IsActive
	}
	return nil
}

func (s *contentService) ListPastors(ctx context.Context, activeOnly bool) ([]*domain.Pastor, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	pastors, err := s.pastorRepo.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list pastors: %w", err)
	}
	return pastors, nil
}

func (s *contentService) CreatePastor(ctx context.Context, input domain.PastorInput) (*domain.Pastor, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	p := &domain.Pastor{IsActive: true}
	if err := applyPastorInput(p, input); err != nil {
		return nil, err
	}
	now := s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	if err := s.pastorRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create pastor: %w", err)
	}
	return p, nil
}

func (s *contentService) UpdatePastor(ctx context.Context, id string, input domain.PastorInput) (*domain.Pastor, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	p, err := s.pastorRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr("update pastor", err)
	}
	if err := applyPastorInput(p, input); err != nil {
		return nil, err
	}
	p.UpdatedAt = s.now()
	if err := s.pastorRepo.Update(ctx, p); err != nil {
		return nil, notFoundOr("update pastor", err)
	}
	return p, nil
}

func (s *contentService) DeletePastor(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.pastorRepo.Delete(ctx, id); err != nil {
		return notFoundOr("delete pastor", err)
	}
	return nil
}

// Gallery

func applyGalleryInput(img *domain.GalleryImage, input domain.GalleryInput) error {
	verr := &domain.ValidationError{}
	required(verr, "title", &input.Title)
	required(verr, "imageUrl", &input.ImageURL)
	if err := verr.OrNil(); err != nil {
		return err
	}
	img.Title = input.Title
	img.Description = domain.OptionalString(input.Description)
	img.ImageURL = input.ImageURL
	img.Category = domain.OptionalString(input.Category)
	img.SortOrder = input.SortOrder
	if input.IsActive != nil {
		img.IsActive = *input.IsActive
	}
	return nil
}

func (s *contentService) ListGallery(ctx context.Context, activeOnly bool, category string) ([]*domain.GalleryImage, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	images, err := s.galleryRepo.List(ctx, activeOnly, strings.TrimSpace(category))
	if err != nil {
		return nil, fmt.Errorf("list gallery: %w", err)
	}
	return images, nil
}

func (s *contentService) CreateGalleryImage(ctx context.Context, input domain.GalleryInput) (*domain.GalleryImage, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	img := &domain.GalleryImage{IsActive: true}
	if err := applyGalleryInput(img, input); err != nil {
		return nil, err
	}
	now := s.now()
	img.CreatedAt, img.UpdatedAt = now, now
	if err := s.galleryRepo.Create(ctx, img); err != nil {
		return nil, fmt.Errorf("create gallery image: %w", err)
	}
	return img, nil
}

func (s *contentService) UpdateGalleryImage(ctx context.Context, id string, input domain.GalleryInput) (*domain.GalleryImage, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	img, err := s.galleryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr("update gallery image", err)
	}
	if err := applyGalleryInput(img, input); err != nil {
		return nil, err
	}
	img.UpdatedAt = s.now()
	if err := s.galleryRepo.Update(ctx, img); err != nil {
		return nil, notFoundOr("update gallery image", err)
	}
	return img, nil
}

func (s *contentService) DeleteGalleryImage(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.galleryRepo.Delete(ctx, id); err != nil {
		return notFoundOr("delete gallery image", err)
	}
	return nil
}

// Posts

// applyPostInput validates input, renders the markdown and copies the result onto p.
// PublishedAt is stamped the first time the post is published.
func (s *contentService) applyPostInput(p *domain.Post, input domain.PostInput) error {
	verr := &domain.ValidationError{}
	required(verr, "title", &input.Title)
	required(verr, "content", &input.Content)
	if err := verr.OrNil(); err != nil {
		return err
	}
	html, err := s.renderer.Render(input.Content)
	if err != nil {
		return fmt.Errorf("render post content: %w", err)
	}
	p.Title = input.Title
	p.Excerpt = domain.OptionalString(input.Excerpt)
	p.Content = input.Content
	p.ContentHTML = html
	p.ImageURL = domain.OptionalString(input.ImageURL)
	p.Author = domain.OptionalString(input.Author)
	p.Published = input.Published
	if p.Published && p.PublishedAt == nil {
		now := s.now()
		p.PublishedAt = &now
	}
	return nil
}

func (s *contentService) slugFor(ctx context.Context, title, excludeID string) (string, error) {
	return uniqueSlug(ctx, slugify(title), func(ctx context.Context, slug string) (bool, error) {
		return s.postRepo.SlugExists(ctx, slug, excludeID)
	})
}

// NormalizePostPage applies the default and maximum page size for post lists.
func NormalizePostPage(p domain.PaginationParams) domain.PaginationParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPostLimit
	}
	if p.Limit > MaxPostLimit {
		p.Limit = MaxPostLimit
	}
	return p
}

func (s *contentService) ListPosts(ctx context.Context, publishedOnly bool, page domain.PaginationParams) (*domain.PostPage, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	page = NormalizePostPage(page)
	posts, total, err := s.postRepo.List(ctx, publishedOnly, page)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return &domain.PostPage{Posts: posts, Pagination: domain.NewPagination(page, total)}, nil
}

// GetPublishedPost returns the post for slug; drafts are reported as not found.
func (s *contentService) GetPublishedPost(ctx context.Context, slug string) (*domain.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	p, err := s.postRepo.GetBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		return nil, notFoundOr("get post", err)
	}
	if !p.Published {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (s *contentService) CreatePost(ctx context.Context, input domain.PostInput) (*domain.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	p := &domain.Post{}
	if err := s.applyPostInput(p, input); err != nil {
		return nil, err
	}
	slug, err := s.slugFor(ctx, p.Title, "")
	if err != nil {
		return nil, fmt.Errorf("create post: slug: %w", err)
	}
	p.Slug = slug
	now := s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	if err := s.postRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return p, nil
}

// UpdatePost regenerates the slug only when the title changes.
func (s *contentService) UpdatePost(ctx context.Context, id string, input domain.PostInput) (*domain.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	p, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr("update post", err)
	}
	oldTitle := p.Title
	if err := s.applyPostInput(p, input); err != nil {
		return nil, err
	}
	if p.Title != oldTitle {
		slug, err := s.slugFor(ctx, p.Title, p.ID)
		if err != nil {
			return nil, fmt.Errorf("update post: slug: %w", err)
		}
		p.Slug = slug
	}
	p.UpdatedAt = s.now()
	if err := s.postRepo.Update(ctx, p); err != nil {
		return nil, notFoundOr("update post", err)
	}
	return p, nil
}

func (s *contentService) DeletePost(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.postRepo.Delete(ctx, id); err != nil {
		return notFoundOr("delete post", err)
	}
	return nil
}

// Subscriptions

func (s *contentService) Subscribe(ctx context.Context, email, name string) (*domain.Subscription, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	verr := &domain.ValidationError{}
	required(verr, "email", &email)
	email = domain.NormalizeEmail(email)
	validEmail(verr, "email", email)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	sub := &domain.Subscription{
		Email:     email,
		Name:      domain.OptionalString(name),
		IsActive:  true,
		CreatedAt: s.now(),
	}
	if err := s.subRepo.Create(ctx, sub); err != nil {
		if errors.Is(err, domain.ErrAlreadySubscribed) {
			return nil, domain.ErrAlreadySubscribed
		}
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	return sub, nil
}

func (s *contentService) Unsubscribe(ctx context.Context, email string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	email = domain.NormalizeEmail(email)
	if email == "" {
		return domain.NewValidationError("email", "is required")
	}
	// Unknown and already inactive addresses succeed too.
	if err := s.subRepo.Deactivate(ctx, email); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("unsubscribe: %w", err)
	}
	return nil
}

func (s *contentService) ListSubscriptions(ctx context.Context) ([]*domain.Subscription, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	subs, err := s.subRepo.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return subs, nil
}
