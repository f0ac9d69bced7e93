package domain

import (
	"context"
	"time"
)

// Pastor is a member of the pastoral team shown on the public site.
// swagger:model Pastor
type Pastor struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Title     *string   `json:"title"`
	Bio       *string   `json:"bio"`
	ImageURL  *string   `json:"imageUrl"`
	Email     *string   `json:"email"`
	Phone     *string   `json:"phone"`
	SortOrder int       `json:"sortOrder"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// GalleryImage is a photo hosted in external object storage.
// swagger:model GalleryImage
type GalleryImage struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	Category    *string   `json:"category"`
	SortOrder   int       `json:"sortOrder"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Post is a blog article. Content is markdown; ContentHTML is rendered on write.
// swagger:model Post
type Post struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     *string    `json:"excerpt"`
	Content     string     `json:"content"`
	ContentHTML string     `json:"contentHtml"`
	ImageURL    *string    `json:"imageUrl"`
	Author      *string    `json:"author"`
	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"publishedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// PostPage is one page of posts.
// swagger:model PostPage
type PostPage struct {
	Posts      []*Post    `json:"posts"`
	Pagination Pagination `json:"pagination"`
}

// Subscription is a newsletter subscriber.
// swagger:model Subscription
type Subscription struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      *string   `json:"name"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// PastorRepository defines storage for pastors.
type PastorRepository interface {
	Create(ctx context.Context, p *Pastor) error
	GetByID(ctx context.Context, id string) (*Pastor, error)
	Update(ctx context.Context, p *Pastor) error
	Delete(ctx context.Context, id string) error
	// List orders by sort_order, then name.
	List(ctx context.Context, activeOnly bool) ([]*Pastor, error)
}

// GalleryRepository defines storage for gallery images.
type GalleryRepository interface {
	Create(ctx context.Context, img *GalleryImage) error
	GetByID(ctx context.Context, id string) (*GalleryImage, error)
	Update(ctx context.Context, img *GalleryImage) error
	Delete(ctx context.Context, id string) error
	// List orders by sort_order, then newest first. An empty category means all.
	List(ctx context.Context, activeOnly bool, category string) ([]*GalleryImage, error)
}

// PostRepository defines storage for blog posts.
type PostRepository interface {
	Create(ctx context.Context, p *Post) error
	GetByID(ctx context.Context, id string) (*Post, error)
	GetBySlug(ctx context.Context, slug string) (*Post, error)
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	Update(ctx context.Context, p *Post) error
	Delete(ctx context.Context, id string) error
	// List orders by published_at (falling back to created_at) descending.
	List(ctx context.Context, publishedOnly bool, page PaginationParams) ([]*Post, int, error)
}

// SubscriptionRepository defines storage for newsletter subscribers.
type SubscriptionRepository interface {
	// Create returns ErrAlreadySubscribed when the email is already active.
	Create(ctx context.Context, s *Subscription) error
	Deactivate(ctx context.Context, email string) error
	List(ctx context.Context, activeOnly bool) ([]*Subscription, error)
}

// MarkdownRenderer converts markdown to HTML.
type MarkdownRenderer interface {
	Render(markdown string) (string, error)
}

// PastorInput carries pastor form values.
type PastorInput struct {
	Name      string
	Title     string
	Bio       string
	ImageURL  string
	Email     string
	Phone     string
	SortOrder int
	IsActive  *bool
}

// GalleryInput carries gallery form values.
type GalleryInput struct {
	Title       string
	Description string
	ImageURL    string
	Category    string
	SortOrder   int
	IsActive    *bool
}

// PostInput carries blog post form values.
type PostInput struct {
	Title     string
	Excerpt   string
	Content   string
	ImageURL  string
	Author    string
	Published bool
}

// ContentService covers the simple public-site collections.
type ContentService interface {
	ListPastors(ctx context.Context, activeOnly bool) ([]*Pastor, error)
	CreatePastor(ctx context.Context, input PastorInput) (*Pastor, error)
	UpdatePastor(ctx context.Context, id string, input PastorInput) (*Pastor, error)
	DeletePastor(ctx context.Context, id string) error

	ListGallery(ctx context.Context, activeOnly bool, category string) ([]*GalleryImage, error)
	CreateGalleryImage(ctx context.Context, input GalleryInput) (*GalleryImage, error)
	UpdateGalleryImage(ctx context.Context, id string, input GalleryInput) (*GalleryImage, error)
	DeleteGalleryImage(ctx context.Context, id string) error

	ListPosts(ctx context.Context, publishedOnly bool, page PaginationParams) (*PostPage, error)
	GetPublishedPost(ctx context.Context, slug string) (*Post, error)
	CreatePost(ctx context.Context, input PostInput) (*Post, error)
	UpdatePost(ctx context.Context, id string, input PostInput) (*Post, error)
	DeletePost(ctx context.Context, id string) error

	Subscribe(ctx context.Context, email, name string) (*Subscription, error)
	Unsubscribe(ctx context.Context, email string) error
	ListSubscriptions(ctx context.Context) ([]*Subscription, error)
}
