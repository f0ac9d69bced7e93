package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"churchsite/internal/delivery/http/helpers"
	"churchsite/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeContentService implements domain.ContentService for handler tests.
type fakeContentService struct {
	err           error
	activeOnly    bool
	category      string
	publishedOnly bool
	lastPage      domain.PaginationParams
	lastID        string
	lastSlug      string
	lastEmail     string
	lastName      string
	pastorInput   domain.PastorInput
	galleryInput  domain.GalleryInput
	postInput     domain.PostInput
}

func (f *fakeContentService) ListPastors(ctx context.Context, activeOnly bool) ([]*domain.Pastor, error) {
	f.activeOnly = activeOnly
	return []*domain.Pastor{}, f.err
}

func (f *fakeContentService) CreatePastor(ctx context.Context, input domain.PastorInput) (*domain.Pastor, error) {
	f.pastorInput = input
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Pastor{ID: regID1, Name: input.Name}, nil
}

func (f *fakeContentService) UpdatePastor(ctx context.Context, id string, input domain.PastorInput) (*domain.Pastor, error) {
	f.lastID, f.pastorInput = id, input
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Pastor{ID: id, Name: input.Name}, nil
}

func (f *fakeContentService) DeletePastor(ctx context.Context, id string) error {
	f.lastID = id
	return f.err
}

func (f *fakeContentService) ListGallery(ctx context.Context, activeOnly bool, category string) ([]*domain.GalleryImage, error) {
	f.activeOnly, f.category = activeOnly, category
	return []*domain.GalleryImage{}, f.err
}

func (f *fakeContentService) CreateGalleryImage(ctx context.Context, input domain.GalleryInput) (*domain.GalleryImage, error) {
	f.galleryInput = input
	if f.err != nil {
		return nil, f.err
	}
	return &domain.GalleryImage{ID: regID1, Title: input.Title, ImageURL: input.ImageURL}, nil
}

func (f *fakeContentService) UpdateGalleryImage(ctx context.Context, id string, input domain.GalleryInput) (*domain.GalleryImage, error) {
	f.lastID, f.galleryInput = id, input
	if f.err != nil {
		return nil, f.err
	}
	return &domain.GalleryImage{ID: id, Title: input.Title}, nil
}

func (f *fakeContentService) DeleteGalleryImage(ctx context.Context, id string) error {
	f.lastID = id
	return f.err
}

func (f *fakeContentService) ListPosts(ctx context.Context, publishedOnly bool, page domain.PaginationParams) (*domain.PostPage, error) {
	f.publishedOnly, f.lastPage = publishedOnly, page
	if f.err != nil {
		return nil, f.err
	}
	return &domain.PostPage{Posts: []*domain.Post{}, Pagination: domain.NewPagination(domain.PaginationParams{Page: 1, Limit: 10}, 0)}, nil
}

func (f *fakeContentService) GetPublishedPost(ctx context.Context, slug string) (*domain.Post, error) {
	f.lastSlug = slug
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Post{ID: regID1, Slug: slug, Published: true}, nil
}

func (f *fakeContentService) CreatePost(ctx context.Context, input domain.PostInput) (*domain.Post, error) {
	f.postInput = input
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Post{ID: regID1, Title: input.Title, Slug: "hello-world"}, nil
}

func (f *fakeContentService) UpdatePost(ctx context.Context, id string, input domain.PostInput) (*domain.Post, error) {
	f.lastID, f.postInput = id, input
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Post{ID: id, Title: input.Title}, nil
}

func (f *fakeContentService) DeletePost(ctx context.Context, id string) error {
	f.lastID = id
	return f.err
}

func (f *fakeContentService) Subscribe(ctx context.Context, email, name string) (*domain.Subscription, error) {
	f.lastEmail, f.lastName = email, name
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Subscription{ID: regID1, Email: email, IsActive: true}, nil
}

func (f *fakeContentService) Unsubscribe(ctx context.Context, email string) error {
	f.lastEmail = email
	return f.err
}

func (f *fakeContentService) ListSubscriptions(ctx context.Context) ([]*domain.Subscription, error) {
	return []*domain.Subscription{}, f.err
}

func TestContentController_PublicListsHideInactive(t *testing.T) {
	fake := &fakeContentService{}
	ctrl := NewContentController(testLogger, fake)

	rr := httptest.NewRecorder()
	ctrl.ListPastors(rr, newRequest(http.MethodGet, "/pastors", ""))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, fake.activeOnly)

	rr = httptest.NewRecorder()
	ctrl.ListPastors(rr, asAdmin(newRequest(http.MethodGet, "/pastors", "")))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, fake.activeOnly)

	rr = httptest.NewRecorder()
	ctrl.ListGallery(rr, newRequest(http.MethodGet, "/gallery?category=worship", ""))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, fake.activeOnly)
	assert.Equal(t, "worship", fake.category)
}

func TestContentController_Pastors(t *testing.T) {
	fake := &fakeContentService{}
	ctrl := NewContentController(testLogger, fake)

	rr := httptest.NewRecorder()
	ctrl.CreatePastor(rr, asAdmin(newRequest(http.MethodPost, "/pastors", `{"name":"Rev. Ade","sortOrder":2,"isActive":false}`)))
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "Rev. Ade", fake.pastorInput.Name)
	assert.Equal(t, 2, fake.pastorInput.SortOrder)
	require.NotNil(t, fake.pastorInput.IsActive)
	assert.False(t, *fake.pastorInput.IsActive)

	rr = httptest.NewRecorder()
	ctrl.CreatePastor(rr, asAdmin(newRequest(http.MethodPost, "/pastors", `{"name":"Rev. Ade","imageUrl":"pastor.jpg"}`)))
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	ctrl.UpdatePastor(rr, asAdmin(newRequest(http.MethodPut, "/pastors", `{"id":"`+regID1+`","name":"Rev. Bola"}`)))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, regID1, fake.lastID)

	fake.err = domain.ErrNotFound
	rr = httptest.NewRecorder()
	ctrl.DeletePastor(rr, asAdmin(newRequest(http.MethodDelete, "/pastors?id="+regID1, "")))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestContentController_Gallery(t *testing.T) {
	fake := &fakeContentService{}
	ctrl := NewContentController(testLogger, fake)

	rr := httptest.NewRecorder()
	ctrl.CreateGalleryImage(rr, asAdmin(newRequest(http.MethodPost, "/gallery",
		`{"title":"Easter","imageUrl":"https://cdn.example.com/easter.jpg","category":"events"}`)))
	require.Equal(t, http.StatusCreated, rr.Code)
	var img domain.GalleryImage
	decodeEnvelope(t, rr, &img)
	assert.Equal(t, "https://cdn.example.com/easter.jpg", img.ImageURL)
	assert.Equal(t, "events", fake.galleryInput.Category)

	rr = httptest.NewRecorder()
	ctrl.DeleteGalleryImage(rr, asAdmin(newRequest(http.MethodDelete, "/gallery?id="+regID1, "")))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, regID1, fake.lastID)
}

func TestContentController_Posts(t *testing.T) {
	fake := &fakeContentService{}
	ctrl := NewContentController(testLogger, fake)

	rr := httptest.NewRecorder()
	ctrl.ListPosts(rr, newRequest(http.MethodGet, "/posts?page=3&limit=5", ""))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, fake.publishedOnly)
	assert.Equal(t, domain.PaginationParams{Page: 3, Limit: 5}, fake.lastPage)

	rr = httptest.NewRecorder()
	ctrl.ListAllPosts(rr, asAdmin(newRequest(http.MethodGet, "/admin/posts", "")))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, fake.publishedOnly)

	req := newRequest(http.MethodGet, "/posts/hello-world", "")
	req.SetPathValue("slug", "hello-world")
	rr = httptest.NewRecorder()
	ctrl.GetPost(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "hello-world", fake.lastSlug)

	rr = httptest.NewRecorder()
	ctrl.CreatePost(rr, asAdmin(newRequest(http.MethodPost, "/posts", `{"title":"Hello World","content":"# Hi","published":true}`)))
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.True(t, fake.postInput.Published)
	assert.Equal(t, "# Hi", fake.postInput.Content)

	fake.err = domain.ErrNotFound
	req = newRequest(http.MethodGet, "/posts/draft", "")
	req.SetPathValue("slug", "draft")
	rr = httptest.NewRecorder()
	ctrl.GetPost(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestContentController_Subscriptions(t *testing.T) {
	tests := []struct {
		name       string
		fakeErr    error
		wantStatus int
		wantCode   string
	}{
		{name: "subscribed", wantStatus: http.StatusCreated},
		{name: "already subscribed", fakeErr: domain.ErrAlreadySubscribed, wantStatus: http.StatusConflict, wantCode: helpers.ErrCodeConflict},
		{name: "bad email", fakeErr: domain.NewValidationError("email", "must be a valid email address"), wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeContentService{err: tt.fakeErr}
			ctrl := NewContentController(testLogger, fake)
			rr := httptest.NewRecorder()

			ctrl.Subscribe(rr, newRequest(http.MethodPost, "/subscriptions", `{"email":"Grace@Example.com","name":"Grace"}`))

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, "Grace@Example.com", fake.lastEmail)
			if tt.wantCode != "" {
				env := decodeEnvelope(t, rr, nil)
				assert.Equal(t, tt.wantCode, env.Error.Code)
			}
		})
	}

	fake := &fakeContentService{}
	ctrl := NewContentController(testLogger, fake)
	rr := httptest.NewRecorder()
	ctrl.Unsubscribe(rr, asAdmin(newRequest(http.MethodDelete, "/subscriptions?email=%20Grace@Example.COM", "")))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "grace@example.com", fake.lastEmail)

	fake.lastEmail = ""
	rr = httptest.NewRecorder()
	ctrl.Unsubscribe(rr, newRequest(http.MethodDelete, "/subscriptions?email=%20%20", ""))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	env := decodeEnvelope(t, rr, nil)
	assert.Equal(t, helpers.ErrCodeBadRequest, env.Error.Code)
	assert.Empty(t, fake.lastEmail, "service not called without an email")
}
