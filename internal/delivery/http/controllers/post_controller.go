package controllers

import (
	"net/http"

	"churchsite/internal/delivery/http/helpers"
	"churchsite/internal/domain"
)

// PostRequest is the request body for POST /posts. content is markdown.
type PostRequest struct {
	Title     string `json:"title" validate:"max=200"`
	Excerpt   string `json:"excerpt" validate:"max=500"`
	Content   string `json:"content"`
	ImageURL  string `json:"imageUrl" validate:"omitempty,url"`
	Author    string `json:"author" validate:"max=200"`
	Published bool   `json:"published"`
}

func (r PostRequest) input() domain.PostInput {
	return domain.PostInput{
		Title:     r.Title,
		Excerpt:   r.Excerpt,
		Content:   r.Content,
		ImageURL:  r.ImageURL,
		Author:    r.Author,
		Published: r.Published,
	}
}

// UpdatePostRequest is the request body for PUT /posts.
type UpdatePostRequest struct {
	ID string `json:"id" validate:"required,uuid"`
	PostRequest
}

// SubscribeRequest is the request body for POST /subscriptions.
type SubscribeRequest struct {
	Email string `json:"email" validate:"max=254"`
	Name  string `json:"name" validate:"max=200"`
}

// ListPosts godoc
// @Summary List published posts
// @Description Newest first. Default limit 10, maximum 50.
// @Tags posts
// @Produce json
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 10, max 50)"
// @Success 200 {object} helpers.APIResponse "data is PostPage"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /posts [get]
func (c *ContentController) ListPosts(w http.ResponseWriter, r *http.Request) {
	c.listPosts(w, r, true)
}

// ListAllPosts godoc
// @Summary List all posts including drafts
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 10, max 50)"
// @Success 200 {object} helpers.APIResponse "data is PostPage"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/posts [get]
func (c *ContentController) ListAllPosts(w http.ResponseWriter, r *http.Request) {
	c.listPosts(w, r, false)
}

func (c *ContentController) listPosts(w http.ResponseWriter, r *http.Request, publishedOnly bool) {
	page, err := c.Service.ListPosts(r.Context(), publishedOnly, helpers.ParsePagination(r))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, "list posts", err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, page)
}

// GetPost godoc
// @Summary Get a published post by slug
// @Tags posts
// @Produce json
// @Param slug path string true "Post slug"
// @Success 200 {object} helpers.APIResponse "data contains the post"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /posts/{slug} [get]
func (c *ContentController) GetPost(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	post, err := c.Service.GetPublishedPost(r.Context(), slug)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, "get post", err, "slug", slug)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, post)
}

// CreatePost godoc
// @Summary Create a post
// @Description The slug is derived from the title; content is rendered from markdown.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body PostRequest true "Post"
// @Success 201 {object} helpers.APIResponse "data contains the post"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /posts [post]
func (c *ContentController) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req PostRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	post, err := c.Service.CreatePost(r.Context(), req.input())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, "create post", err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, post)
}

// UpdatePost godoc
// @Summary Update a post
// @Description The slug changes only when the title does.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UpdatePostRequest true "Post including id"
// @Success 200 {object} helpers.APIResponse "data contains the post"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /posts [put]
func (c *ContentController) UpdatePost(w http.ResponseWriter, r *http.Request) {
	var req UpdatePostRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	post, err := c.Service.UpdatePost(r.Context(), req.ID, req.input())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, "update post", err, "post_id", req.ID)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, post)
}

// DeletePost godoc
// @Summary Delete a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id query string true "Post ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data.id is the deleted post"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /posts [delete]
func (c *ContentController) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.ParseID(w, "id", r.URL.Query().Get("id"))
	if !ok {
		return
	}
	if err := c.Service.DeletePost(r.Context(), id); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, "delete post", err, "post_id", id)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"id": id})
}

// Subscribe godoc
// @Summary Subscribe to the newsletter
// @Description Rate limited per client IP. A previously unsubscribed email is reactivated.
// @Tags subscriptions
// @Accept json
// @Produce json
// @Param body body SubscribeRequest true "Subscriber"
// @Success 201 {object} helpers.APIResponse "data contains the subscription"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 429 {object} helpers.APIResponse "error.code: too_many_requests"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /subscriptions [post]
func (c *ContentController) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req SubscribeRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	sub, err := c.Service.Subscribe(r.Context(), req.Email, req.Name)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, "subscribe", err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, sub)
}

// Unsubscribe godoc
// @Summary Unsubscribe from the newsletter
// @Tags subscriptions
// @Produce json
// @Param email query string true "Subscriber email"
// @Success 200 {object} helpers.APIResponse "data.email is the unsubscribed address"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 429 {object} helpers.APIResponse "error.code: too_many_requests"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /subscriptions [delete]
func (c *ContentController) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	email := domain.NormalizeEmail(r.URL.Query().Get("email"))
	if email == "" {
		helpers.WriteServiceError(w, r, c.Logger, "unsubscribe", domain.NewValidationError("email", "is required"))
		return
	}
	if err := c.Service.Unsubscribe(r.Context(), email); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, "unsubscribe", err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"email": email})
}

// ListSubscriptions godoc
// @Summary List newsletter subscribers
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data is []Subscription"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /subscriptions [get]
func (c *ContentController) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := c.Service.ListSubscriptions(r.Context())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, "list subscriptions", err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, subs)
}
