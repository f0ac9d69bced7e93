package controllers

import (
	"log/slog"
	"net/http"

	"churchsite/internal/delivery/http/helpers"
	"churchsite/internal/delivery/http/middleware"
	"churchsite/internal/domain"
)

// PastorRequest is the request body for POST /pastors.
type PastorRequest struct {
	Name      string `json:"name" validate:"max=200"`
	Title     string `json:"title" validate:"max=200"`
	Bio       string `json:"bio"`
	ImageURL  string `json:"imageUrl" validate:"omitempty,url"`
	Email     string `json:"email" validate:"max=254"`
	Phone     string `json:"phone" validate:"max=50"`
	SortOrder int    `json:"sortOrder"`
	IsActive  *bool  `json:"isActive"`
}

func (r PastorRequest) input() domain.PastorInput {
	return domain.PastorInput{
		Name:      r.Name,
		Title:     r.Title,
		Bio:       r.Bio,
		ImageURL:  r.ImageURL,
		Email:     r.Email,
		Phone:     r.Phone,
		SortOrder: r.SortOrder,
		IsActive:  r.IsActive,
	}
}

// UpdatePastorRequest is the request body for PUT /pastors.
type UpdatePastorRequest struct {
	ID string `json:"id" validate:"required,uuid"`
	PastorRequest
}

// GalleryRequest is the request body for POST /gallery. imageUrl points at external object storage.
type GalleryRequest struct {
	Title       string `json:"title" validate:"max=200"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl" validate:"omitempty,url"`
	Category    string `json:"category" validate:"max=100"`
	SortOrder   int    `json:"sortOrder"`
	IsActive    *bool  `json:"isActive"`
}

func (r GalleryRequest) input() domain.GalleryInput {
	return domain.GalleryInput{
		Title:       r.Title,
		Description: r.Description,
		ImageURL:    r.ImageURL,
		Category:    r.Category,
		SortOrder:   r.SortOrder,
		IsActive:    r.IsActive,
	}
}

// UpdateGalleryRequest is the request body for PUT /gallery.
type UpdateGalleryRequest struct {
	ID string `json:"id" validate:"required,uuid"`
	GalleryRequest
}

// ContentController serves pastors, the gallery, blog posts and newsletter subscriptions.
type ContentController struct {
	Logger  *slog.Logger
	Service domain.ContentService
}

func NewContentController(logger *slog.Logger, svc domain.ContentService) *ContentController {
	return &ContentController{
		Logger:  logger,
		Service: svc,
	}
}

func isAdmin(r *http.Request) bool {
	_, ok := middleware.AdminIDFromContext(r.Context())
	return ok
}

// ListPastors godoc
// @Summary List pastors
// @Description Active pastors ordered by sortOrder then name. Admins also see inactive ones.
// @Tags pastors
// @Produce json
// @Success 200 {object} helpers.APIResponse "data is []Pastor"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /pastors [get]
func (c *ContentController) ListPastors(w http.ResponseWriter, r *http.Request) {
	pastors, err := c.Service.ListPastors(r.Context(), !isAdmin(r))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, "list pastors", err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, pastors)
}

// CreatePastor godoc
// @Summary Add a pastor
// @Tags pastors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body PastorRequest true "Pastor"
// @Success 201 {object} helpers.APIResponse "data contains the pastor"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /pastors [post]
func (c *ContentController) CreatePastor(w http.ResponseWriter, r *http.Request) {
	var req PastorRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	p, err := c.Service.CreatePastor(r.Context(), req.input())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, "create pastor", err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, p)
}

// UpdatePastor godoc
// @Summary Update a pastor
// @Tags pastors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UpdatePastorRequest true "Pastor including id"
// @Success 200 {object} helpers.APIResponse "data contains the pastor"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /pastors [put]
func (c *ContentController) UpdatePastor(w http.ResponseWriter, r *http.Request) {
	var req UpdatePastorRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	p, err := c.Service.UpdatePastor(r.Context(), req.ID, req.input())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, "update pastor", err, "pastor_id", req.ID)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, p)
}

// DeletePastor godoc
// @Summary Delete a pastor
// @Tags pastors
// @Produce json
// @Security BearerAuth
// @Param id query string true "Pastor ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data.id is the deleted pastor"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /pastors [delete]
func (c *ContentController) DeletePastor(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.ParseID(w, "id", r.URL.Query().Get("id"))
	if !ok {
		return
	}
	if err := c.Service.DeletePastor(r.Context(), id); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, "delete pastor", err, "pastor_id", id)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"id": id})
}

// ListGallery godoc
// @Summary List gallery images
// @Description Active images, optionally narrowed to one category. Admins also see inactive ones.
// @Tags gallery
// @Produce json
// @Param category query string false "Category"
// @Success 200 {object} helpers.APIResponse "data is []GalleryImage"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /gallery [get]
func (c *ContentController) ListGallery(w http.ResponseWriter, r *http.Request) {
	images, err := c.Service.ListGallery(r.Context(), !isAdmin(r), r.URL.Query().Get("category"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, "list gallery", err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, images)
}

// CreateGalleryImage godoc
// @Summary Add a gallery image
// @Tags gallery
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body GalleryRequest true "Gallery image"
// @Success 201 {object} helpers.APIResponse "data contains the image"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /gallery [post]
func (c *ContentController) CreateGalleryImage(w http.ResponseWriter, r *http.Request) {
	var req GalleryRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	img, err := c.Service.CreateGalleryImage(r.Context(), req.input())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, "create gallery image", err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, img)
}

// UpdateGalleryImage godoc
// @Summary Update a gallery image
// @Tags gallery
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UpdateGalleryRequest true "Gallery image including id"
// @Success 200 {object} helpers.APIResponse "data contains the image"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /gallery [put]
func (c *ContentController) UpdateGalleryImage(w http.ResponseWriter, r *http.Request) {
	var req UpdateGalleryRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	img, err := c.Service.UpdateGalleryImage(r.Context(), req.ID, req.input())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, "update gallery image", err, "image_id", req.ID)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, img)
}

// DeleteGalleryImage godoc
// @Summary Delete a gallery image
// @Tags gallery
// @Produce json
// @Security BearerAuth
// @Param id query string true "Image ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data.id is the deleted image"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /gallery [delete]
func (c *ContentController) DeleteGalleryImage(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.ParseID(w, "id", r.URL.Query().Get("id"))
	if !ok {
		return
	}
	if err := c.Service.DeleteGalleryImage(r.Context(), id); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, "delete gallery image", err, "image_id", id)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"id": id})
}
