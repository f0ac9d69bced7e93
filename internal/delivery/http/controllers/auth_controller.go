package controllers

import (
	h "churchsite/internal/delivery/http/helpers"
	"churchsite/internal/delivery/http/middleware"
	"churchsite/internal/domain"
	"errors"
	"log/slog"
	"net/http"
)

// LoginRequest is the request body for POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthController struct {
	Logger  *slog.Logger
	Service domain.AuthService
}

func NewAuthController(logger *slog.Logger, svc domain.AuthService) *AuthController {
	return &AuthController{
		Logger:  logger,
		Service: svc,
	}
}

// Login godoc
// @Summary Admin login
// @Description Authenticate with email and password. Returns a signed JWT carrying the admin id and role.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login credentials"
// @Success 200 {object} helpers.APIResponse "data is LoginResult"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 429 {object} helpers.APIResponse "error.code: too_many_requests"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/login [post]
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	result, err := c.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			c.Logger.WarnContext(r.Context(), "admin login failed", "email", domain.NormalizeEmail(req.Email))
		}
		h.WriteServiceError(w, r, c.Logger, "login", err)
		return
	}
	c.Logger.InfoContext(r.Context(), "admin logged in", "admin_id", result.Admin.ID)
	h.WriteJSONSuccess(w, http.StatusOK, result)
}

// Me godoc
// @Summary Current admin
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data is AdminUser"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/me [get]
func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.AdminIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	admin, err := c.Service.Me(r.Context(), adminID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Token outlived its account.
			h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
			return
		}
		h.WriteServiceError(w, r, c.Logger, "me", err, "admin_id", adminID)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, admin)
}
