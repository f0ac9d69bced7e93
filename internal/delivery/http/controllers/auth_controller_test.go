package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"churchsite/internal/delivery/http/helpers"
	"churchsite/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAuthService implements domain.AuthService for handler tests.
type fakeAuthService struct {
	loginErr  error
	meErr     error
	lastEmail string
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (*domain.LoginResult, error) {
	f.lastEmail = email
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &domain.LoginResult{
		Token:     "token-" + adminID1,
		TokenType: "Bearer",
		ExpiresAt: time.Date(2025, 1, 1, 20, 0, 0, 0, time.UTC),
		Admin:     &domain.AdminUser{ID: adminID1, Email: email, PasswordHash: "secret-hash"},
	}, nil
}

func (f *fakeAuthService) Me(ctx context.Context, adminID string) (*domain.AdminUser, error) {
	if f.meErr != nil {
		return nil, f.meErr
	}
	return &domain.AdminUser{ID: adminID, Email: "admin@church.org", Name: "Admin"}, nil
}

func (f *fakeAuthService) EnsureAdmin(ctx context.Context, email, password, name string) error {
	return nil
}

func TestAuthController_Login(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		loginErr   error
		wantStatus int
		wantCode   string
	}{
		{name: "success", body: `{"email":"admin@church.org","password":"pw"}`, wantStatus: http.StatusOK},
		{name: "wrong password", body: `{"email":"admin@church.org","password":"nope"}`, loginErr: domain.ErrUnauthorized, wantStatus: http.StatusUnauthorized, wantCode: helpers.ErrCodeUnauthorized},
		{name: "missing password", body: `{"email":"admin@church.org"}`, wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeBadRequest},
		{name: "not an email", body: `{"email":"admin","password":"pw"}`, wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeBadRequest},
		{name: "issuer failure", body: `{"email":"admin@church.org","password":"pw"}`, loginErr: errors.New("sign: boom"), wantStatus: http.StatusInternalServerError, wantCode: helpers.ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewAuthController(testLogger, &fakeAuthService{loginErr: tt.loginErr})
			rr := httptest.NewRecorder()

			ctrl.Login(rr, newRequest(http.MethodPost, "/auth/login", tt.body))

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusOK {
				assert.NotContains(t, rr.Body.String(), "secret-hash")
				var result domain.LoginResult
				decodeEnvelope(t, rr, &result)
				assert.Equal(t, "token-"+adminID1, result.Token)
				assert.Equal(t, "Bearer", result.TokenType)
				require.NotNil(t, result.Admin)
				assert.Equal(t, adminID1, result.Admin.ID)
				return
			}
			env := decodeEnvelope(t, rr, nil)
			assert.Equal(t, tt.wantCode, env.Error.Code)
		})
	}
}

func TestAuthController_Me(t *testing.T) {
	tests := []struct {
		name       string
		admin      bool
		meErr      error
		wantStatus int
	}{
		{name: "signed in", admin: true, wantStatus: http.StatusOK},
		{name: "no admin in context", wantStatus: http.StatusUnauthorized},
		{name: "account removed", admin: true, meErr: domain.ErrNotFound, wantStatus: http.StatusUnauthorized},
		{name: "storage failure", admin: true, meErr: errors.New("db down"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewAuthController(testLogger, &fakeAuthService{meErr: tt.meErr})
			req := newRequest(http.MethodGet, "/auth/me", "")
			if tt.admin {
				req = asAdmin(req)
			}
			rr := httptest.NewRecorder()

			ctrl.Me(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusOK {
				var admin domain.AdminUser
				decodeEnvelope(t, rr, &admin)
				assert.Equal(t, adminID1, admin.ID)
			}
		})
	}
}
