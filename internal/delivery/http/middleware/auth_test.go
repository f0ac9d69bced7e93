package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"churchsite/internal/delivery/http/helpers"
	"churchsite/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTokenVerifier implements domain.TokenVerifier for tests.
type fakeTokenVerifier struct {
	adminID string
	err     error
}

func (f *fakeTokenVerifier) Verify(_ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.adminID, nil
}

var errExpired = fmt.Errorf("%w: token is expired", domain.ErrUnauthorized)

type authCase struct {
	name          string
	authHeader    string
	verifier      domain.TokenVerifier
	wantStatus    int
	wantBodyCode  string
	nextCalled    bool
	wantContextID string
}

func runAuthCases(t *testing.T, wrap func(http.HandlerFunc) http.HandlerFunc, tests []authCase) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextCalled := false
			var capturedAdminID string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				if id, ok := AdminIDFromContext(r.Context()); ok {
					capturedAdminID = id
				}
				w.WriteHeader(http.StatusOK)
			})
			req := httptest.NewRequest(http.MethodGet, "http://test/events", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()

			wrap(next)(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			assert.Equal(t, tt.nextCalled, nextCalled, "next handler called")
			assert.Equal(t, tt.wantContextID, capturedAdminID, "admin ID in context")
			if tt.wantBodyCode != "" {
				var envelope helpers.APIResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	runAuthCases(t, RequireAdmin(&fakeTokenVerifier{adminID: "admin-123"}, logger), []authCase{
		{
			name:          "valid token sets context and calls next",
			authHeader:    "Bearer valid-token",
			wantStatus:    http.StatusOK,
			nextCalled:    true,
			wantContextID: "admin-123",
		},
		{
			name:         "missing authorization header",
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
		},
		{
			name:         "invalid authorization format no Bearer prefix",
			authHeader:   "Basic abc",
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
		},
		{
			name:         "empty token after Bearer",
			authHeader:   "Bearer ",
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
		},
	})

	runAuthCases(t, RequireAdmin(&fakeTokenVerifier{err: errExpired}, logger), []authCase{
		{
			name:         "verifier rejects token",
			authHeader:   "Bearer bad-token",
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
		},
	})

	runAuthCases(t, RequireAdmin(&fakeTokenVerifier{err: domain.ErrForbidden}, logger), []authCase{
		{
			name:         "token without admin role",
			authHeader:   "Bearer member-token",
			wantStatus:   http.StatusForbidden,
			wantBodyCode: helpers.ErrCodeForbidden,
		},
	})
}

func TestOptionalAdmin(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	runAuthCases(t, OptionalAdmin(&fakeTokenVerifier{adminID: "admin-123"}, logger), []authCase{
		{
			name:       "anonymous request passes without admin",
			wantStatus: http.StatusOK,
			nextCalled: true,
		},
		{
			name:          "valid token sets admin",
			authHeader:    "Bearer valid-token",
			wantStatus:    http.StatusOK,
			nextCalled:    true,
			wantContextID: "admin-123",
		},
		{
			name:         "malformed header is rejected",
			authHeader:   "Token abc",
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
		},
	})

	runAuthCases(t, OptionalAdmin(&fakeTokenVerifier{err: errExpired}, logger), []authCase{
		{
			name:         "expired token is rejected",
			authHeader:   "Bearer old-token",
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
		},
	})

	runAuthCases(t, OptionalAdmin(&fakeTokenVerifier{err: domain.ErrForbidden}, logger), []authCase{
		{
			name:       "non-admin token gets the public view",
			authHeader: "Bearer member-token",
			wantStatus: http.StatusOK,
			nextCalled: true,
		},
	})
}

func TestAdminIDFromContext_empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := AdminIDFromContext(req.Context())
	assert.False(t, ok)
	_, ok = AdminIDFromContext(SetAdminID(req.Context(), ""))
	assert.False(t, ok)
}
