package helpers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"churchsite/internal/domain"
)

// Error codes for API error responses. Use these with WriteJSONError.
const (
	ErrCodeBadRequest            = "bad_request"
	ErrCodeUnauthorized          = "unauthorized"
	ErrCodeForbidden             = "forbidden"
	ErrCodeNotFound              = "not_found"
	ErrCodeDuplicateRegistration = "duplicate_registration"
	ErrCodeCapacityExceeded      = "capacity_exceeded"
	ErrCodeConflict              = "conflict"
	ErrCodeTooManyRequests       = "too_many_requests"
	ErrCodeInternalError         = "internal_error"
)

// APIError is the error object in the standardized API response envelope.
// swagger:model APIError
type APIError struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Details []domain.FieldError `json:"details,omitempty"`
}

// APIResponse is the standardized envelope for all API responses.
// On success: Data is set, Error is nil. On error: Data is nil, Error is set.
// swagger:model APIResponse
type APIResponse struct {
	Data  any       `json:"data"`
	Error *APIError `json:"error"`
}

// WriteJSONSuccess sets Content-Type to application/json, writes statusCode, and
// encodes an APIResponse with the given data and error set to nil.
func WriteJSONSuccess(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIResponse{Data: data, Error: nil})
}

// WriteJSONError sets Content-Type to application/json, writes statusCode, and
// encodes an APIResponse with data nil and the given error code and message.
func WriteJSONError(w http.ResponseWriter, statusCode int, code, message string) {
	WriteJSONErrorDetails(w, statusCode, code, message, nil)
}

// WriteJSONErrorDetails is WriteJSONError with per-field details.
func WriteJSONErrorDetails(w http.ResponseWriter, statusCode int, code, message string, details []domain.FieldError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIResponse{
		Data:  nil,
		Error: &APIError{Code: code, Message: message, Details: details},
	})
}

// WriteServiceError maps a service error onto the HTTP taxonomy.
// Unrecognised errors are logged with op and attrs and reported as a generic 500.
func WriteServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, op string, err error, attrs ...any) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		WriteJSONErrorDetails(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid input", verr.Fields)
	case errors.Is(err, domain.ErrInvalidInput):
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		WriteJSONError(w, http.StatusNotFound, ErrCodeNotFound, "not found")
	case errors.Is(err, domain.ErrDuplicateRegistration):
		WriteJSONError(w, http.StatusConflict, ErrCodeDuplicateRegistration, domain.ErrDuplicateRegistration.Error())
	case errors.Is(err, domain.ErrCapacityExceeded):
		WriteJSONError(w, http.StatusConflict, ErrCodeCapacityExceeded, domain.ErrCapacityExceeded.Error())
	case errors.Is(err, domain.ErrAlreadySubscribed):
		WriteJSONError(w, http.StatusConflict, ErrCodeConflict, domain.ErrAlreadySubscribed.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		WriteJSONError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid credentials")
	case errors.Is(err, domain.ErrForbidden):
		WriteJSONError(w, http.StatusForbidden, ErrCodeForbidden, "forbidden")
	default:
		args := []any{"op", op, "method", r.Method, "path", r.URL.Path}
		if id := RequestIDFromContext(r.Context()); id != "" {
			args = append(args, "request_id", id)
		}
		args = append(args, attrs...)
		args = append(args, "err", err)
		logger.ErrorContext(r.Context(), "request failed", args...)
		WriteJSONError(w, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
	}
}
