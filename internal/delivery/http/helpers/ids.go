package helpers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"churchsite/internal/domain"
)

// ParseID validates raw as a UUID and returns it in canonical form.
// A missing value is a 400; a malformed one cannot name a stored row and is a 404.
func ParseID(w http.ResponseWriter, field, raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		WriteJSONErrorDetails(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid input",
			[]domain.FieldError{{Field: field, Message: "is required"}})
		return "", false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		WriteJSONError(w, http.StatusNotFound, ErrCodeNotFound, "not found")
		return "", false
	}
	return id.String(), true
}
