package strapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// APIError is the error body the backend returns on non-2xx responses.
type APIError struct {
	Status  int             `json:"status"`
	Name    string          `json:"name"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("strapi %d %s: %s", e.Status, e.Name, e.Message)
	}
	return fmt.Sprintf("strapi %d: %s", e.Status, e.Message)
}

// IsUniqueViolation reports whether err is the backend rejecting a create
// because a unique attribute already holds the value.
func IsUniqueViolation(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Status != 400 {
		return false
	}
	if strings.Contains(strings.ToLower(apiErr.Message), "unique") {
		return true
	}
	return strings.Contains(strings.ToLower(string(apiErr.Details)), "unique")
}

// IsNotFound reports a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == 404
}
