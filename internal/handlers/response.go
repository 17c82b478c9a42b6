package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"cctv-survey/internal/services"
	"cctv-survey/internal/strapi"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"message": message,
	})
}

func writeFile(w http.ResponseWriter, fileName string, body []byte) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fileName))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// statusFor maps service and backend errors onto a response status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrUnsupportedFormat), errors.Is(err, services.ErrEmptySheet):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrAuditDisabled):
		return http.StatusServiceUnavailable
	}

	if strapi.IsNotFound(err) {
		return http.StatusNotFound
	}
	var apiErr *strapi.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusUnauthorized, http.StatusForbidden:
			return apiErr.Status
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
