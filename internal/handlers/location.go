package handlers

import (
	"encoding/json"
	"net/http"

	mdlwr "cctv-survey/internal/middleware"
	"cctv-survey/internal/services"

	"go.uber.org/zap"
)

type LocationHandler struct {
	imports *services.LocationImportService
	logr    *zap.Logger
}

func NewLocationHandler(imports *services.LocationImportService, logr *zap.Logger) *LocationHandler {
	return &LocationHandler{imports: imports, logr: logr}
}

// Import handles POST /locations/import (multipart field "file").
func (h *LocationHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart upload")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	h.logr.Info("location import started",
		zap.String("file", header.Filename),
		zap.Int64("size", header.Size),
		zap.String("user_id", mdlwr.UserID(r.Context())))

	summary, err := h.imports.Import(r.Context(), file, header.Filename)
	if err != nil {
		h.logr.Error("location import failed", zap.Error(err), zap.String("file", header.Filename))
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "import finished",
		"data":    summary,
	})
}

// Template handles GET /locations/template
func (h *LocationHandler) Template(w http.ResponseWriter, r *http.Request) {
	body, err := services.GenerateLocationTemplate()
	if err != nil {
		h.logr.Error("failed to build location template", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to build template")
		return
	}
	writeFile(w, "location_template.xlsx", body)
}

type normalizeRequest struct {
	Values []any `json:"values"`
}

// NormalizeCoordinates handles POST /coordinates/normalize {"values": [...]}.
// Results line up with the input; empty values come back as null.
func (h *LocationHandler) NormalizeCoordinates(w http.ResponseWriter, r *http.Request) {
	var req normalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out := make([]*string, len(req.Values))
	for i, v := range req.Values {
		out[i] = services.NormalizeCoordinate(v)
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": out})
}
