package handlers

import (
	"net/http"
	"strings"

	mdlwr "cctv-survey/internal/middleware"
	"cctv-survey/internal/services"
	"cctv-survey/internal/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxUploadBytes bounds a spreadsheet upload.
const maxUploadBytes = 20 << 20

type BOQHandler struct {
	imports  *services.BOQImportService
	boqs     *services.BOQService
	catalogs *services.CatalogService
	logr     *zap.Logger
}

func NewBOQHandler(
	imports *services.BOQImportService,
	boqs *services.BOQService,
	catalogs *services.CatalogService,
	logr *zap.Logger,
) *BOQHandler {
	return &BOQHandler{imports: imports, boqs: boqs, catalogs: catalogs, logr: logr}
}

// Import handles POST /boqs/import (multipart field "file").
func (h *BOQHandler) Import(w http.ResponseWriter, r *http.Request) {
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

	h.logr.Info("boq import started",
		zap.String("file", header.Filename),
		zap.Int64("size", header.Size),
		zap.String("user_id", mdlwr.UserID(r.Context())))

	summary, err := h.imports.Import(r.Context(), file, header.Filename)
	if err != nil {
		h.logr.Error("boq import failed", zap.Error(err), zap.String("file", header.Filename))
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "import finished",
		"data":    summary,
	})
}

// List handles GET /boqs?page=&pageSize=&search=&division=
func (h *BOQHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := services.BOQListParams{
		Page:      utils.ParseIntParam(q, "page", 1, 0),
		PageSize:  utils.ParseIntParam(q, "pageSize", 10, 100),
		Search:    strings.TrimSpace(q.Get("search")),
		Divisions: utils.ParseQueryList(q, "division"),
	}

	resp, err := h.boqs.List(r.Context(), params)
	if err != nil {
		h.logr.Error("failed to list boqs", zap.Error(err))
		writeError(w, statusFor(err), "failed to list BOQs")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    resp.Data,
		"meta": map[string]any{
			"pagination": resp.Pagination,
			"page_total": resp.PageTotal,
			"formatted":  services.FormatINR(resp.PageTotal),
		},
	})
}

// Total handles GET /boqs/total
func (h *BOQHandler) Total(w http.ResponseWriter, r *http.Request) {
	total, err := h.boqs.GrandTotal(r.Context())
	if err != nil {
		h.logr.Error("failed to compute grand total", zap.Error(err))
		writeError(w, statusFor(err), "failed to compute grand total")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": total})
}

// Template handles GET /boqs/template
func (h *BOQHandler) Template(w http.ResponseWriter, r *http.Request) {
	refs, err := h.catalogs.Load(r.Context())
	if err != nil {
		h.logr.Error("failed to load catalogs for template", zap.Error(err))
		writeError(w, statusFor(err), "failed to load equipment catalogs")
		return
	}
	body, err := services.GenerateBOQTemplate(refs)
	if err != nil {
		h.logr.Error("failed to build boq template", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to build template")
		return
	}
	writeFile(w, "boq_template.xlsx", body)
}

// Export handles GET /boqs/export
func (h *BOQHandler) Export(w http.ResponseWriter, r *http.Request) {
	records, err := h.boqs.Records(r.Context())
	if err != nil {
		h.logr.Error("failed to fetch boqs for export", zap.Error(err))
		writeError(w, statusFor(err), "failed to fetch BOQs")
		return
	}
	body, err := services.ExportBOQs(records)
	if err != nil {
		h.logr.Error("failed to build boq export", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to build export")
		return
	}
	writeFile(w, "boqs.xlsx", body)
}

// Delete handles DELETE /boqs/{id}
func (h *BOQHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if strings.TrimSpace(id) == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.boqs.Delete(r.Context(), id); err != nil {
		h.logr.Error("failed to delete boq", zap.Error(err), zap.String("id", id))
		writeError(w, statusFor(err), "failed to delete BOQ")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "BOQ deleted"})
}
