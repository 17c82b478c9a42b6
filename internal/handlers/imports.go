package handlers

import (
	"fmt"
	"net/http"

	"cctv-survey/internal/services"
	"cctv-survey/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ImportRunHandler serves the audit trail of past imports.
type ImportRunHandler struct {
	runs services.RunStore
	logr *zap.Logger
}

func NewImportRunHandler(runs services.RunStore, logr *zap.Logger) *ImportRunHandler {
	return &ImportRunHandler{runs: runs, logr: logr}
}

// List handles GET /imports?limit=&offset=
func (h *ImportRunHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := utils.ParseIntParam(q, "limit", 20, 100)
	offset := utils.ParseIntParam(q, "offset", 0, 0)

	runs, err := h.runs.ListRuns(r.Context(), limit, offset)
	if err != nil {
		h.logr.Error("failed to list import runs", zap.Error(err))
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": runs})
}

// Get handles GET /imports/{id}
func (h *ImportRunHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid import id")
		return
	}

	run, err := h.runs.GetRun(r.Context(), id)
	if err != nil {
		h.logr.Warn("failed to fetch import run", zap.Error(err), zap.String("id", id.String()))
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": run})
}

// Report handles GET /imports/{id}/report
func (h *ImportRunHandler) Report(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid import id")
		return
	}

	run, err := h.runs.GetRun(r.Context(), id)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	body, err := services.GenerateImportReport(run)
	if err != nil {
		h.logr.Error("failed to build import report", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to build report")
		return
	}
	writeFile(w, fmt.Sprintf("import_%s_%s.xlsx", run.Kind, run.StartedAt.Format("20060102_150405")), body)
}
