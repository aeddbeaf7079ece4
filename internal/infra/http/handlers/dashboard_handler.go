package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/xavierca1/leadflow/internal/usecase"
)

type DashboardHandler struct {
	Dashboard *usecase.DashboardUseCase
	Reports   *usecase.ReportUseCase
	Logger    logrus.FieldLogger
}

func NewDashboardHandler(dashboard *usecase.DashboardUseCase, reports *usecase.ReportUseCase, logger logrus.FieldLogger) *DashboardHandler {
	return &DashboardHandler{Dashboard: dashboard, Reports: reports, Logger: logger}
}

func (h *DashboardHandler) Routes(r chi.Router) {
	r.Get("/dashboard/stats", h.Stats)
	r.Get("/reports/leads", h.LeadsReport)
}

func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Dashboard.Stats(r.Context(), currentUser(r))
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// LeadsReport (GET /reports/leads) streams an xlsx download; it accepts the
// same filters as GET /leads.
func (h *DashboardHandler) LeadsReport(w http.ResponseWriter, r *http.Request) {
	filter, err := leadFilterFromQuery(r)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, usecase.CodeValidation, err.Error())
		return
	}

	report, err := h.Reports.LeadsReport(r.Context(), currentUser(r), filter)
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.FileName+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(report.Content)
}
