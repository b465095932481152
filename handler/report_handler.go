package handler

import (
	"net/http"
	"time"

	"cims/models"
	"cims/service"
)

// ReportHandler serves the aggregated resolution reports
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// parseReportTime accepts either a full RFC3339 timestamp or a plain
// date, which is taken as midnight UTC.
func parseReportTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	return time.Parse("2006-01-02", value)
}

// GetReport handles GET /dept/reports?start=...&end=...&department=...
// The range is half-open: complaints created at or after start and
// strictly before end are counted.
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	if _, ok := officialFromRequest(w, r); !ok {
		return
	}

	query := r.URL.Query()

	start, err := parseReportTime(query.Get("start"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation error", "start must be a date or an RFC3339 timestamp")
		return
	}
	end, err := parseReportTime(query.Get("end"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation error", "end must be a date or an RFC3339 timestamp")
		return
	}

	var department *models.DepartmentType
	if raw := query.Get("department"); raw != "" {
		dept := models.DepartmentType(raw)
		if !models.ValidDepartment(dept) {
			respondWithError(w, http.StatusBadRequest, "Validation error", "Unknown department")
			return
		}
		department = &dept
	}

	report, err := h.reports.Generate(r.Context(), start, end, department)
	if err != nil {
		if isValidationError(err) {
			respondWithError(w, http.StatusBadRequest, "Validation error", err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Internal error", "Failed to generate report")
		return
	}
	respondWithJSON(w, http.StatusOK, report)
}
