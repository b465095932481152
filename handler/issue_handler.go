package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"cims/middleware"
	"cims/models"
	"cims/repository"
	"cims/service"
)

// IssueHandler handles citizen-facing issue endpoints
type IssueHandler struct {
	issues *service.IssueService
}

// NewIssueHandler creates a new issue handler
func NewIssueHandler(issues *service.IssueService) *IssueHandler {
	return &IssueHandler{issues: issues}
}

// SubmitIssue handles POST /issues
func (h *IssueHandler) SubmitIssue(w http.ResponseWriter, r *http.Request) {
	email, name, ok := middleware.CitizenFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Citizen identity not found in context")
		return
	}

	var req models.SubmitIssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Failed to parse request body")
		return
	}
	if req.CitizenName == "" {
		req.CitizenName = name
	}

	issue, err := h.issues.SubmitIssue(r.Context(), email, &req)
	if err != nil {
		if isValidationError(err) {
			respondWithError(w, http.StatusBadRequest, "Validation error", err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Internal error", "Failed to submit complaint")
		return
	}
	respondWithJSON(w, http.StatusCreated, issue)
}

// ListIssues handles GET /issues?status=pending,seen
func (h *IssueHandler) ListIssues(w http.ResponseWriter, r *http.Request) {
	email, _, ok := middleware.CitizenFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Citizen identity not found in context")
		return
	}

	var issues []models.Issue
	var err error
	if raw := r.URL.Query().Get("status"); raw != "" {
		var statuses []models.IssueStatus
		for _, s := range strings.Split(raw, ",") {
			status := models.IssueStatus(strings.TrimSpace(s))
			if _, known := models.IssueStatusLabels[status]; !known {
				respondWithError(w, http.StatusBadRequest, "Validation error", "Unknown status: "+s)
				return
			}
			statuses = append(statuses, status)
		}
		issues, err = h.issues.ListIssuesByStatus(r.Context(), email, statuses...)
	} else {
		issues, err = h.issues.ListIssues(r.Context(), email)
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal error", "Failed to load issues")
		return
	}
	if issues == nil {
		issues = []models.Issue{}
	}
	respondWithJSON(w, http.StatusOK, issues)
}

// GetIssue handles GET /issues/{id}
func (h *IssueHandler) GetIssue(w http.ResponseWriter, r *http.Request) {
	email, _, ok := middleware.CitizenFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Citizen identity not found in context")
		return
	}
	id := mux.Vars(r)["id"]

	issue, err := h.issues.GetIssue(r.Context(), email, id)
	if errors.Is(err, repository.ErrNotFound) || errors.Is(err, service.ErrNotVisible) {
		respondWithError(w, http.StatusNotFound, "Not found", "Issue not found")
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal error", "Failed to load issue")
		return
	}
	respondWithJSON(w, http.StatusOK, issue)
}

// AnalyzeIssue handles POST /issues/analyze
func (h *IssueHandler) AnalyzeIssue(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeIssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Failed to parse request body")
		return
	}

	analysis, err := h.issues.AnalyzeIssueImage(r.Context(), &req)
	if err != nil {
		if isValidationError(err) {
			respondWithError(w, http.StatusBadRequest, "Validation error", err.Error())
			return
		}
		respondWithError(w, http.StatusBadGateway, "AI error", "Image analysis failed")
		return
	}
	respondWithJSON(w, http.StatusOK, analysis)
}

// ListNotifications handles GET /notifications
func (h *IssueHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	email, _, ok := middleware.CitizenFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Citizen identity not found in context")
		return
	}
	notifications, err := h.issues.GetNotifications(r.Context(), email)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal error", "Failed to load notifications")
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	respondWithJSON(w, http.StatusOK, notifications)
}

// MarkNotificationRead handles POST /notifications/{id}/read
func (h *IssueHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	email, _, ok := middleware.CitizenFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Citizen identity not found in context")
		return
	}
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation error", "Invalid notification id")
		return
	}
	if err := h.issues.MarkNotificationRead(r.Context(), email, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Not found", "Notification not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Internal error", "Failed to update notification")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// isValidationError reports whether the error is a request problem rather than
// a backend failure.
func isValidationError(err error) bool {
	var verr service.ValidationError
	return errors.As(err, &verr)
}
