package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"cims/middleware"
	"cims/models"
	"cims/repository"
	"cims/service"
	"cims/storage"
)

// DepartmentHandler handles the department dashboard endpoints
type DepartmentHandler struct {
	complaints *service.ComplaintService
	redirects  *service.RedirectService
	uploader   storage.Uploader
}

// NewDepartmentHandler creates a new department handler
func NewDepartmentHandler(
	complaints *service.ComplaintService,
	redirects *service.RedirectService,
	uploader storage.Uploader,
) *DepartmentHandler {
	return &DepartmentHandler{
		complaints: complaints,
		redirects:  redirects,
		uploader:   uploader,
	}
}

func officialFromRequest(w http.ResponseWriter, r *http.Request) (*models.Profile, bool) {
	profile, ok := middleware.OfficialFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Official profile not found in context")
		return nil, false
	}
	return profile, true
}

// GetQueue handles GET /dept/complaints?status=new|in_progress|completed
func (h *DepartmentHandler) GetQueue(w http.ResponseWriter, r *http.Request) {
	official, ok := officialFromRequest(w, r)
	if !ok {
		return
	}

	status := models.ComplaintStatus(r.URL.Query().Get("status"))
	switch status {
	case "", models.StatusNew, models.StatusInProgress, models.StatusCompleted, models.StatusRedirected:
	default:
		respondWithError(w, http.StatusBadRequest, "Validation error", "Unknown status filter")
		return
	}

	complaints, err := h.complaints.GetQueue(r.Context(), official.Department, status)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal error", "Failed to load complaints")
		return
	}
	if complaints == nil {
		complaints = []models.Complaint{}
	}
	respondWithJSON(w, http.StatusOK, complaints)
}

// GetComplaint handles GET /dept/complaints/{id}
func (h *DepartmentHandler) GetComplaint(w http.ResponseWriter, r *http.Request) {
	official, ok := officialFromRequest(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	complaint, err := h.complaints.GetComplaint(r.Context(), id, official.Department)
	if errors.Is(err, repository.ErrNotFound) || errors.Is(err, service.ErrNotVisible) {
		respondWithError(w, http.StatusNotFound, "Not found", "Complaint not found")
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal error", "Failed to load complaint")
		return
	}
	respondWithJSON(w, http.StatusOK, complaint)
}

// GetRedirects handles GET /dept/complaints/{id}/redirects
func (h *DepartmentHandler) GetRedirects(w http.ResponseWriter, r *http.Request) {
	if _, ok := officialFromRequest(w, r); !ok {
		return
	}
	id := mux.Vars(r)["id"]

	redirects, err := h.complaints.GetRedirectHistory(r.Context(), id)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal error", "Failed to load redirect history")
		return
	}
	if redirects == nil {
		redirects = []models.ComplaintRedirect{}
	}
	respondWithJSON(w, http.StatusOK, redirects)
}

// Accept handles POST /dept/complaints/{id}/accept
func (h *DepartmentHandler) Accept(w http.ResponseWriter, r *http.Request) {
	official, ok := officialFromRequest(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	err := h.complaints.Accept(r.Context(), id, official)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Not found", "Complaint not found")
	case errors.Is(err, repository.ErrConflict):
		respondWithError(w, http.StatusConflict, "Conflict", "Complaint was already accepted")
	case errors.Is(err, service.ErrNotVisible):
		respondWithError(w, http.StatusForbidden, "Forbidden", "Complaint belongs to another department")
	case errors.Is(err, service.ErrInvalidTransition):
		respondWithError(w, http.StatusConflict, "Conflict", err.Error())
	case err != nil:
		respondWithError(w, http.StatusInternalServerError, "Internal error", "Failed to accept complaint")
	default:
		respondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

// Redirect handles POST /dept/complaints/{id}/redirect
func (h *DepartmentHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	official, ok := officialFromRequest(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	var req models.RedirectRequest
	if r.Body != nil && r.Body != http.NoBody {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
			respondWithError(w, http.StatusBadRequest, "Invalid request", "Failed to parse request body")
			return
		}
	}

	redirect, err := h.redirects.Redirect(r.Context(), id, official, req.Reason)
	switch {
	case errors.Is(err, service.ErrRedirectRestricted):
		respondWithError(w, http.StatusForbidden, "Forbidden", "Your department can only accept complaints")
	case errors.Is(err, repository.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Not found", "Complaint not found")
	case errors.Is(err, service.ErrInvalidTransition), errors.Is(err, repository.ErrConflict):
		respondWithError(w, http.StatusConflict, "Conflict", "Complaint is already completed")
	case err != nil:
		respondWithError(w, http.StatusInternalServerError, "Internal error", "Failed to redirect complaint")
	default:
		respondWithJSON(w, http.StatusOK, redirect)
	}
}

// AdvanceStage handles POST /dept/complaints/{id}/stage
func (h *DepartmentHandler) AdvanceStage(w http.ResponseWriter, r *http.Request) {
	official, ok := officialFromRequest(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	var req models.AdvanceStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Failed to parse request body")
		return
	}

	err := h.complaints.AdvanceStage(r.Context(), id, official, req.Stage)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Not found", "Complaint not found")
	case errors.Is(err, service.ErrNotAssigned):
		respondWithError(w, http.StatusForbidden, "Forbidden", "Complaint is not assigned to your department")
	case errors.Is(err, service.ErrInvalidTransition):
		respondWithError(w, http.StatusConflict, "Conflict", err.Error())
	case err != nil:
		respondWithError(w, http.StatusInternalServerError, "Internal error", "Failed to update stage")
	default:
		respondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

// maxSolutionImageBytes bounds the multipart solution image upload.
const maxSolutionImageBytes = 10 << 20

// Complete handles POST /dept/complaints/{id}/complete with a multipart
// solution_image file. The image is required before anything is written.
func (h *DepartmentHandler) Complete(w http.ResponseWriter, r *http.Request) {
	official, ok := officialFromRequest(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	if err := r.ParseMultipartForm(maxSolutionImageBytes); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation error", "A solution image is required")
		return
	}
	file, header, err := r.FormFile("solution_image")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation error", "A solution image is required")
		return
	}
	defer file.Close()

	body, err := io.ReadAll(io.LimitReader(file, maxSolutionImageBytes+1))
	if err != nil || len(body) == 0 {
		respondWithError(w, http.StatusBadRequest, "Validation error", "Failed to read solution image")
		return
	}
	if len(body) > maxSolutionImageBytes {
		respondWithError(w, http.StatusBadRequest, "Validation error", "Solution image too large, maximum size is 10MB")
		return
	}

	// State check before the upload, so a rejected completion leaves no
	// orphaned object in the bucket.
	if err := h.complaints.CanComplete(r.Context(), id, official); err != nil {
		writeCompleteError(w, err)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	key := fmt.Sprintf("solution_%s_%s", id, uuid.New().String())
	result, err := h.uploader.Upload(r.Context(), storage.UploadInput{
		Key:         key,
		Body:        body,
		ContentType: contentType,
	})
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal error", "Failed to store solution image")
		return
	}

	if err := h.complaints.Complete(r.Context(), id, official, result.URL); err != nil {
		writeCompleteError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"ok":             true,
		"solution_image": result.URL,
	})
}

func writeCompleteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Not found", "Complaint not found")
	case errors.Is(err, service.ErrNotAssigned):
		respondWithError(w, http.StatusForbidden, "Forbidden", "Complaint is not assigned to your department")
	case errors.Is(err, service.ErrInvalidTransition):
		respondWithError(w, http.StatusConflict, "Conflict", err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, "Internal error", "Failed to complete complaint")
	}
}
