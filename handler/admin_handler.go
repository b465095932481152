package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"cims/models"
	"cims/repository"
	"cims/service"
)

// AdminHandler handles official profile and admin endpoints
type AdminHandler struct {
	profiles *service.ProfileService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(profiles *service.ProfileService) *AdminHandler {
	return &AdminHandler{profiles: profiles}
}

// GetOwnProfile handles GET /dept/profile
func (h *AdminHandler) GetOwnProfile(w http.ResponseWriter, r *http.Request) {
	official, ok := officialFromRequest(w, r)
	if !ok {
		return
	}
	respondWithJSON(w, http.StatusOK, official)
}

// UpdateOwnProfile handles PUT /dept/profile
func (h *AdminHandler) UpdateOwnProfile(w http.ResponseWriter, r *http.Request) {
	official, ok := officialFromRequest(w, r)
	if !ok {
		return
	}

	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Failed to parse request body")
		return
	}
	if req.FullName == nil && req.Location == nil {
		respondWithError(w, http.StatusBadRequest, "Validation error", "Nothing to update")
		return
	}

	if err := h.profiles.UpdateProfile(r.Context(), official.ID, req.FullName, req.Location); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal error", "Failed to update profile")
		return
	}
	profile, err := h.profiles.GetProfile(r.Context(), official.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal error", "Failed to load profile")
		return
	}
	respondWithJSON(w, http.StatusOK, profile)
}

// ListProfiles handles GET /admin/profiles
func (h *AdminHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	if _, ok := officialFromRequest(w, r); !ok {
		return
	}
	profiles, err := h.profiles.ListProfiles(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal error", "Failed to load profiles")
		return
	}
	if profiles == nil {
		profiles = []models.Profile{}
	}
	respondWithJSON(w, http.StatusOK, profiles)
}

// CreateOfficial handles POST /admin/profiles
func (h *AdminHandler) CreateOfficial(w http.ResponseWriter, r *http.Request) {
	actor, ok := officialFromRequest(w, r)
	if !ok {
		return
	}

	var req models.CreateOfficialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Failed to parse request body")
		return
	}

	profile := &models.Profile{
		Email:      req.Email,
		FullName:   req.FullName,
		Department: req.Department,
		Role:       req.Role,
		Location:   req.Location,
	}
	err := h.profiles.CreateOfficial(r.Context(), actor, profile, req.Password)
	switch {
	case errors.Is(err, service.ErrRoleDenied):
		respondWithError(w, http.StatusForbidden, "Forbidden", "Admin role required")
	case err != nil:
		respondWithError(w, http.StatusBadRequest, "Validation error", err.Error())
	default:
		respondWithJSON(w, http.StatusCreated, profile)
	}
}

// UpdateRole handles PUT /admin/profiles/{id}/role
func (h *AdminHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := officialFromRequest(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	var req models.UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Failed to parse request body")
		return
	}

	err := h.profiles.PromoteRole(r.Context(), actor, id, req.Role)
	switch {
	case errors.Is(err, service.ErrRoleDenied):
		respondWithError(w, http.StatusForbidden, "Forbidden", "Admin role required")
	case errors.Is(err, repository.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Not found", "Profile not found")
	case err != nil:
		respondWithError(w, http.StatusBadRequest, "Validation error", err.Error())
	default:
		respondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}
