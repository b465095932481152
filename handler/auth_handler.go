package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"cims/models"
	"cims/service"
	"cims/utils"
)

// AuthHandler issues citizen and official tokens
type AuthHandler struct {
	profiles       *service.ProfileService
	jwtSecret      []byte
	expiresInHours int
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(profiles *service.ProfileService, jwtSecret string, expiresInHours int) *AuthHandler {
	return &AuthHandler{
		profiles:       profiles,
		jwtSecret:      []byte(jwtSecret),
		expiresInHours: expiresInHours,
	}
}

// OfficialLogin handles POST /auth/official/login
func (h *AuthHandler) OfficialLogin(w http.ResponseWriter, r *http.Request) {
	var req models.OfficialLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Failed to parse request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondWithError(w, http.StatusBadRequest, "Validation error", "Email and password are required")
		return
	}

	resp, err := h.profiles.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Invalid email or password")
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal error", "Login failed")
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

// CitizenToken handles POST /auth/citizen/token. It identifies a citizen by
// email for issue submission and tracking; upstream identity verification is
// outside this service.
func (h *AuthHandler) CitizenToken(w http.ResponseWriter, r *http.Request) {
	var req models.CitizenTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Failed to parse request body")
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		respondWithError(w, http.StatusBadRequest, "Validation error", "A valid email is required")
		return
	}

	token, err := utils.GenerateCitizenJWT(email, req.Name, h.jwtSecret, h.expiresInHours)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal error", "Failed to sign token")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"token": token})
}
