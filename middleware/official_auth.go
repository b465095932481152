package middleware

import (
	"context"
	"net/http"

	"cims/models"
	"cims/service"
)

const officialKey contextKey = "official"

// OfficialAuthMiddleware validates official JWT tokens and loads the acting
// profile so downstream guards see the current role and department, not the
// ones baked into the token at login time.
type OfficialAuthMiddleware struct {
	profiles  *service.ProfileService
	jwtSecret []byte
}

// NewOfficialAuthMiddleware creates a new official auth middleware
func NewOfficialAuthMiddleware(profiles *service.ProfileService, jwtSecret string) *OfficialAuthMiddleware {
	return &OfficialAuthMiddleware{profiles: profiles, jwtSecret: []byte(jwtSecret)}
}

// RequireOfficialAuth validates the bearer token, loads the profile, and puts
// it in the request context.
func (m *OfficialAuthMiddleware) RequireOfficialAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := parseBearerToken(w, r, m.jwtSecret)
		if !ok {
			return
		}
		if at, _ := claims["actor_type"].(string); at != "official" {
			respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Citizen token not accepted for this endpoint.")
			return
		}
		officialID, _ := claims["official_id"].(string)
		if officialID == "" {
			respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Invalid token: official_id not found.")
			return
		}

		profile, err := m.profiles.GetProfile(r.Context(), officialID)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Official profile not found.")
			return
		}

		ctx := context.WithValue(r.Context(), officialKey, profile)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin allows only officials with the admin role. Must run inside
// RequireOfficialAuth.
func (m *OfficialAuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		profile, ok := OfficialFromContext(r.Context())
		if !ok {
			respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Official profile not found in context.")
			return
		}
		if profile.Role != models.RoleAdmin {
			respondWithError(w, http.StatusForbidden, "Forbidden", "Admin role required.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// OfficialFromContext returns the authenticated official's profile.
func OfficialFromContext(ctx context.Context) (*models.Profile, bool) {
	profile, ok := ctx.Value(officialKey).(*models.Profile)
	return profile, ok
}

// ContextWithOfficial attaches a profile the way RequireOfficialAuth does;
// handler tests use it to skip the token round trip.
func ContextWithOfficial(ctx context.Context, profile *models.Profile) context.Context {
	return context.WithValue(ctx, officialKey, profile)
}
