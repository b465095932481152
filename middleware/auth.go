package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const (
	citizenEmailKey contextKey = "citizen_email"
	citizenNameKey  contextKey = "citizen_name"
)

// AuthMiddleware validates citizen JWT tokens.
type AuthMiddleware struct {
	jwtSecret []byte
}

// NewAuthMiddleware creates a new citizen auth middleware
func NewAuthMiddleware(jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{jwtSecret: []byte(jwtSecret)}
}

// RequireAuth validates the bearer token and puts the citizen identity in the
// request context. Official tokens are rejected on citizen endpoints.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := parseBearerToken(w, r, m.jwtSecret)
		if !ok {
			return
		}
		if at, _ := claims["actor_type"].(string); at != "citizen" {
			respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Official token not accepted for this endpoint.")
			return
		}
		email, _ := claims["email"].(string)
		if email == "" {
			respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Invalid token: email not found.")
			return
		}
		name, _ := claims["name"].(string)

		ctx := context.WithValue(r.Context(), citizenEmailKey, email)
		ctx = context.WithValue(ctx, citizenNameKey, name)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CitizenFromContext returns the authenticated citizen's email and name.
func CitizenFromContext(ctx context.Context) (email, name string, ok bool) {
	email, ok = ctx.Value(citizenEmailKey).(string)
	name, _ = ctx.Value(citizenNameKey).(string)
	return email, name, ok
}

// parseBearerToken extracts and validates the Authorization header, writing an
// error response and returning ok=false on any failure.
func parseBearerToken(w http.ResponseWriter, r *http.Request, secret []byte) (jwt.MapClaims, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Authorization header required.")
		return nil, false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Invalid authorization format. Expected: Bearer <token>")
		return nil, false
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Invalid or expired token.")
		return nil, false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Invalid token claims.")
		return nil, false
	}
	return claims, true
}

// respondWithError writes a JSON error response
func respondWithError(w http.ResponseWriter, statusCode int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	fmt.Fprintf(w, `{"error":%q,"message":%q,"code":%d}`, errorType, message, statusCode)
}
