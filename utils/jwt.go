package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"cims/models"
)

// GenerateCitizenJWT signs a token for a citizen, scoped to citizen endpoints.
func GenerateCitizenJWT(email, name string, secret []byte, expiresInHours int) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"email":      email,
		"name":       name,
		"actor_type": "citizen",
		"exp":        now.Add(time.Duration(expiresInHours) * time.Hour).Unix(),
		"iat":        now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// GenerateOfficialJWT signs a token for a department official; the token is
// scoped to official endpoints and citizen endpoints must reject it.
func GenerateOfficialJWT(profile *models.Profile, secret []byte, expiresInHours int) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"official_id": profile.ID,
		"department":  string(profile.Department),
		"role":        string(profile.Role),
		"actor_type":  "official",
		"exp":         now.Add(time.Duration(expiresInHours) * time.Hour).Unix(),
		"iat":         now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}
