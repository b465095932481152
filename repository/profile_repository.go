package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"cims/models"
)

// ProfileRepository handles database operations for department officials
type ProfileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `id, email, full_name, department, role, location, password_hash, created_at`

func scanProfile(row rowScanner) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(
		&p.ID, &p.Email, &p.FullName, &p.Department, &p.Role,
		&p.Location, &p.PasswordHash, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProfile inserts a new official profile
func (r *ProfileRepository) CreateProfile(profile *models.Profile) error {
	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}
	profile.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO profiles (id, email, full_name, department, role, location, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(
		query,
		profile.ID, profile.Email, profile.FullName, string(profile.Department),
		string(profile.Role), profile.Location, profile.PasswordHash, profile.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// GetProfileByID retrieves an official by ID
func (r *ProfileRepository) GetProfileByID(id string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = ?`
	profile, err := scanProfile(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// GetProfileByEmail retrieves an official by login email
func (r *ProfileRepository) GetProfileByEmail(email string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE email = ?`
	profile, err := scanProfile(r.db.QueryRow(query, email))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile by email: %w", err)
	}
	return profile, nil
}

// GetAllProfiles returns all official profiles, newest first
func (r *ProfileRepository) GetAllProfiles() ([]models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles ORDER BY created_at DESC`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, *profile)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profiles: %w", err)
	}
	return profiles, nil
}

// UpdateRole changes an official's role
func (r *ProfileRepository) UpdateRole(id string, role models.UserRole) error {
	result, err := r.db.Exec(`UPDATE profiles SET role = ? WHERE id = ?`, string(role), id)
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateProfile updates the mutable display fields of a profile
func (r *ProfileRepository) UpdateProfile(id string, fullName, location *string) error {
	result, err := r.db.Exec(`
		UPDATE profiles
		SET full_name = COALESCE(?, full_name), location = COALESCE(?, location)
		WHERE id = ?
	`, fullName, location, id)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
