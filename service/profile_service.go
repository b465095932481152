package service

import (
	"context"
	"errors"
	"fmt"

	"cims/models"
	"cims/repository"
	"cims/utils"
)

// ProfileService handles official authentication and profile management.
type ProfileService struct {
	profiles       ProfileStore
	jwtSecret      []byte
	expiresInHours int
}

// NewProfileService creates a new profile service
func NewProfileService(profiles ProfileStore, jwtSecret string, expiresInHours int) *ProfileService {
	return &ProfileService{
		profiles:       profiles,
		jwtSecret:      []byte(jwtSecret),
		expiresInHours: expiresInHours,
	}
}

// Login authenticates an official by email and password and returns a signed
// token plus the profile.
func (s *ProfileService) Login(ctx context.Context, email, password string) (*models.OfficialLoginResponse, error) {
	profile, err := s.profiles.GetProfileByEmail(email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := utils.CheckPassword(password, profile.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateOfficialJWT(profile, s.jwtSecret, s.expiresInHours)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &models.OfficialLoginResponse{Token: token, Profile: profile}, nil
}

// GetProfile returns one official profile by id.
func (s *ProfileService) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	return s.profiles.GetProfileByID(id)
}

// ListProfiles returns all official profiles, newest first.
func (s *ProfileService) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	return s.profiles.GetAllProfiles()
}

// UpdateProfile updates the mutable display fields of the acting official.
func (s *ProfileService) UpdateProfile(ctx context.Context, id string, fullName, location *string) error {
	return s.profiles.UpdateProfile(id, fullName, location)
}

// PromoteRole changes another official's role. Only admins may do this.
func (s *ProfileService) PromoteRole(ctx context.Context, actor *models.Profile, targetID string, role models.UserRole) error {
	if actor.Role != models.RoleAdmin {
		return ErrRoleDenied
	}
	if role != models.RoleOfficial && role != models.RoleAdmin {
		return fmt.Errorf("unknown role %q", role)
	}
	return s.profiles.UpdateRole(targetID, role)
}

// CreateOfficial registers a new department official with a hashed password.
// Admin-only; used for seeding departments and onboarding.
func (s *ProfileService) CreateOfficial(ctx context.Context, actor *models.Profile, profile *models.Profile, password string) error {
	if actor.Role != models.RoleAdmin {
		return ErrRoleDenied
	}
	if profile.Email == "" || password == "" {
		return errors.New("email and password are required")
	}
	if !models.ValidDepartment(profile.Department) {
		return fmt.Errorf("unknown department %q", profile.Department)
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	profile.PasswordHash = hash
	if profile.Role == "" {
		profile.Role = models.RoleOfficial
	}
	return s.profiles.CreateProfile(profile)
}
