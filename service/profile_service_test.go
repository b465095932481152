package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cims/models"
	"cims/utils"
)

func seedOfficial(t *testing.T, store *fakeProfileStore, email, password string, role models.UserRole) *models.Profile {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	p := &models.Profile{
		Email:        email,
		FullName:     "Test Official",
		Department:   models.DeptMunicipal,
		Role:         role,
		PasswordHash: hash,
	}
	require.NoError(t, store.CreateProfile(p))
	return p
}

func TestLogin(t *testing.T) {
	store := newFakeProfileStore()
	svc := NewProfileService(store, "test-secret", 72)
	seedOfficial(t, store, "official@municipal.gov", "s3cret", models.RoleOfficial)
	ctx := context.Background()

	resp, err := svc.Login(ctx, "official@municipal.gov", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "official@municipal.gov", resp.Profile.Email)

	_, err = svc.Login(ctx, "official@municipal.gov", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown email reads the same as a bad password.
	_, err = svc.Login(ctx, "nobody@municipal.gov", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestPromoteRoleRequiresAdmin(t *testing.T) {
	store := newFakeProfileStore()
	svc := NewProfileService(store, "test-secret", 72)
	ctx := context.Background()

	admin := seedOfficial(t, store, "admin@municipal.gov", "pw", models.RoleAdmin)
	official := seedOfficial(t, store, "official@municipal.gov", "pw", models.RoleOfficial)

	err := svc.PromoteRole(ctx, official, admin.ID, models.RoleOfficial)
	assert.ErrorIs(t, err, ErrRoleDenied)

	require.NoError(t, svc.PromoteRole(ctx, admin, official.ID, models.RoleAdmin))
	updated, err := svc.GetProfile(ctx, official.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, updated.Role)

	err = svc.PromoteRole(ctx, admin, official.ID, "overlord")
	assert.Error(t, err)
}

func TestCreateOfficial(t *testing.T) {
	store := newFakeProfileStore()
	svc := NewProfileService(store, "test-secret", 72)
	ctx := context.Background()

	admin := seedOfficial(t, store, "admin@municipal.gov", "pw", models.RoleAdmin)

	profile := &models.Profile{
		Email:      "water@water.gov",
		FullName:   "Water Official",
		Department: models.DeptWater,
	}
	require.NoError(t, svc.CreateOfficial(ctx, admin, profile, "initial-pw"))
	assert.Equal(t, models.RoleOfficial, profile.Role, "role defaults to official")
	assert.NoError(t, utils.CheckPassword("initial-pw", profile.PasswordHash))

	resp, err := svc.Login(ctx, "water@water.gov", "initial-pw")
	require.NoError(t, err)
	assert.Equal(t, models.DeptWater, resp.Profile.Department)

	// Non-admins cannot create officials.
	err = svc.CreateOfficial(ctx, profile, &models.Profile{Email: "x@y.gov", Department: models.DeptPWD}, "pw")
	assert.ErrorIs(t, err, ErrRoleDenied)

	// Unknown departments are rejected.
	err = svc.CreateOfficial(ctx, admin, &models.Profile{Email: "z@y.gov", Department: "space"}, "pw")
	assert.Error(t, err)
}
