package accounts

import (
	"context"
	"errors"
	"testing"

	"github.com/pinobite/storefront/internal/auth"
	"github.com/pinobite/storefront/internal/models"
	"github.com/pinobite/storefront/internal/store"
	"github.com/pinobite/storefront/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*Service, *store.Store) {
	db := testutil.NewDB(t)
	st := store.New(db.DB)
	return NewService(st, nil), st
}

func register(t *testing.T, svc *Service, username, email string) *models.User {
	t.Helper()
	user, err := svc.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    email,
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	return user
}

func TestRegisterProvisionsExactlyOneProfile(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	user := register(t, svc, "ana", "ana@example.com")
	require.NotNil(t, user.Profile)
	assert.Equal(t, models.TierMember, user.Profile.Tier)
	assert.True(t, user.Profile.Savings.IsZero())
	assert.False(t, user.IsStaff)

	var count int64
	require.NoError(t, st.DB(ctx).Model(&models.UserProfile{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)
	assert.True(t, auth.CheckPassword(user.PasswordHash, "s3cret-pass"))
}

func TestRegisterDuplicate(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()
	register(t, svc, "ana", "ana@example.com")

	_, err := svc.Register(ctx, RegisterInput{Username: "ana", Email: "other@example.com", Password: "s3cret-pass"})
	require.ErrorIs(t, err, ErrDuplicateUser)

	var fields models.FieldErrors
	require.True(t, errors.As(err, &fields))
	assert.Equal(t, "unique", fields["username"])
	assert.NotContains(t, fields, "email")

	var users, profiles int64
	st.DB(ctx).Model(&models.User{}).Count(&users)
	st.DB(ctx).Model(&models.UserProfile{}).Count(&profiles)
	assert.Equal(t, int64(1), users)
	assert.Equal(t, int64(1), profiles)
}

func TestAuthenticate(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()
	user := register(t, svc, "ana", "ana@example.com")

	got, err := svc.Authenticate(ctx, "ana@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	got, err = svc.Authenticate(ctx, "ana", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Authenticate(ctx, "ana", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, st.DB(ctx).Model(&models.User{}).Where("id = ?", user.ID).Update("is_active", false).Error)
	_, err = svc.Authenticate(ctx, "ana", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticatePrefersEmail(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	// A username that looks like someone else's email.
	byEmail := register(t, svc, "ana", "ana@example.com")
	_, err := svc.Register(ctx, RegisterInput{Username: "ana@example.com", Email: "impostor@example.com", Password: "other-pass"})
	require.NoError(t, err)

	got, err := svc.Authenticate(ctx, "ana@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, byEmail.ID, got.ID)
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	user := register(t, svc, "ana", "ana@example.com")

	phone := "9876543210"
	address := "12 MG Road, Bengaluru"
	profile, err := svc.UpdateProfile(ctx, user.ID, ProfilePatch{Phone: &phone, Address: &address}, false)
	require.NoError(t, err)
	assert.Equal(t, phone, *profile.Phone)
	assert.Equal(t, address, *profile.Address)

	points := 500
	_, err = svc.UpdateProfile(ctx, user.ID, ProfilePatch{Points: &points}, false)
	var fields models.FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Equal(t, "readonly", fields["points"])

	tier := models.TierProElite
	savings := decimal.RequireFromString("120.50")
	profile, err = svc.UpdateProfile(ctx, user.ID, ProfilePatch{Points: &points, Tier: &tier, Savings: &savings}, true)
	require.NoError(t, err)
	assert.Equal(t, 500, profile.Points)
	assert.Equal(t, models.TierProElite, profile.Tier)

	bad := models.Tier("Platinum")
	_, err = svc.UpdateProfile(ctx, user.ID, ProfilePatch{Tier: &bad}, true)
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields, "tier")

	reloaded, err := svc.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TierProElite, reloaded.Profile.Tier)
	assert.Equal(t, phone, *reloaded.Profile.Phone)
}

func TestEnsureProfiles(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	orphan := &models.User{Username: "legacy", Email: "legacy@example.com", PasswordHash: "x", IsStaff: true, IsActive: true}
	require.NoError(t, st.DB(ctx).Omit("Profile").Create(orphan).Error)
	register(t, svc, "ana", "ana@example.com")

	n, err := svc.EnsureProfiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	user, err := svc.Get(ctx, orphan.ID)
	require.NoError(t, err)
	require.NotNil(t, user.Profile)

	n, err = svc.EnsureProfiles(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSetPassword(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()
	user := register(t, svc, "ana", "ana@example.com")

	require.NoError(t, SetPassword(ctx, st, user.ID, "brand-new-pass"))

	_, err := svc.Authenticate(ctx, "ana", "brand-new-pass")
	assert.NoError(t, err)
	_, err = svc.Authenticate(ctx, "ana", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	assert.ErrorIs(t, SetPassword(ctx, st, 9999, "whatever-pass"), store.ErrNotFound)
}
