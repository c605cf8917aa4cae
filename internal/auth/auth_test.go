package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pinobite/storefront/internal/config"
	"github.com/pinobite/storefront/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIssuer(now time.Time) *TokenIssuer {
	issuer := NewTokenIssuer(config.AuthConfig{
		Secret:     "test-secret",
		Issuer:     "storefront",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
	})
	issuer.Clock = func() time.Time { return now }
	return issuer
}

func TestIssueAndParse(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	issuer := newIssuer(now)

	pair, err := issuer.Issue(&models.User{ID: 42, IsStaff: true})
	require.NoError(t, err)

	claims, err := issuer.ParseAccess(pair.Access)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.True(t, claims.Staff)
	assert.NotEmpty(t, claims.ID)

	_, err = issuer.ParseAccess(pair.Refresh)
	assert.ErrorIs(t, err, ErrInvalidToken, "refresh token must not authenticate requests")
}

func TestAccessTokenExpires(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	issuer := newIssuer(now)

	pair, err := issuer.Issue(&models.User{ID: 1})
	require.NoError(t, err)

	issuer.Clock = func() time.Time { return now.Add(16 * time.Minute) }
	_, err = issuer.ParseAccess(pair.Access)
	assert.ErrorIs(t, err, ErrInvalidToken)

	access, err := issuer.Refresh(context.Background(), pair.Refresh, loader(&models.User{ID: 1, IsActive: true}))
	require.NoError(t, err)
	_, err = issuer.ParseAccess(access)
	assert.NoError(t, err)
}

func loader(user *models.User) UserLoader {
	return func(_ context.Context, id int64) (*models.User, error) {
		if id != user.ID {
			return nil, errors.New("no such user")
		}
		return user, nil
	}
}

func TestRefreshReloadsUser(t *testing.T) {
	issuer := newIssuer(time.Now())
	ctx := context.Background()

	pair, err := issuer.Issue(&models.User{ID: 3})
	require.NoError(t, err)

	access, err := issuer.Refresh(ctx, pair.Refresh, loader(&models.User{ID: 3, IsStaff: true, IsActive: true}))
	require.NoError(t, err)
	claims, err := issuer.ParseAccess(access)
	require.NoError(t, err)
	assert.True(t, claims.Staff, "staff flag follows the stored user")

	_, err = issuer.Refresh(ctx, pair.Refresh, loader(&models.User{ID: 3, IsActive: false}))
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Refresh(ctx, pair.Refresh, loader(&models.User{ID: 4, IsActive: true}))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	issuer := newIssuer(time.Now())

	pair, err := issuer.Issue(&models.User{ID: 1})
	require.NoError(t, err)

	_, err = issuer.Refresh(context.Background(), pair.Access, loader(&models.User{ID: 1, IsActive: true}))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenFromOtherSecretRejected(t *testing.T) {
	now := time.Now()
	other := NewTokenIssuer(config.AuthConfig{Secret: "other", Issuer: "storefront", AccessTTL: time.Minute, RefreshTTL: time.Hour})
	pair, err := other.Issue(&models.User{ID: 1})
	require.NoError(t, err)

	_, err = newIssuer(now).ParseAccess(pair.Access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "wrong horse"))
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	issuer := newIssuer(time.Now())

	r := gin.New()
	r.GET("/me", RequireAuth(issuer), func(c *gin.Context) {
		p, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"id": p.UserID})
	})
	r.GET("/admin", RequireAuth(issuer), RequireStaff(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	customer, err := issuer.Issue(&models.User{ID: 7})
	require.NoError(t, err)
	staff, err := issuer.Issue(&models.User{ID: 8, IsStaff: true})
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		token  string
		status int
	}{
		{"no token", "/me", "", http.StatusUnauthorized},
		{"garbage token", "/me", "nope", http.StatusUnauthorized},
		{"customer", "/me", customer.Access, http.StatusOK},
		{"refresh as access", "/me", customer.Refresh, http.StatusUnauthorized},
		{"customer on staff route", "/admin", customer.Access, http.StatusForbidden},
		{"staff on staff route", "/admin", staff.Access, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}
