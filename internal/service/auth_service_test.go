package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/LnD-Brainstaiton/ld-training-api/internal/models"
)

type authUserStub struct {
	users      map[string]*models.User
	lastLogins map[string]time.Time
}

func newAuthUserStub() *authUserStub {
	return &authUserStub{users: map[string]*models.User{}, lastLogins: map[string]time.Time{}}
}

func (r *authUserStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *authUserStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *authUserStub) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	r.lastLogins[id] = ts
	return nil
}

func newAuthServiceForTest(t *testing.T) (*AuthService, *authUserStub) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("sup3rsecret"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := newAuthUserStub()
	repo.users["user-1"] = &models.User{
		ID:           "user-1",
		Email:        "admin@example.com",
		PasswordHash: string(hash),
		FullName:     "Admin User",
		Role:         models.RoleAdmin,
		Active:       true,
	}
	svc := NewAuthService(repo, nil, zap.NewNop(), AuthConfig{
		Secret:             "test-secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
	})
	return svc, repo
}

func TestAuthServiceLogin(t *testing.T) {
	svc, repo := newAuthServiceForTest(t)
	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@example.com",
		Password: "sup3rsecret",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)
	assert.NotEqual(t, resp.AccessToken, resp.RefreshToken)
	assert.Equal(t, models.RoleAdmin, resp.User.Role)
	assert.Contains(t, repo.lastLogins, "user-1")
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthServiceForTest(t)
	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@example.com",
		Password: "wrong",
	})
	require.Error(t, err)
}

func TestAuthServiceLoginInactiveAccount(t *testing.T) {
	svc, repo := newAuthServiceForTest(t)
	repo.users["user-1"].Active = false
	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@example.com",
		Password: "sup3rsecret",
	})
	require.Error(t, err)
}

func TestAuthServiceValidateToken(t *testing.T) {
	svc, _ := newAuthServiceForTest(t)
	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@example.com",
		Password: "sup3rsecret",
	})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestAuthServiceValidateTokenRejectsRefreshToken(t *testing.T) {
	svc, _ := newAuthServiceForTest(t)
	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@example.com",
		Password: "sup3rsecret",
	})
	require.NoError(t, err)

	_, err = svc.ValidateToken(resp.RefreshToken)
	require.Error(t, err)
}

func TestAuthServiceRefresh(t *testing.T) {
	svc, _ := newAuthServiceForTest(t)
	login, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@example.com",
		Password: "sup3rsecret",
	})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), models.RefreshTokenRequest{
		RefreshToken: login.RefreshToken,
	})
	require.NoError(t, err)
	require.NotEmpty(t, refreshed.AccessToken)

	claims, err := svc.ValidateToken(refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestAuthServiceRefreshRejectsAccessToken(t *testing.T) {
	svc, _ := newAuthServiceForTest(t)
	login, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@example.com",
		Password: "sup3rsecret",
	})
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), models.RefreshTokenRequest{
		RefreshToken: login.AccessToken,
	})
	require.Error(t, err)
}

func TestAuthServiceExpiredToken(t *testing.T) {
	svc, _ := newAuthServiceForTest(t)
	login, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@example.com",
		Password: "sup3rsecret",
	})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.ValidateToken(login.AccessToken)
	require.Error(t, err)
}
