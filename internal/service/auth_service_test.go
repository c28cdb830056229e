package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/efile-routing-api/internal/dto"
	"github.com/noah-isme/efile-routing-api/internal/models"
	"github.com/noah-isme/efile-routing-api/pkg/config"
	appErrors "github.com/noah-isme/efile-routing-api/pkg/errors"
)

type authRepoStub struct {
	users    map[string]*models.User
	tokens   map[string]*models.RefreshToken
	revoked  []string
	auditLog []*models.AuditLog
}

func newAuthRepoStub() *authRepoStub {
	return &authRepoStub{
		users:  map[string]*models.User{},
		tokens: map[string]*models.RefreshToken{},
	}
}

func (s *authRepoStub) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *authRepoStub) FindByID(_ context.Context, id string) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (s *authRepoStub) UpdateLastLogin(_ context.Context, _ string, _ time.Time) error { return nil }

func (s *authRepoStub) CreateRefreshToken(_ context.Context, token *models.RefreshToken) error {
	s.tokens[token.Token] = token
	return nil
}

func (s *authRepoStub) FindRefreshToken(_ context.Context, token string) (*models.RefreshToken, error) {
	rt, ok := s.tokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return rt, nil
}

func (s *authRepoStub) RevokeRefreshToken(_ context.Context, id string, _ time.Time) error {
	s.revoked = append(s.revoked, id)
	for _, rt := range s.tokens {
		if rt.ID == id {
			rt.Revoked = true
		}
	}
	return nil
}

func (s *authRepoStub) CreateAuditLog(_ context.Context, log *models.AuditLog) error {
	s.auditLog = append(s.auditLog, log)
	return nil
}

func newAuthFixture(t *testing.T) (*AuthService, *authRepoStub) {
	t.Helper()
	repo := newAuthRepoStub()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret-pass-1"), bcrypt.MinCost)
	require.NoError(t, err)
	repo.users["user-1"] = &models.User{
		ID: "user-1", Email: "clerk@example.gov", PasswordHash: string(hash),
		Role: models.RoleEfilingUser, Active: true,
	}
	cfg := config.JWTConfig{Secret: "test-secret", Expiration: time.Hour, RefreshExpiration: 24 * time.Hour}
	return NewAuthService(repo, nil, cfg, nil), repo
}

func TestLoginSuccess(t *testing.T) {
	svc, repo := newAuthFixture(t)

	tokens, err := svc.Login(context.Background(), dto.LoginRequest{
		Email: "clerk@example.gov", Password: "secret-pass-1",
	}, RequestMeta{IP: "10.0.0.1"})
	require.NoError(t, err)

	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, "Bearer", tokens.TokenType)
	assert.Len(t, repo.auditLog, 1)
	assert.Equal(t, models.AuditActionLogin, repo.auditLog[0].Action)

	claims, err := svc.ValidateToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleEfilingUser, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email: "clerk@example.gov", Password: "wrong-password",
	}, RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, "INVALID_CREDENTIALS", appErrors.FromError(err).Code)
}

func TestLoginInactiveAccount(t *testing.T) {
	svc, repo := newAuthFixture(t)
	repo.users["user-1"].Active = false

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email: "clerk@example.gov", Password: "secret-pass-1",
	}, RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, "ACCOUNT_INACTIVE", appErrors.FromError(err).Code)
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, repo := newAuthFixture(t)

	tokens, err := svc.Login(context.Background(), dto.LoginRequest{
		Email: "clerk@example.gov", Password: "secret-pass-1",
	}, RequestMeta{})
	require.NoError(t, err)

	rotated, err := svc.Refresh(context.Background(), dto.RefreshRequest{RefreshToken: tokens.RefreshToken}, RequestMeta{})
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)
	assert.Len(t, repo.revoked, 1, "used token must be revoked")

	// The consumed token cannot be replayed.
	_, err = svc.Refresh(context.Background(), dto.RefreshRequest{RefreshToken: tokens.RefreshToken}, RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", appErrors.FromError(err).Code)
}

func TestRefreshExpiredToken(t *testing.T) {
	svc, repo := newAuthFixture(t)
	repo.tokens["stale"] = &models.RefreshToken{
		ID: "rt-1", UserID: "user-1", Token: "stale",
		ExpiresAt: time.Now().UTC().Add(-time.Hour),
	}

	_, err := svc.Refresh(context.Background(), dto.RefreshRequest{RefreshToken: "stale"}, RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc, _ := newAuthFixture(t)
	_, err := svc.ValidateToken("not-a-jwt")
	require.Error(t, err)
}

func TestLogout(t *testing.T) {
	svc, repo := newAuthFixture(t)

	tokens, err := svc.Login(context.Background(), dto.LoginRequest{
		Email: "clerk@example.gov", Password: "secret-pass-1",
	}, RequestMeta{})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), tokens.RefreshToken, "user-1"))
	assert.Len(t, repo.revoked, 1)

	err = svc.Logout(context.Background(), tokens.RefreshToken, "someone-else")
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", appErrors.FromError(err).Code)
}
