package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/efile-routing-api/internal/dto"
	"github.com/noah-isme/efile-routing-api/internal/middleware"
	"github.com/noah-isme/efile-routing-api/internal/models"
	"github.com/noah-isme/efile-routing-api/internal/service"
	appErrors "github.com/noah-isme/efile-routing-api/pkg/errors"
)

type authServiceMock struct {
	loginResp    *dto.TokenResponse
	loginErr     error
	logoutErr    error
	lastMeta     service.RequestMeta
	lastUserID   string
	logoutCalled bool
}

func (m *authServiceMock) Login(ctx context.Context, req dto.LoginRequest, meta service.RequestMeta) (*dto.TokenResponse, error) {
	m.lastMeta = meta
	return m.loginResp, m.loginErr
}

func (m *authServiceMock) Refresh(ctx context.Context, req dto.RefreshRequest, meta service.RequestMeta) (*dto.TokenResponse, error) {
	return m.loginResp, m.loginErr
}

func (m *authServiceMock) Logout(ctx context.Context, refreshToken, userID string) error {
	m.logoutCalled = true
	m.lastUserID = userID
	return m.logoutErr
}

func TestAuthHandlerLogin(t *testing.T) {
	mockSvc := &authServiceMock{
		loginResp: &dto.TokenResponse{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer"},
	}
	handler := NewAuthHandler(mockSvc)

	payload, _ := json.Marshal(dto.LoginRequest{Email: "clerk@example.gov", Password: "secret-pass-1"})
	c, w := testContext(t, http.MethodPost, "/auth/login", payload)
	c.Request.Header.Set("User-Agent", "test-agent")

	handler.Login(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "test-agent", mockSvc.lastMeta.UserAgent)

	envelope := decodeEnvelope(t, w)
	assert.Nil(t, envelope.Error)
}

func TestAuthHandlerLoginInvalidBody(t *testing.T) {
	handler := NewAuthHandler(&authServiceMock{})

	c, w := testContext(t, http.MethodPost, "/auth/login", []byte(`{"email":`))

	handler.Login(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandlerLoginFailure(t *testing.T) {
	mockSvc := &authServiceMock{loginErr: appErrors.ErrInvalidCredentials}
	handler := NewAuthHandler(mockSvc)

	payload, _ := json.Marshal(dto.LoginRequest{Email: "clerk@example.gov", Password: "wrong-password"})
	c, w := testContext(t, http.MethodPost, "/auth/login", payload)

	handler.Login(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	envelope := decodeEnvelope(t, w)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "INVALID_CREDENTIALS", envelope.Error.Code)
}

func TestAuthHandlerLogout(t *testing.T) {
	mockSvc := &authServiceMock{}
	handler := NewAuthHandler(mockSvc)

	payload, _ := json.Marshal(dto.RefreshRequest{RefreshToken: "refresh"})
	c, w := testContext(t, http.MethodPost, "/auth/logout", payload)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleEfilingUser})

	handler.Logout(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, mockSvc.logoutCalled)
	assert.Equal(t, "user-1", mockSvc.lastUserID)
}

func TestAuthHandlerLogoutWithoutClaims(t *testing.T) {
	mockSvc := &authServiceMock{}
	handler := NewAuthHandler(mockSvc)

	payload, _ := json.Marshal(dto.RefreshRequest{RefreshToken: "refresh"})
	c, w := testContext(t, http.MethodPost, "/auth/logout", payload)

	handler.Logout(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, mockSvc.logoutCalled)
}
