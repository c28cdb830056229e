package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/efile-routing-api/internal/models"
	"github.com/noah-isme/efile-routing-api/internal/service"
	"github.com/noah-isme/efile-routing-api/pkg/config"
)

const testSecret = "middleware-test-secret"

func newJWTFixture() *service.AuthService {
	// ValidateToken never touches the repository, so the middleware can be
	// exercised without one.
	return service.NewAuthService(nil, nil, config.JWTConfig{Secret: testSecret, Expiration: time.Hour}, nil)
}

func signedToken(t *testing.T, userID string, role models.UserRole, expiresIn time.Duration) string {
	t.Helper()
	now := time.Now().UTC()
	claims := &models.JWTClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func middlewareContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodGet, "/files/file-1/recipients", nil)
	require.NoError(t, err)
	c.Request = req
	return c, w
}

func TestJWTMissingHeader(t *testing.T) {
	c, w := middlewareContext(t)

	JWT(newJWTFixture())(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.True(t, c.IsAborted())
}

func TestJWTMalformedHeader(t *testing.T) {
	c, w := middlewareContext(t)
	c.Request.Header.Set("Authorization", "Token abc")

	JWT(newJWTFixture())(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.True(t, c.IsAborted())
}

func TestJWTExpiredToken(t *testing.T) {
	c, w := middlewareContext(t)
	c.Request.Header.Set("Authorization", "Bearer "+signedToken(t, "user-1", models.RoleEfilingUser, -time.Minute))

	JWT(newJWTFixture())(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.True(t, c.IsAborted())
}

func TestJWTValidTokenSetsClaims(t *testing.T) {
	c, w := middlewareContext(t)
	c.Request.Header.Set("Authorization", "Bearer "+signedToken(t, "user-1", models.RoleEfilingUser, time.Hour))

	JWT(newJWTFixture())(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, c.IsAborted())

	value, exists := c.Get(ContextUserKey)
	require.True(t, exists)
	claims, ok := value.(*models.JWTClaims)
	require.True(t, ok)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleEfilingUser, claims.Role)
}

func TestRequireRolesMissingClaims(t *testing.T) {
	c, w := middlewareContext(t)

	RequireRoles(models.RoleEfilingUser)(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.True(t, c.IsAborted())
}

func TestRequireRolesForbidden(t *testing.T) {
	c, w := middlewareContext(t)
	c.Set(ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.UserRole("VIEWER")})

	RequireRoles(models.RoleSystemAdmin, models.RoleEfilingUser)(c)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.True(t, c.IsAborted())
}

func TestRequireRolesAllows(t *testing.T) {
	c, w := middlewareContext(t)
	c.Set(ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleEfilingUser})

	RequireRoles(models.RoleSystemAdmin, models.RoleEfilingUser)(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, c.IsAborted())
}
