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
)

func signTestToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	now := time.Now()
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(time.Hour).Unix()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(GetJWTSecret())
	require.NoError(t, err)
	return token
}

func performRequest(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func okHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func TestRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", RequireAuth(), okHandler)

	t.Run("missing token", func(t *testing.T) {
		w := performRequest(router, "/protected", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		w := performRequest(router, "/protected", "not.a.jwt")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		token := signTestToken(t, jwt.MapClaims{"sub": "u1", "email": "u1@example.com"})
		w := performRequest(router, "/protected", token)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("wrong signing key", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "u1",
			"exp": time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte("some_other_key"))
		require.NoError(t, err)
		w := performRequest(router, "/protected", token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireGlobalPermission(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/users", RequireGlobalPermission("users.read"), okHandler)
	router.GET("/admin", RequireGlobalPermission("users.read", "users.write"), okHandler)

	granted := signTestToken(t, jwt.MapClaims{
		"sub":                "u1",
		"global_permissions": []string{"users.read"},
	})
	assert.Equal(t, http.StatusOK, performRequest(router, "/users", granted).Code)

	// All listed permissions are required, not any-of.
	assert.Equal(t, http.StatusForbidden, performRequest(router, "/admin", granted).Code)

	none := signTestToken(t, jwt.MapClaims{"sub": "u2"})
	assert.Equal(t, http.StatusForbidden, performRequest(router, "/users", none).Code)
}

func TestRequireGlobalRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/staff", RequireGlobalRole("admin", "support"), okHandler)

	support := signTestToken(t, jwt.MapClaims{
		"sub":          "u1",
		"global_roles": []string{"support"},
	})
	assert.Equal(t, http.StatusOK, performRequest(router, "/staff", support).Code)

	viewer := signTestToken(t, jwt.MapClaims{
		"sub":          "u2",
		"global_roles": []string{"viewer"},
	})
	assert.Equal(t, http.StatusForbidden, performRequest(router, "/staff", viewer).Code)
}

func TestRequireServicePermission(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/services/:serviceId/scans", RequireServicePermission("serviceId", "scan.read"), okHandler)

	token := signTestToken(t, jwt.MapClaims{
		"sub": "u1",
		"services": map[string]interface{}{
			"svc-1": map[string]interface{}{
				"permissions": []string{"scan.read"},
				"roles":       []string{"operator"},
			},
		},
	})

	assert.Equal(t, http.StatusOK, performRequest(router, "/services/svc-1/scans", token).Code)

	// Grants are scoped: the same permission code in svc-1 does not open svc-2.
	assert.Equal(t, http.StatusForbidden, performRequest(router, "/services/svc-2/scans", token).Code)
}
