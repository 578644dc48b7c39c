package middleware

import (
	"net/http"
	"os"
	"strings"

	"userhub/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func GetJWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			panic("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		secret = "default_super_secret_key" // Development fallback only — DO NOT use in production
	}
	return []byte(secret)
}

// SetTokenCookies sets access_token and refresh_token as HttpOnly cookies
func SetTokenCookies(c *gin.Context, accessToken, refreshToken string) {
	// Production (cross-origin): SameSiteNoneMode + Secure=true
	// Development (same-site):   SameSiteLaxMode  + Secure=false
	sameSite := http.SameSiteLaxMode
	secure := false
	if os.Getenv("GIN_MODE") == "release" {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	c.SetSameSite(sameSite)
	c.SetCookie("access_token", accessToken, 3600*24, "/", "", secure, true)
	c.SetCookie("refresh_token", refreshToken, 3600*24*7, "/", "", secure, true)
}

// ClearTokenCookies removes access_token and refresh_token cookies
func ClearTokenCookies(c *gin.Context) {
	sameSite := http.SameSiteLaxMode
	secure := false
	if os.Getenv("GIN_MODE") == "release" {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	c.SetSameSite(sameSite)
	c.SetCookie("access_token", "", -1, "/", "", secure, true)
	c.SetCookie("refresh_token", "", -1, "/", "", secure, true)
}

// parseClaims extracts and validates the access token from the cookie or
// Authorization header. All authorization decisions read the flattened
// claims directly from the token — no database round trip per request.
func parseClaims(c *gin.Context) (jwt.MapClaims, bool) {
	tokenString, cookieErr := c.Cookie("access_token")
	if cookieErr != nil || tokenString == "" {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return nil, false
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid authorization format. Expected 'Bearer <token>'"))
			return nil, false
		}
		tokenString = parts[1]
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return GetJWTSecret(), nil
	})
	if err != nil || !token.Valid {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
		return nil, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token claims"))
		return nil, false
	}

	c.Set("userID", claims["sub"])
	c.Set("email", claims["email"])
	c.Set("claims", claims)

	return claims, true
}

// RequireAuth validates the access token without any permission check.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := parseClaims(c); !ok {
			return
		}
		c.Next()
	}
}

// RequireGlobalPermission validates the token and checks that every listed
// permission code is present in the global_permissions claim.
func RequireGlobalPermission(requiredPerms ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseClaims(c)
		if !ok {
			return
		}

		granted := claimStringSet(claims["global_permissions"])
		for _, required := range requiredPerms {
			if !granted[required] {
				c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: missing permission '"+required+"'"))
				return
			}
		}

		c.Next()
	}
}

// RequireGlobalRole validates the token and checks that the user holds at
// least one of the listed global roles.
func RequireGlobalRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseClaims(c)
		if !ok {
			return
		}

		held := claimStringSet(claims["global_roles"])
		for _, role := range allowedRoles {
			if held[role] {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient role"))
	}
}

// RequireServicePermission validates the token and checks the permission
// inside the service entry named by the given path parameter. Permissions
// granted for one service never authorize requests against another.
func RequireServicePermission(serviceParam, required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseClaims(c)
		if !ok {
			return
		}

		serviceID := c.Param(serviceParam)
		services, ok := claims["services"].(map[string]interface{})
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: no service grants"))
			return
		}

		entry, ok := services[serviceID].(map[string]interface{})
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: not assigned to service"))
			return
		}

		granted := claimStringSet(entry["permissions"])
		if !granted[required] {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: missing permission '"+required+"'"))
			return
		}

		c.Next()
	}
}

// claimStringSet converts a decoded JSON claim list into a lookup set.
// JWT claims round-trip through JSON, so lists arrive as []interface{}.
func claimStringSet(claim interface{}) map[string]bool {
	set := make(map[string]bool)
	items, ok := claim.([]interface{})
	if !ok {
		return set
	}
	for _, item := range items {
		if s, ok := item.(string); ok {
			set[s] = true
		}
	}
	return set
}
