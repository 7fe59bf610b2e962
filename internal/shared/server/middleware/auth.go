package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"job-tracker/internal/shared/auth"
	"job-tracker/internal/shared/server/respond"
)

const (
	userIDKey    = "userId"
	userEmailKey = "userEmail"
	providerKey  = "authProvider"
	claimsKey    = "authClaims"
)

// RevocationChecker reports whether a token id was revoked by logout.
type RevocationChecker interface {
	IsRevoked(tokenID string) bool
}

var publicPrefixes = []string{
	"/api/v1/health",
	"/api/v1/auth/",
	"/metrics",
}

// Auth validates bearer JWTs and stores identity in context. Websocket
// upgrades may pass the token as the access_token query parameter.
func Auth(revocations RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		path := c.Request.URL.Path
		for _, prefix := range publicPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		token := BearerToken(c)
		if token == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		claims, err := auth.VerifyJWT(token)
		if err != nil {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}
		if revocations != nil && revocations.IsRevoked(claims.TokenID()) {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "session has ended, please sign in again", nil)
			return
		}

		c.Set(userIDKey, claims.UserID())
		if claims.Email != "" {
			c.Set(userEmailKey, claims.Email)
		}
		c.Set(providerKey, claims.Provider)
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// BearerToken returns the raw token from the Authorization header, or from
// the access_token query parameter on websocket upgrades.
func BearerToken(c *gin.Context) string {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	if authHeader != "" {
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return ""
		}
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
	}
	if strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
		return strings.TrimSpace(c.Query("access_token"))
	}
	return ""
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}

// UserEmailFromContext fetches the user email set by the auth middleware.
func UserEmailFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userEmailKey)
	if email, ok := val.(string); ok {
		return email
	}
	return ""
}

// ProviderFromContext fetches the sign-in provider of the current token.
func ProviderFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(providerKey)
	if p, ok := val.(string); ok {
		return p
	}
	return ""
}

// ClaimsFromContext returns the verified token claims, if any.
func ClaimsFromContext(c *gin.Context) (auth.Claims, bool) {
	if c == nil {
		return auth.Claims{}, false
	}
	val, ok := c.Get(claimsKey)
	if !ok {
		return auth.Claims{}, false
	}
	claims, ok := val.(auth.Claims)
	return claims, ok
}
