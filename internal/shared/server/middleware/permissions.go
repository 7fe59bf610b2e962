package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"job-tracker/internal/permissions"
	"job-tracker/internal/session"
	"job-tracker/internal/shared/server/respond"
)

const permissionsKey = "permissions"

// Permissions attaches a request-scoped permission cache for the identity the
// Auth middleware resolved. Unauthenticated requests get a signed-out cache.
func Permissions(lookup permissions.AdminLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(permissionsKey, permissions.New(SessionFromContext(c), lookup))
		c.Next()
	}
}

// SessionFromContext builds a session from the verified token, or a
// signed-out session when there is none.
func SessionFromContext(c *gin.Context) *session.Session {
	uid := UserIDFromContext(c)
	if uid == "" {
		return session.New(nil)
	}
	return session.New(&session.Identity{
		UID:      uid,
		Email:    UserEmailFromContext(c),
		Provider: ProviderFromContext(c),
	})
}

// PermissionsFromContext returns the request's permission cache. It is never
// nil; without the middleware it answers every question with false.
func PermissionsFromContext(c *gin.Context) *permissions.Cache {
	if c != nil {
		if val, ok := c.Get(permissionsKey); ok {
			if p, ok := val.(*permissions.Cache); ok {
				return p
			}
		}
	}
	return permissions.New(session.New(nil), permissions.AdminLookupFunc(denyAll))
}

func denyAll(context.Context, string) (bool, error) {
	return false, nil
}

// RequireAdmin aborts with 403 unless the caller is an admin.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		perms := PermissionsFromContext(c)
		if !perms.IsAuthenticated() {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}
		if !perms.IsAdmin(c.Request.Context()) {
			respond.Error(c, http.StatusForbidden, "forbidden", "You do not have permission to perform this action.", nil)
			return
		}
		c.Next()
	}
}
