// server/internal/api/middleware/auth.go
package middleware

import (
	"net/http"

	"fsic-records-api-server/internal/auth"
	"fsic-records-api-server/internal/models"

	"github.com/gin-gonic/gin"
)

const sessionKey = "session"

// IdentityFunc opens a session cookie value. It returns nil for anything that
// is not a valid, unexpired token.
type IdentityFunc func(token string) *auth.Session

// Authenticate guards the JSON API. The session cookie must open; the
// identity is stored on the context for handlers and Authorize.
func Authenticate(cookieName string, identity IdentityFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Success: false, Error: "Authentication required"})
			return
		}

		session := identity(token)
		if session == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Success: false, Error: "Invalid or expired session"})
			return
		}

		c.Set(sessionKey, session)
		c.Next()
	}
}

// Authorize only lets the listed roles through. It must run after Authenticate.
func Authorize(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := CurrentUser(c)
		if session == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Success: false, Error: "Authentication required"})
			return
		}

		for _, role := range allowedRoles {
			if role == session.Role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, models.ActionResult{Success: false, Message: "You do not have permission to access this resource"})
	}
}

// CurrentUser returns the identity set by Authenticate, or nil.
func CurrentUser(c *gin.Context) *auth.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	session, _ := v.(*auth.Session)
	return session
}
