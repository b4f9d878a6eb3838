// server/internal/api/middleware/gate.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// GateConfig configures the page gate.
type GateConfig struct {
	CookieName      string
	DashboardPrefix string
	// Strict makes the gate open the token instead of only checking that the
	// cookie is there. Identity is required when Strict is set.
	Strict   bool
	Identity IdentityFunc
}

var gateBypass = []string{"/api/", "/assets/"}

// Gate routes page requests between the login page and the dashboard.
//
//	no cookie, path != "/"        -> 307 to "/"
//	no cookie, path == "/"        -> serve login
//	cookie, path outside prefix   -> 307 to prefix
//	cookie, path under prefix     -> serve dashboard
func Gate(cfg GateConfig) gin.HandlerFunc {
	prefix := strings.TrimRight(cfg.DashboardPrefix, "/")
	if prefix == "" {
		prefix = "/dashboard"
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if skipGate(path) {
			c.Next()
			return
		}

		if !hasSession(c, cfg) {
			if path != "/" {
				c.Redirect(http.StatusTemporaryRedirect, "/")
				c.Abort()
				return
			}
			c.Next()
			return
		}

		if !underPrefix(path, prefix) {
			c.Redirect(http.StatusTemporaryRedirect, prefix)
			c.Abort()
			return
		}
		c.Next()
	}
}

func hasSession(c *gin.Context, cfg GateConfig) bool {
	token, err := c.Cookie(cfg.CookieName)
	if err != nil || token == "" {
		return false
	}
	if cfg.Strict && cfg.Identity != nil {
		return cfg.Identity(token) != nil
	}
	return true
}

func skipGate(path string) bool {
	if path == "/favicon.ico" || path == "/api" || path == "/assets" {
		return true
	}
	for _, p := range gateBypass {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// underPrefix matches "/dashboard" and "/dashboard/..." but not "/dashboards".
func underPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
