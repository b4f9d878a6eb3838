// server/internal/api/handlers/page_handler.go
package handlers

import (
	"net/http"
	"strings"

	"fsic-records-api-server/internal/api/middleware"

	"github.com/gin-gonic/gin"
)

// PageHandler serves the login page and the dashboard shell. The gate has
// already routed the request; the identity here is only for display.
type PageHandler struct {
	CookieName      string
	DashboardPrefix string
	Identity        middleware.IdentityFunc
}

func (h *PageHandler) Login(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{"DashboardPrefix": h.DashboardPrefix})
}

// Dashboard renders the shell with the caller's name and role. A cookie that
// fails to open just renders without them.
func (h *PageHandler) Dashboard(c *gin.Context) {
	data := gin.H{"Page": strings.Trim(c.Param("page"), "/")}
	if token, err := c.Cookie(h.CookieName); err == nil && token != "" {
		if session := h.Identity(token); session != nil {
			data["User"] = session
		}
	}
	c.HTML(http.StatusOK, "dashboard.html", data)
}
