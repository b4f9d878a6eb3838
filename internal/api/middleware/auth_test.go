package middleware

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fsic-records-api-server/internal/auth"
	"fsic-records-api-server/internal/models"
)

func apiRouter() *gin.Engine {
	identity := func(token string) *auth.Session {
		switch token {
		case "admin":
			return &auth.Session{Name: "Ana Cruz", Username: "ana", Role: models.RoleAdmin}
		case "staff":
			return &auth.Session{Name: "Ben Reyes", Username: "ben", Role: models.RoleStaff}
		}
		return nil
	}
	r := gin.New()
	api := r.Group("/api", Authenticate("authToken", identity))
	api.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, CurrentUser(c))
	})
	api.DELETE("/thing", Authorize(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestAuthenticate(t *testing.T) {
	r := apiRouter()

	w := serve(r, "/api/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.NotEmpty(t, body.Error)

	assert.Equal(t, http.StatusUnauthorized, serve(r, "/api/me", "garbage").Code)

	w = serve(r, "/api/me", "staff")
	require.Equal(t, http.StatusOK, w.Code)
	var session auth.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	assert.Equal(t, "ben", session.Username)
	assert.Equal(t, "Ben Reyes", session.Name)
}

func TestAuthorize(t *testing.T) {
	r := apiRouter()

	req := func(cookie string) int {
		w := serveMethod(r, http.MethodDelete, "/api/thing", cookie)
		return w.Code
	}
	assert.Equal(t, http.StatusNoContent, req("admin"))
	assert.Equal(t, http.StatusForbidden, req("staff"))
	assert.Equal(t, http.StatusUnauthorized, req(""))
}
