package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"fsic-records-api-server/internal/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func gateRouter(cfg GateConfig) *gin.Engine {
	r := gin.New()
	r.Use(Gate(cfg))
	// Every path reaches the same handler so only the gate decides the outcome.
	r.NoRoute(func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func serve(r http.Handler, path, cookie string) *httptest.ResponseRecorder {
	return serveMethod(r, http.MethodGet, path, cookie)
}

func serveMethod(r http.Handler, method, path, cookie string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: "authToken", Value: cookie})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGatePresenceOnly(t *testing.T) {
	r := gateRouter(GateConfig{CookieName: "authToken", DashboardPrefix: "/dashboard"})

	tests := []struct {
		name     string
		path     string
		cookie   string
		status   int
		location string
	}{
		{"login page without cookie", "/", "", http.StatusOK, ""},
		{"dashboard without cookie", "/dashboard", "", http.StatusTemporaryRedirect, "/"},
		{"dashboard subpage without cookie", "/dashboard/due", "", http.StatusTemporaryRedirect, "/"},
		{"other page without cookie", "/reports", "", http.StatusTemporaryRedirect, "/"},
		{"login page with cookie", "/", "anything", http.StatusTemporaryRedirect, "/dashboard"},
		{"other page with cookie", "/reports", "anything", http.StatusTemporaryRedirect, "/dashboard"},
		{"lookalike prefix with cookie", "/dashboards", "anything", http.StatusTemporaryRedirect, "/dashboard"},
		{"dashboard with cookie", "/dashboard", "anything", http.StatusOK, ""},
		{"dashboard subpage with cookie", "/dashboard/establishments/1", "anything", http.StatusOK, ""},
		{"api is skipped", "/api/v1/due", "", http.StatusOK, ""},
		{"assets are skipped", "/assets/app.css", "", http.StatusOK, ""},
		{"favicon is skipped", "/favicon.ico", "anything", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, tt.path, tt.cookie)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.location, w.Header().Get("Location"))
		})
	}
}

func TestGateStrictOpensToken(t *testing.T) {
	identity := func(token string) *auth.Session {
		if token == "valid" {
			return &auth.Session{Name: "Ana Cruz", Username: "ana", Role: "ADMIN"}
		}
		return nil
	}
	r := gateRouter(GateConfig{CookieName: "authToken", DashboardPrefix: "/dashboard/", Strict: true, Identity: identity})

	w := serve(r, "/dashboard", "tampered")
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	assert.Equal(t, http.StatusOK, serve(r, "/", "tampered").Code)
	assert.Equal(t, http.StatusOK, serve(r, "/dashboard", "valid").Code)

	w = serve(r, "/", "valid")
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
}
