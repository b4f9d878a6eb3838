// server/internal/api/routes/routes.go
package routes

import (
	"net/http"

	"fsic-records-api-server/config"
	"fsic-records-api-server/internal/api/handlers"
	"fsic-records-api-server/internal/api/middleware"
	"fsic-records-api-server/internal/models"
	"fsic-records-api-server/internal/service"
	"fsic-records-api-server/internal/socket"
	"fsic-records-api-server/internal/web"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Dependencies are built in main and handed to the router.
type Dependencies struct {
	Cfg            *config.Config
	Auth           *service.AuthService
	Establishments *service.EstablishmentService
	Users          *service.UserService
	Hub            *socket.Hub
	Log            zerolog.Logger
}

// SetupRouter wires the pages, the gate and the JSON API.
func SetupRouter(d Dependencies) *gin.Engine {
	if d.Cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(d.Log))

	if len(d.Cfg.CORS.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     d.Cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			AllowCredentials: true,
		}))
	}

	cookie := d.Cfg.Auth.CookieName
	prefix := d.Cfg.Auth.DashboardPrefix

	router.Use(middleware.Gate(middleware.GateConfig{
		CookieName:      cookie,
		DashboardPrefix: prefix,
		Strict:          d.Cfg.Auth.StrictGate,
		Identity:        d.Auth.Identity,
	}))
	router.SetHTMLTemplate(web.Templates())

	pageHandler := &handlers.PageHandler{CookieName: cookie, DashboardPrefix: prefix, Identity: d.Auth.Identity}
	authHandler := &handlers.AuthHandler{Auth: d.Auth, CookieName: cookie, Secure: d.Cfg.IsProduction()}
	establishmentHandler := &handlers.EstablishmentHandler{Service: d.Establishments}
	userHandler := &handlers.UserHandler{Service: d.Users}
	webSocketHandler := &handlers.WebSocketHandler{Hub: d.Hub, Establishments: d.Establishments, Log: d.Log}

	// Pages; the gate decides which of the two a request may see.
	router.GET("/", pageHandler.Login)
	router.GET(prefix, pageHandler.Dashboard)
	router.GET(prefix+"/*page", pageHandler.Dashboard)
	router.GET("/favicon.ico", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/auth/login", authHandler.Login)
		apiV1.POST("/auth/logout", authHandler.Logout)

		protected := apiV1.Group("/")
		protected.Use(middleware.Authenticate(cookie, d.Auth.Identity))
		{
			protected.GET("/auth/me", authHandler.Me)
			protected.GET("/ws", webSocketHandler.ServeWs)

			protected.GET("/due", establishmentHandler.GetDue)
			protected.GET("/inspections/today", establishmentHandler.GetInspectionsToday)
			protected.GET("/analytics", establishmentHandler.GetAnalytics)

			establishments := protected.Group("/establishments")
			{
				establishments.GET("", establishmentHandler.ListEstablishments)
				establishments.POST("", establishmentHandler.CreateEstablishment)
				establishments.GET("/:id", establishmentHandler.GetEstablishment)
				establishments.PUT("/:id", establishmentHandler.UpdateEstablishment)
				establishments.POST("/:id/archive", establishmentHandler.ArchiveEstablishment)
				establishments.POST("/:id/restore", establishmentHandler.RestoreEstablishment)
				establishments.POST("/:id/compliance", establishmentHandler.UpdateCompliance)
				establishments.POST("/:id/remarks", establishmentHandler.AddRemark)
				establishments.POST("/:id/issuance", establishmentHandler.RecordIssuance)
				establishments.GET("/:id/certificate", establishmentHandler.DownloadCertificate)
				establishments.DELETE("/:id", middleware.Authorize(models.RoleAdmin), establishmentHandler.DeleteEstablishment)
			}

			// User management is admin only.
			users := protected.Group("/users")
			users.Use(middleware.Authorize(models.RoleAdmin))
			{
				users.GET("", userHandler.ListUsers)
				users.POST("", userHandler.CreateUser)
				users.GET("/:id", userHandler.GetUser)
				users.PUT("/:id", userHandler.UpdateUser)
				users.PUT("/:id/password", userHandler.ChangePassword)
				users.DELETE("/:id", userHandler.DeleteUser)
			}
		}
	}

	return router
}

func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Msg("request")
	}
}
