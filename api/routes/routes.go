package routes

import (
	"fmt"

	"github.com/ArowuTest/outline-analytics-backend/internal/config"
	"github.com/ArowuTest/outline-analytics-backend/internal/handlers"
	"github.com/ArowuTest/outline-analytics-backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps carries the handlers and the token verifier the router mounts
type Deps struct {
	Auth     *handlers.AuthHandler
	User     *handlers.UserHandler
	App      *handlers.AppHandler
	Admin    *handlers.AdminHandler
	Tracking *handlers.TrackingHandler
	System   *handlers.SystemHandler
	Tokens   middleware.TokenVerifier
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, deps Deps) (*gin.Engine, error) {
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	if cfg.Metrics.Enabled {
		router.Use(middleware.Metrics())
	}
	router.Use(middleware.CORS(cfg.CORS))

	router.GET("/health", deps.System.Health)
	router.GET("/error_codes", deps.System.ErrorCodes)
	if cfg.Metrics.Enabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	v1 := router.Group("/v1")
	auth := middleware.JWTAuthMiddleware(deps.Tokens, cfg.JWT.CookieName)

	// Account routes
	user := v1.Group("/user")
	{
		user.POST("/register", deps.Auth.Register)
		user.POST("/otp/verify", deps.Auth.VerifyOTP)
		user.POST("/otp/resend", deps.Auth.ResendOTP)
		user.POST("/login", deps.Auth.Login)
		user.POST("/logout", auth, deps.Auth.Logout)
		user.PATCH("/update", auth, deps.User.UpdateUser)
		user.GET("/me", auth, deps.User.GetMe)
	}

	// App registry routes
	app := v1.Group("/app", auth)
	{
		app.POST("/create", deps.App.CreateApp)
		app.GET("/:id", deps.App.GetApp)
		app.DELETE("/:id", deps.App.DeleteApp)
		app.PATCH("/:id/update", deps.App.UpdateApp)
		app.PUT("/:id/events/add", deps.App.AddEvent)
		app.PATCH("/:id/events/:eventId/update", deps.App.UpdateEvent)
		app.PUT("/:id/events/delete", deps.App.DeleteEvents)
	}
	v1.GET("/apps", auth, deps.App.ListApps)

	// Public tracking routes
	tracking := v1.Group("/:analyticsId")
	{
		tracking.POST("/event", deps.Tracking.TrackEvent)
		tracking.POST("/events", deps.Tracking.TrackEvent)
		tracking.POST("/session", deps.Tracking.TrackSession)
		tracking.GET("/events", deps.Tracking.GetEvents)
		tracking.GET("/config", deps.Tracking.GetConfig)
	}

	// Admin routes are not mounted without a key
	if cfg.Admin.APIKey != "" {
		admin := router.Group("/admin", middleware.AdminKey(cfg.Admin.APIKey))
		{
			admin.POST("/app/:id/resume", deps.Admin.ResumeApp)
			admin.POST("/app/:id/pause", deps.Admin.PauseApp)
			admin.POST("/app/:id/suspend", deps.Admin.SuspendApp)
			admin.DELETE("/app/:id", deps.Admin.DeleteApp)
			admin.GET("/user/:id/apps/deleted", deps.Admin.ListDeletedApps)
			admin.PATCH("/user/:id/status", deps.User.SetUserStatus)
		}
	}

	router.NoRoute(handlers.NoRoute)
	return router, nil
}
