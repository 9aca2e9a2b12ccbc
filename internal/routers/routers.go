package routers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/sanctyr/site/config"
	"github.com/sanctyr/site/internal/handlers"
	"github.com/sanctyr/site/internal/middlewares"
	"github.com/sanctyr/site/pkg/ratelimit"
	"github.com/sanctyr/site/pkg/session"
)

// SetupRoutes registers all routes.
func SetupRoutes(r *gin.Engine, cfg *config.Config,
	authHandler *handlers.AuthHandler,
	guildHandler *handlers.GuildHandler,
	contentHandler *handlers.ContentHandler,
	profileHandler *handlers.ProfileHandler,
	actionHandler *handlers.ActionHandler,
	sessions *session.Store,
	limiter ratelimit.Limiter,
) {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.AppURL}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "X-Trace-Id"}
	r.Use(cors.New(corsConfig))

	r.Use(middlewares.TraceMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	// OAuth flow (browser redirects, no JSON errors)
	authGroup := r.Group("/auth")
	{
		authGroup.GET("/discord/login", authHandler.Login)
		authGroup.GET("/discord/callback", authHandler.Callback)
		authGroup.POST("/logout", authHandler.Logout)
	}

	limitWindow := time.Duration(cfg.RateLimit.WindowS) * time.Second
	limited := middlewares.RateLimitMiddleware(limiter, cfg.RateLimit.Requests, limitWindow)

	api := r.Group("/api/v1")
	{
		api.GET("/session", authHandler.Session)

		guildGroup := api.Group("/guild")
		{
			guildGroup.GET("/details", guildHandler.Details)
			guildGroup.GET("/widget", guildHandler.Widget)
			guildGroup.GET("/roles", guildHandler.Roles)
			guildGroup.GET("/boosters", guildHandler.Boosters)
			guildGroup.GET("/supporters", guildHandler.Supporters)
		}

		contentGroup := api.Group("/content")
		{
			contentGroup.GET("/announcements", contentHandler.Announcements)
			contentGroup.GET("/feed", contentHandler.Feed)
			contentGroup.GET("/partners", contentHandler.Partners)
			contentGroup.GET("/events", contentHandler.Events)
		}

		api.GET("/profile/:user_id", profileHandler.Profile)

		// session-gated mutation, rate limited like the other actions
		api.POST("/economy/command", limited, middlewares.RequireSession(sessions), profileHandler.EconomyCommand)

		actionGroup := api.Group("/actions")
		actionGroup.Use(limited)
		{
			actionGroup.POST("/partnership", actionHandler.Partnership)
			actionGroup.POST("/newsletter", actionHandler.Newsletter)
		}
	}
}
