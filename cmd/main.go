package main

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sanctyr/site/config"
	"github.com/sanctyr/site/internal/handlers"
	"github.com/sanctyr/site/internal/routers"
	"github.com/sanctyr/site/internal/services"
	"github.com/sanctyr/site/pkg/discordapi"
	"github.com/sanctyr/site/pkg/ratelimit"
	"github.com/sanctyr/site/pkg/session"
	logger "github.com/sanctyr/site/middleware/log"
)

func main() {
	cfg, err := config.LoadConfig("./config.toml")
	if err != nil {
		log.Fatalf("loading config failed: %v", err)
	}

	appLogger, err := logger.NewLogger(&cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger failed: %v", err)
	}
	defer appLogger.Close()

	sessions, err := session.NewStore(&cfg.Session)
	if err != nil {
		appLogger.Fatal("initializing session store failed", zap.Error(err))
	}

	// The rate-limit store is optional: without an address the action
	// routes simply run unlimited.
	var limiter ratelimit.Limiter
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			appLogger.Warn("redis unreachable, rate limiting disabled", zap.Error(err))
		} else {
			limiter = ratelimit.NewRedisLimiter(rdb, appLogger, true)
		}
		cancel()
	}

	discordClient := discordapi.NewClient(cfg.Discord.BotToken, appLogger)

	guildService := services.NewGuildService(discordClient, &cfg.Discord, appLogger)
	messageService := services.NewMessageService(discordClient, guildService, appLogger)
	contentService := services.NewContentService(discordClient, &cfg.Discord, appLogger)
	economyService := services.NewEconomyService(&cfg.Economy, appLogger)
	authService := services.NewAuthService(&cfg.Discord, cfg.Session.Secret, appLogger)

	authHandler := handlers.NewAuthHandler(authService, sessions, cfg.Server.AppURL, appLogger)
	guildHandler := handlers.NewGuildHandler(guildService, cfg.Discord.BoosterRoleName, cfg.Discord.SupporterRoleName)
	contentHandler := handlers.NewContentHandler(messageService, contentService, &cfg.Discord)
	profileHandler := handlers.NewProfileHandler(guildService, economyService, sessions)
	actionHandler := handlers.NewActionHandler(messageService, cfg.Discord.PartnershipRequestsChannelID, appLogger)

	gin.SetMode(cfg.Server.Mode)
	r := gin.Default()

	routers.SetupRoutes(r, cfg,
		authHandler,
		guildHandler,
		contentHandler,
		profileHandler,
		actionHandler,
		sessions,
		limiter,
	)

	appLogger.Info("starting server", zap.Int("port", cfg.Server.Port))
	if err := r.Run(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
		appLogger.Fatal("server exited", zap.Error(err))
	}
}
