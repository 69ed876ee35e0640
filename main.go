package main

import (
	"context"
	"os"
	"time"

	"github.com/PattyWambere/Your-Commissioner/middleware"
	"github.com/PattyWambere/Your-Commissioner/models"
	"github.com/PattyWambere/Your-Commissioner/pkg/config"
	"github.com/PattyWambere/Your-Commissioner/pkg/realtime"
	svc "github.com/PattyWambere/Your-Commissioner/pkg/services"
	"github.com/PattyWambere/Your-Commissioner/pkg/store"
	tokenstore "github.com/PattyWambere/Your-Commissioner/pkg/token"
	"github.com/PattyWambere/Your-Commissioner/routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	var logger zerolog.Logger
	if config.IsProduction {
		logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger()
	}

	var dialector gorm.Dialector
	if config.DatabaseURL != "" {
		dialector = postgres.Open(config.DatabaseURL)
	} else {
		dialector = sqlite.Open("app.db")
	}
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Property{},
		&models.PropertyMedia{},
		&models.Conversation{},
		&models.Message{},
	); err != nil {
		logger.Fatal().Err(err).Msg("failed migrate")
	}

	middleware.SetRateLimitConfig(
		time.Duration(config.RateLimitWindowSeconds)*time.Second,
		config.RateLimitCapacity,
	)

	st := store.New(db)
	revocations := tokenstore.NewStore()
	auth := middleware.NewAuthenticator(revocations)
	registry := realtime.NewRegistry()
	gateway := realtime.NewGateway(logger)
	if config.RedisURL != "" {
		bridge, err := realtime.NewRedisBridge(config.RedisURL, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis bridge failed")
		}
		gateway.AttachBridge(context.Background(), bridge)
		logger.Info().Msg("broadcast bridge attached")
	}
	registry.Set(gateway)
	messenger := svc.NewMessenger(st, registry, logger)

	if config.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     config.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, routes.Deps{
		Store:       st,
		Messenger:   messenger,
		Gateway:     gateway,
		Auth:        auth,
		Revocations: revocations,
		Logger:      logger,
	})

	logger.Info().Str("port", config.Port).Str("env", config.AppEnv).Msg("starting chat relay")
	if err := r.Run(":" + config.Port); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
