package main

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"workshop-availability/internal/app"
	"workshop-availability/internal/server"
)

func main() {
	_ = godotenv.Load()

	logger := zerolog.New(os.Stdout).With().
		Timestamp().
		Str("app", "workshop-availability").
		Logger()

	ctx := context.Background()
	cfg := app.ConfigFromEnv()
	if cfg.DatabaseURL == "" {
		logger.Fatal().Msg("DATABASE_URL required")
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to db")
	}
	defer pool.Close()

	appInstance := &app.App{
		Store:  &app.PGStore{Pool: pool},
		Logger: logger,
		Cfg:    cfg,
	}
	if google := app.NewGoogleCalendar(cfg); google != nil {
		appInstance.Google = google
		appInstance.Calendar = google
	} else {
		logger.Warn().Msg("Google Calendar OAuth not configured, external calendar sources disabled")
	}

	router := gin.Default()

	// OAuth2 callback (must be before auth middleware)
	router.GET("/oauth2callback", appInstance.OAuth2CallbackHandler)

	router.Use(app.AuthMiddleware(cfg))

	api := router.Group("/api")
	{
		workshops := api.Group("/workshops")
		{
			workshops.GET("/:id/slots", appInstance.WorkshopSlotsHandler)
		}
		api.POST("/bookings/slots", appInstance.BookingSlotsHandler)

		calendar := api.Group("/calendar")
		{
			calendar.GET("/auth", appInstance.GoogleAuthHandler)
		}
	}

	server.Run(router, cfg.Port)
}
