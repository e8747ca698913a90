package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/SebastianObert/AirCare/internal/aggregator"
	"github.com/SebastianObert/AirCare/internal/auth"
	"github.com/SebastianObert/AirCare/internal/channels"
	"github.com/SebastianObert/AirCare/internal/config"
	"github.com/SebastianObert/AirCare/internal/db"
	"github.com/SebastianObert/AirCare/internal/health"
	"github.com/SebastianObert/AirCare/internal/heatmap"
	"github.com/SebastianObert/AirCare/internal/history"
	"github.com/SebastianObert/AirCare/internal/httpapi"
	"github.com/SebastianObert/AirCare/internal/locations"
	"github.com/SebastianObert/AirCare/internal/logger"
	"github.com/SebastianObert/AirCare/internal/notify"
	"github.com/SebastianObert/AirCare/internal/scheduler"
	"github.com/SebastianObert/AirCare/internal/workpool"
	"github.com/SebastianObert/AirCare/models"
	"github.com/SebastianObert/AirCare/services/airquality"
	"github.com/SebastianObert/AirCare/services/forecast"
	"github.com/SebastianObert/AirCare/services/geocode"
	"github.com/SebastianObert/AirCare/services/weather"
)

func main() {
	logger.Init()
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	client, err := db.ConnectMongoDB(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := db.DisconnectMongoDB(ctx, client); err != nil {
			logger.Error("Error disconnecting MongoDB: %v", err)
		}
	}()

	if err := db.RunMigrations(ctx, client, cfg); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Outbound data sources.
	airSvc := airquality.NewService(cfg)
	weatherSvc := weather.NewService(cfg)
	forecastSvc := forecast.NewService(cfg)
	geocodeSvc := geocode.NewService(cfg)

	// Stores.
	historyStore := history.NewMongoStore(client, cfg.DBName, cfg.CollectionHistory)
	locationStore := locations.NewStore(client, cfg.DBName, cfg.CollectionLocations)
	inbox := notify.NewInbox(client, cfg.DBName, cfg.CollectionNotifications)
	grid := heatmap.NewRepository(client, cfg.DBName, cfg.CollectionAirQualityGrid)
	authSvc := auth.NewService(client, cfg.DBName, cfg.CollectionUsers, cfg.JWTSecret)

	predictor, err := health.NewPredictor(cfg.HealthModelPath)
	if err != nil {
		log.Fatalf("Failed to load health model: %v", err)
	}

	// Background refresh pipeline.
	chans := channels.New()

	wp := workpool.New(chans, cfg.WorkerCount)
	wp.Start(ctx)

	source := &scheduler.SavedLocationSource{
		Locations: locationStore,
		Check: func(ctx context.Context, coord models.Coordinate) (string, error) {
			air, err := airSvc.Current(ctx, coord)
			if err != nil {
				return "", err
			}
			current, err := weatherSvc.Current(ctx, coord)
			if err != nil {
				return "", err
			}
			// Humidity is not part of the current-weather sample; a typical
			// indoor-comfort value keeps the predictor input well-formed.
			return predictor.Advise(air.PM25, current.TemperatureC, 60), nil
		},
		Notify: func(ctx context.Context, userID, location, advisory string) error {
			_, err := inbox.Push(ctx, userID, "Air quality alert: "+location, advisory)
			return err
		},
	}

	sch, err := scheduler.New()
	if err != nil {
		log.Fatalf("Failed to initialize scheduler: %v", err)
	}
	sources := []scheduler.RefreshSource{source}
	if err := sch.StartJob(ctx, cfg.RefreshInterval, chans, sources); err != nil {
		log.Fatalf("Failed to start scheduler job: %v", err)
	}

	// Per-user snapshot sessions behind the HTTP API.
	sessions := httpapi.NewSessions(func(identity aggregator.Identity) *aggregator.Aggregator {
		return aggregator.New(airSvc, weatherSvc, forecastSvc, historyStore, identity, cfg.WeatherIconBaseURL)
	})

	app := fiber.New(fiber.Config{
		AppName:               "aircare",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "aircare",
		})
	})

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Auth:      authSvc,
		Sessions:  sessions,
		History:   historyStore,
		Locations: locationStore,
		Inbox:     inbox,
		Heatmap:   grid,
		Geocode:   geocodeSvc,
	})

	go func() {
		if err := app.Listen(":" + cfg.HTTPPort); err != nil {
			logger.Error("HTTP server stopped: %v", err)
		}
	}()
	logger.Info("HTTP server listening on port %s", cfg.HTTPPort)

	<-quit
	logger.Info("Received interrupt signal. Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Error during HTTP shutdown: %v", err)
	}

	sch.Cron.Stop()
	wp.Stop()

	logger.Info("Waiting for pending worker jobs to finish...")
	chans.WG.Wait()
	logger.Info("All worker jobs finished. Shutdown complete.")
}
