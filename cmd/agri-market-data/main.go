package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	httpapi "github.com/agrisense/agri-market-data/internal/api/http"
	"github.com/agrisense/agri-market-data/internal/config"
	"github.com/agrisense/agri-market-data/internal/forecast"
	"github.com/agrisense/agri-market-data/internal/monitor"
	"github.com/agrisense/agri-market-data/internal/weather"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Forecast service client with primary + sibling fallback path.
	forecastClient := forecast.NewClient(httpClient, cfg.ForecastAPIBase, cfg.ForecastFallbackPath)

	// Weather source chain: proxy first when configured, then the geocoding
	// and forecast providers directly.
	openMeteo := weather.NewOpenMeteoClient(httpClient)
	var sources []weather.Source
	if cfg.WeatherProxyURL != "" {
		sources = append(sources, weather.NewProxySource(httpClient, cfg.WeatherProxyURL))
	}
	sources = append(sources, weather.NewDirectSource(openMeteo, cfg.GeocoderAPIKey, cfg.DefaultLocation))
	resolver := weather.NewResolver(sources...)

	// Periodic dataset audit feeding /health.
	statusStore := monitor.NewStatusStore()
	mon := monitor.New(cfg.DataDir, cfg.AuditInterval, statusStore)
	if err := mon.Start(); err != nil {
		log.Fatalf("failed to start dataset monitor: %v", err)
	}
	defer mon.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "agri-market-data",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New()) // all origins; preflight answered with 204

	// Basic health endpoint with dataset audit results
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"service":  "agri-market-data",
			"datasets": statusStore.Snapshot(),
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, httpapi.Deps{
		DataDir:  cfg.DataDir,
		Forecast: forecastClient,
		Weather:  resolver,
		DemoMode: cfg.DemoMode,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
