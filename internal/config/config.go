package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port string

	// DataDir holds the per-commodity CSV tables (<commodity>.csv).
	DataDir string

	// ForecastAPIBase is the base URL of the price-forecast service.
	// The client POSTs to <base>/predict and falls back to
	// <base><ForecastFallbackPath> when the primary path fails.
	ForecastAPIBase      string
	ForecastFallbackPath string

	// WeatherProxyURL, when set, is tried before calling the geocoding and
	// weather providers directly.
	WeatherProxyURL string

	// DefaultLocation is used when a weather query names no location.
	DefaultLocation string

	// GeocoderAPIKey enables Google-backed reverse geocoding.
	GeocoderAPIKey string

	// HTTPTimeout bounds every outbound provider call.
	HTTPTimeout time.Duration

	// AuditInterval controls the periodic dataset audit job.
	AuditInterval time.Duration

	// DemoMode lets the forecast endpoint answer with a labeled synthetic
	// curve when no forecast service is configured. Off in production.
	DemoMode bool
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{
		Port:                 getenvDefault("PORT", "8080"),
		DataDir:              getenvDefault("DATA_DIR", "data"),
		ForecastAPIBase:      os.Getenv("FORECAST_API_BASE"),
		ForecastFallbackPath: getenvDefault("FORECAST_FALLBACK_PATH", "/api/predict"),
		WeatherProxyURL:      os.Getenv("WEATHER_PROXY_URL"),
		DefaultLocation:      getenvDefault("DEFAULT_LOCATION", "Pune"),
		GeocoderAPIKey:       os.Getenv("GEOCODER_API_KEY"),
		DemoMode:             getenvBool("DEMO_MODE", false),
	}

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "10s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	auditStr := getenvDefault("AUDIT_INTERVAL", "15m")
	audit, err := time.ParseDuration(auditStr)
	if err != nil {
		return nil, fmt.Errorf("invalid AUDIT_INTERVAL: %w", err)
	}
	cfg.AuditInterval = audit

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}
