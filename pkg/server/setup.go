// Package server wires the sensor registry, upstream fetcher, response
// cache, and live hub behind the chart HTTP API.
package server

import (
	"fmt"
	"log"
	"os"

	"github.com/pythonsolar/harumiki-farm-v2/pkg/cache"
	"github.com/pythonsolar/harumiki-farm-v2/pkg/config"
	"github.com/pythonsolar/harumiki-farm-v2/pkg/export"
	"github.com/pythonsolar/harumiki-farm-v2/pkg/sensor"
	"github.com/pythonsolar/harumiki-farm-v2/pkg/telemetry"
)

// Config holds server configuration.
type Config struct {
	Port        string
	UpstreamURL string
	APIKey      string

	// CacheDir enables the persistent badger cache; empty means the
	// in-memory cache.
	CacheDir string

	// SensorConfigPath points at a YAML metric registry; empty means
	// the built-in greenhouse layout.
	SensorConfigPath string
}

// LoadConfig loads configuration from environment variables. The
// upstream URL and API key are the only required settings.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:             getEnv("PORT", config.DefaultPort),
		UpstreamURL:      os.Getenv("FARM_UPSTREAM_URL"),
		APIKey:           os.Getenv("FARM_API_KEY"),
		CacheDir:         os.Getenv("FARM_CACHE_DIR"),
		SensorConfigPath: os.Getenv("FARM_SENSOR_CONFIG"),
	}

	if cfg.UpstreamURL == "" {
		return Config{}, fmt.Errorf("FARM_UPSTREAM_URL is required")
	}
	if cfg.APIKey == "" {
		return Config{}, fmt.Errorf("FARM_API_KEY is required")
	}
	return cfg, nil
}

// InitializeRegistry loads the metric registry from the configured YAML
// file, falling back to the built-in greenhouse layout.
func InitializeRegistry(cfg Config) (*sensor.Registry, error) {
	if cfg.SensorConfigPath == "" {
		registry := sensor.DefaultRegistry()
		log.Printf("Sensor registry loaded (%d built-in metrics)", len(registry.Metrics()))
		return registry, nil
	}

	registry, err := sensor.Load(cfg.SensorConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load sensor config: %w", err)
	}
	log.Printf("Sensor registry loaded from %s (%d metrics)", cfg.SensorConfigPath, len(registry.Metrics()))
	return registry, nil
}

// InitializeCache opens the persistent badger cache when a directory is
// configured, otherwise the bounded in-memory cache.
func InitializeCache(cfg Config) (cache.Cache, error) {
	if cfg.CacheDir == "" {
		log.Println("Using in-memory response cache")
		return cache.NewMemoryCache(), nil
	}

	if err := os.MkdirAll(cfg.CacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	store, err := cache.NewBadgerCache(cache.BadgerConfig{Path: cfg.CacheDir})
	if err != nil {
		return nil, err
	}
	log.Printf("Persistent response cache opened at %s", cfg.CacheDir)
	return store, nil
}

// InitializeHandlers creates and configures all request handlers.
func InitializeHandlers(cfg Config, registry *sensor.Registry, store cache.Cache) (*Handler, *export.Handler, *Hub) {
	client := telemetry.NewHTTPClient(cfg.UpstreamURL, cfg.APIKey)
	fetcher := telemetry.NewFetcher(client, config.FetchWorkers)

	handler := NewHandler(registry, fetcher, store)
	log.Println("Chart data handler created")

	exportHandler := export.NewHandler(registry, fetcher)
	log.Println("Export handler created (CSV & JSON)")

	hub := NewHub()
	log.Println("WebSocket hub created for live sensor updates")

	return handler, exportHandler, hub
}

// getEnv gets a string from an environment variable or returns default.
func getEnv(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}
