package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Dataset loading.
	DatasetPath    string
	WarmupOnStart  bool
	ReloadSchedule string // cron expression; empty disables scheduled reloads

	// Initial map view.
	MapCenterLat float64
	MapCenterLng float64
	MapZoom      int

	// Base tile providers.
	StreetTilesURL string
	MonoTilesURL   string

	// Optional Kafka export of the fatal snapshot.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	warmup, err := parseBool("WARMUP_ON_START", true)
	if err != nil {
		return nil, err
	}
	kafkaEnabled, err := parseBool("KAFKA_ENABLED", false)
	if err != nil {
		return nil, err
	}

	lat, err := parseFloat("MAP_CENTER_LAT", -26.52, 90)
	if err != nil {
		return nil, err
	}
	lng, err := parseFloat("MAP_CENTER_LNG", 153.09, 180)
	if err != nil {
		return nil, err
	}
	zoom, err := parseZoom()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DatasetPath:    sharedcfg.EnvOrDefault("DATASET_PATH", "locations.csv"),
		WarmupOnStart:  warmup,
		ReloadSchedule: os.Getenv("RELOAD_SCHEDULE"),

		MapCenterLat: lat,
		MapCenterLng: lng,
		MapZoom:      zoom,

		StreetTilesURL: os.Getenv("STREET_TILES_URL"),
		MonoTilesURL:   os.Getenv("MONO_TILES_URL"),

		KafkaEnabled: kafkaEnabled,
		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "fatal-crashes"),
	}

	if cfg.DatasetPath == "" {
		return nil, errors.New("DATASET_PATH is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_TOPIC is empty")
	}

	return cfg, nil
}

func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %q", key, s)
	}
	return v, nil
}

func parseFloat(key string, def, limit float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < -limit || v > limit {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return v, nil
}

func parseZoom() (int, error) {
	s := os.Getenv("MAP_ZOOM")
	if s == "" {
		return 13, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 20 {
		return 0, fmt.Errorf("invalid MAP_ZOOM: %q", s)
	}
	return n, nil
}
