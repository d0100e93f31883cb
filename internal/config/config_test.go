package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "locations.csv", cfg.DatasetPath)
	assert.True(t, cfg.WarmupOnStart)
	assert.Empty(t, cfg.ReloadSchedule)
	assert.InDelta(t, -26.52, cfg.MapCenterLat, 1e-9)
	assert.InDelta(t, 153.09, cfg.MapCenterLng, 1e-9)
	assert.Equal(t, 13, cfg.MapZoom)
	assert.Empty(t, cfg.StreetTilesURL)
	assert.Empty(t, cfg.MonoTilesURL)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "fatal-crashes", cfg.KafkaTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("DATASET_PATH", "/data/locations.csv")
	t.Setenv("WARMUP_ON_START", "false")
	t.Setenv("RELOAD_SCHEDULE", "@daily")
	t.Setenv("MAP_CENTER_LAT", "-27.47")
	t.Setenv("MAP_CENTER_LNG", "153.02")
	t.Setenv("MAP_ZOOM", "9")
	t.Setenv("STREET_TILES_URL", "https://tiles.example.com/{z}/{x}/{y}.png")
	t.Setenv("MONO_TILES_URL", "https://mono.example.com/{z}/{x}/{y}.png")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "custom-topic")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "/data/locations.csv", cfg.DatasetPath)
	assert.False(t, cfg.WarmupOnStart)
	assert.Equal(t, "@daily", cfg.ReloadSchedule)
	assert.InDelta(t, -27.47, cfg.MapCenterLat, 1e-9)
	assert.InDelta(t, 153.02, cfg.MapCenterLng, 1e-9)
	assert.Equal(t, 9, cfg.MapZoom)
	assert.Equal(t, "https://tiles.example.com/{z}/{x}/{y}.png", cfg.StreetTilesURL)
	assert.Equal(t, "https://mono.example.com/{z}/{x}/{y}.png", cfg.MonoTilesURL)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-topic", cfg.KafkaTopic)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"WARMUP_ON_START", "sometimes"},
		{"KAFKA_ENABLED", "yes please"},
		{"MAP_CENTER_LAT", "north"},
		{"MAP_CENTER_LAT", "91"},
		{"MAP_CENTER_LNG", "-181"},
		{"MAP_ZOOM", "close"},
		{"MAP_ZOOM", "25"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}
