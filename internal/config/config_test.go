package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("PAKASIR_PROJECT", "dndone")
	t.Setenv("PAKASIR_APIKEY", "gw-key")
	t.Setenv("PTERO_DOMAIN", "https://panel.example.com/")
	t.Setenv("PTERO_APIKEY", "ptla_key")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTP_PORT)
	assert.Equal(t, "https://app.pakasir.com/api", cfg.PAKASIR_BASEURL)
	assert.Equal(t, "https://panel.example.com", cfg.PTERO_DOMAIN, "trailing slash stripped")
	assert.Equal(t, 15, cfg.PTERO_EGG)
	assert.Equal(t, 5, cfg.PTERO_NESTID)
	assert.Equal(t, 1, cfg.PTERO_LOCATIONID)
	assert.Equal(t, "ghcr.io/parkervcp/yolks:nodejs_18", cfg.PTERO_DOCKER_IMAGE)
	assert.False(t, cfg.PANEL_REQUIRE_STARTUP)
	assert.Empty(t, cfg.KAFKA_BROKERS)
	assert.Equal(t, "fulfillments", cfg.KAFKA_TOPIC)
}

func TestLoadConfigOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("PTERO_EGG", "21")
	t.Setenv("PANEL_REQUIRE_STARTUP", "true")
	t.Setenv("KAFKA_BROKERS", "kafka:9092")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.HTTP_PORT)
	assert.Equal(t, 21, cfg.PTERO_EGG)
	assert.True(t, cfg.PANEL_REQUIRE_STARTUP)
	assert.Equal(t, "kafka:9092", cfg.KAFKA_BROKERS)
}

func TestLoadConfigMissingSecrets(t *testing.T) {
	// no secret has a baked-in fallback
	t.Setenv("PAKASIR_PROJECT", "")
	t.Setenv("PAKASIR_APIKEY", "")
	t.Setenv("PTERO_DOMAIN", "")
	t.Setenv("PTERO_APIKEY", "ptla_key")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PAKASIR_PROJECT")
	assert.Contains(t, err.Error(), "PAKASIR_APIKEY")
	assert.Contains(t, err.Error(), "PTERO_DOMAIN")
	assert.NotContains(t, err.Error(), "PTERO_APIKEY")
}
