package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	HTTP_PORT string `env:"HTTP_PORT"`

	// Pakasir payment gateway
	PAKASIR_PROJECT string `env:"PAKASIR_PROJECT"`
	PAKASIR_APIKEY  string `env:"PAKASIR_APIKEY"`
	PAKASIR_BASEURL string `env:"PAKASIR_BASEURL"`

	// Pterodactyl panel
	PTERO_DOMAIN       string `env:"PTERO_DOMAIN"`
	PTERO_APIKEY       string `env:"PTERO_APIKEY"`
	PTERO_CLIENTKEY    string `env:"PTERO_CLIENTKEY"`
	PTERO_EGG          int    `env:"PTERO_EGG"`
	PTERO_NESTID       int    `env:"PTERO_NESTID"`
	PTERO_LOCATIONID   int    `env:"PTERO_LOCATIONID"`
	PTERO_DOCKER_IMAGE string `env:"PTERO_DOCKER_IMAGE"`

	// When true, fulfillment refuses to create a server if the egg
	// reports an empty startup command.
	PANEL_REQUIRE_STARTUP bool `env:"PANEL_REQUIRE_STARTUP"`

	// Fulfillment events (empty brokers = disabled)
	KAFKA_BROKERS string `env:"KAFKA_BROKERS"`
	KAFKA_TOPIC   string `env:"KAFKA_TOPIC"`
}

// LoadConfig reads the whole surface from the environment. Secrets have no
// fallback values: a missing key is an error, never a baked-in default.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		HTTP_PORT:             os.Getenv("HTTP_PORT"),
		PAKASIR_PROJECT:       os.Getenv("PAKASIR_PROJECT"),
		PAKASIR_APIKEY:        os.Getenv("PAKASIR_APIKEY"),
		PAKASIR_BASEURL:       os.Getenv("PAKASIR_BASEURL"),
		PTERO_DOMAIN:          strings.TrimRight(os.Getenv("PTERO_DOMAIN"), "/"),
		PTERO_APIKEY:          os.Getenv("PTERO_APIKEY"),
		PTERO_CLIENTKEY:       os.Getenv("PTERO_CLIENTKEY"),
		PTERO_EGG:             getInt("PTERO_EGG", 15),
		PTERO_NESTID:          getInt("PTERO_NESTID", 5),
		PTERO_LOCATIONID:      getInt("PTERO_LOCATIONID", 1),
		PTERO_DOCKER_IMAGE:    os.Getenv("PTERO_DOCKER_IMAGE"),
		PANEL_REQUIRE_STARTUP: getBool("PANEL_REQUIRE_STARTUP"),
		KAFKA_BROKERS:         os.Getenv("KAFKA_BROKERS"),
		KAFKA_TOPIC:           os.Getenv("KAFKA_TOPIC"),
	}

	if cfg.HTTP_PORT == "" {
		cfg.HTTP_PORT = "8080"
	}
	if cfg.PAKASIR_BASEURL == "" {
		cfg.PAKASIR_BASEURL = "https://app.pakasir.com/api"
	}
	if cfg.PTERO_DOCKER_IMAGE == "" {
		cfg.PTERO_DOCKER_IMAGE = "ghcr.io/parkervcp/yolks:nodejs_18"
	}
	if cfg.KAFKA_TOPIC == "" {
		cfg.KAFKA_TOPIC = "fulfillments"
	}

	var missing []string
	for _, req := range []struct{ key, val string }{
		{"PAKASIR_PROJECT", cfg.PAKASIR_PROJECT},
		{"PAKASIR_APIKEY", cfg.PAKASIR_APIKEY},
		{"PTERO_DOMAIN", cfg.PTERO_DOMAIN},
		{"PTERO_APIKEY", cfg.PTERO_APIKEY},
	} {
		if req.val == "" {
			missing = append(missing, req.key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required env: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getBool(key string) bool {
	v, _ := strconv.ParseBool(os.Getenv(key))
	return v
}
