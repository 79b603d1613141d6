package main

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/dndstore/panel-store/internal/application"
	"github.com/dndstore/panel-store/internal/config"
	"github.com/dndstore/panel-store/internal/gateway"
	"github.com/dndstore/panel-store/internal/kafka"
	"github.com/dndstore/panel-store/internal/logger"
	"github.com/dndstore/panel-store/internal/panel"
	"github.com/dndstore/panel-store/internal/presentation"
)

func main() {
	_ = godotenv.Load()
	logger.Init()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Warn("config load failed", "err", err)
		os.Exit(1)
	}

	// Remote API clients
	payments := gateway.NewClient(cfg.PAKASIR_BASEURL, cfg.PAKASIR_PROJECT, cfg.PAKASIR_APIKEY)
	panelClient := panel.NewClient(panel.Config{
		Domain:      cfg.PTERO_DOMAIN,
		APIKey:      cfg.PTERO_APIKEY,
		DockerImage: cfg.PTERO_DOCKER_IMAGE,
		EggID:       cfg.PTERO_EGG,
		NestID:      cfg.PTERO_NESTID,
		LocationID:  cfg.PTERO_LOCATIONID,
	})

	// Wiring
	svc := application.NewFulfillmentService(panelClient, cfg.PANEL_REQUIRE_STARTUP)

	// Kafka producer for fulfillment events (optional)
	var prod *kafka.Producer
	if cfg.KAFKA_BROKERS != "" {
		prod = kafka.NewProducer(cfg.KAFKA_BROKERS, cfg.KAFKA_TOPIC)
		defer prod.Close()
		logger.Info("fulfillment events enabled", "brokers", cfg.KAFKA_BROKERS, "topic", cfg.KAFKA_TOPIC)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// API
	h := presentation.NewStoreHandler(payments, svc, prod)
	h.Register(r)

	// STATIC (web/index.html + css/js)
	presentation.MountStatic(r)

	addr := ":" + cfg.HTTP_PORT
	logger.Info("starting http", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Warn("http server crashed", "err", err)
		os.Exit(1)
	}
}
