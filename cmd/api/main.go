package main

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/planora/event-sync-service/internal/config"
	"github.com/planora/event-sync-service/internal/httpserver"
	"github.com/planora/event-sync-service/internal/store"
)

// main boots the service: config → DB → schema → HTTP server.
func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Load runtime config from environment (DB_URL, API_KEYS, PORT).
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	// Connect to durable storage (Postgres) using a connection pool.
	db, err := store.NewPostgresStore(cfg.DBURL, log, cfg.MarkTouchesUpdatedAt)
	if err != nil {
		log.Fatal().Err(err).Msg("store connect failed")
	}
	defer db.Close()

	// Ensure required tables/indexes exist so `docker compose up --build` is enough.
	if err := db.EnsureSchema(); err != nil {
		log.Fatal().Err(err).Msg("schema bootstrap failed")
	}

	// Build HTTP router (public health + authenticated sync/integration APIs).
	router := httpserver.NewRouter(cfg, db, log)

	log.Info().Str("port", cfg.Port).Msg("server started")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
