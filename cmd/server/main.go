// Command server is the entry point for the edutrack API. It reads
// configuration from the environment, sets up logging, and starts the HTTP
// server; everything else lives in internal packages.
package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"edutrack/internal/server"
)

func main() {
	// A local .env is optional; in deployment the environment is set by
	// the process manager.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	dbPath := "data/edutrack.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", filepath.Dir(dbPath)),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// The identity provider's JWKS endpoint and the audience our tokens
	// must carry. Without these the server cannot verify anyone, so they
	// are required.
	jwksURL := os.Getenv("JWKS_URL")
	if jwksURL == "" {
		logger.Error("JWKS_URL is required")
		os.Exit(1)
	}
	audience := os.Getenv("JWT_AUDIENCE")
	if audience == "" {
		logger.Error("JWT_AUDIENCE is required")
		os.Exit(1)
	}

	cfg := server.Config{
		Port:     port,
		DBPath:   dbPath,
		JWKSURL:  jwksURL,
		Audience: audience,
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
