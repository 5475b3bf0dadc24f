package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr              string
	DBPath            string
	ContentDir        string
	LogLevel          string
	ImportWorkerCount int
	ImportQueueSize   int
	SessionItemCount  int
}

// Load reads configuration from a .env file (if present) and environment
// variables, applying defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent.
	_ = godotenv.Load()

	return Config{
		Addr:              envOr("ADDR", ":8080"),
		DBPath:            envOr("DB_PATH", "file:bunpo.db"),
		ContentDir:        envOr("CONTENT_DIR", "content"),
		LogLevel:          envOr("LOG_LEVEL", "INFO"),
		ImportWorkerCount: envIntOr("IMPORT_WORKER_COUNT", 1),
		ImportQueueSize:   envIntOr("IMPORT_QUEUE_SIZE", 8),
		SessionItemCount:  envIntOr("SESSION_ITEM_COUNT", 10),
	}
}

// Validate checks the configuration for values the server cannot start
// with.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("ADDR cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.ContentDir == "" {
		return fmt.Errorf("CONTENT_DIR cannot be empty")
	}
	if c.ImportWorkerCount <= 0 {
		return fmt.Errorf("IMPORT_WORKER_COUNT must be positive")
	}
	if c.ImportQueueSize <= 0 {
		return fmt.Errorf("IMPORT_QUEUE_SIZE must be positive")
	}
	if c.SessionItemCount <= 0 {
		return fmt.Errorf("SESSION_ITEM_COUNT must be positive")
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}
