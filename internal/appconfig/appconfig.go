// Package appconfig loads cmd/mrpkernel's runtime configuration from
// .env files and environment variables, mirroring the precedence
// bbak-mcs-mcp/internal/config uses: executable directory first,
// working directory next, environment variables as the final layer.
package appconfig

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds cmd/mrpkernel's resolved runtime settings.
type Config struct {
	LogLevel     string
	Calendar     string
	PeggingDepth int
}

// Load resolves Config from .env files and environment variables.
func Load() (*Config, error) {
	if exePath, err := os.Executable(); err == nil {
		envPath := filepath.Join(filepath.Dir(exePath), ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("loaded configuration from binary directory")
		}
	}
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found in working directory, relying on environment variables")
	}

	cfg := &Config{
		LogLevel:     getEnv("MRP_LOG_LEVEL", "info"),
		Calendar:     getEnv("MRP_CALENDAR", "24x7"),
		PeggingDepth: getEnvInt("MRP_PEGGING_DEPTH", 1),
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
