package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string

	// InputDir holds the raw settlement extracts for a run; OutputDir
	// receives the per-settlement exports.
	InputDir    string
	OutputDir   string
	ProfilePath string

	// Workers bounds the parallel settlement workers in the engine.
	Workers int

	HTTPAddr string

	DBType     string
	DBPath     string
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string
}

// Module provides the env config and the engine profile.
var Module = fx.Options(
	fx.Provide(Load),
	fx.Provide(func(cfg Config) (Profile, error) {
		return LoadProfile(cfg.ProfilePath)
	}),
)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "settleline"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),

		InputDir:    getenv("INPUT_DIR", "data/settlements"),
		OutputDir:   getenv("OUTPUT_DIR", "outputs"),
		ProfilePath: getenv("ENGINE_PROFILE", "config/profile.yaml"),

		Workers: getenvInt("ENGINE_WORKERS", 4),

		HTTPAddr: getenv("HTTP_ADDR", ":8080"),

		DBType:     getenv("DATABASE_TYPE", "sqlite"),
		DBPath:     getenv("DATABASE_PATH", "settleline.db"),
		DBHost:     getenv("DATABASE_HOST", "localhost"),
		DBPort:     getenv("DATABASE_PORT", "5432"),
		DBName:     getenv("DATABASE_NAME", "settleline"),
		DBUser:     getenv("DATABASE_USER", "postgres"),
		DBPassword: getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:  getenv("DATABASE_SSLMODE", "disable"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 1 {
		return def
	}
	return parsed
}
