package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	defaultDBPath = "./framery.db"
	defaultPort   = "8080"
	defaultEnv    = "dev"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env           string
	AdminEmail    string
	AdminPassword string
	SessionSecret string
	DBPath        string
	Port          string
}

// IsDev reports whether the server runs in development mode. Dev mode runs
// pending migrations on startup.
func (c Config) IsDev() bool {
	return c.Env == defaultEnv
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	// Best-effort: load local dev environment variables.
	// We don't fail if the file is missing; production should use real env injection.
	_ = godotenv.Load()

	cfg := Config{
		Env:           os.Getenv("APP_ENV"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		DBPath:        os.Getenv("DB_PATH"),
		Port:          os.Getenv("PORT"),
	}

	if cfg.Env == "" {
		cfg.Env = defaultEnv
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}

	if cfg.AdminEmail == "" {
		logrus.Warn("ADMIN_EMAIL is not set")
	}
	if cfg.AdminPassword == "" {
		logrus.Warn("ADMIN_PASSWORD is not set")
	}
	if cfg.SessionSecret == "" {
		logrus.Warn("SESSION_SECRET is not set")
	}

	return cfg
}
