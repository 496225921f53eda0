// Package config loads runtime settings from the environment and an optional .env file.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	AppPort     string
	AppEnv      string
	LogLevel    string
	Database    DatabaseConfig
	Model       ModelConfig
	RabbitMQ    RabbitMQConfig
	CORSOrigins string
	MaxUploadMB int
	// HashPasswords switches the credential store from plaintext to bcrypt.
	HashPasswords bool
}

// DatabaseConfig selects the credential store backend.
type DatabaseConfig struct {
	Driver string // sqlite, postgres or memory
	DSN    string
}

// ModelConfig locates the pre-trained artifacts.
type ModelConfig struct {
	Dir            string
	ClassifierFile string
	ScalerFile     string
	FeaturesFile   string
}

// RabbitMQConfig enables prediction events when URL is set.
type RabbitMQConfig struct {
	URL   string
	Queue string
}

// ClassifierPath is the classifier artifact location.
func (m ModelConfig) ClassifierPath() string { return filepath.Join(m.Dir, m.ClassifierFile) }

// ScalerPath is the scaler artifact location.
func (m ModelConfig) ScalerPath() string { return filepath.Join(m.Dir, m.ScalerFile) }

// FeaturesPath is the feature schema location.
func (m ModelConfig) FeaturesPath() string { return filepath.Join(m.Dir, m.FeaturesFile) }

// SetDefaults registers every key with its default value.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "users.db")
	v.SetDefault("MODEL_DIR", "ai_models")
	v.SetDefault("MODEL_CLASSIFIER_FILE", "random_forest_classifier.json")
	v.SetDefault("MODEL_SCALER_FILE", "scaler.json")
	v.SetDefault("MODEL_FEATURES_FILE", "features.txt")
	v.SetDefault("AUTH_HASH_PASSWORDS", false)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_QUEUE", "prediction_events")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("MAX_UPLOAD_MB", 32)
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds and validates a Config from v.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppPort:  v.GetString("APP_PORT"),
		AppEnv:   strings.ToLower(v.GetString("APP_ENV")),
		LogLevel: v.GetString("LOG_LEVEL"),
		Database: DatabaseConfig{
			Driver: strings.ToLower(v.GetString("DB_DRIVER")),
			DSN:    v.GetString("DATABASE_DSN"),
		},
		Model: ModelConfig{
			Dir:            v.GetString("MODEL_DIR"),
			ClassifierFile: v.GetString("MODEL_CLASSIFIER_FILE"),
			ScalerFile:     v.GetString("MODEL_SCALER_FILE"),
			FeaturesFile:   v.GetString("MODEL_FEATURES_FILE"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:   v.GetString("RABBITMQ_URL"),
			Queue: v.GetString("RABBITMQ_QUEUE"),
		},
		CORSOrigins:   v.GetString("CORS_ALLOWED_ORIGINS"),
		MaxUploadMB:   v.GetInt("MAX_UPLOAD_MB"),
		HashPasswords: v.GetBool("AUTH_HASH_PASSWORDS"),
	}

	switch cfg.Database.Driver {
	case "sqlite", "postgres", "memory":
	default:
		return nil, fmt.Errorf("invalid DB_DRIVER %q: expected sqlite, postgres or memory", cfg.Database.Driver)
	}
	if cfg.Database.Driver != "memory" && cfg.Database.DSN == "" {
		return nil, fmt.Errorf("DATABASE_DSN is required for driver %s", cfg.Database.Driver)
	}
	if cfg.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_MB %d: must be positive", cfg.MaxUploadMB)
	}
	if !strings.HasPrefix(cfg.AppPort, ":") && !strings.Contains(cfg.AppPort, ":") {
		cfg.AppPort = ":" + cfg.AppPort
	}
	return cfg, nil
}
