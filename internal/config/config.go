package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	ServerPort     string        `yaml:"port"`
	DatabaseType   string        `yaml:"db_type"`
	DatabasePath   string        `yaml:"db_path"`
	DatabaseURL    string        `yaml:"database_url"`
	MigrationsPath string        `yaml:"migrations_path"`
	JWTSecret      string        `yaml:"jwt_secret"`
	TokenDuration  time.Duration `yaml:"token_duration"`
	LogLevel       string        `yaml:"log_level"`
	LogFormat      string        `yaml:"log_format"`

	AWSRegion    string `yaml:"aws_region"`
	SESFromEmail string `yaml:"ses_from_email"`
	SESFromName  string `yaml:"ses_from_name"`
	AppBaseURL   string `yaml:"app_base_url"`

	LoginRateLimit float64 `yaml:"login_rate_limit"` // requests per second per client
	LoginRateBurst int     `yaml:"login_rate_burst"`
}

// Load reads configuration from an optional YAML file named by CONFIG_FILE and then from
// environment variables, which win over the file. Unset values fall back to defaults.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.ServerPort = getEnv("PORT", cfg.ServerPort)
	cfg.DatabaseType = getEnv("DB_TYPE", cfg.DatabaseType)
	cfg.DatabasePath = getEnv("DB_PATH", cfg.DatabasePath)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.MigrationsPath = getEnv("MIGRATIONS_PATH", cfg.MigrationsPath)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
	cfg.AWSRegion = getEnv("AWS_REGION", cfg.AWSRegion)
	cfg.SESFromEmail = getEnv("SES_FROM_EMAIL", cfg.SESFromEmail)
	cfg.SESFromName = getEnv("SES_FROM_NAME", cfg.SESFromName)
	cfg.AppBaseURL = getEnv("APP_BASE_URL", cfg.AppBaseURL)

	var err error
	if cfg.TokenDuration, err = getEnvDuration("TOKEN_DURATION", cfg.TokenDuration); err != nil {
		return nil, err
	}
	if cfg.LoginRateLimit, err = getEnvFloat("LOGIN_RATE_LIMIT", cfg.LoginRateLimit); err != nil {
		return nil, err
	}
	if cfg.LoginRateBurst, err = getEnvInt("LOGIN_RATE_BURST", cfg.LoginRateBurst); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		ServerPort:     "8080",
		DatabaseType:   "sqlite",
		DatabasePath:   "./familytree.db",
		MigrationsPath: "./migrations",
		TokenDuration:  24 * time.Hour,
		LogLevel:       "info",
		LogFormat:      "json",
		AWSRegion:      "us-east-1",
		SESFromName:    "Family Tree",
		AppBaseURL:     "http://localhost:8080",
		LoginRateLimit: 0.2, // one attempt every 5s on average
		LoginRateBurst: 5,
	}
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
