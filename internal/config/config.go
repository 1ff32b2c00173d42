package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Platform PlatformConfig
	AMQP     AMQPConfig
	App      AppConfig
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type ServerConfig struct {
	Port string
}

// PlatformConfig points at the school platform REST API that owns fees and payments.
type PlatformConfig struct {
	BaseURL      string
	ServiceToken string
	Timeout      time.Duration
}

// AMQPConfig enables forwarding of payment events. An empty URL disables it.
type AMQPConfig struct {
	URL      string
	Exchange string
}

type AppConfig struct {
	LogLevel           string
	MonthlyConcurrency int
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	timeout, err := time.ParseDuration(getEnv("PLATFORM_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid PLATFORM_TIMEOUT: %w", err)
	}

	concurrency, err := strconv.Atoi(getEnv("MONTHLY_FETCH_CONCURRENCY", "4"))
	if err != nil {
		concurrency = 4
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "feedesk"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Platform: PlatformConfig{
			BaseURL:      strings.TrimRight(getEnv("PLATFORM_BASE_URL", "http://localhost:8000/api"), "/"),
			ServiceToken: getEnv("PLATFORM_SERVICE_TOKEN", ""),
			Timeout:      timeout,
		},
		AMQP: AMQPConfig{
			URL:      getEnv("AMQP_URL", ""),
			Exchange: getEnv("AMQP_EXCHANGE", "feedesk.events"),
		},
		App: AppConfig{
			LogLevel:           getEnv("LOG_LEVEL", "info"),
			MonthlyConcurrency: concurrency,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var problems []string

	if c.Platform.BaseURL == "" {
		problems = append(problems, "PLATFORM_BASE_URL is required")
	}
	if port, err := strconv.Atoi(c.Server.Port); err != nil || port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid SERVER_PORT %q", c.Server.Port))
	}
	if c.App.MonthlyConcurrency < 1 {
		problems = append(problems, "MONTHLY_FETCH_CONCURRENCY must be at least 1")
	}
	if c.Platform.Timeout <= 0 {
		problems = append(problems, "PLATFORM_TIMEOUT must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
