package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Log      LogConfig
	Exchange ExchangeConfig
	History  HistoryConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Pretty bool
}

// ExchangeConfig holds the exchange REST endpoint and credentials.
type ExchangeConfig struct {
	BaseURL   string
	APIKey    string
	APISecret string
	Timeout   time.Duration
}

// HistoryConfig controls how portfolio snapshots are sampled and retained.
type HistoryConfig struct {
	ReferenceCurrency string
	SamplerSchedule   string
	MinInterval       time.Duration
	RetentionDays     int // 0 disables pruning
	PruneSchedule     string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	timeout, err := getEnvDuration("EXCHANGE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	minInterval, err := getEnvDuration("SNAPSHOT_MIN_INTERVAL", 60*time.Second)
	if err != nil {
		return nil, err
	}

	retentionDays, err := getEnvInt("HISTORY_RETENTION_DAYS", 365)
	if err != nil {
		return nil, err
	}
	if retentionDays < 0 {
		return nil, fmt.Errorf("HISTORY_RETENTION_DAYS must not be negative, got %d", retentionDays)
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/portfolio_history.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost")),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: getEnv("LOG_PRETTY", "false") == "true",
		},
		Exchange: ExchangeConfig{
			BaseURL:   strings.TrimRight(getEnv("EXCHANGE_BASE_URL", "https://testnet.binance.vision"), "/"),
			APIKey:    os.Getenv("EXCHANGE_API_KEY"),
			APISecret: os.Getenv("EXCHANGE_API_SECRET"),
			Timeout:   timeout,
		},
		History: HistoryConfig{
			ReferenceCurrency: strings.ToUpper(getEnv("REFERENCE_CURRENCY", "USDT")),
			SamplerSchedule:   getEnv("SAMPLER_SCHEDULE", "@every 5m"),
			MinInterval:       minInterval,
			RetentionDays:     retentionDays,
			PruneSchedule:     getEnv("PRUNE_SCHEDULE", "@daily"),
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
