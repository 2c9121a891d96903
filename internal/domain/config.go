package domain

import (
	"time"
)

// Config represents the main application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	AI      AIConfig      `mapstructure:"ai"`
	Lookup  LookupConfig  `mapstructure:"lookup"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// StorageConfig selects and parameterizes the report store backend.
// Backend is one of "json", "sqlite", "postgres".
type StorageConfig struct {
	Backend     string `mapstructure:"backend"`
	DataDir     string `mapstructure:"data_dir"`
	PostgresURL string `mapstructure:"postgres_url"`
}

// AIConfig configures the generative-AI completion gateway. An empty APIKey
// leaves the gateway unavailable and every analysis runs the offline path.
type AIConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float32       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// LookupConfig configures the remote medical-knowledge chat API.
type LookupConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	APIHost        string        `mapstructure:"api_host"`
	Specialization string        `mapstructure:"specialization"`
	Language       string        `mapstructure:"language"`
	Timeout        time.Duration `mapstructure:"timeout"`
	RetryCount     int           `mapstructure:"retry_count"`
	RetryDelay     time.Duration `mapstructure:"retry_delay"`
	RateLimit      int           `mapstructure:"rate_limit"`
}

// CacheConfig configures the lookup response cache tiers. RedisURL is
// optional; when empty only the in-memory and file tiers are used.
type CacheConfig struct {
	File     string        `mapstructure:"file"`
	MaxItems int           `mapstructure:"max_items"`
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
