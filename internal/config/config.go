package config

import (
	"fmt"
	"strings"

	"github.com/medreport-assistant-server/internal/domain"
	"github.com/spf13/viper"
)

// Manager implements the ConfigManager interface using Viper
type Manager struct {
	config *domain.Config
}

// NewManager creates a new configuration manager
func NewManager() (*Manager, error) {
	m := &Manager{}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from various sources
func (m *Manager) loadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/medreport-assistant/")

	// Environment variables override file values, e.g. MEDREPORT_AI_API_KEY.
	viper.SetEnvPrefix("MEDREPORT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	m.setDefaults()

	// Config file is optional; defaults and env vars are enough to run.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

// setDefaults sets default configuration values
func (m *Manager) setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	// Storage defaults
	viper.SetDefault("storage.backend", "json")
	viper.SetDefault("storage.data_dir", "data")
	viper.SetDefault("storage.postgres_url", "")

	// AI gateway defaults; an empty api_key means offline-only operation
	viper.SetDefault("ai.api_key", "")
	viper.SetDefault("ai.model", "gpt-4o-mini")
	viper.SetDefault("ai.max_tokens", 1024)
	viper.SetDefault("ai.temperature", 0.2)
	viper.SetDefault("ai.timeout", "60s")

	// Medical lookup defaults
	viper.SetDefault("lookup.base_url", "https://ai-doctor-api-ai-medical-chatbot-healthcare-ai-assistant.p.rapidapi.com/chat?noqueue=1")
	viper.SetDefault("lookup.api_key", "")
	viper.SetDefault("lookup.api_host", "ai-doctor-api-ai-medical-chatbot-healthcare-ai-assistant.p.rapidapi.com")
	viper.SetDefault("lookup.specialization", "general")
	viper.SetDefault("lookup.language", "en")
	viper.SetDefault("lookup.timeout", "15s")
	viper.SetDefault("lookup.retry_count", 3)
	viper.SetDefault("lookup.retry_delay", "2s")
	viper.SetDefault("lookup.rate_limit", 10)

	// Cache defaults
	viper.SetDefault("cache.file", "data/api_cache.json")
	viper.SetDefault("cache.max_items", 1000)
	viper.SetDefault("cache.redis_url", "")
	viper.SetDefault("cache.ttl", "24h")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output", "stdout")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetServerConfig returns server configuration
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// GetStorageConfig returns report store configuration
func (m *Manager) GetStorageConfig() *domain.StorageConfig {
	return &m.config.Storage
}

// GetAIConfig returns AI gateway configuration
func (m *Manager) GetAIConfig() *domain.AIConfig {
	return &m.config.AI
}

// GetLookupConfig returns medical lookup configuration
func (m *Manager) GetLookupConfig() *domain.LookupConfig {
	return &m.config.Lookup
}

// GetCacheConfig returns lookup cache configuration
func (m *Manager) GetCacheConfig() *domain.CacheConfig {
	return &m.config.Cache
}

// Reload reloads the configuration
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	config := m.config

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	switch config.Storage.Backend {
	case "json", "sqlite":
		if config.Storage.DataDir == "" {
			return fmt.Errorf("storage data_dir is required for %s backend", config.Storage.Backend)
		}
	case "postgres":
		if config.Storage.PostgresURL == "" {
			return fmt.Errorf("storage postgres_url is required for postgres backend")
		}
	default:
		return fmt.Errorf("invalid storage backend: %s", config.Storage.Backend)
	}

	if config.Lookup.BaseURL == "" {
		return fmt.Errorf("lookup base URL is required")
	}
	if config.Lookup.RetryCount < 1 {
		return fmt.Errorf("lookup retry_count must be at least 1")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}

// IsProduction returns true if running in production mode
func (m *Manager) IsProduction() bool {
	return strings.ToLower(viper.GetString("environment")) == "production"
}
