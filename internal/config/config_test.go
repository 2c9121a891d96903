package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medreport-assistant-server/internal/domain"
)

func TestNewManager_Defaults(t *testing.T) {
	manager, err := NewManager()
	require.NoError(t, err)

	cfg := manager.GetConfig()
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "json", cfg.Storage.Backend)
	assert.Equal(t, "data", cfg.Storage.DataDir)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.Model)
	assert.Empty(t, cfg.AI.APIKey)
	assert.Equal(t, 3, cfg.Lookup.RetryCount)
	assert.Equal(t, 2*time.Second, cfg.Lookup.RetryDelay)
	assert.Equal(t, 15*time.Second, cfg.Lookup.Timeout)
	assert.Equal(t, 1000, cfg.Cache.MaxItems)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestNewManager_EnvironmentOverrides(t *testing.T) {
	os.Setenv("MEDREPORT_SERVER_PORT", "9090")
	os.Setenv("MEDREPORT_STORAGE_BACKEND", "sqlite")
	os.Setenv("MEDREPORT_AI_API_KEY", "test-key")
	defer func() {
		os.Unsetenv("MEDREPORT_SERVER_PORT")
		os.Unsetenv("MEDREPORT_STORAGE_BACKEND")
		os.Unsetenv("MEDREPORT_AI_API_KEY")
	}()

	manager, err := NewManager()
	require.NoError(t, err)

	cfg := manager.GetConfig()
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "test-key", cfg.AI.APIKey)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(m *Manager)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(m *Manager) {},
		},
		{
			name:    "invalid port",
			mutate:  func(m *Manager) { m.GetConfig().Server.Port = 0 },
			wantErr: "invalid server port",
		},
		{
			name:    "invalid backend",
			mutate:  func(m *Manager) { m.GetConfig().Storage.Backend = "mongodb" },
			wantErr: "invalid storage backend",
		},
		{
			name: "postgres requires url",
			mutate: func(m *Manager) {
				m.GetConfig().Storage.Backend = "postgres"
				m.GetConfig().Storage.PostgresURL = ""
			},
			wantErr: "postgres_url is required",
		},
		{
			name:    "missing data dir",
			mutate:  func(m *Manager) { m.GetConfig().Storage.DataDir = "" },
			wantErr: "data_dir is required",
		},
		{
			name:    "zero retry count",
			mutate:  func(m *Manager) { m.GetConfig().Lookup.RetryCount = 0 },
			wantErr: "retry_count",
		},
		{
			name:    "invalid log level",
			mutate:  func(m *Manager) { m.GetConfig().Logging.Level = "verbose" },
			wantErr: "invalid log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager, err := NewManager()
			require.NoError(t, err)

			tt.mutate(manager)

			err = manager.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	manager, err := NewManager()
	require.NoError(t, err)

	logger := NewLogger(&manager.GetConfig().Logging)
	require.NotNil(t, logger)
	assert.Equal(t, "info", logger.GetLevel().String())

	// Unknown levels fall back to info rather than failing startup.
	manager.GetConfig().Logging.Level = "nonsense"
	logger = NewLogger(&manager.GetConfig().Logging)
	assert.Equal(t, "info", logger.GetLevel().String())
}

func TestNewLogger_OutputSelection(t *testing.T) {
	logger := NewLogger(&domain.LoggingConfig{Level: "info", Output: "stderr"})
	assert.Equal(t, os.Stderr, logger.Out)

	logger = NewLogger(&domain.LoggingConfig{Level: "info", Output: "stdout"})
	assert.Equal(t, os.Stdout, logger.Out)

	// Anything unrecognized defaults to stdout.
	logger = NewLogger(&domain.LoggingConfig{Level: "info", Output: "syslog"})
	assert.Equal(t, os.Stdout, logger.Out)
}
