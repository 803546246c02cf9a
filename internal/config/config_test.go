package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/rwein/barpoll/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetArgs(t *testing.T) {
	t.Helper()
	oldArgs := os.Args
	os.Args = []string{"cmd"}
	t.Cleanup(func() { os.Args = oldArgs })
}

func TestLoadDefaults(t *testing.T) {
	resetArgs(t)
	t.Setenv("BARPOLL_CONFIG", "")

	cfg, err := config.Load()
	require.NoError(t, err, "Failed to load config")

	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel, "Expected default LogLevel info")
	assert.InDelta(t, 0.75, cfg.LoadThreshold, 1e-9, "Expected default LoadThreshold 0.75")
	assert.InDelta(t, 1e-6, cfg.MinElapsed, 1e-12, "Expected default MinElapsed 1e-6")
	assert.InDelta(t, 1e2, cfg.MaxElapsed, 1e-9, "Expected default MaxElapsed 100")
	assert.Equal(t, 1024, cfg.ListInitial, "Expected default ListInitial 1024")
	assert.Equal(t, 16384, cfg.ListCeiling, "Expected default ListCeiling 16384")
	assert.False(t, cfg.History, "Expected History disabled by default")
}

func TestLoad(t *testing.T) {
	resetArgs(t)

	tempDir, err := os.MkdirTemp("", "config_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	configContent := []byte(`
log_level = "debug"
bar_name = "mybar"
load_threshold = 0.5
min_elapsed = 0.001
max_elapsed = 50.0
list_initial = 2048
list_ceiling = 32768
history = true
history_db = "/path/to/history.db"
history_batch_size = 8
history_batch_timeout = 10
`)
	configPath := filepath.Join(tempDir, "barpoll.toml")
	err = os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("BARPOLL_CONFIG", configPath)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel, "Expected LogLevel debug")
	assert.Equal(t, "mybar", cfg.BarName, "Expected BarName mybar")
	assert.InDelta(t, 0.5, cfg.LoadThreshold, 1e-9, "Expected LoadThreshold 0.5")
	assert.InDelta(t, 0.001, cfg.MinElapsed, 1e-12, "Expected MinElapsed 0.001")
	assert.InDelta(t, 50.0, cfg.MaxElapsed, 1e-9, "Expected MaxElapsed 50")
	assert.Equal(t, 2048, cfg.ListInitial, "Expected ListInitial 2048")
	assert.Equal(t, 32768, cfg.ListCeiling, "Expected ListCeiling 32768")
	assert.True(t, cfg.History, "Expected History true")
	assert.Equal(t, "/path/to/history.db", cfg.HistoryDB, "Expected HistoryDB /path/to/history.db")
	assert.Equal(t, 8, cfg.HistoryBatchSize, "Expected HistoryBatchSize 8")
	assert.Equal(t, 10, cfg.HistoryBatchTimeout, "Expected HistoryBatchTimeout 10")
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	resetArgs(t)

	tempDir, err := os.MkdirTemp("", "config_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	configContent := []byte(`
This is not a valid TOML file
`)
	configPath := filepath.Join(tempDir, "barpoll.toml")
	err = os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("BARPOLL_CONFIG", configPath)

	_, err = config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to read config file")
}

func TestInvalidLogLevel(t *testing.T) {
	resetArgs(t)

	tempDir, err := os.MkdirTemp("", "config_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	configContent := []byte(`
log_level = "invalid"
`)
	configPath := filepath.Join(tempDir, "barpoll.toml")
	err = os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("BARPOLL_CONFIG", configPath)

	_, err = config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_log_level")
}

func TestValidate(t *testing.T) {
	base := func() *config.Config {
		return &config.Config{
			LogLevel:      "info",
			LoadThreshold: 0.75,
			MinElapsed:    1e-6,
			MaxElapsed:    1e2,
			ListInitial:   1024,
			ListCeiling:   16384,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*config.Config) {}},
		{name: "threshold zero", mutate: func(c *config.Config) { c.LoadThreshold = 0 }, wantErr: true},
		{name: "threshold above one", mutate: func(c *config.Config) { c.LoadThreshold = 1.5 }, wantErr: true},
		{name: "elapsed bounds inverted", mutate: func(c *config.Config) { c.MaxElapsed = 1e-9 }, wantErr: true},
		{name: "ceiling below initial", mutate: func(c *config.Config) { c.ListCeiling = 16 }, wantErr: true},
		{name: "zero initial", mutate: func(c *config.Config) { c.ListInitial = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
