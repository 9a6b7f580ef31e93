package config

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(NewViper())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("BLACKJACK_PORT", "9090")
	t.Setenv("BLACKJACK_DB_DRIVER", "Memory")
	t.Setenv("BLACKJACK_DECKS", "6")
	t.Setenv("BLACKJACK_LOG_JSON", "true")

	cfg, err := Load(NewViper())
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, DriverMemory, cfg.DBDriver)
	assert.Equal(t, 6, cfg.Decks)
	assert.True(t, cfg.LogJSON)
}

func TestFlagsOverrideEnv(t *testing.T) {
	t.Setenv("BLACKJACK_PORT", "9090")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String(KeyPort, "8080", "")
	require.NoError(t, flags.Parse([]string{"--port", "7070"}))

	v := NewViper()
	require.NoError(t, BindFlags(v, flags))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Port)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty port", func(c *Config) { c.Port = "" }},
		{"unknown driver", func(c *Config) { c.DBDriver = "mysql" }},
		{"missing dsn", func(c *Config) { c.DBDSN = " " }},
		{"too many decks", func(c *Config) { c.Decks = 9 }},
		{"no decks", func(c *Config) { c.Decks = 0 }},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}

	cfg := Default()
	cfg.DBDriver = DriverMemory
	cfg.DBDSN = ""
	require.NoError(t, cfg.Validate())
}

func TestNewLoggerJSON(t *testing.T) {
	cfg := Default()
	cfg.LogJSON = true
	cfg.LogLevel = "info"

	var buf bytes.Buffer
	logger, err := cfg.NewLogger(&buf)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.With("module", "test").Info("shown", "game", "game-1")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["message"])
	assert.Equal(t, "test", line["module"])
	assert.Equal(t, "game-1", line["game"])
}
