package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "docflow", cfg.App.Name)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 2, cfg.Documents.Decimals)
	assert.Equal(t, 5, cfg.Documents.BaseCurrencyDecimals)
	assert.Equal(t, "A", cfg.Documents.Series)
	assert.Equal(t, "EUR", cfg.Documents.Currency)
	assert.Equal(t, 10*time.Minute, cfg.Documents.TaxCacheTTL)
	assert.Contains(t, cfg.Documents.UnlockedFields, "status")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DOCFLOW_DATABASE_HOST", "db.internal")
	t.Setenv("DOCFLOW_DOCUMENTS_SERIES", "Z")
	t.Setenv("DOCFLOW_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "Z", cfg.Documents.Series)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	t.Run("bad log level", func(t *testing.T) {
		cfg := &Config{}
		applyDefaults(cfg)
		cfg.Log.Level = "verbose"
		assert.Error(t, cfg.validate())
	})

	t.Run("bad currency", func(t *testing.T) {
		cfg := &Config{}
		applyDefaults(cfg)
		cfg.Documents.Currency = "EURO"
		assert.Error(t, cfg.validate())
	})

	t.Run("decimals out of range", func(t *testing.T) {
		cfg := &Config{}
		applyDefaults(cfg)
		cfg.Documents.Decimals = 9
		assert.Error(t, cfg.validate())
	})
}

func TestDSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "secret", DBName: "docflow", SSLMode: "disable"}
	assert.Equal(t, "host=localhost port=5432 user=postgres password=secret dbname=docflow sslmode=disable", cfg.DSN())
}
