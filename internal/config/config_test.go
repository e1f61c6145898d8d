package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_PATH", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("DOMESTIC_COUNTRY", "")
	t.Setenv("WORKERS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "router.db", cfg.Database.Path)
	assert.Empty(t, cfg.Classifier.ApiKey)
	assert.Equal(t, "googleai/gemini-2.5-flash", cfg.Classifier.Model)
	assert.Equal(t, "Казахстан", cfg.App.DomesticCountry)
	assert.Equal(t, 1, cfg.App.Workers)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DATABASE_PATH", "/tmp/test.db")
	t.Setenv("CLASSIFIER_MODEL", "googleai/gemini-2.5-pro")
	t.Setenv("WORKERS", "8")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/test.db", cfg.Database.Path)
	assert.Equal(t, "googleai/gemini-2.5-pro", cfg.Classifier.Model)
	assert.Equal(t, 8, cfg.App.Workers)
}
