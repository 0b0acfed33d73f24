package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, int64(16777216), cfg.Parse.MaxFileBytes)
	assert.Equal(t, "Prezzo", cfg.Excel.PriceColumn)
	assert.Equal(t, []string{"Codice", "Articolo"}, cfg.Excel.CodeColumns)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "estimatex.yaml")
	content := `
logging:
  level: debug
  format: text
excel:
  sheet: Ritorno
  price_column: Importo
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "Ritorno", cfg.Excel.Sheet)
	assert.Equal(t, "Importo", cfg.Excel.PriceColumn)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "estimatex.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0o644))

	t.Setenv("ESTIMATEX_LOGGING_LEVEL", "warn")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadRejectsInvalidLevel(t *testing.T) {
	t.Setenv("ESTIMATEX_LOGGING_LEVEL", "verbose")
	_, err := Load("")
	assert.Error(t, err)
}

func TestHints(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	hints := cfg.Excel.Hints()
	assert.Equal(t, "Prezzo", hints.PriceColumn)
	assert.Equal(t, []string{"Codice", "Articolo"}, hints.CodeColumns)
}
