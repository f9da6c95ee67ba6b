package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, "postgres", cfg.Catalog.Driver)
	assert.Equal(t, 60*time.Second, cfg.Catalog.SnapshotTTL)
	assert.Equal(t, 500, cfg.Catalog.ProductLimit)
	assert.Equal(t, 800*time.Millisecond, cfg.Batch.Pause)
	assert.Equal(t, "USD", cfg.Business.Currency)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("CATALOG_DRIVER", "sqlite")
	t.Setenv("CATALOG_SQLITE_PATH", "/tmp/catalog.db")
	t.Setenv("CATALOG_SNAPSHOT_TTL", "2m")
	t.Setenv("AI_PROVIDER", "google_gemini")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("BATCH_PAUSE", "1s")

	cfg := LoadConfig()

	assert.Equal(t, "sqlite", cfg.Catalog.Driver)
	assert.Equal(t, "/tmp/catalog.db", cfg.Catalog.Path)
	assert.Equal(t, 2*time.Minute, cfg.Catalog.SnapshotTTL)
	assert.Equal(t, "google_gemini", cfg.Provider.Name)
	assert.Equal(t, "g-key", cfg.Provider.GeminiAPIKey)
	assert.Equal(t, time.Second, cfg.Batch.Pause)
}

func TestLoadConfigFileActsAsDefaultsLayer(t *testing.T) {
	t.Setenv("CATALOG_DB_URL", "postgres://env-wins")

	path := filepath.Join(t.TempDir(), "docpipe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
catalog:
  dsn: postgres://from-file
provider:
  name: openai
  openai_api_key: file-key
business:
  name: Taller Central
`), 0o644))

	cfg := LoadConfig()
	require.NoError(t, LoadConfigFile(cfg, path))

	// Env wins over file.
	assert.Equal(t, "postgres://env-wins", cfg.Catalog.DSN)
	// File fills what env left empty.
	assert.Equal(t, "openai", cfg.Provider.Name)
	assert.Equal(t, "file-key", cfg.Provider.OpenAIAPIKey)
	assert.Equal(t, "Taller Central", cfg.Business.Name)
}

func TestValidate(t *testing.T) {
	cfg := LoadConfig()
	cfg.Catalog.Driver = "postgres"
	cfg.Catalog.DSN = ""
	assert.Error(t, cfg.Validate())

	cfg.Catalog.DSN = "postgres://localhost/catalog"
	assert.NoError(t, cfg.Validate())

	cfg.Catalog.Driver = "sqlite"
	cfg.Catalog.Path = ""
	assert.Error(t, cfg.Validate())
	cfg.Catalog.Path = "catalog.db"
	assert.NoError(t, cfg.Validate())

	cfg.Catalog.Driver = "oracle"
	assert.Error(t, cfg.Validate())
}
