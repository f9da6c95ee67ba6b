package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tallerhub/docpipe/constants"
)

// Config holds all application configuration.
type Config struct {
	Catalog  CatalogConfig  `yaml:"catalog"`
	Provider ProviderConfig `yaml:"provider"`
	Batch    BatchConfig    `yaml:"batch"`
	Business BusinessConfig `yaml:"business"`
}

// BusinessConfig describes the workshop the pipeline serves. It is woven
// into prompts so the model grounds names and currency correctly.
type BusinessConfig struct {
	Name     string `yaml:"name"`
	Currency string `yaml:"currency"`
	Timezone string `yaml:"timezone"`
}

// CatalogConfig selects and tunes the catalog source.
type CatalogConfig struct {
	// Driver is "postgres" or "sqlite".
	Driver string `yaml:"driver"`
	// DSN is the Postgres connection string (postgres driver).
	DSN string `yaml:"dsn"`
	// Path is the database file (sqlite driver).
	Path string `yaml:"path"`
	// SnapshotTTL bounds how stale a catalog snapshot may get before the
	// next read rebuilds it.
	SnapshotTTL  time.Duration `yaml:"snapshot_ttl"`
	ProductLimit int           `yaml:"product_limit"`
	MaxConns     int32         `yaml:"max_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
}

// ProviderConfig holds process-wide generative-text provider defaults.
// Per-request overrides and caller defaults take precedence; see
// internal/provider.Resolver.
type ProviderConfig struct {
	Name    string        `yaml:"name"`
	Model   string        `yaml:"model"`
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`

	// Per-provider credentials and models; when set they win over the
	// generic Name/Model/APIKey tier above.
	DeepSeekAPIKey string `yaml:"deepseek_api_key"`
	GeminiAPIKey   string `yaml:"gemini_api_key"`
	OpenAIAPIKey   string `yaml:"openai_api_key"`
	LMStudioAPIKey string `yaml:"lmstudio_api_key"`
	DeepSeekModel  string `yaml:"deepseek_model"`
	GeminiModel    string `yaml:"gemini_model"`
	OpenAIModel    string `yaml:"openai_model"`
	LMStudioModel  string `yaml:"lmstudio_model"`
	LMStudioURL    string `yaml:"lmstudio_url"`
}

// BatchConfig tunes the sequential batch queue.
type BatchConfig struct {
	// Pause is the fixed delay inserted between consecutive items so the
	// upstream provider never sees a burst.
	Pause       time.Duration `yaml:"pause"`
	ItemTimeout time.Duration `yaml:"item_timeout"`
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			Driver:       getEnv("CATALOG_DRIVER", "postgres"),
			DSN:          getEnv("CATALOG_DB_URL", ""),
			Path:         getEnv("CATALOG_SQLITE_PATH", ""),
			SnapshotTTL:  getEnvAsDuration("CATALOG_SNAPSHOT_TTL", 60*time.Second),
			ProductLimit: getEnvAsInt("CATALOG_PRODUCT_LIMIT", 500),
			MaxConns:     getEnvAsInt32("CATALOG_DB_MAX_CONNS", 10),
			DialTimeout:  getEnvAsDuration("CATALOG_DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Provider: ProviderConfig{
			Name:           getEnv("AI_PROVIDER", string(constants.DefaultProvider)),
			Model:          getEnv("AI_MODEL", ""),
			APIKey:         getEnv("AI_API_KEY", ""),
			BaseURL:        getEnv("AI_API_URL", ""),
			Timeout:        getEnvAsDuration("AI_TIMEOUT", 90*time.Second),
			DeepSeekAPIKey: getEnv("DEEPSEEK_API_KEY", ""),
			GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
			OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
			LMStudioAPIKey: getEnv("LM_STUDIO_API_KEY", ""),
			DeepSeekModel:  getEnv("DEEPSEEK_MODEL", ""),
			GeminiModel:    getEnv("GEMINI_MODEL", ""),
			OpenAIModel:    getEnv("OPENAI_MODEL", ""),
			LMStudioModel:  getEnv("LM_STUDIO_MODEL", ""),
			LMStudioURL:    getEnv("LM_STUDIO_URL", ""),
		},
		Batch: BatchConfig{
			Pause:       getEnvAsDuration("BATCH_PAUSE", 800*time.Millisecond),
			ItemTimeout: getEnvAsDuration("BATCH_ITEM_TIMEOUT", 3*time.Minute),
		},
		Business: BusinessConfig{
			Name:     getEnv("BUSINESS_NAME", ""),
			Currency: getEnv("BUSINESS_CURRENCY", "USD"),
			Timezone: getEnv("BUSINESS_TIMEZONE", ""),
		},
	}
}

// LoadConfigFile overlays values from a YAML file onto cfg. Non-empty fields
// already present (env-derived) win, so the file acts as a defaults layer,
// not an override layer.
func LoadConfigFile(cfg *Config, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var file Config
	if err := yaml.Unmarshal(b, &file); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	mergeConfig(cfg, &file)
	return nil
}

func mergeConfig(dst, src *Config) {
	mergeString := func(d *string, s string) {
		if *d == "" && s != "" {
			*d = s
		}
	}
	mergeString(&dst.Catalog.DSN, src.Catalog.DSN)
	mergeString(&dst.Catalog.Path, src.Catalog.Path)
	mergeString(&dst.Provider.Model, src.Provider.Model)
	mergeString(&dst.Provider.APIKey, src.Provider.APIKey)
	mergeString(&dst.Provider.BaseURL, src.Provider.BaseURL)
	mergeString(&dst.Provider.DeepSeekAPIKey, src.Provider.DeepSeekAPIKey)
	mergeString(&dst.Provider.GeminiAPIKey, src.Provider.GeminiAPIKey)
	mergeString(&dst.Provider.OpenAIAPIKey, src.Provider.OpenAIAPIKey)
	mergeString(&dst.Provider.LMStudioAPIKey, src.Provider.LMStudioAPIKey)
	mergeString(&dst.Provider.DeepSeekModel, src.Provider.DeepSeekModel)
	mergeString(&dst.Provider.GeminiModel, src.Provider.GeminiModel)
	mergeString(&dst.Provider.OpenAIModel, src.Provider.OpenAIModel)
	mergeString(&dst.Provider.LMStudioModel, src.Provider.LMStudioModel)
	mergeString(&dst.Provider.LMStudioURL, src.Provider.LMStudioURL)
	if src.Provider.Name != "" && dst.Provider.Name == string(constants.DefaultProvider) {
		dst.Provider.Name = src.Provider.Name
	}
	mergeString(&dst.Business.Name, src.Business.Name)
	mergeString(&dst.Business.Timezone, src.Business.Timezone)
	if src.Business.Currency != "" && dst.Business.Currency == "USD" {
		dst.Business.Currency = src.Business.Currency
	}
}

// Validate validates the loaded configuration.
func (c *Config) Validate() error {
	switch c.Catalog.Driver {
	case "postgres":
		if c.Catalog.DSN == "" {
			return NewAppError("CONFIG_ERROR", "CATALOG_DB_URL is required for the postgres driver", ErrInvalidInput)
		}
	case "sqlite":
		if c.Catalog.Path == "" {
			return NewAppError("CONFIG_ERROR", "CATALOG_SQLITE_PATH is required for the sqlite driver", ErrInvalidInput)
		}
	default:
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("unknown catalog driver %q", c.Catalog.Driver), ErrInvalidInput)
	}
	if c.Catalog.SnapshotTTL <= 0 {
		return NewAppError("CONFIG_ERROR", "CATALOG_SNAPSHOT_TTL must be positive", ErrInvalidInput)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
