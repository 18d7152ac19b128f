package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/blocniti/blocniti/internal/config"
	"github.com/blocniti/blocniti/pkg/llm"
)

func baseConfig() *config.Config {
	return &config.Config{
		Addr:       ":5000",
		APITimeout: 5 * time.Second,
		Database:   config.Database{Driver: config.DriverSQLite, Path: "blocniti.db"},
		Auth:       config.Auth{SessionSecret: "supersecretkey"},
		Classifier: llm.Config{Provider: llm.ProviderRubric},
	}
}

func TestValidate_InsecureSecret_FailsWhenNotDevelopment(t *testing.T) {
	t.Setenv("BLOCNITI_ENV", "production")

	cfg := baseConfig()
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected Validate to fail for insecure session secret in non-development env")
	}
}

func TestValidate_InsecureSecret_AllowsDevelopment(t *testing.T) {
	t.Setenv("BLOCNITI_ENV", "development")

	cfg := baseConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected Validate to succeed in development env, got: %v", err)
	}
}

func TestValidate_EnvFieldUsedWhenVariableUnset(t *testing.T) {
	t.Setenv("BLOCNITI_ENV", "")

	cfg := baseConfig()
	cfg.Env = "development"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected env: development from the file to allow the default secret, got: %v", err)
	}
}

func TestValidate_DefaultsPopulated(t *testing.T) {
	t.Setenv("BLOCNITI_ENV", "development")

	cfg := &config.Config{Auth: config.Auth{SessionSecret: "strongsecret"}}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed unexpectedly: %v", err)
	}

	if cfg.Database.Driver != config.DriverSQLite || cfg.Database.Path == "" {
		t.Fatalf("expected sqlite defaults, got %+v", cfg.Database)
	}
	if cfg.Cache.Driver != config.CacheMemory || cfg.Cache.TTL <= 0 {
		t.Fatalf("expected memory cache defaults, got %+v", cfg.Cache)
	}
	if cfg.Classifier.Provider != llm.ProviderOpenRouter || cfg.Classifier.Model == "" {
		t.Fatalf("expected openrouter classifier defaults, got %+v", cfg.Classifier)
	}
	if cfg.Classifier.Timeout != 20*time.Second {
		t.Fatalf("unexpected classifier timeout: %v", cfg.Classifier.Timeout)
	}
	if cfg.Auth.CookieName == "" || cfg.Auth.SessionDuration <= 0 {
		t.Fatalf("expected session defaults, got %+v", cfg.Auth)
	}
}

func TestValidate_Rejections(t *testing.T) {
	t.Setenv("BLOCNITI_ENV", "development")

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"empty secret", func(c *config.Config) { c.Auth.SessionSecret = "" }},
		{"unknown db driver", func(c *config.Config) { c.Database.Driver = "mysql" }},
		{"postgres without dsn", func(c *config.Config) { c.Database.Driver = config.DriverPostgres }},
		{"unknown provider", func(c *config.Config) { c.Classifier.Provider = "bard" }},
		{"gemini without key", func(c *config.Config) { c.Classifier.Provider = llm.ProviderGemini }},
		{"unknown cache", func(c *config.Config) { c.Cache.Driver = "memcached" }},
		{"redis without addr", func(c *config.Config) { c.Cache.Driver = config.CacheRedis }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := baseConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected Validate to fail")
			}
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	for _, k := range []string{"BLOCNITI_ADDR", "BLOCNITI_SESSION_SECRET", "BLOCNITI_DATABASE_PATH", "BLOCNITI_DB_DRIVER", "BLOCNITI_CLASSIFIER_PROVIDER", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig returned error for empty path: %v", err)
	}

	if cfg.Addr != ":5000" {
		t.Fatalf("unexpected Addr: got %q want %q", cfg.Addr, ":5000")
	}
	if cfg.Auth.SessionSecret != "supersecretkey" {
		t.Fatalf("unexpected SessionSecret: got %q", cfg.Auth.SessionSecret)
	}
	if cfg.Database.Path != "blocniti.db" {
		t.Fatalf("unexpected Database.Path: got %q want %q", cfg.Database.Path, "blocniti.db")
	}
	if cfg.APITimeout != 30*time.Second {
		t.Fatalf("unexpected APITimeout: got %v want %v", cfg.APITimeout, 30*time.Second)
	}
	if cfg.Classifier.Provider != llm.ProviderOpenRouter {
		t.Fatalf("unexpected provider: got %q", cfg.Classifier.Provider)
	}
}

func TestLoadConfig_APIKeyFromEnv(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "sk-or-test")
	t.Setenv("BLOCNITI_CLASSIFIER_PROVIDER", "")

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Classifier.APIKey != "sk-or-test" {
		t.Fatalf("unexpected APIKey: got %q", cfg.Classifier.APIKey)
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`addr: ":9090"
timeout: "45s"
database:
  driver: postgres
  dsn: "postgres://u:p@localhost/blocniti"
auth:
  session_secret: "filekey"
  session_duration: "2h"
classifier:
  provider: ollama
  model: llama3
cache:
  driver: redis
  redis_addr: "cache:6379"
  ttl: "5m"
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error for file: %v", err)
	}

	if cfg.Addr != ":9090" {
		t.Fatalf("unexpected Addr: got %q want %q", cfg.Addr, ":9090")
	}
	if cfg.APITimeout != 45*time.Second {
		t.Fatalf("unexpected APITimeout: got %v", cfg.APITimeout)
	}
	if cfg.Database.Driver != config.DriverPostgres || cfg.Database.DSN != "postgres://u:p@localhost/blocniti" {
		t.Fatalf("unexpected Database: %+v", cfg.Database)
	}
	if cfg.Auth.SessionSecret != "filekey" || cfg.Auth.SessionDuration != 2*time.Hour {
		t.Fatalf("unexpected Auth: %+v", cfg.Auth)
	}
	if cfg.Classifier.Provider != llm.ProviderOllama || cfg.Classifier.Model != "llama3" {
		t.Fatalf("unexpected Classifier: %+v", cfg.Classifier)
	}
	if cfg.Cache.Driver != config.CacheRedis || cfg.Cache.RedisAddr != "cache:6379" || cfg.Cache.TTL != 5*time.Minute {
		t.Fatalf("unexpected Cache: %+v", cfg.Cache)
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Classifier.BaseURL != "http://localhost:11434" {
		t.Fatalf("expected ollama base url default, got %q", cfg.Classifier.BaseURL)
	}
}

func TestLoadConfig_BadPath(t *testing.T) {
	if _, err := config.LoadConfig("/path/that/does/not/exist.yaml"); err == nil {
		t.Fatalf("expected error for nonexistent path, got nil")
	}
}

func TestLoadConfig_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("::: not yaml :::"), 0o600); err != nil {
		t.Fatalf("failed to write bad yaml: %v", err)
	}

	if _, err := config.LoadConfig(path); err == nil {
		t.Fatalf("expected YAML decode error, got nil")
	}
}
