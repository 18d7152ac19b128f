package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/blocniti/blocniti/pkg/llm"
)

const insecureSecret = "supersecretkey"

// Storage and cache drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

type Config struct {
	Addr       string        `yaml:"addr"`
	Env        string        `yaml:"env"`
	APITimeout time.Duration `yaml:"timeout"`
	LogLevel   string        `yaml:"log_level"`
	Database   Database      `yaml:"database"`
	Auth       Auth          `yaml:"auth"`
	Classifier llm.Config    `yaml:"classifier"`
	Cache      Cache         `yaml:"cache"`
}

type Database struct {
	Driver   string `yaml:"driver"`
	Path     string `yaml:"path"`
	DSN      string `yaml:"dsn"`
	MaxConns int    `yaml:"max_conns"`
}

type Auth struct {
	SessionSecret    string        `yaml:"session_secret"`
	SessionDuration  time.Duration `yaml:"session_duration"`
	CookieName       string        `yaml:"cookie_name"`
	ProviderLoginURL string        `yaml:"provider_login_url"`
	ProviderSecret   string        `yaml:"provider_secret"`
	Issuer           string        `yaml:"issuer"`
	Audience         string        `yaml:"audience"`
	CallbackURL      string        `yaml:"callback_url"`
}

type Cache struct {
	Driver        string        `yaml:"driver"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	TTL           time.Duration `yaml:"ttl"`
}

func LoadConfig(path string) (*Config, error) {
	apiTimeout := 30 * time.Second
	sessionDuration := 7 * 24 * time.Hour

	classifier := llm.DefaultConfig()
	classifier.Provider = getEnv("BLOCNITI_CLASSIFIER_PROVIDER", classifier.Provider)
	classifier.BaseURL = getEnv("BLOCNITI_CLASSIFIER_BASE_URL", "")
	classifier.Model = getEnv("BLOCNITI_CLASSIFIER_MODEL", "")
	classifier.APIKey = getEnv("OPENROUTER_API_KEY", "")
	if classifier.Provider == llm.ProviderGemini {
		classifier.APIKey = getEnv("GEMINI_API_KEY", classifier.APIKey)
	}

	cfg := &Config{
		Addr:       getEnv("BLOCNITI_ADDR", ":5000"),
		Env:        getEnv("BLOCNITI_ENV", "production"),
		APITimeout: apiTimeout,
		LogLevel:   getEnv("BLOCNITI_LOG_LEVEL", "info"),
		Database: Database{
			Driver:   getEnv("BLOCNITI_DB_DRIVER", DriverSQLite),
			Path:     getEnv("BLOCNITI_DATABASE_PATH", "blocniti.db"),
			DSN:      getEnv("DATABASE_URL", ""),
			MaxConns: getEnvInt("BLOCNITI_DB_MAX_CONNS", 10),
		},
		Auth: Auth{
			SessionSecret:    getEnv("BLOCNITI_SESSION_SECRET", insecureSecret),
			SessionDuration:  sessionDuration,
			ProviderLoginURL: getEnv("BLOCNITI_AUTH_LOGIN_URL", ""),
			ProviderSecret:   getEnv("BLOCNITI_AUTH_PROVIDER_SECRET", ""),
			Issuer:           getEnv("BLOCNITI_AUTH_ISSUER", ""),
			Audience:         getEnv("BLOCNITI_AUTH_AUDIENCE", ""),
			CallbackURL:      getEnv("BLOCNITI_AUTH_CALLBACK_URL", ""),
		},
		Classifier: classifier,
		Cache: Cache{
			Driver:        getEnv("BLOCNITI_CACHE_DRIVER", CacheMemory),
			RedisAddr:     getEnv("BLOCNITI_REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("BLOCNITI_REDIS_PASSWORD", ""),
			TTL:           time.Minute,
		},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Development reports whether insecure defaults are tolerated.
func (c *Config) Development() bool {
	if v := os.Getenv("BLOCNITI_ENV"); v != "" {
		return v == "development"
	}
	return c.Env == "development"
}

// Validate fills unset values with defaults and rejects settings the server
// cannot start with.
func (c *Config) Validate() error {
	if c.Addr == "" {
		c.Addr = ":5000"
	}
	if c.APITimeout <= 0 {
		c.APITimeout = 30 * time.Second
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	if c.Auth.SessionSecret == "" {
		return errors.New("auth.session_secret is required")
	}
	if c.Auth.SessionSecret == insecureSecret && !c.Development() {
		return errors.New("auth.session_secret uses the insecure default; set BLOCNITI_SESSION_SECRET or BLOCNITI_ENV=development")
	}
	if c.Auth.SessionDuration <= 0 {
		c.Auth.SessionDuration = 7 * 24 * time.Hour
	}
	if c.Auth.CookieName == "" {
		c.Auth.CookieName = "blocniti_session"
	}

	switch c.Database.Driver {
	case "":
		c.Database.Driver = DriverSQLite
		fallthrough
	case DriverSQLite:
		if c.Database.Path == "" {
			c.Database.Path = "blocniti.db"
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			return errors.New("database.dsn is required for the postgres driver")
		}
		if c.Database.MaxConns <= 0 {
			c.Database.MaxConns = 10
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}

	c.Classifier = c.Classifier.WithDefaults()
	switch c.Classifier.Provider {
	case llm.ProviderOpenRouter, llm.ProviderOllama, llm.ProviderGemini, llm.ProviderRubric:
	default:
		return fmt.Errorf("unknown classifier provider %q", c.Classifier.Provider)
	}
	if c.Classifier.Provider == llm.ProviderGemini && c.Classifier.APIKey == "" {
		return errors.New("classifier.api_key is required for the gemini provider")
	}

	switch c.Cache.Driver {
	case "":
		c.Cache.Driver = CacheMemory
	case CacheMemory, CacheNone:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New("cache.redis_addr is required for the redis cache")
		}
	default:
		return fmt.Errorf("unknown cache driver %q", c.Cache.Driver)
	}
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = time.Minute
	}

	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
