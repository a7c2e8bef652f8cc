package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverOxiDB = "oxidb"
	DriverMongo = "mongo"
)

type Config struct {
	HTTPAddr  string        `yaml:"http_addr"`
	JWTSecret string        `yaml:"jwt_secret"`
	AdminUser string        `yaml:"admin_user"`
	AdminPass string        `yaml:"admin_pass"`
	GelfAddr  string        `yaml:"gelf_addr"`
	Store     StoreConfig   `yaml:"store"`
	Export    ExportConfig  `yaml:"export"`
	Metrics   MetricsConfig `yaml:"metrics"`
}

type StoreConfig struct {
	Driver    string `yaml:"driver"`
	OxiDBHost string `yaml:"oxidb_host"`
	OxiDBPort int    `yaml:"oxidb_port"`
	PoolSize  int    `yaml:"pool_size"`
	MongoURI  string `yaml:"mongo_uri"`
	MongoDB   string `yaml:"mongo_database"`
}

type ExportConfig struct {
	MediaRoot     string        `yaml:"media_root"`
	SweepSchedule string        `yaml:"sweep_schedule"`
	SweepAge      time.Duration `yaml:"sweep_age"`
}

type MetricsConfig struct {
	Namespace string `yaml:"namespace"`
}

// Default returns the configuration used when neither a file nor the
// environment says otherwise.
func Default() *Config {
	return &Config{
		HTTPAddr:  ":8080",
		JWTSecret: "research-dev-secret-change-me",
		AdminUser: "admin",
		AdminPass: "admin123",
		Store: StoreConfig{
			Driver:    DriverOxiDB,
			OxiDBHost: "127.0.0.1",
			OxiDBPort: 4444,
			PoolSize:  3,
			MongoURI:  "mongodb://127.0.0.1:27017",
			MongoDB:   "research",
		},
		Export: ExportConfig{
			MediaRoot:     "media",
			SweepSchedule: "@every 1h",
			SweepAge:      time.Hour,
		},
		Metrics: MetricsConfig{Namespace: "research"},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// path is non-empty), then environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %q: %w", path, err)
		}
	}
	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.HTTPAddr = getEnv("RESEARCH_ADDR", cfg.HTTPAddr)
	cfg.JWTSecret = getEnv("RESEARCH_JWT_SECRET", cfg.JWTSecret)
	cfg.AdminUser = getEnv("RESEARCH_ADMIN_USER", cfg.AdminUser)
	cfg.AdminPass = getEnv("RESEARCH_ADMIN_PASS", cfg.AdminPass)
	cfg.GelfAddr = getEnv("GELF_ADDR", cfg.GelfAddr)

	cfg.Store.Driver = getEnv("RESEARCH_STORE", cfg.Store.Driver)
	cfg.Store.OxiDBHost = getEnv("OXIDB_HOST", cfg.Store.OxiDBHost)
	cfg.Store.OxiDBPort = getEnvInt("OXIDB_PORT", cfg.Store.OxiDBPort)
	cfg.Store.PoolSize = getEnvInt("RESEARCH_POOL_SIZE", cfg.Store.PoolSize)
	cfg.Store.MongoURI = getEnv("MONGO_URI", cfg.Store.MongoURI)
	cfg.Store.MongoDB = getEnv("MONGO_DATABASE", cfg.Store.MongoDB)

	cfg.Export.MediaRoot = getEnv("RESEARCH_MEDIA_ROOT", cfg.Export.MediaRoot)
	if v, ok := os.LookupEnv("RESEARCH_SWEEP_SCHEDULE"); ok {
		cfg.Export.SweepSchedule = v
	}
	cfg.Export.SweepAge = getEnvDuration("RESEARCH_SWEEP_AGE", cfg.Export.SweepAge)

	cfg.Metrics.Namespace = getEnv("RESEARCH_METRICS_NAMESPACE", cfg.Metrics.Namespace)
}

// Validate reports the first setting the server cannot start with.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverOxiDB:
		if c.Store.OxiDBHost == "" || c.Store.OxiDBPort <= 0 {
			return errors.New("store: oxidb host and port are required")
		}
		if c.Store.PoolSize < 1 {
			return errors.New("store: pool_size must be at least 1")
		}
	case DriverMongo:
		if c.Store.MongoURI == "" || c.Store.MongoDB == "" {
			return errors.New("store: mongo_uri and mongo_database are required")
		}
	default:
		return fmt.Errorf("store: unknown driver %q", c.Store.Driver)
	}
	if c.JWTSecret == "" {
		return errors.New("jwt_secret is required")
	}
	if c.Export.MediaRoot == "" {
		return errors.New("export: media_root is required")
	}
	if c.Export.SweepAge <= 0 {
		return errors.New("export: sweep_age must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
