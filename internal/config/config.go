package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds process configuration. Values come from an optional YAML
// file named by DRILLS_CONFIG, then from environment variables, which win.
type Config struct {
	Port            string        `yaml:"port"`
	DatabaseURL     string        `yaml:"database_url"`
	LogLevel        string        `yaml:"log_level"`
	ErrorSampleRate int           `yaml:"error_sample_rate"`
	OTELEnabled     bool          `yaml:"otel_enabled"`
	OTELServiceName string        `yaml:"otel_service_name"`
	RateLimitRPM    int           `yaml:"rate_limit_rpm"`
	RateLimitBurst  int           `yaml:"rate_limit_burst"`
	ProgramCacheTTL time.Duration `yaml:"program_cache_ttl"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MigrationsPath  string        `yaml:"migrations_path"`
	CatalogPath     string        `yaml:"catalog_path"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Port:            "8080",
		LogLevel:        "INFO",
		ErrorSampleRate: 100,
		OTELServiceName: "drills",
		RateLimitRPM:    600,
		RateLimitBurst:  50,
		ProgramCacheTTL: 10 * time.Minute,
		ShutdownTimeout: 30 * time.Second,
		MigrationsPath:  "migrations",
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getbool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(strings.ToLower(v)); err == nil {
			return b
		}
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// Load builds the configuration from defaults, the DRILLS_CONFIG file and
// the environment.
func Load() (Config, error) {
	cfg := Defaults()

	if path := os.Getenv("DRILLS_CONFIG"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}

	cfg.Port = getenv("PORT", cfg.Port)
	cfg.DatabaseURL = getenv("DATABASE_URL", cfg.DatabaseURL)
	cfg.LogLevel = getenv("LOG_LEVEL", cfg.LogLevel)
	cfg.ErrorSampleRate = getint("ERROR_SAMPLE_RATE", cfg.ErrorSampleRate)
	cfg.OTELEnabled = getbool("OTEL_ENABLED", cfg.OTELEnabled)
	cfg.OTELServiceName = getenv("OTEL_SERVICE_NAME", cfg.OTELServiceName)
	cfg.RateLimitRPM = getint("RATE_LIMIT_RPM", cfg.RateLimitRPM)
	cfg.RateLimitBurst = getint("RATE_LIMIT_BURST", cfg.RateLimitBurst)
	cfg.ProgramCacheTTL = getdur("PROGRAM_CACHE_TTL", cfg.ProgramCacheTTL)
	cfg.ShutdownTimeout = getdur("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	cfg.MigrationsPath = getenv("MIGRATIONS_PATH", cfg.MigrationsPath)
	cfg.CatalogPath = getenv("CATALOG_PATH", cfg.CatalogPath)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate rejects values the server cannot run with.
func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port must be set")
	}
	if c.RateLimitRPM <= 0 {
		return fmt.Errorf("rate limit must be positive, got %d rpm", c.RateLimitRPM)
	}
	if c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit burst must be positive, got %d", c.RateLimitBurst)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive, got %s", c.ShutdownTimeout)
	}
	return nil
}
