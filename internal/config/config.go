package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the service settings. Values come from an optional YAML file,
// then environment variables override them.
type Config struct {
	Port        string        `yaml:"port"`
	DBPath      string        `yaml:"db_path"`
	DatabaseURL string        `yaml:"database_url"`
	RedisURL    string        `yaml:"redis_url"`
	CacheTTL    time.Duration `yaml:"cache_ttl"`
	SeedPath    string        `yaml:"seed_path"`
	LogLevel    string        `yaml:"log_level"`
	SeasonYear  int           `yaml:"season_year"`

	Optimizer OptimizerConfig `yaml:"optimizer"`
}

type OptimizerConfig struct {
	RadiusStep          float64 `yaml:"radius_step"`
	MaxRadius           float64 `yaml:"max_radius"`
	MaxAttempts         int     `yaml:"max_attempts"`
	StagnationThreshold int     `yaml:"stagnation_threshold"`
	YieldInterval       int     `yaml:"yield_interval"`
	WrapAround          bool    `yaml:"wrap_around"`
	Seed                int64   `yaml:"seed"`
}

// Default returns the settings used for local runs. Zero optimizer values
// mean the optimizer's own defaults.
func Default() Config {
	return Config{
		Port:     "8080",
		DBPath:   "data/app.db",
		CacheTTL: 10 * time.Minute,
		SeedPath: "data/seeds/state_capitals.json",
		LogLevel: "info",
	}
}

// Get returns the environment value for key, or fallback when unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Load reads path (skipped when empty) over Default and applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("load config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("load config: parse %q: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return errors.New("port must not be empty")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache_ttl %s must not be negative", c.CacheTTL)
	}
	if c.Optimizer.RadiusStep < 0 || c.Optimizer.MaxRadius < 0 {
		return errors.New("optimizer radius settings must not be negative")
	}
	if c.Optimizer.MaxAttempts < 0 || c.Optimizer.StagnationThreshold < 0 || c.Optimizer.YieldInterval < 0 {
		return errors.New("optimizer limits must not be negative")
	}
	return nil
}

func applyEnv(c *Config) error {
	c.Port = Get("PORT", c.Port)
	c.DBPath = Get("DB_PATH", c.DBPath)
	c.DatabaseURL = Get("DATABASE_URL", c.DatabaseURL)
	c.RedisURL = Get("REDIS_URL", c.RedisURL)
	c.SeedPath = Get("SEED_PATH", c.SeedPath)
	c.LogLevel = Get("LOG_LEVEL", c.LogLevel)

	if v := Get("CACHE_TTL", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CACHE_TTL=%q: %w", v, err)
		}
		c.CacheTTL = d
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"SEASON_YEAR", &c.SeasonYear},
		{"OPTIMIZER_MAX_ATTEMPTS", &c.Optimizer.MaxAttempts},
		{"OPTIMIZER_STAGNATION_THRESHOLD", &c.Optimizer.StagnationThreshold},
		{"OPTIMIZER_YIELD_INTERVAL", &c.Optimizer.YieldInterval},
	}
	for _, e := range ints {
		if v := Get(e.key, ""); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s=%q: %w", e.key, v, err)
			}
			*e.dst = n
		}
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{"OPTIMIZER_RADIUS_STEP", &c.Optimizer.RadiusStep},
		{"OPTIMIZER_MAX_RADIUS", &c.Optimizer.MaxRadius},
	}
	for _, e := range floats {
		if v := Get(e.key, ""); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("%s=%q: %w", e.key, v, err)
			}
			*e.dst = f
		}
	}

	if v := Get("OPTIMIZER_SEED", ""); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("OPTIMIZER_SEED=%q: %w", v, err)
		}
		c.Optimizer.Seed = n
	}
	if v := Get("OPTIMIZER_WRAP_AROUND", ""); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("OPTIMIZER_WRAP_AROUND=%q: %w", v, err)
		}
		c.Optimizer.WrapAround = b
	}

	return nil
}
