// Package config loads server configuration from an optional YAML file
// with environment-variable overrides. Precedence: defaults, then file,
// then environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full server configuration.
type Config struct {
	Addr              string `yaml:"addr"`
	DBPath            string `yaml:"db_path"`
	MonthlyGoalPoints int    `yaml:"monthly_goal_points"`
	InsightCacheTTL   string `yaml:"insight_cache_ttl"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:              ":8080",
		DBPath:            "earnings.db",
		MonthlyGoalPoints: 15000,
		InsightCacheTTL:   "5m",
	}
}

// Load reads the YAML file at path (missing file is not an error) and
// applies environment overrides: PULSE_ADDR, PULSE_DB_PATH,
// PULSE_MONTHLY_GOAL, PULSE_INSIGHT_CACHE_TTL.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if v := os.Getenv("PULSE_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("PULSE_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("PULSE_MONTHLY_GOAL"); v != "" {
		goal, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("PULSE_MONTHLY_GOAL: %w", err)
		}
		cfg.MonthlyGoalPoints = goal
	}
	if v := os.Getenv("PULSE_INSIGHT_CACHE_TTL"); v != "" {
		cfg.InsightCacheTTL = v
	}

	if _, err := cfg.CacheTTL(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// CacheTTL parses the insight cache TTL.
func (c Config) CacheTTL() (time.Duration, error) {
	ttl, err := time.ParseDuration(c.InsightCacheTTL)
	if err != nil {
		return 0, fmt.Errorf("insight_cache_ttl: %w", err)
	}
	return ttl, nil
}
