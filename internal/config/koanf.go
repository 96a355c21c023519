// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/stridefit/config.yaml",
	"/etc/stridefit/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all defaults applied. Defaults load
// first, then the config file, then environment variables.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8460,
			Timeout:         30 * time.Second,
			RateLimitReqs:   100,
			RateLimitWindow: 1 * time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Database: DatabaseConfig{
			Path:               "/data/stridefit.duckdb",
			Threads:            0, // 0 = runtime.NumCPU()
			MaxMemory:          "2GB",
			QueryTimeout:       30 * time.Second,
			CheckpointInterval: 5 * time.Minute,
		},
		Scoring: ScoringConfig{
			MaxResults: 5,
			MinScore:   0,
		},
		Ingest: IngestConfig{
			Workers:        4,
			UserAgent:      "stridefit-ingest/1.0",
			RequestTimeout: 20 * time.Second,
			RetryAttempts:  3,
			RetryDelay:     2 * time.Second,
			Sources:        nil,
		},
		Extract: ExtractConfig{
			Endpoint:          "http://127.0.0.1:11434/api/generate",
			Model:             "llama3.1:8b",
			Timeout:           120 * time.Second,
			RetryAttempts:     2,
			RetryDelay:        5 * time.Second,
			MaxReviews:        25,
			MaxCharsPerReview: 1500,
			MaxTotalChars:     6000,
			MinReviews:        3,
			MinConfidence:     0.5,
		},
		Events: EventsConfig{
			TriggerDedupWindow: 5 * time.Minute,
		},
		Optimizer: OptimizerConfig{
			Interval:        6 * time.Hour,
			MinExamples:     20,
			HoldoutFraction: 0.25,
			Tolerance:       0.005,
			LearningRate:    0.05,
			NDCGDepth:       5,
		},
		Cache: CacheConfig{
			FitProfileSize: 1024,
			FitProfileTTL:  10 * time.Minute,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment variables, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: struct defaults.
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file (optional).
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority).
	// SERVER_PORT -> server.port, EXTRACT_MAX_REVIEWS -> extract.max_reviews
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns the first config file that exists, checking the
// CONFIG_PATH override before the default paths.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// configSections are the top-level keys environment variables may target.
// A variable whose first underscore segment is not one of these is ignored
// rather than polluting the tree.
var configSections = map[string]bool{
	"server":    true,
	"logging":   true,
	"database":  true,
	"scoring":   true,
	"ingest":    true,
	"extract":   true,
	"events":    true,
	"optimizer": true,
	"cache":     true,
}

// envTransformFunc maps SECTION_SOME_KEY to section.some_key. Variables
// outside known sections map to the empty string and are dropped.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)
	section, rest, found := strings.Cut(key, "_")
	if !found || !configSections[section] {
		return ""
	}
	return section + "." + rest
}

// sliceConfigPaths lists config paths parsed as comma-separated slices when
// they arrive as strings from the environment.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}
		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			if err := k.Set(path, parts); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}
