// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

// Package config loads and validates application configuration through
// three layers: struct defaults, an optional YAML file, and environment
// variables, in ascending priority.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration tree.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Database  DatabaseConfig  `koanf:"database"`
	Scoring   ScoringConfig   `koanf:"scoring"`
	Ingest    IngestConfig    `koanf:"ingest"`
	Extract   ExtractConfig   `koanf:"extract"`
	Events    EventsConfig    `koanf:"events"`
	Optimizer OptimizerConfig `koanf:"optimizer"`
	Cache     CacheConfig     `koanf:"cache"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`

	// RateLimitReqs requests per RateLimitWindow per client IP.
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	CORSOrigins []string `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path string `koanf:"path"`

	// Threads for the DuckDB engine. 0 means runtime.NumCPU().
	Threads int `koanf:"threads"`

	MaxMemory string `koanf:"max_memory"`

	// QueryTimeout bounds individual statements when the caller's context
	// carries no deadline.
	QueryTimeout time.Duration `koanf:"query_timeout"`

	// CheckpointInterval is how often the WAL is flushed into the main
	// database file.
	CheckpointInterval time.Duration `koanf:"checkpoint_interval"`
}

// ScoringConfig holds match engine limits.
type ScoringConfig struct {
	MaxResults int     `koanf:"max_results"`
	MinScore   float64 `koanf:"min_score"`
}

// SourceConfig describes one registered review source. Sources are pure
// configuration; adding a site means adding an entry, not code.
type SourceConfig struct {
	// Name is the unique source key stored on every review.
	Name string `koanf:"name"`

	// BaseURL is the site root, e.g. https://reviews.example.com.
	BaseURL string `koanf:"base_url"`

	// SearchPath resolves a product page; {brand} and {model} expand.
	SearchPath string `koanf:"search_path"`

	// ReviewsPath fetches a page of reviews; {product} and {page} expand.
	ReviewsPath string `koanf:"reviews_path"`

	// PageSize caps how many reviews are accepted from one page.
	PageSize int `koanf:"page_size"`

	// MaxPages caps pagination per run.
	MaxPages int `koanf:"max_pages"`

	// Expert marks sources whose reviews carry expert weight.
	Expert bool `koanf:"expert"`

	// RatePerSecond throttles requests to this source.
	RatePerSecond float64 `koanf:"rate_per_second"`
}

// IngestConfig holds review ingestion settings.
type IngestConfig struct {
	// Workers is the job worker pool size.
	Workers int `koanf:"workers"`

	UserAgent      string        `koanf:"user_agent"`
	RequestTimeout time.Duration `koanf:"request_timeout"`

	// RetryAttempts and RetryDelay bound transient-failure retries.
	RetryAttempts int           `koanf:"retry_attempts"`
	RetryDelay    time.Duration `koanf:"retry_delay"`

	Sources []SourceConfig `koanf:"sources"`
}

// ExtractConfig holds LLM fit-extraction settings.
type ExtractConfig struct {
	// Endpoint is the completion API, e.g. http://localhost:11434/api/generate.
	Endpoint string `koanf:"endpoint"`

	Model string `koanf:"model"`

	Timeout       time.Duration `koanf:"timeout"`
	RetryAttempts int           `koanf:"retry_attempts"`
	RetryDelay    time.Duration `koanf:"retry_delay"`

	// MaxReviews caps how many reviews feed one extraction.
	MaxReviews int `koanf:"max_reviews"`

	// MaxCharsPerReview and MaxTotalChars bound prompt size.
	MaxCharsPerReview int `koanf:"max_chars_per_review"`
	MaxTotalChars     int `koanf:"max_total_chars"`

	// MinReviews and MinConfidence gate the needs_review flag.
	MinReviews    int     `koanf:"min_reviews"`
	MinConfidence float64 `koanf:"min_confidence"`
}

// EventsConfig holds trigger bus settings.
type EventsConfig struct {
	// TriggerDedupWindow drops repeat extraction triggers for the same
	// product inside the window.
	TriggerDedupWindow time.Duration `koanf:"trigger_dedup_window"`
}

// OptimizerConfig holds weight optimizer settings.
type OptimizerConfig struct {
	// Interval between scheduled optimization attempts.
	Interval time.Duration `koanf:"interval"`

	// MinExamples is the smallest unconsumed batch worth training on.
	MinExamples int `koanf:"min_examples"`

	// HoldoutFraction of examples reserved for the promotion guard.
	HoldoutFraction float64 `koanf:"holdout_fraction"`

	// Tolerance allows promotion when the proposal scores within this
	// margin below the active vector on the hold-out set.
	Tolerance float64 `koanf:"tolerance"`

	// LearningRate scales per-factor weight adjustments.
	LearningRate float64 `koanf:"learning_rate"`

	// NDCGDepth is the rank depth of the hold-out metric.
	NDCGDepth int `koanf:"ndcg_depth"`
}

// CacheConfig holds serving-path cache settings.
type CacheConfig struct {
	// FitProfileSize is the LRU capacity for fit profile reads.
	FitProfileSize int `koanf:"fit_profile_size"`

	FitProfileTTL time.Duration `koanf:"fit_profile_ttl"`
}

// Validate checks the full tree and returns the first problem found.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Database.QueryTimeout <= 0 {
		return fmt.Errorf("database.query_timeout must be positive")
	}
	if c.Database.CheckpointInterval <= 0 {
		return fmt.Errorf("database.checkpoint_interval must be positive")
	}
	if c.Scoring.MaxResults < 1 {
		return fmt.Errorf("scoring.max_results must be >= 1")
	}
	if c.Ingest.Workers < 1 {
		return fmt.Errorf("ingest.workers must be >= 1")
	}
	if c.Ingest.RetryAttempts < 0 {
		return fmt.Errorf("ingest.retry_attempts must be >= 0")
	}
	seen := make(map[string]bool, len(c.Ingest.Sources))
	for i, src := range c.Ingest.Sources {
		if src.Name == "" {
			return fmt.Errorf("ingest.sources[%d].name is required", i)
		}
		if seen[src.Name] {
			return fmt.Errorf("duplicate ingest source %q", src.Name)
		}
		seen[src.Name] = true
		if src.BaseURL == "" {
			return fmt.Errorf("ingest source %q missing base_url", src.Name)
		}
		for _, placeholder := range []string{"{brand}", "{model}"} {
			if !strings.Contains(src.SearchPath, placeholder) {
				return fmt.Errorf("ingest source %q search_path missing %s placeholder", src.Name, placeholder)
			}
		}
		for _, placeholder := range []string{"{product}", "{page}"} {
			if !strings.Contains(src.ReviewsPath, placeholder) {
				return fmt.Errorf("ingest source %q reviews_path missing %s placeholder", src.Name, placeholder)
			}
		}
		if src.MaxPages < 1 {
			return fmt.Errorf("ingest source %q max_pages must be >= 1", src.Name)
		}
		if src.RatePerSecond <= 0 {
			return fmt.Errorf("ingest source %q rate_per_second must be positive", src.Name)
		}
	}
	if c.Extract.Endpoint == "" {
		return fmt.Errorf("extract.endpoint is required")
	}
	if c.Extract.Model == "" {
		return fmt.Errorf("extract.model is required")
	}
	if c.Extract.MaxReviews < 1 {
		return fmt.Errorf("extract.max_reviews must be >= 1")
	}
	if c.Extract.MinConfidence < 0 || c.Extract.MinConfidence > 1 {
		return fmt.Errorf("extract.min_confidence must be in [0, 1]")
	}
	if c.Events.TriggerDedupWindow <= 0 {
		return fmt.Errorf("events.trigger_dedup_window must be positive")
	}
	if c.Optimizer.MinExamples < 1 {
		return fmt.Errorf("optimizer.min_examples must be >= 1")
	}
	if c.Optimizer.HoldoutFraction <= 0 || c.Optimizer.HoldoutFraction >= 1 {
		return fmt.Errorf("optimizer.holdout_fraction must be in (0, 1)")
	}
	if c.Optimizer.Tolerance < 0 {
		return fmt.Errorf("optimizer.tolerance must be >= 0")
	}
	if c.Optimizer.LearningRate <= 0 {
		return fmt.Errorf("optimizer.learning_rate must be positive")
	}
	if c.Optimizer.NDCGDepth < 1 {
		return fmt.Errorf("optimizer.ndcg_depth must be >= 1")
	}
	if c.Cache.FitProfileSize < 1 {
		return fmt.Errorf("cache.fit_profile_size must be >= 1")
	}
	return nil
}
