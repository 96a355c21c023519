// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

package scoring

import "fmt"

// AlgorithmVersion identifies the factor-set generation stamped onto every
// match result. Bump when factor semantics change.
const AlgorithmVersion = "factors-v2"

// Config contains engine limits.
type Config struct {
	// MaxResults caps the ranked entries returned per request.
	MaxResults int `json:"max_results" koanf:"max_results"`

	// MinScore drops candidates scoring below this floor. Zero disables
	// the floor.
	MinScore float64 `json:"min_score" koanf:"min_score"`
}

// DefaultConfig returns the default engine limits.
func DefaultConfig() Config {
	return Config{
		MaxResults: 5,
		MinScore:   0,
	}
}

// Validate checks config bounds.
func (c *Config) Validate() error {
	if c.MaxResults < 1 {
		return fmt.Errorf("max_results must be >= 1, got %d", c.MaxResults)
	}
	if c.MinScore < 0 || c.MinScore > 1 {
		return fmt.Errorf("min_score must be in [0, 1], got %f", c.MinScore)
	}
	return nil
}
