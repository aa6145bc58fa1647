// Package validator checks configuration values before they reach the
// planner, following the teacher's ValidateXxx-helper-returning-AppError
// pattern.
package validator

import (
	"fmt"

	"github.com/kara-engine/kara/internal/config"
	"github.com/kara-engine/kara/internal/errors"
)

// ValidateOptions checks that opts is usable by the planner: a positive
// MaxChunkSize, an Epsilon strictly between 0 and 1, and a non-nil
// Splitter. Call opts.WithDefaults() first if Epsilon/Hasher zero values
// should fall back to their defaults instead of failing validation.
func ValidateOptions(opts config.Options) error {
	if err := ValidatePositive(opts.MaxChunkSize, "max_chunk_size"); err != nil {
		return err
	}
	if err := ValidateOpenInterval(opts.Epsilon, 0, 1, "epsilon"); err != nil {
		return err
	}
	if opts.Splitter == nil {
		return errors.InvalidConfigurationError("splitter is required")
	}
	return nil
}

// ValidatePositive validates that an integer field is strictly greater
// than zero.
func ValidatePositive(value int, fieldName string) error {
	if value <= 0 {
		return errors.InvalidConfigurationError(
			fmt.Sprintf("%s must be > 0, got %d", fieldName, value),
		)
	}
	return nil
}

// ValidateOpenInterval validates that a float field lies strictly between
// min and max.
func ValidateOpenInterval(value, min, max float64, fieldName string) error {
	if value <= min || value >= max {
		return errors.InvalidConfigurationError(
			fmt.Sprintf("%s must be in (%v, %v) exclusive, got %v", fieldName, min, max, value),
		)
	}
	return nil
}
