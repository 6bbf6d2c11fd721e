package config

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/gobwas/glob"

	"github.com/SpireX64/go-boot/logging"
)

// ValidationError represents a single validation failure.
type ValidationError struct {
	Field   string // The config field path (e.g., "logging.max_size_mb")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Validate checks the Config for invalid values and returns all validation
// errors found.
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateOverrides()...)

	return errors
}

// validateLogging validates the LoggingConfig.
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(logging.ValidLevels(), strings.ToUpper(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(logging.ValidLevels(), ", ")),
		})
	}

	if c.Logging.MaxSizeMB < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be non-negative",
		})
	}

	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}

// validateOverrides validates the task override entries.
func (c *Config) validateOverrides() []ValidationError {
	var errors []ValidationError

	for i, o := range c.Tasks.Overrides {
		field := fmt.Sprintf("tasks.overrides[%d]", i)

		if o.Match == "" {
			errors = append(errors, ValidationError{
				Field:   field + ".match",
				Value:   o.Match,
				Message: "pattern must not be empty",
			})
		} else if _, err := glob.Compile(o.Match); err != nil {
			errors = append(errors, ValidationError{
				Field:   field + ".match",
				Value:   o.Match,
				Message: fmt.Sprintf("invalid glob pattern: %v", err),
			})
		}

		if o.Priority != nil && (math.IsNaN(*o.Priority) || math.IsInf(*o.Priority, 0)) {
			errors = append(errors, ValidationError{
				Field:   field + ".priority",
				Value:   *o.Priority,
				Message: "must be finite",
			})
		}
	}

	return errors
}
