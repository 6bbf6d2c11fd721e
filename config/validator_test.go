package config

import (
	"math"
	"strings"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{
		Field:   "logging.max_size_mb",
		Value:   -5,
		Message: "must be non-negative",
	}

	expected := "logging.max_size_mb: must be non-negative (got: -5)"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestValidationErrors_Error(t *testing.T) {
	t.Run("empty errors", func(t *testing.T) {
		var errs ValidationErrors
		if errs.Error() != "" {
			t.Errorf("Error() for empty = %q, want empty string", errs.Error())
		}
	})

	t.Run("single error", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "logging.level", Value: "loud", Message: "is invalid"},
		}
		expected := "logging.level: is invalid (got: loud)"
		if errs.Error() != expected {
			t.Errorf("Error() = %q, want %q", errs.Error(), expected)
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "field1", Value: "bad", Message: "is invalid"},
			{Field: "field2", Value: -1, Message: "must be positive"},
		}
		result := errs.Error()
		if !strings.Contains(result, "2 validation errors") {
			t.Errorf("Error() should mention 2 errors: %s", result)
		}
		if !strings.Contains(result, "field1") || !strings.Contains(result, "field2") {
			t.Errorf("Error() should mention both fields: %s", result)
		}
	})
}

func TestConfig_Validate_DefaultConfig(t *testing.T) {
	cfg := Default()
	errs := cfg.Validate()
	if len(errs) != 0 {
		t.Errorf("Default config should be valid, got %d errors: %v", len(errs), errs)
	}
}

func hasFieldError(errs []ValidationError, field string) bool {
	for _, err := range errs {
		if err.Field == field {
			return true
		}
	}
	return false
}

func TestConfig_Validate_Logging(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		hasError bool
	}{
		{"valid debug", "debug", false},
		{"valid info", "info", false},
		{"valid warn", "warn", false},
		{"valid error", "error", false},
		{"mixed case is valid", "Info", false},
		{"empty is valid", "", false},
		{"unknown level", "loud", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Logging.Level = tt.level
			errs := cfg.Validate()

			hasError := hasFieldError(errs, "logging.level")
			if hasError != tt.hasError {
				t.Errorf("Validate() for level=%q: hasError=%v, want %v", tt.level, hasError, tt.hasError)
			}
		})
	}

	t.Run("negative max_size_mb", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.MaxSizeMB = -1
		if !hasFieldError(cfg.Validate(), "logging.max_size_mb") {
			t.Error("expected error for negative max_size_mb")
		}
	})

	t.Run("negative max_backups", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.MaxBackups = -2
		if !hasFieldError(cfg.Validate(), "logging.max_backups") {
			t.Error("expected error for negative max_backups")
		}
	})
}

func TestConfig_Validate_Overrides(t *testing.T) {
	pri := func(v float64) *float64 { return &v }

	tests := []struct {
		name     string
		override TaskOverride
		field    string
	}{
		{"empty match", TaskOverride{Match: ""}, "tasks.overrides[0].match"},
		{"invalid glob", TaskOverride{Match: "[unclosed"}, "tasks.overrides[0].match"},
		{"nan priority", TaskOverride{Match: "db-*", Priority: pri(math.NaN())}, "tasks.overrides[0].priority"},
		{"infinite priority", TaskOverride{Match: "db-*", Priority: pri(math.Inf(1))}, "tasks.overrides[0].priority"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Tasks.Overrides = []TaskOverride{tt.override}
			errs := cfg.Validate()
			if !hasFieldError(errs, tt.field) {
				t.Errorf("expected error for field %s, got %v", tt.field, errs)
			}
		})
	}

	t.Run("valid override passes", func(t *testing.T) {
		cfg := Default()
		cfg.Tasks.Overrides = []TaskOverride{
			{Match: "db-*", Priority: pri(5), Disabled: true},
		}
		if errs := cfg.Validate(); len(errs) != 0 {
			t.Errorf("valid override should pass, got %v", errs)
		}
	})

	t.Run("index appears in field path", func(t *testing.T) {
		cfg := Default()
		cfg.Tasks.Overrides = []TaskOverride{
			{Match: "ok-*"},
			{Match: ""},
		}
		if !hasFieldError(cfg.Validate(), "tasks.overrides[1].match") {
			t.Error("expected error naming the second override")
		}
	})
}
