package config

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var (
	validDrivers    = map[string]bool{"postgres": true, "sqlite": true}
	validLogLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validLogFormats = map[string]bool{"json": true, "text": true}
)

// ValidateConfig reports every problem found in cfg at once.
func ValidateConfig(cfg *Config) error {
	var errs []error

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		errs = append(errs, ValidationError{"SERVER_PORT", "must be between 1 and 65535"})
	}

	if !validDrivers[cfg.Database.Driver] {
		errs = append(errs, ValidationError{"DB_DRIVER", "must be postgres or sqlite"})
	}
	if cfg.Database.Driver == "postgres" {
		if cfg.Database.Host == "" {
			errs = append(errs, ValidationError{"DB_HOST", "is required for postgres"})
		}
		if cfg.Database.Name == "" {
			errs = append(errs, ValidationError{"DB_NAME", "is required for postgres"})
		}
		if cfg.Database.User == "" {
			errs = append(errs, ValidationError{"DB_USER", "is required for postgres"})
		}
	}

	if cfg.Auth.JWTSecret == "" && cfg.Auth.PublicKeyPEM == "" {
		errs = append(errs, ValidationError{"AUTH_JWT_SECRET", "either AUTH_JWT_SECRET or AUTH_PUBLIC_KEY must be set"})
	}

	if !validLogLevels[strings.ToLower(cfg.Log.Level)] {
		errs = append(errs, ValidationError{"LOG_LEVEL", "must be one of debug, info, warn, error"})
	}
	if !validLogFormats[strings.ToLower(cfg.Log.Format)] {
		errs = append(errs, ValidationError{"LOG_FORMAT", "must be json or text"})
	}

	if cfg.RateLimit.AnalyzeLimit <= 0 {
		errs = append(errs, ValidationError{"RATE_LIMIT_ANALYZE", "must be positive"})
	}

	return errors.Join(errs...)
}
