package config

import (
	"errors"
	"fmt"
	"net/url"
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

// ValidationErrors collects every problem found in a Config
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return strings.Join(msgs, "\n")
}

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors

	if err := validateBaseURL(cfg.APIBaseURL); err != nil {
		errs = append(errs, ValidationError{Field: "APIBaseURL", Message: err.Error()})
	}
	if err := validateBaseURL(cfg.IdentityBaseURL); err != nil {
		errs = append(errs, ValidationError{Field: "IdentityBaseURL", Message: err.Error()})
	}
	if cfg.HTTPTimeout < 0 {
		errs = append(errs, ValidationError{Field: "HTTPTimeout", Message: "must not be negative"})
	}

	switch cfg.PrefsBackend {
	case PrefsBackendMemory:
	case PrefsBackendSQLite:
		if cfg.PrefsSQLitePath == "" {
			errs = append(errs, ValidationError{Field: "PrefsSQLitePath", Message: "required for sqlite backend"})
		}
	case PrefsBackendPostgres:
		if cfg.DBHost == "" {
			errs = append(errs, ValidationError{Field: "DBHost", Message: "required for postgres backend"})
		}
		if cfg.DBName == "" {
			errs = append(errs, ValidationError{Field: "DBName", Message: "required for postgres backend"})
		}
		if cfg.DBUser == "" {
			errs = append(errs, ValidationError{Field: "DBUser", Message: "required for postgres backend"})
		}
	case PrefsBackendRedis:
		if cfg.RedisURL == "" && cfg.RedisHost == "" {
			errs = append(errs, ValidationError{Field: "RedisHost", Message: "REDIS_URL or REDIS_HOST required for redis backend"})
		}
	default:
		errs = append(errs, ValidationError{Field: "PrefsBackend", Message: fmt.Sprintf("unknown backend %q", cfg.PrefsBackend)})
	}

	if GetEnvironment() == Production && cfg.IdentityAPIKey == "" {
		errs = append(errs, ValidationError{Field: "IdentityAPIKey", Message: "identity_api_key secret is required"})
	}
	if cfg.S3Bucket != "" && cfg.ReportURLExpiry <= 0 {
		errs = append(errs, ValidationError{Field: "ReportURLExpiry", Message: "must be positive when S3 sharing is enabled"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateBaseURL(raw string) error {
	if raw == "" {
		return errors.New("required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}
