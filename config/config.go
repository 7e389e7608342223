package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Preference store backends
const (
	PrefsBackendMemory   = "memory"
	PrefsBackendSQLite   = "sqlite"
	PrefsBackendPostgres = "postgres"
	PrefsBackendRedis    = "redis"
)

// Config holds all configuration for the client
type Config struct {
	// Remote API configuration
	APIBaseURL  string        `yaml:"api_base_url"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`

	// Identity provider configuration
	IdentityBaseURL     string `yaml:"identity_base_url"`
	IdentityAPIKey      string `yaml:"identity_api_key"`
	GoogleSignInEnabled bool   `yaml:"google_sign_in_enabled"`

	// Preference store configuration
	PrefsBackend    string `yaml:"prefs_backend"`
	PrefsSQLitePath string `yaml:"prefs_sqlite_path"`

	// Database configuration (postgres preference backend)
	DBHost     string `yaml:"db_host"`
	DBPort     string `yaml:"db_port"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBName     string `yaml:"db_name"`
	DBSSLMode  string `yaml:"db_ssl_mode"`

	// Redis configuration (redis preference backend)
	RedisHost     string `yaml:"redis_host"`
	RedisPort     string `yaml:"redis_port"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	RedisURL      string `yaml:"redis_url"`

	// Report sharing
	S3Bucket        string        `yaml:"s3_bucket"`
	AWSRegion       string        `yaml:"aws_region"`
	ReportURLExpiry time.Duration `yaml:"report_url_expiry"`

	// Stub server (development only)
	StubPort           string `yaml:"stub_port"`
	StubJWTSecret      string `yaml:"stub_jwt_secret"`
	StubRecommendLimit int    `yaml:"stub_recommend_limit"`
}

// Default returns a Config populated with development defaults
func Default() *Config {
	return &Config{
		APIBaseURL:      "http://localhost:8080",
		IdentityBaseURL: "http://localhost:8080/identity",
		PrefsBackend:    PrefsBackendSQLite,
		PrefsSQLitePath: "nutriplan_prefs.db",
		DBPort:          "5432",
		DBSSLMode:       "disable",
		RedisPort:       "6379",
		ReportURLExpiry: 24 * time.Hour,
		StubPort:        "8080",
	}
}

// LoadConfig creates a new Config from defaults, the optional YAML file named by
// NUTRIPLAN_CONFIG, environment variables and secrets, in that order
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := Default()

	if env == Development || env == Test {
		// A missing .env file is fine; real environment variables win over it
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	if path := os.Getenv("NUTRIPLAN_CONFIG"); path != "" {
		if err := loadYAML(cfg, path); err != nil {
			return nil, err
		}
	}

	switch env {
	case CI, Development, Test:
		if err := loadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to load %s configuration: %w", env, err)
		}
	case Production:
		if err := loadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to load production configuration: %w", err)
		}
		loadSecrets(cfg)
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadYAML overlays the values found in a YAML config file
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// loadEnv overrides configuration with any environment variables that are set
func loadEnv(cfg *Config) error {
	setString(&cfg.APIBaseURL, "API_BASE_URL")
	setString(&cfg.IdentityBaseURL, "IDENTITY_BASE_URL")
	setString(&cfg.IdentityAPIKey, "IDENTITY_API_KEY")
	setString(&cfg.PrefsBackend, "PREFS_BACKEND")
	setString(&cfg.PrefsSQLitePath, "PREFS_SQLITE_PATH")
	setString(&cfg.DBHost, "DB_HOST")
	setString(&cfg.DBPort, "DB_PORT")
	setString(&cfg.DBUser, "DB_USER")
	setString(&cfg.DBPassword, "DB_PASSWORD")
	setString(&cfg.DBName, "DB_NAME")
	setString(&cfg.DBSSLMode, "DB_SSL_MODE")
	setString(&cfg.RedisHost, "REDIS_HOST")
	setString(&cfg.RedisPort, "REDIS_PORT")
	setString(&cfg.RedisPassword, "REDIS_PASSWORD")
	setString(&cfg.RedisURL, "REDIS_URL")
	setString(&cfg.S3Bucket, "S3_BUCKET_NAME")
	setString(&cfg.AWSRegion, "AWS_REGION")
	setString(&cfg.StubPort, "STUB_PORT")
	setString(&cfg.StubJWTSecret, "STUB_JWT_SECRET")

	if v := os.Getenv("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid REDIS_DB %q: %w", v, err)
		}
		cfg.RedisDB = db
	}
	if v := os.Getenv("STUB_RECOMMEND_LIMIT"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid STUB_RECOMMEND_LIMIT %q: %w", v, err)
		}
		cfg.StubRecommendLimit = limit
	}
	if v := os.Getenv("GOOGLE_SIGN_IN_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid GOOGLE_SIGN_IN_ENABLED %q: %w", v, err)
		}
		cfg.GoogleSignInEnabled = enabled
	}
	if err := setDuration(&cfg.HTTPTimeout, "HTTP_TIMEOUT"); err != nil {
		return err
	}
	if err := setDuration(&cfg.ReportURLExpiry, "REPORT_URL_EXPIRY"); err != nil {
		return err
	}

	return nil
}

// loadSecrets fills sensitive values from Docker secrets when present
func loadSecrets(cfg *Config) {
	if v := readSecret("identity_api_key"); v != "" {
		cfg.IdentityAPIKey = v
	}
	if v := readSecret("db_password"); v != "" {
		cfg.DBPassword = v
	}
	if v := readSecret("redis_password"); v != "" {
		cfg.RedisPassword = v
	}
	if v := readSecret("stub_jwt_secret"); v != "" {
		cfg.StubJWTSecret = v
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = d
	return nil
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
