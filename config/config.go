package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Gemini    GeminiConfig
	Storage   StorageConfig
	CORS      CORSConfig
	Log       LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `env:"SERVER_HOST" env-default:"0.0.0.0"`
	Port            int           `env:"SERVER_PORT" env-default:"5001"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" env-default:"120s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig selects the gorm dialect and its connection settings.
type DatabaseConfig struct {
	Driver        string `env:"DB_DRIVER" env-default:"postgres"`
	Host          string `env:"DB_HOST" env-default:"localhost"`
	Port          string `env:"DB_PORT" env-default:"5432"`
	User          string `env:"DB_USER"`
	Password      string `env:"DB_PASSWORD"`
	Name          string `env:"DB_NAME" env-default:"cosmic_nutrition"`
	SSLMode       string `env:"DB_SSL_MODE" env-default:"disable"`
	SQLitePath    string `env:"DB_SQLITE_PATH" env-default:"cosmic_nutrition.db"`
	MigrationsDir string `env:"DB_MIGRATIONS_DIR" env-default:"migrations"`

	// ConnectTimeout bounds how long startup waits for postgres to accept
	// connections; ConnectInterval is the pause between attempts.
	ConnectTimeout  time.Duration `env:"DB_CONNECT_TIMEOUT" env-default:"60s"`
	ConnectInterval time.Duration `env:"DB_CONNECT_INTERVAL" env-default:"2s"`
}

// DSN returns the postgres connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// RedisConfig is optional. Without a host or URL the analyze route is not rate limited.
type RedisConfig struct {
	URL      string `env:"REDIS_URL"`
	Host     string `env:"REDIS_HOST"`
	Port     string `env:"REDIS_PORT" env-default:"6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

// Enabled reports whether a Redis endpoint was configured.
func (c RedisConfig) Enabled() bool {
	return c.URL != "" || c.Host != ""
}

// AuthConfig describes how bearer tokens issued by the identity provider are verified.
// Either JWTSecret (HS256) or PublicKeyPEM (RS256) must be set.
type AuthConfig struct {
	Issuer       string `env:"AUTH_ISSUER"`
	Audience     string `env:"AUTH_AUDIENCE"`
	JWTSecret    string `env:"AUTH_JWT_SECRET"`
	PublicKeyPEM string `env:"AUTH_PUBLIC_KEY"`
}

// GeminiConfig configures the generative model used for meal analysis.
type GeminiConfig struct {
	APIKey     string        `env:"GEMINI_API_KEY"`
	APIKeyFile string        `env:"GEMINI_API_KEY_FILE"`
	Model      string        `env:"GEMINI_MODEL" env-default:"gemini-2.5-pro"`
	BaseURL    string        `env:"GEMINI_BASE_URL" env-default:"https://generativelanguage.googleapis.com/v1beta"`
	Timeout    time.Duration `env:"GEMINI_TIMEOUT" env-default:"90s"`
}

// StorageConfig configures the S3 bucket used for meal history exports.
type StorageConfig struct {
	Bucket    string        `env:"S3_BUCKET_NAME"`
	Region    string        `env:"AWS_REGION" env-default:"us-east-1"`
	ExportTTL time.Duration `env:"S3_EXPORT_URL_TTL" env-default:"15m"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:5173"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" env-default:"info"`
	Format string `env:"LOG_FORMAT" env-default:"json"`
}

// RateLimitConfig bounds how often a single user may call the analysis route.
type RateLimitConfig struct {
	AnalyzeLimit  int           `env:"RATE_LIMIT_ANALYZE" env-default:"30"`
	AnalyzeWindow time.Duration `env:"RATE_LIMIT_ANALYZE_WINDOW" env-default:"1h"`
}

// LoadConfig reads an optional .env file, the process environment and, in
// production, Docker secrets, then validates the result.
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	if env != Production {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if env == Production {
		applySecrets(cfg)
	}

	if err := resolveGeminiKey(&cfg.Gemini); err != nil {
		return nil, err
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// applySecrets overrides sensitive values with Docker secrets when present.
func applySecrets(cfg *Config) {
	overlay := map[string]*string{
		"db_user":         &cfg.Database.User,
		"db_password":     &cfg.Database.Password,
		"redis_password":  &cfg.Redis.Password,
		"redis_url":       &cfg.Redis.URL,
		"auth_jwt_secret": &cfg.Auth.JWTSecret,
		"auth_public_key": &cfg.Auth.PublicKeyPEM,
		"gemini_api_key":  &cfg.Gemini.APIKey,
	}
	for name, field := range overlay {
		if v := readSecret(name); v != "" {
			*field = v
		}
	}
}

// resolveGeminiKey falls back to API_KEY and then to GEMINI_API_KEY_FILE.
// A missing key is not an error; the analysis route reports it per request.
func resolveGeminiKey(g *GeminiConfig) error {
	if g.APIKey != "" {
		return nil
	}
	if v := strings.TrimSpace(os.Getenv("API_KEY")); v != "" {
		g.APIKey = v
		return nil
	}
	if g.APIKeyFile == "" {
		return nil
	}
	data, err := os.ReadFile(g.APIKeyFile)
	if err != nil {
		return fmt.Errorf("failed to read API key file: %w", err)
	}
	g.APIKey = strings.TrimSpace(string(data))
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
