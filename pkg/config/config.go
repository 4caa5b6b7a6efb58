package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	DatabaseURL        string
	StudentJWTSecret   string
	SecretaryJWTSecret string
	Port               string
	Environment        string
	TokenTTL           time.Duration
	ResetTokenTTL      time.Duration
	ResetURLBase       string
	// Mail configuration
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
	// Logging
	LogLevel string
	LogJSON  bool
	// Security configuration
	AllowedOrigins  string
	TrustedProxies  string
	EnableRateLimit bool
	MaxRequestSize  int64
}

// New creates a new configuration instance from environment variables
func New() *Config {
	return &Config{
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		StudentJWTSecret:   getEnv("STUDENT_JWT_SECRET", ""),
		SecretaryJWTSecret: getEnv("SECRETARY_JWT_SECRET", ""),
		Port:               getEnv("PORT", "8080"),
		Environment:        getEnv("ENV", "development"),
		TokenTTL:           getEnvAsDuration("TOKEN_TTL", 10*time.Hour),
		ResetTokenTTL:      getEnvAsDuration("RESET_TOKEN_TTL", time.Hour),
		ResetURLBase:       getEnv("RESET_URL_BASE", "http://localhost:3700/confirm"),
		SMTPHost:           getEnv("SMTP_HOST", ""),
		SMTPPort:           getEnvAsInt("SMTP_PORT", 587),
		SMTPUsername:       getEnv("SMTP_USERNAME", ""),
		SMTPPassword:       getEnv("SMTP_PASSWORD", ""),
		MailFrom:           getEnv("MAIL_FROM", "no-reply@localhost"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogJSON:            getEnv("LOG_JSON", "false") == "true",
		AllowedOrigins:     getEnv("ALLOWED_ORIGINS", ""),
		TrustedProxies:     getEnv("TRUSTED_PROXIES", ""),
		EnableRateLimit:    getEnv("ENABLE_RATE_LIMIT", "true") == "true",
		MaxRequestSize:     getEnvAsInt64("MAX_REQUEST_SIZE", 1024*1024), // 1MB default
	}
}

// Validate reports the settings the server cannot start without
func (c *Config) Validate() error {
	var missing []string
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.StudentJWTSecret == "" {
		missing = append(missing, "STUDENT_JWT_SECRET")
	}
	if c.SecretaryJWTSecret == "" {
		missing = append(missing, "SECRETARY_JWT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if c.StudentJWTSecret == c.SecretaryJWTSecret {
		return fmt.Errorf("STUDENT_JWT_SECRET and SECRETARY_JWT_SECRET must differ")
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// HasSMTPCredentials returns true if an SMTP relay is configured
func (c *Config) HasSMTPCredentials() bool {
	return c.SMTPHost != "" && c.SMTPUsername != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// GetAllowedOrigins returns a slice of allowed CORS origins
func (c *Config) GetAllowedOrigins() []string {
	if c.AllowedOrigins == "" {
		return []string{}
	}
	origins := strings.Split(c.AllowedOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return origins
}

// GetTrustedProxies returns a slice of trusted proxy IPs
func (c *Config) GetTrustedProxies() []string {
	if c.TrustedProxies == "" {
		return []string{} // No trusted proxies by default
	}
	return strings.Split(c.TrustedProxies, ",")
}
