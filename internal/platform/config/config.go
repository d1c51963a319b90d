package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr             string
	Environment      string
	DataDir          string
	ReportDir        string
	JWTSecret        string
	TokenTTL         time.Duration
	CredentialsFile  string
	PayslipPDF       bool
	AutosaveInterval time.Duration
	MaxBodyBytes     int64
	MetricsEnabled   bool
	RateLimit        int
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() Config {
	_ = godotenv.Load()
	return Config{
		Addr:             getEnv("APP_ADDR", ":8080"),
		Environment:      getEnv("APP_ENV", "development"),
		DataDir:          getEnv("DATA_DIR", "."),
		ReportDir:        getEnv("REPORT_DIR", "reports"),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		TokenTTL:         getEnvDuration("TOKEN_TTL", 8*time.Hour),
		CredentialsFile:  getEnv("CREDENTIALS_FILE", "credentials.yaml"),
		PayslipPDF:       getEnvBool("PAYSLIP_PDF", false),
		AutosaveInterval: getEnvDuration("AUTOSAVE_INTERVAL", 5*time.Minute),
		MaxBodyBytes:     int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		MetricsEnabled:   getEnvBool("METRICS_ENABLED", true),
		RateLimit:        getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("DATA_DIR is required")
	}
	if strings.TrimSpace(c.ReportDir) == "" {
		return fmt.Errorf("REPORT_DIR is required")
	}
	if c.Environment == "production" && strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.AutosaveInterval < 0 {
		return fmt.Errorf("AUTOSAVE_INTERVAL must not be negative")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	return nil
}
