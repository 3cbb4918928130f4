package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting the API reads from the environment.
type Config struct {
	AppName string
	Port    string

	DBDriver    string
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	// DatabaseAnonKey is the hosted provider's public key. The server talks to
	// the database directly and only keeps it for clients that ask for it.
	DatabaseAnonKey string
	DBLogSQL        bool

	JWTSecret          string
	JWTExpirationHours int
	AdminEmail         string
	AdminPassword      string

	EmailAPIKey string
	EmailFrom   string
	SMTPHost    string
	SMTPPort    int
	SMTPUser    string

	TwilioAccountSID          string
	TwilioAuthToken           string
	TwilioMessagingServiceSID string
	SMSConcurrency            int

	DashboardPollInterval time.Duration
	DashboardLookbackDays int
	LowStockThreshold     int

	SnowflakeNode int64
	LogConfig     string
}

// Load reads .env (when present) and the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() *Config {
	return &Config{
		AppName: getEnv("APP_NAME", "Back Office API v1.0"),
		Port:    getEnv("PORT", "3000"),

		DBDriver:        getEnv("DB_DRIVER", "postgres"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		DBHost:          getEnv("DB_HOST", "localhost"),
		DBPort:          getEnv("DB_PORT", "5432"),
		DBUser:          getEnv("DB_USER", "postgres"),
		DBPassword:      getEnv("DB_PASSWORD", ""),
		DBName:          getEnv("DB_NAME", "backoffice"),
		DatabaseAnonKey: getEnv("DATABASE_ANON_KEY", ""),
		DBLogSQL:        getEnvAsBool("DB_LOG_SQL", false),

		JWTSecret:          getEnv("JWT_SECRET", "your-super-secret-key-change-in-production"),
		JWTExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 24),
		AdminEmail:         getEnv("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword:      getEnv("ADMIN_PASSWORD", "admin123"),

		EmailAPIKey: getEnv("EMAIL_API_KEY", ""),
		EmailFrom:   getEnv("EMAIL_FROM", "orders@example.com"),
		SMTPHost:    getEnv("SMTP_HOST", "smtp.resend.com"),
		SMTPPort:    getEnvAsInt("SMTP_PORT", 465),
		SMTPUser:    getEnv("SMTP_USER", "resend"),

		TwilioAccountSID:          getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:           getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioMessagingServiceSID: getEnv("TWILIO_MESSAGING_SERVICE_SID", ""),
		SMSConcurrency:            getEnvAsInt("SMS_CONCURRENCY", 4),

		DashboardPollInterval: getEnvAsDuration("DASHBOARD_POLL_INTERVAL", 10*time.Second),
		DashboardLookbackDays: getEnvAsInt("DASHBOARD_LOOKBACK_DAYS", 30),
		LowStockThreshold:     getEnvAsInt("LOW_STOCK_THRESHOLD", 10),

		SnowflakeNode: int64(getEnvAsInt("SNOWFLAKE_NODE", 1)),
		LogConfig:     getEnv("LOG_CONFIG", "<root>=INFO"),
	}
}

// EmailConfigured reports whether outbound email has credentials.
func (c *Config) EmailConfigured() bool {
	return c.EmailAPIKey != "" && c.EmailFrom != ""
}

// SMSConfigured reports whether the Twilio credentials are all present.
func (c *Config) SMSConfigured() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioMessagingServiceSID != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil && value > 0 {
		return value
	}
	return defaultValue
}
