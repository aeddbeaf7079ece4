package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort           string
	CORSAllowedOrigins []string
	LogLevel           string

	// Empty selects the in-memory repositories.
	DatabaseURL string
	RabbitMQURL string
	RedisAddr   string

	MailHost string
	MailPort int
	MailUser string
	MailPass string
	MailFrom string

	WhatsAppAccessToken string
	WhatsAppPhoneID     string
	WhatsAppTemplate    string
	WhatsAppLanguage    string

	GoogleCredentials string
	ExcelFilePath     string

	ImportInterval     time.Duration
	ImportRunOnStart   bool
	ImportFetchTimeout time.Duration
	ImportLockTTL      time.Duration
}

// Load reads .env when present, then the environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		CORSAllowedOrigins: getStringSliceEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		LogLevel:           getEnv("LOG_LEVEL", "info"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RabbitMQURL: getEnv("RABBITMQ_URL", ""),
		RedisAddr:   getEnv("REDIS_ADDR", ""),

		MailHost: getEnv("MAIL_HOST", ""),
		MailPort: getIntEnv("MAIL_PORT", 587),
		MailUser: getEnv("MAIL_USER", ""),
		MailPass: getEnv("MAIL_PASS", ""),
		MailFrom: getEnv("MAIL_FROM", "no-reply@leadflow.local"),

		WhatsAppAccessToken: getEnv("WHATSAPP_ACCESS_TOKEN", ""),
		WhatsAppPhoneID:     getEnv("WHATSAPP_PHONE_ID", ""),
		WhatsAppTemplate:    getEnv("WHATSAPP_TEMPLATE", "new_lead_alert"),
		WhatsAppLanguage:    getEnv("WHATSAPP_LANGUAGE", "en"),

		GoogleCredentials: getEnv("GOOGLE_SERVICE_ACCOUNT_CREDENTIALS", ""),
		ExcelFilePath:     getEnv("EXCEL_FILE_PATH", ""),

		ImportInterval:     getDuration("IMPORT_INTERVAL", 10*time.Minute),
		ImportRunOnStart:   getBoolEnv("IMPORT_RUN_ON_START", true),
		ImportFetchTimeout: getDuration("IMPORT_FETCH_TIMEOUT", 2*time.Minute),
		ImportLockTTL:      getDuration("IMPORT_LOCK_TTL", 30*time.Minute),
	}
}

// GoogleCredentialsJSON accepts either inline JSON or a path to a key file.
func (c *Config) GoogleCredentialsJSON() ([]byte, error) {
	v := strings.TrimSpace(c.GoogleCredentials)
	if v == "" {
		return nil, nil
	}
	if strings.HasPrefix(v, "{") {
		return []byte(v), nil
	}
	return os.ReadFile(v)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
