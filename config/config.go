package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string

	// Per-file upload cap in bytes.
	MaxFileSize int64
	// Upper bound on extracted text fed to the field extractor. Documents
	// above this are rejected to bound regex cost on pathological input.
	MaxTextBytes int

	SessionTTL    time.Duration
	SweepSchedule string

	// SMTP settings for the email report sink. Sending is disabled when
	// SMTPHost is empty.
	SMTPHost    string
	SMTPPort    string
	SMTPUser    string
	SMTPPass    string
	SenderEmail string

	// Bill-format profile selection. ProfilePath points at an optional
	// YAML file of additional profiles.
	ProfileName string
	ProfilePath string
}

func LoadConfig() *Config {
	// .env is optional; real env always wins.
	_ = godotenv.Load()

	return &Config{
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		MaxFileSize:   getEnvInt64("MAX_FILE_SIZE", 10*1024*1024),
		MaxTextBytes:  int(getEnvInt64("MAX_TEXT_BYTES", 1024*1024)),
		SessionTTL:    getEnvDuration("SESSION_TTL", 30*time.Minute),
		SweepSchedule: getEnv("SESSION_SWEEP_SCHEDULE", "@every 10m"),
		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPPort:      getEnv("SMTP_PORT", "587"),
		SMTPUser:      os.Getenv("SMTP_USER"),
		SMTPPass:      os.Getenv("SMTP_PASS"),
		SenderEmail:   getEnv("SENDER_EMAIL", "reports@utility-bill-analyzer.local"),
		ProfileName:   getEnv("BILL_PROFILE", "electric"),
		ProfilePath:   os.Getenv("BILL_PROFILE_PATH"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
