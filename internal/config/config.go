package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr   string // API bind address, e.g., ":8080"
	LogDir string // rotated log directory

	DatabaseDriver string // "memory", "sqlite", or "postgres"
	DatabaseURL    string // DSN for sqlite (file path) or postgres

	CheckCycle          time.Duration // cadence of the monitoring tick
	ProbeTimeout        time.Duration // hard per-probe timeout
	MaxConcurrentChecks int           // in-flight probe cap per cycle

	RetentionDays          int // log rows older than this get swept
	SweepHourUTC           int // daily sweep hour, 0-23
	DefaultIntervalSeconds int // check interval applied when a record has none

	RetryAttempts int           // registration-time immediate check only
	RetryBackoff  time.Duration

	SlackWebhook   string
	SMTPHost       string
	SMTPPort       int
	SMTPUser       string
	SMTPPass       string
	AlertFrom      string
	AlertRecipient string

	PublicAPIKeys []string
	AdminAPIKeys  []string
	PublicRPM     int
	PublicBurst   int
	AdminRPM      int
	AdminBurst    int
}

func FromEnv() Config {
	return Config{
		Addr:   getEnv("ADDR", ":8080"),
		LogDir: getEnv("LOG_DIR", "logs"),

		DatabaseDriver: getEnv("DATABASE_DRIVER", "memory"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),

		CheckCycle:          getMillis("CHECK_CYCLE_MS", 60_000),
		ProbeTimeout:        getMillis("PROBE_TIMEOUT_MS", 10_000),
		MaxConcurrentChecks: getInt("MAX_CONCURRENT_CHECKS", 8),

		RetentionDays:          getInt("RETENTION_DAYS", 30),
		SweepHourUTC:           getInt("SWEEP_HOUR_UTC", 2),
		DefaultIntervalSeconds: getInt("DEFAULT_INTERVAL_SECONDS", 300),

		RetryAttempts: getInt("RETRY_ATTEMPTS", 2),
		RetryBackoff:  getMillis("RETRY_BACKOFF_MS", 300),

		SlackWebhook:   os.Getenv("SLACK_WEBHOOK"),
		SMTPHost:       os.Getenv("SMTP_HOST"),
		SMTPPort:       getInt("SMTP_PORT", 587),
		SMTPUser:       os.Getenv("SMTP_USER"),
		SMTPPass:       os.Getenv("SMTP_PASS"),
		AlertFrom:      os.Getenv("ALERT_FROM"),
		AlertRecipient: os.Getenv("ALERT_RECIPIENT"),

		PublicAPIKeys: splitCSV(os.Getenv("PUBLIC_API_KEYS")),
		AdminAPIKeys:  splitCSV(os.Getenv("ADMIN_API_KEYS")),
		PublicRPM:     getInt("PUBLIC_RPM", 120),
		PublicBurst:   getInt("PUBLIC_BURST", 60),
		AdminRPM:      getInt("ADMIN_RPM", 60),
		AdminBurst:    getInt("ADMIN_BURST", 30),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getMillis(key string, fallback int) time.Duration {
	return time.Duration(getInt(key, fallback)) * time.Millisecond
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
