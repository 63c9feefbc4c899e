package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	Auth          AuthConfig
	Uploads       UploadsConfig
	Notifications NotificationsConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	URL            string
	MaxConns       int
	MinConns       int
	MigrationsPath string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret string
}

type UploadsConfig struct {
	Dir          string
	MaxLogoBytes int64
}

type NotificationsConfig struct {
	RetentionDays   int
	StaleTicketMins int
	CleanupSpec     string // cron spec for the retention sweep
	ScanSpec        string // cron spec for the critical-ticket scan
}

func Load() (*Config, error) {
	// Optional .env for local development; real env vars win.
	_ = godotenv.Load()

	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	maxConns, err := getEnvInt("DB_MAX_CONNS", 20)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	minConns, err := getEnvInt("DB_MIN_CONNS", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxLogoBytes, err := getEnvInt("UPLOAD_MAX_LOGO_BYTES", 2<<20)
	if err != nil {
		return nil, fmt.Errorf("invalid UPLOAD_MAX_LOGO_BYTES: %w", err)
	}

	retentionDays, err := getEnvInt("NOTIFICATION_RETENTION_DAYS", 30)
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFICATION_RETENTION_DAYS: %w", err)
	}

	staleTicketMins, err := getEnvInt("NOTIFICATION_STALE_TICKET_MINS", 120)
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFICATION_STALE_TICKET_MINS: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConns:       maxConns,
			MinConns:       minConns,
			MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Uploads: UploadsConfig{
			Dir:          getEnv("UPLOAD_DIR", "uploads"),
			MaxLogoBytes: int64(maxLogoBytes),
		},
		Notifications: NotificationsConfig{
			RetentionDays:   retentionDays,
			StaleTicketMins: staleTicketMins,
			CleanupSpec:     getEnv("NOTIFICATION_CLEANUP_SPEC", "0 3 * * *"),
			ScanSpec:        getEnv("NOTIFICATION_SCAN_SPEC", "@every 15m"),
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) Validate() error {
	var missing []string
	if c.Database.URL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.Auth.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}
