package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Gemini      GeminiConfig
	Qdrant      QdrantConfig
	Storage     StorageConfig
	Worker      WorkerConfig
	Mail        MailConfig
	Report      ReportConfig
	Translation TranslationConfig
	Admin       AdminConfig
	Log         LogConfig
}

type ServerConfig struct {
	Port              string
	Env               string
	Debug             bool
	SecretKey         string
	AuditWriteTimeout time.Duration
}

type DatabaseConfig struct {
	URL             string
	Driver          string
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SQLitePath      string
	ConnectAttempts int
	ConnectDelay    time.Duration
}

type GeminiConfig struct {
	APIKey     string
	Model      string
	EmbedModel string
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
}

type StorageConfig struct {
	ArtifactPath string
}

type WorkerConfig struct {
	Enabled          bool
	Concurrency      int
	QueueSize        int
	PollInterval     time.Duration
	StaleAfter       time.Duration
	LongTaskDuration time.Duration
}

type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type ReportConfig struct {
	Recipient       string
	Schedule        string
	CleanupSchedule string
	SiteURL         string
}

type TranslationConfig struct {
	CacheTTL time.Duration
}

type AdminConfig struct {
	Username string
	Password string
}

type LogConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port:              getEnv("PORT", "8000"),
			Env:               getEnv("ENV", "development"),
			Debug:             getEnvAsBool("DEBUG", false),
			SecretKey:         getEnv("SECRET_KEY", "insecure-development-secret-key"),
			AuditWriteTimeout: getEnvAsDuration("AUDIT_WRITE_TIMEOUT", "250ms"),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			Driver:          strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			DBName:          getEnv("DB_NAME", "cv_project"),
			SQLitePath:      getEnv("SQLITE_PATH", "cv_project.db"),
			ConnectAttempts: getEnvAsInt("DB_CONNECT_ATTEMPTS", 10),
			ConnectDelay:    getEnvAsDuration("DB_CONNECT_DELAY", "2s"),
		},
		Gemini: GeminiConfig{
			APIKey:     getEnv("GEMINI_API_KEY", ""),
			Model:      getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			EmbedModel: getEnv("GEMINI_EMBED_MODEL", "text-embedding-004"),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", ""),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "cv_project_cvs"),
		},
		Storage: StorageConfig{
			ArtifactPath: getEnv("ARTIFACT_PATH", "./artifacts"),
		},
		Worker: WorkerConfig{
			Enabled:          getEnvAsBool("WORKER_ENABLED", true),
			Concurrency:      getEnvAsInt("WORKER_CONCURRENCY", 3),
			QueueSize:        getEnvAsInt("WORKER_QUEUE_SIZE", 100),
			PollInterval:     getEnvAsDuration("WORKER_POLL_INTERVAL", "10s"),
			StaleAfter:       getEnvAsDuration("WORKER_STALE_AFTER", "15m"),
			LongTaskDuration: getEnvAsDuration("LONG_TASK_DURATION", "10s"),
		},
		Mail: MailConfig{
			Host:     getEnv("MAIL_HOST", ""),
			Port:     getEnvAsInt("MAIL_PORT", 587),
			Username: getEnv("MAIL_USERNAME", ""),
			Password: getEnv("MAIL_PASSWORD", ""),
			From:     getEnv("MAIL_FROM", "noreply@cvproject.com"),
		},
		Report: ReportConfig{
			Recipient:       getEnv("REPORT_RECIPIENT", "admin@cvproject.com"),
			Schedule:        getEnv("REPORT_SCHEDULE", "@daily"),
			CleanupSchedule: getEnv("CLEANUP_SCHEDULE", "@hourly"),
			SiteURL:         strings.TrimRight(getEnv("SITE_URL", "http://localhost:8000"), "/"),
		},
		Translation: TranslationConfig{
			CacheTTL: getEnvAsDuration("TRANSLATION_CACHE_TTL", "1h"),
		},
		Admin: AdminConfig{
			Username: getEnv("ADMIN_USERNAME", "admin"),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			File:       getEnv("LOG_FILE", ""),
			MaxSizeMB:  getEnvAsInt("LOG_MAX_SIZE_MB", 100),
			MaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 5),
			MaxAgeDays: getEnvAsInt("LOG_MAX_AGE_DAYS", 30),
		},
	}
}

// GetDatabaseDSN returns DATABASE_URL when set, otherwise a DSN for the configured driver.
func (c *Config) GetDatabaseDSN() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}

	if c.Database.Driver == "sqlite" {
		return fmt.Sprintf("file:%s?_foreign_keys=on", c.Database.SQLitePath)
	}

	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Debug
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
