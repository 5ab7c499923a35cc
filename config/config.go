package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds application configuration loaded from environment variables and .env file.
type AppConfig struct {
	// Database config (control plane, staging and warehouse tables)
	DBHost string
	DBPort int
	DBUser string
	DBPass string
	DBName string

	// Logging config
	LogLevel      string
	LogFile       string
	LogMaxSize    int // MB
	LogMaxBackups int
	LogMaxAge     int // days
	LogCompress   bool

	// Source fetch config
	HTTPTimeout     time.Duration // Timeout for one OData page request
	HTTPMaxRetries  int           // Retry attempts per page request
	HTTPRateLimit   float64       // OData requests per second
	SampleRowLimit  int           // Default sample size for column detection
	MaxUploadSizeMB int           // Upload size ceiling for file sources

	// Engine config
	LoadBatchSize    int // Rows per staging/warehouse insert batch
	SchedulerWorkers int // Concurrent scheduled transfer executions
}

// Cfg is the global application configuration instance.
var Cfg AppConfig

// LoadConfig loads and validates application configuration from .env file and environment variables.
func LoadConfig() error {
	if err := godotenv.Load(); err != nil {
		// Use standard log here since logger is not initialized yet
		log.Printf("[WARN] .env file not found or cannot be loaded: %v", err)
	} else {
		log.Printf("[INFO] .env file loaded successfully")
	}

	Cfg.DBHost = getEnv("DB_HOST", "127.0.0.1")
	Cfg.DBPort = getEnvInt("DB_PORT", 3306)
	Cfg.DBUser = getEnv("DB_USER", "root")
	Cfg.DBPass = getEnv("DB_PASS", "")
	Cfg.DBName = getEnv("DB_NAME", "databridge")

	Cfg.LogLevel = getEnv("LOG_LEVEL", "INFO")
	Cfg.LogFile = getEnv("LOG_FILE", "/var/log/databridge/databridgeapi.log")
	Cfg.LogMaxSize = getEnvInt("LOG_MAX_SIZE", 10)
	Cfg.LogMaxBackups = getEnvInt("LOG_MAX_BACKUPS", 3)
	Cfg.LogMaxAge = getEnvInt("LOG_MAX_AGE", 28)
	Cfg.LogCompress = getEnvBool("LOG_COMPRESS", true)

	Cfg.HTTPTimeout = time.Duration(getEnvInt("HTTP_TIMEOUT", 60)) * time.Second
	Cfg.HTTPMaxRetries = getEnvInt("HTTP_MAX_RETRIES", 3)
	Cfg.HTTPRateLimit = float64(getEnvInt("HTTP_RATE_LIMIT", 10))
	Cfg.SampleRowLimit = getEnvInt("SAMPLE_ROW_LIMIT", 100)
	Cfg.MaxUploadSizeMB = getEnvInt("MAX_UPLOAD_SIZE_MB", 100)

	Cfg.LoadBatchSize = getEnvInt("LOAD_BATCH_SIZE", 500)
	Cfg.SchedulerWorkers = getEnvInt("SCHEDULER_WORKERS", 5)

	log.Printf("[INFO] Config loaded - DB: %s@%s:%d/%s, LogLevel: %s",
		Cfg.DBUser, Cfg.DBHost, Cfg.DBPort, Cfg.DBName, Cfg.LogLevel)
	log.Printf("[INFO] Engine config - BatchSize: %d, SchedulerWorkers: %d, SampleRowLimit: %d",
		Cfg.LoadBatchSize, Cfg.SchedulerWorkers, Cfg.SampleRowLimit)

	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if boolVal, err := strconv.ParseBool(strings.TrimSpace(val)); err == nil {
			return boolVal
		}
	}
	return defaultVal
}
