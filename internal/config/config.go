package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/match-manager/internal/platform/logging"
)

// Config stores runtime configuration for the commands.
type Config struct {
	AppEnv           string
	ServiceName      string
	LogLevel         logging.Level
	LogFormat        logging.Format
	StorageDriver    string
	DBPath           string
	DBBusyTimeout    time.Duration
	RecentTeamsLimit int
	SeedWorkers      int
}

const (
	StorageDriverSQLite = "sqlite"
	StorageDriverMemory = "memory"

	defaultDBPath = "./data/MatchManagerDB.sqlite"
)

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	logFormatDefault := string(logging.FormatConsole)
	if appEnv == EnvProd {
		logFormatDefault = string(logging.FormatJSON)
	}
	logFormat, err := parseLogFormat(getEnv("APP_LOG_FORMAT", logFormatDefault))
	if err != nil {
		return Config{}, err
	}

	storageDriver, err := parseStorageDriver(getEnv("STORAGE_DRIVER", StorageDriverSQLite))
	if err != nil {
		return Config{}, err
	}

	dbPath := strings.TrimSpace(getEnv("DB_PATH", defaultDBPath))

	busyTimeout, err := time.ParseDuration(getEnv("DB_BUSY_TIMEOUT", "5s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_BUSY_TIMEOUT: %w", err)
	}
	if busyTimeout <= 0 {
		return Config{}, fmt.Errorf("DB_BUSY_TIMEOUT must be > 0")
	}

	recentTeamsLimit, err := getEnvAsInt("RECENT_TEAMS_LIMIT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse RECENT_TEAMS_LIMIT: %w", err)
	}
	if recentTeamsLimit < 1 {
		return Config{}, fmt.Errorf("RECENT_TEAMS_LIMIT must be >= 1")
	}

	seedWorkers, err := getEnvAsInt("SEED_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse SEED_WORKERS: %w", err)
	}
	if seedWorkers < 1 {
		return Config{}, fmt.Errorf("SEED_WORKERS must be >= 1")
	}

	return Config{
		AppEnv:           appEnv,
		ServiceName:      getEnv("APP_SERVICE_NAME", "match-manager"),
		LogLevel:         parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
		LogFormat:        logFormat,
		StorageDriver:    storageDriver,
		DBPath:           dbPath,
		DBBusyTimeout:    busyTimeout,
		RecentTeamsLimit: recentTeamsLimit,
		SeedWorkers:      seedWorkers,
	}, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func parseLogFormat(v string) (logging.Format, error) {
	switch value := logging.Format(strings.ToLower(strings.TrimSpace(v))); value {
	case logging.FormatJSON, logging.FormatConsole:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_LOG_FORMAT %q: valid values are %s, %s", v, logging.FormatJSON, logging.FormatConsole)
	}
}

func parseStorageDriver(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case StorageDriverSQLite, StorageDriverMemory:
		return value, nil
	default:
		return "", fmt.Errorf("invalid STORAGE_DRIVER %q: valid values are %s, %s", v, StorageDriverSQLite, StorageDriverMemory)
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
