package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageMySQL    = "mysql"
	StorageRedis    = "redis"
)

const (
	BillDeleteRetain  = "retain"
	BillDeleteReverse = "reverse"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	OTLPEndpoint string

	StorageBackend  string
	StorageCompress bool

	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int
	SQLitePath        string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	SnowflakeNode int64

	DepotTimezone      string
	DepotConfigPath    string
	UndoWindow         time.Duration
	UndoDepth          int
	BillDeletePolicy   string
	SeedWorkbook       string
	DuesDigestSchedule string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	appName := getenv("APP_SERVICE", "rythudepot")
	cfg := Config{
		AppName:      appName,
		AppVersion:   getenv("APP_VERSION", "0.1.0"),
		Environment:  getenv("ENVIRONMENT", "development"),
		HTTPAddr:     getenv("HTTP_ADDR", ":8080"),
		OTLPEndpoint: getenv("OTLP_ENDPOINT", "localhost:4317"),

		StorageBackend:  normalizeStorage(getenv("STORAGE_BACKEND", StorageSQLite)),
		StorageCompress: getenvBool("STORAGE_COMPRESS", false),

		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "rythudepot"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     int(getenvInt64("DATABASE_MAX_IDLE_CONN", 2)),
		DBMaxOpenConn:     int(getenvInt64("DATABASE_MAX_OPEN_CONN", 10)),
		DBConnMaxLifetime: int(getenvInt64("DATABASE_CONN_MAX_LIFETIME", 300)),
		DBConnMaxIdleTime: int(getenvInt64("DATABASE_CONN_MAX_IDLE_TIME", 60)),
		SQLitePath:        getenv("SQLITE_PATH", "rythudepot.db"),

		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       int(getenvInt64("REDIS_DB", 0)),
		RedisPrefix:   getenv("REDIS_PREFIX", slug.Make(appName)+":"),

		SnowflakeNode: getenvInt64("SNOWFLAKE_NODE", 1),

		DepotTimezone:      getenv("DEPOT_TIMEZONE", "Asia/Kolkata"),
		DepotConfigPath:    strings.TrimSpace(getenv("DEPOT_CONFIG", "")),
		UndoWindow:         getenvDuration("UNDO_WINDOW", 10*time.Second),
		UndoDepth:          int(getenvInt64("UNDO_DEPTH", 1)),
		BillDeletePolicy:   normalizeDeletePolicy(getenv("BILL_DELETE_POLICY", BillDeleteRetain)),
		SeedWorkbook:       strings.TrimSpace(getenv("SEED_WORKBOOK", "")),
		DuesDigestSchedule: strings.TrimSpace(getenvRaw("DUES_DIGEST_SCHEDULE", "0 8 * * *")),
	}
	if cfg.UndoDepth < 1 {
		cfg.UndoDepth = 1
	}

	return cfg
}

// Location resolves the depot time zone. An unknown zone falls back to UTC
// and returns the lookup error so the caller can report it.
func (c Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.DepotTimezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC, err
	}
	return loc, nil
}

func normalizeStorage(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case StorageMemory, StorageSQLite, StoragePostgres, StorageMySQL, StorageRedis:
		return value
	case "postgresql":
		return StoragePostgres
	default:
		return StorageSQLite
	}
}

func normalizeDeletePolicy(raw string) string {
	if strings.EqualFold(strings.TrimSpace(raw), BillDeleteReverse) {
		return BillDeleteReverse
	}
	return BillDeleteRetain
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getenvRaw distinguishes an empty value from an unset one.
func getenvRaw(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
