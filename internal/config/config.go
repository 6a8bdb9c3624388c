package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/propline/internal/platform/logging"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

// Config stores runtime configuration for the ingestion and migration CLIs.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	LogLevel       logging.Level
	LogFormat      string

	DBDriver                string
	DBURL                   string
	DBDisablePreparedBinary bool
	DBMaxOpenConns          int

	IngestSport               string
	IngestBatchLimit          int
	IngestInterval            time.Duration
	IngestStaleRunThreshold   time.Duration
	IngestUniqueRetryAttempts int
	IngestMaxConcurrentRuns   int
	IngestDisableUpsert       bool

	Providers                     []string
	PropFeedBaseURL               string
	PropFeedToken                 string
	PropFeedTimeout               time.Duration
	PropFeedMaxRetries            int
	PropFeedRetryBackoff          time.Duration
	PropFeedCircuitEnabled        bool
	PropFeedCircuitFailureCount   int
	PropFeedCircuitOpenTimeout    time.Duration
	PropFeedCircuitHalfOpenMaxReq int
	PropFeedFixturePath           string

	TaxonomyOverridesPath string
	MigrationBatchSize    int

	RedisEnabled           bool
	RedisAddr              string
	RedisPassword          string
	RedisDB                int
	LineChangeStreamPrefix string
	LineChangeStreamMaxLen int64

	UptraceEnabled             bool
	UptraceDSN                 string
	UptraceLogsEnabled         bool
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:                 appEnv,
		ServiceName:            getEnv("APP_SERVICE_NAME", "propline"),
		ServiceVersion:         getEnv("APP_SERVICE_VERSION", "dev"),
		LogLevel:               parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
		IngestSport:            strings.ToUpper(strings.TrimSpace(getEnv("INGEST_SPORT", "NBA"))),
		PropFeedBaseURL:        strings.TrimSpace(getEnv("PROPFEED_BASE_URL", "")),
		PropFeedToken:          strings.TrimSpace(getEnv("PROPFEED_TOKEN", "")),
		PropFeedFixturePath:    strings.TrimSpace(getEnv("PROPFEED_FIXTURE_PATH", "")),
		TaxonomyOverridesPath:  strings.TrimSpace(getEnv("TAXONOMY_OVERRIDES_PATH", "")),
		RedisAddr:              strings.TrimSpace(getEnv("REDIS_ADDR", "localhost:6379")),
		RedisPassword:          getEnv("REDIS_PASSWORD", ""),
		LineChangeStreamPrefix: strings.TrimSpace(getEnv("LINE_CHANGE_STREAM_PREFIX", "props.line_changes")),
		PyroscopeServerAddress: strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", "")),
		PyroscopeAuthToken:     getEnv("PYROSCOPE_AUTH_TOKEN", ""),
		PyroscopeBasicAuthUser: getEnv("PYROSCOPE_BASIC_AUTH_USER", ""),
	}
	cfg.PyroscopeBasicAuthPassword = getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))

	cfg.LogFormat = strings.ToLower(strings.TrimSpace(getEnv("APP_LOG_FORMAT", "json")))
	if cfg.LogFormat != "json" && cfg.LogFormat != "console" {
		return Config{}, fmt.Errorf("invalid APP_LOG_FORMAT %q: valid values are json, console", cfg.LogFormat)
	}

	if err := loadDatabase(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadIngest(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadPropFeed(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadRedis(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadObservability(&cfg); err != nil {
		return Config{}, err
	}

	cfg.MigrationBatchSize, err = getEnvAsInt("MIGRATION_BATCH_SIZE", 500)
	if err != nil {
		return Config{}, fmt.Errorf("parse MIGRATION_BATCH_SIZE: %w", err)
	}
	if cfg.MigrationBatchSize <= 0 {
		return Config{}, fmt.Errorf("MIGRATION_BATCH_SIZE must be > 0")
	}

	return cfg, nil
}

func loadDatabase(cfg *Config) error {
	cfg.DBDriver = strings.ToLower(strings.TrimSpace(getEnv("DB_DRIVER", DBDriverPostgres)))
	switch cfg.DBDriver {
	case DBDriverPostgres, DBDriverSQLite:
	default:
		return fmt.Errorf("invalid DB_DRIVER %q: valid values are %s, %s", cfg.DBDriver, DBDriverPostgres, DBDriverSQLite)
	}

	defaultURL := ""
	if cfg.DBDriver == DBDriverSQLite {
		defaultURL = "file:propline.db"
	}
	cfg.DBURL = strings.TrimSpace(getEnv("DB_URL", defaultURL))
	if cfg.DBURL == "" {
		return fmt.Errorf("DB_URL is required when DB_DRIVER=%s", cfg.DBDriver)
	}

	var err error
	cfg.DBDisablePreparedBinary, err = strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "false"))
	if err != nil {
		return fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}
	cfg.DBMaxOpenConns, err = getEnvAsInt("DB_MAX_OPEN_CONNS", 10)
	if err != nil {
		return fmt.Errorf("parse DB_MAX_OPEN_CONNS: %w", err)
	}
	if cfg.DBMaxOpenConns <= 0 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be > 0")
	}
	return nil
}

func loadIngest(cfg *Config) error {
	if cfg.IngestSport == "" {
		cfg.IngestSport = "NBA"
	}

	var err error
	cfg.IngestBatchLimit, err = getEnvAsInt("INGEST_BATCH_LIMIT", 1000)
	if err != nil {
		return fmt.Errorf("parse INGEST_BATCH_LIMIT: %w", err)
	}
	if cfg.IngestBatchLimit <= 0 {
		return fmt.Errorf("INGEST_BATCH_LIMIT must be > 0")
	}

	cfg.IngestInterval, err = time.ParseDuration(getEnv("INGEST_INTERVAL", "0s"))
	if err != nil {
		return fmt.Errorf("parse INGEST_INTERVAL: %w", err)
	}
	if cfg.IngestInterval < 0 {
		return fmt.Errorf("INGEST_INTERVAL must be >= 0")
	}

	cfg.IngestStaleRunThreshold, err = time.ParseDuration(getEnv("INGEST_STALE_RUN_THRESHOLD", "30m"))
	if err != nil {
		return fmt.Errorf("parse INGEST_STALE_RUN_THRESHOLD: %w", err)
	}
	if cfg.IngestStaleRunThreshold <= 0 {
		return fmt.Errorf("INGEST_STALE_RUN_THRESHOLD must be > 0")
	}

	cfg.IngestUniqueRetryAttempts, err = getEnvAsInt("INGEST_UNIQUE_RETRY_ATTEMPTS", 2)
	if err != nil {
		return fmt.Errorf("parse INGEST_UNIQUE_RETRY_ATTEMPTS: %w", err)
	}
	if cfg.IngestUniqueRetryAttempts < 0 {
		return fmt.Errorf("INGEST_UNIQUE_RETRY_ATTEMPTS must be >= 0")
	}

	cfg.IngestMaxConcurrentRuns, err = getEnvAsInt("INGEST_MAX_CONCURRENT_RUNS", 4)
	if err != nil {
		return fmt.Errorf("parse INGEST_MAX_CONCURRENT_RUNS: %w", err)
	}
	if cfg.IngestMaxConcurrentRuns <= 0 {
		return fmt.Errorf("INGEST_MAX_CONCURRENT_RUNS must be > 0")
	}

	cfg.IngestDisableUpsert, err = strconv.ParseBool(getEnv("INGEST_DISABLE_UPSERT", "false"))
	if err != nil {
		return fmt.Errorf("parse INGEST_DISABLE_UPSERT: %w", err)
	}
	return nil
}

func loadPropFeed(cfg *Config) error {
	cfg.Providers = splitCSV(strings.ToLower(getEnv("PROVIDERS", "prizepicks")))
	if len(cfg.Providers) == 0 {
		return fmt.Errorf("PROVIDERS must list at least one provider")
	}
	var err error
	cfg.PropFeedTimeout, err = time.ParseDuration(getEnv("PROPFEED_TIMEOUT", "20s"))
	if err != nil {
		return fmt.Errorf("parse PROPFEED_TIMEOUT: %w", err)
	}
	if cfg.PropFeedTimeout <= 0 {
		return fmt.Errorf("PROPFEED_TIMEOUT must be > 0")
	}

	cfg.PropFeedMaxRetries, err = getEnvAsInt("PROPFEED_MAX_RETRIES", 2)
	if err != nil {
		return fmt.Errorf("parse PROPFEED_MAX_RETRIES: %w", err)
	}
	if cfg.PropFeedMaxRetries < 0 {
		return fmt.Errorf("PROPFEED_MAX_RETRIES must be >= 0")
	}

	cfg.PropFeedRetryBackoff, err = time.ParseDuration(getEnv("PROPFEED_RETRY_BACKOFF", "1s"))
	if err != nil {
		return fmt.Errorf("parse PROPFEED_RETRY_BACKOFF: %w", err)
	}
	if cfg.PropFeedRetryBackoff <= 0 {
		return fmt.Errorf("PROPFEED_RETRY_BACKOFF must be > 0")
	}

	cfg.PropFeedCircuitEnabled, err = strconv.ParseBool(getEnv("PROPFEED_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return fmt.Errorf("parse PROPFEED_CIRCUIT_ENABLED: %w", err)
	}
	cfg.PropFeedCircuitFailureCount, err = getEnvAsInt("PROPFEED_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return fmt.Errorf("parse PROPFEED_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if cfg.PropFeedCircuitFailureCount <= 0 {
		return fmt.Errorf("PROPFEED_CIRCUIT_FAILURE_COUNT must be > 0")
	}
	cfg.PropFeedCircuitOpenTimeout, err = time.ParseDuration(getEnv("PROPFEED_CIRCUIT_OPEN_TIMEOUT", "30s"))
	if err != nil {
		return fmt.Errorf("parse PROPFEED_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if cfg.PropFeedCircuitOpenTimeout <= 0 {
		return fmt.Errorf("PROPFEED_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	cfg.PropFeedCircuitHalfOpenMaxReq, err = getEnvAsInt("PROPFEED_CIRCUIT_HALF_OPEN_MAX_REQUESTS", 1)
	if err != nil {
		return fmt.Errorf("parse PROPFEED_CIRCUIT_HALF_OPEN_MAX_REQUESTS: %w", err)
	}
	if cfg.PropFeedCircuitHalfOpenMaxReq <= 0 {
		return fmt.Errorf("PROPFEED_CIRCUIT_HALF_OPEN_MAX_REQUESTS must be > 0")
	}
	return nil
}

func loadRedis(cfg *Config) error {
	var err error
	cfg.RedisEnabled, err = strconv.ParseBool(getEnv("REDIS_ENABLED", "false"))
	if err != nil {
		return fmt.Errorf("parse REDIS_ENABLED: %w", err)
	}
	if cfg.RedisEnabled && cfg.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required when REDIS_ENABLED=true")
	}
	cfg.RedisDB, err = getEnvAsInt("REDIS_DB", 0)
	if err != nil {
		return fmt.Errorf("parse REDIS_DB: %w", err)
	}
	if cfg.RedisDB < 0 {
		return fmt.Errorf("REDIS_DB must be >= 0")
	}

	maxLen, err := getEnvAsInt("LINE_CHANGE_STREAM_MAXLEN", 100000)
	if err != nil {
		return fmt.Errorf("parse LINE_CHANGE_STREAM_MAXLEN: %w", err)
	}
	if maxLen < 0 {
		return fmt.Errorf("LINE_CHANGE_STREAM_MAXLEN must be >= 0")
	}
	cfg.LineChangeStreamMaxLen = int64(maxLen)
	return nil
}

func loadObservability(cfg *Config) error {
	var err error
	cfg.UptraceEnabled, err = strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	cfg.UptraceDSN = strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	cfg.UptraceLogsEnabled, err = strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "false"))
	if err != nil {
		return fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}

	cfg.PyroscopeEnabled, err = strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	cfg.PyroscopeUploadRate, err = time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if cfg.PyroscopeUploadRate <= 0 {
		return fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}
	return nil
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

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
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
