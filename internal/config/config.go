package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnv             = "development"
	defaultHTTPHost        = "0.0.0.0"
	defaultHTTPPort        = 8080
	defaultRedisDB         = 0
	defaultCacheTTLSeconds = 30
	defaultLogLevel        = "info"

	defaultTickExchange   = "telemetry.ticks"
	defaultCandleExchange = "telemetry.candles"
	defaultPrefetch       = 100
	defaultBatchSize      = 500
	defaultBatchTimeout   = 2 * time.Second

	defaultStallThreshold = 15 * time.Second
	defaultWatchdogTick   = time.Second
	defaultFailureLimit   = 3
	defaultReloadInterval = 5 * time.Second
	defaultNewsInterval   = time.Hour
	defaultFallbackVolume = 1.0

	defaultQueueCapacity  = 256
	defaultOverflowPolicy = "reject-new"

	defaultPythonBin      = "python3"
	defaultBacktestScript = "backtest_engine.py"
	defaultTrainScript    = "ai_engine.py"
	defaultNewsScript     = "news_engine.py"
	defaultEngineTimeout  = 10 * time.Minute

	defaultBridgeScript   = "bridge.py"
	defaultBridgeKill     = "pkill -f bridge.py"
	defaultRestartTimeout = 30 * time.Second

	defaultSettingsPath = "mt5_config.json"
)

// Config keeps the runtime configuration for the service.
type Config struct {
	Env      string
	LogLevel string
	HTTP     HTTPConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Cache    CacheConfig
	RabbitMQ RabbitMQConfig
	Watchdog WatchdogConfig
	Relay    RelayConfig
	Engines  EnginesConfig
	Bridge   BridgeConfig
	Settings SettingsConfig
}

// HTTPConfig holds HTTP server related settings.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr renders the listen address in host:port form.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// PostgresConfig stores database connection parameters. An empty DSN keeps
// history and the trade journal in memory.
type PostgresConfig struct {
	DSN string
}

// RedisConfig stores Redis connection parameters. Empty Addr disables caching.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// CacheConfig stores cache behavior.
type CacheConfig struct {
	TTLSeconds int
}

// RabbitMQConfig configures the optional telemetry consumer.
type RabbitMQConfig struct {
	URL            string
	TickExchange   string
	CandleExchange string
	Prefetch       int
	BatchSize      int
	BatchTimeout   time.Duration
}

type WatchdogConfig struct {
	StallThreshold time.Duration
	Interval       time.Duration
	Armed          bool
	FailureLimit   int
	ReloadInterval time.Duration
	NewsInterval   time.Duration
	// FallbackVolume weights candles that report no volume in the VWAP.
	FallbackVolume float64
}

type RelayConfig struct {
	Capacity int
	Overflow string
}

type EnginesConfig struct {
	PythonBin      string
	BacktestScript string
	TrainScript    string
	NewsScript     string
	Timeout        time.Duration
}

// BridgeConfig describes how the external bridge process is restarted.
type BridgeConfig struct {
	StartCommand   []string
	KillCommand    []string
	WorkDir        string
	RestartTimeout time.Duration
}

type SettingsConfig struct {
	Path string
}

// Load builds Config from environment variables. A .env file in the working
// directory is applied first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var errs []error
	intVal := func(key string, fallback int) int {
		v, err := getInt(key, fallback)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}
	durVal := func(key string, fallback time.Duration) time.Duration {
		v, err := getDuration(key, fallback)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}
	floatVal := func(key string, fallback float64) float64 {
		v, err := getFloat(key, fallback)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}
	boolVal := func(key string, fallback bool) bool {
		v, err := getBool(key, fallback)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}

	pythonBin := getString("PYTHON_BIN", defaultPythonBin)
	bridgeScript := getString("BRIDGE_SCRIPT", defaultBridgeScript)

	cfg := &Config{
		Env:      getString("APP_ENV", defaultEnv),
		LogLevel: getString("LOG_LEVEL", defaultLogLevel),
		HTTP: HTTPConfig{
			Host: getString("HTTP_HOST", defaultHTTPHost),
			Port: intVal("HTTP_PORT", defaultHTTPPort),
		},
		Postgres: PostgresConfig{
			DSN: os.Getenv("DATABASE_DSN"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       intVal("REDIS_DB", defaultRedisDB),
		},
		Cache: CacheConfig{
			TTLSeconds: intVal("CACHE_TTL_SECONDS", defaultCacheTTLSeconds),
		},
		RabbitMQ: RabbitMQConfig{
			URL:            os.Getenv("RABBITMQ_URL"),
			TickExchange:   getString("RABBITMQ_TICK_EXCHANGE", defaultTickExchange),
			CandleExchange: getString("RABBITMQ_CANDLE_EXCHANGE", defaultCandleExchange),
			Prefetch:       intVal("RABBITMQ_PREFETCH", defaultPrefetch),
			BatchSize:      intVal("CANDLE_BATCH_SIZE", defaultBatchSize),
			BatchTimeout:   durVal("CANDLE_BATCH_TIMEOUT", defaultBatchTimeout),
		},
		Watchdog: WatchdogConfig{
			StallThreshold: durVal("WATCHDOG_STALL_THRESHOLD", defaultStallThreshold),
			Interval:       durVal("WATCHDOG_INTERVAL", defaultWatchdogTick),
			Armed:          boolVal("WATCHDOG_ARMED", true),
			FailureLimit:   intVal("WATCHDOG_FAILURE_LIMIT", defaultFailureLimit),
			ReloadInterval: durVal("HISTORY_RELOAD_INTERVAL", defaultReloadInterval),
			NewsInterval:   durVal("NEWS_REFRESH_INTERVAL", defaultNewsInterval),
			FallbackVolume: floatVal("VWAP_FALLBACK_VOLUME", defaultFallbackVolume),
		},
		Relay: RelayConfig{
			Capacity: intVal("COMMAND_QUEUE_CAPACITY", defaultQueueCapacity),
			Overflow: getString("COMMAND_QUEUE_OVERFLOW", defaultOverflowPolicy),
		},
		Engines: EnginesConfig{
			PythonBin:      pythonBin,
			BacktestScript: getString("BACKTEST_SCRIPT", defaultBacktestScript),
			TrainScript:    getString("TRAIN_SCRIPT", defaultTrainScript),
			NewsScript:     getString("NEWS_SCRIPT", defaultNewsScript),
			Timeout:        durVal("ENGINE_TIMEOUT", defaultEngineTimeout),
		},
		Bridge: BridgeConfig{
			StartCommand:   getFields("BRIDGE_START_COMMAND", []string{pythonBin, bridgeScript}),
			KillCommand:    getFields("BRIDGE_KILL_COMMAND", strings.Fields(defaultBridgeKill)),
			WorkDir:        os.Getenv("BRIDGE_WORKDIR"),
			RestartTimeout: durVal("BRIDGE_RESTART_TIMEOUT", defaultRestartTimeout),
		},
		Settings: SettingsConfig{
			Path: getString("SETTINGS_PATH", defaultSettingsPath),
		},
	}

	if cfg.Relay.Capacity < 0 {
		errs = append(errs, fmt.Errorf("COMMAND_QUEUE_CAPACITY must not be negative, got %d", cfg.Relay.Capacity))
	}
	if cfg.Watchdog.FailureLimit <= 0 {
		errs = append(errs, fmt.Errorf("WATCHDOG_FAILURE_LIMIT must be positive, got %d", cfg.Watchdog.FailureLimit))
	}
	if cfg.Watchdog.FallbackVolume <= 0 {
		errs = append(errs, fmt.Errorf("VWAP_FALLBACK_VOLUME must be positive, got %g", cfg.Watchdog.FallbackVolume))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getString(key, fallback string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	return value
}

func getInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("convert %s value %q to int: %w", key, value, err)
	}
	return parsed, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("convert %s value %q to float: %w", key, value, err)
	}
	return parsed, nil
}

func getBool(key string, fallback bool) (bool, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("convert %s value %q to bool: %w", key, value, err)
	}
	return parsed, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("convert %s value %q to duration: %w", key, value, err)
	}
	return parsed, nil
}

func getFields(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.Fields(value)
}
