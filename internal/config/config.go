package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	Telemetry TelemetryConfig

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBPath            string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int

	Store    StoreConfig
	Catalog  CatalogConfig
	Geocoder GeocoderConfig
	Demo     DemoConfig
}

// TelemetryConfig controls logging, tracing and metric export.
type TelemetryConfig struct {
	LogLevel      string
	LogFormat     string
	OtelEnabled   bool
	OTLPEndpoint  string
	OTLPProtocol  string
	SamplingRatio float64
}

// StoreConfig selects the persisted key/value backend.
type StoreConfig struct {
	Backend       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// CatalogConfig controls the remote venue catalog.
type CatalogConfig struct {
	Enabled          bool
	BreakerFailures  int
	BreakerResetSecs int
}

type GeocoderConfig struct {
	Enabled   bool
	BaseURL   string
	UserAgent string
	TimeoutMS int
}

// DemoConfig is the fallback position used when the device location is unavailable.
type DemoConfig struct {
	Lat  float64
	Lng  float64
	City string
}

const (
	StoreBackendMemory   = "memory"
	StoreBackendDatabase = "database"
	StoreBackendRedis    = "redis"
)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:           getenv("APP_SERVICE", "streetsignal"),
		AppVersion:        getenv("APP_VERSION", "0.1.0"),
		Environment:       getenv("ENVIRONMENT", "development"),
		HTTPAddr:          getenv("HTTP_ADDR", ":8080"),
		DBType:            getenv("DATABASE_TYPE", "sqlite"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "streetsignal"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBPath:            getenv("DATABASE_PATH", "streetsignal.db"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		Telemetry: TelemetryConfig{
			LogLevel:      strings.ToLower(strings.TrimSpace(getenv("LOG_LEVEL", "info"))),
			LogFormat:     strings.ToLower(strings.TrimSpace(getenv("LOG_FORMAT", "json"))),
			OtelEnabled:   getenvBool("OTEL_ENABLED", false),
			OTLPEndpoint:  strings.TrimSpace(getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")),
			OTLPProtocol:  strings.ToLower(strings.TrimSpace(getenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"))),
			SamplingRatio: getenvFloat("OTEL_SAMPLING_RATIO", 0.1),
		},
		Store: StoreConfig{
			Backend:       normalizeBackend(getenv("STORE_BACKEND", StoreBackendDatabase)),
			RedisAddr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
			RedisPassword: strings.TrimSpace(getenv("REDIS_PASSWORD", "")),
			RedisDB:       getenvInt("REDIS_DB", 0),
			RedisPrefix:   getenv("REDIS_PREFIX", "streetsignal:"),
		},
		Catalog: CatalogConfig{
			Enabled:          getenvBool("CATALOG_ENABLED", false),
			BreakerFailures:  getenvInt("CATALOG_BREAKER_FAILURES", 3),
			BreakerResetSecs: getenvInt("CATALOG_BREAKER_RESET_SECONDS", 30),
		},
		Geocoder: GeocoderConfig{
			Enabled:   getenvBool("GEOCODER_ENABLED", true),
			BaseURL:   strings.TrimRight(getenv("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org"), "/"),
			UserAgent: getenv("GEOCODER_USER_AGENT", "StreetSignal/1.0"),
			TimeoutMS: getenvInt("GEOCODER_TIMEOUT_MS", 5000),
		},
		Demo: DemoConfig{
			Lat:  getenvFloat("DEMO_LAT", 48.8566),
			Lng:  getenvFloat("DEMO_LNG", 2.3522),
			City: getenv("DEMO_CITY", "Paris"),
		},
	}
}

// IsProduction reports whether the service runs in production.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func normalizeBackend(raw string) string {
	switch value := strings.ToLower(strings.TrimSpace(raw)); value {
	case StoreBackendMemory, StoreBackendRedis:
		return value
	default:
		return StoreBackendDatabase
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
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

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

// Module provides Config and the hot-reloadable engine tunables.
var Module = fx.Module("config",
	fx.Provide(
		Load,
		NewEngineConfigHolder,
	),
)
