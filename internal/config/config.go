package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"user-registry-service/pkg/logger"
	"user-registry-service/pkg/telemetry"
)

// Store drivers
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds all configuration for the application
type Config struct {
	App       AppConfig
	Store     StoreConfig
	DB        DatabaseConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Logger    LoggerConfig
	Tracing   TracingConfig
	Gateway   GatewayConfig
	CORS      CORSConfig
}

// AppConfig holds configuration for the api server
type AppConfig struct {
	Environment            string `mapstructure:"APP_ENV"`
	HTTPPort               string `mapstructure:"HTTP_PORT"`
	GRPCPort               string `mapstructure:"GRPC_PORT"`
	GRPCEnabled            bool   `mapstructure:"GRPC_ENABLED"`
	ShutdownTimeoutSeconds int    `mapstructure:"SHUTDOWN_TIMEOUT_SECONDS"`
}

// StoreConfig selects the registry backend
type StoreConfig struct {
	Driver     string `mapstructure:"STORE_DRIVER"`
	Seed       bool   `mapstructure:"STORE_SEED"`
	SQLitePath string `mapstructure:"SQLITE_PATH"`
}

// DatabaseConfig holds configuration for the postgres database
type DatabaseConfig struct {
	Host            string `mapstructure:"DB_HOST"`
	Port            string `mapstructure:"DB_PORT"`
	User            string `mapstructure:"DB_USER"`
	Password        string `mapstructure:"DB_PASSWORD"`
	Name            string `mapstructure:"DB_NAME"`
	SSLMode         string `mapstructure:"DB_SSLMODE"`
	MaxOpenConns    int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns    int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	ConnMaxLifetime int    `mapstructure:"DB_CONN_MAX_LIFETIME_SECONDS"`
	ConnMaxIdleTime int    `mapstructure:"DB_CONN_MAX_IDLE_TIME_SECONDS"`
}

// RedisConfig holds configuration for the optional Redis cache
type RedisConfig struct {
	Enabled     bool   `mapstructure:"REDIS_ENABLED"`
	Host        string `mapstructure:"REDIS_HOST"`
	Port        string `mapstructure:"REDIS_PORT"`
	Password    string `mapstructure:"REDIS_PASSWORD"`
	DB          int    `mapstructure:"REDIS_DB"`
	MaxRetries  int    `mapstructure:"REDIS_MAX_RETRIES"`
	PoolSize    int    `mapstructure:"REDIS_POOL_SIZE"`
	MinIdleConn int    `mapstructure:"REDIS_MIN_IDLE_CONN"`
	CacheTTL    int    `mapstructure:"REDIS_CACHE_TTL_SECONDS"`
	KeyPrefix   string `mapstructure:"REDIS_KEY_PREFIX"`
}

// RateLimitConfig holds configuration for the token bucket rate limiter
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"RATE_LIMIT_ENABLED"`
	RequestsPerSecond float64 `mapstructure:"RATE_LIMIT_REQUESTS_PER_SECOND"`
	BurstCapacity     int     `mapstructure:"RATE_LIMIT_BURST_CAPACITY"`
}

// LoggerConfig holds configuration for the logger
type LoggerConfig struct {
	Level            string  `mapstructure:"LOG_LEVEL"`
	Format           string  `mapstructure:"LOG_FORMAT"`
	OutputPath       string  `mapstructure:"LOG_OUTPUT_PATH"`
	SlowQuerySeconds float64 `mapstructure:"LOG_SLOW_QUERY_SECONDS"`
	EnableSampling   bool    `mapstructure:"LOG_ENABLE_SAMPLING"`
	ServiceName      string  `mapstructure:"SERVICE_NAME"`
	ServiceVersion   string  `mapstructure:"SERVICE_VERSION"`
}

// TracingConfig holds OpenTelemetry exporter settings
type TracingConfig struct {
	Enabled                bool    `mapstructure:"TRACING_ENABLED"`
	Exporter               string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint           string  `mapstructure:"TRACING_OTLP_ENDPOINT"`
	Insecure               bool    `mapstructure:"TRACING_INSECURE"`
	SampleRatio            float64 `mapstructure:"TRACING_SAMPLE_RATIO"`
	MetricsIntervalSeconds int     `mapstructure:"TRACING_METRICS_INTERVAL_SECONDS"`
}

// GatewayConfig holds configuration for the gateway service
type GatewayConfig struct {
	ServiceName           string `mapstructure:"GATEWAY_SERVICE_NAME"`
	HTTPPort              string `mapstructure:"GATEWAY_HTTP_PORT"`
	RegistryURL           string `mapstructure:"GATEWAY_REGISTRY_URL"`
	RequestTimeoutSeconds int    `mapstructure:"GATEWAY_REQUEST_TIMEOUT_SECONDS"`
}

// CORSConfig holds CORS settings for the gateway
type CORSConfig struct {
	AllowOrigins  []string `mapstructure:"CORS_ALLOW_ORIGINS"`
	ExposeHeaders []string `mapstructure:"CORS_EXPOSE_HEADERS"`
}

// LoadConfig reads configuration from app.env in path and from environment variables.
// Environment variables take precedence over the file.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	v.AddConfigPath(path)
	v.SetConfigName("app") // Look for app.env
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if we have env vars
	}

	var config Config

	config.App.Environment = v.GetString("APP_ENV")
	config.App.HTTPPort = v.GetString("HTTP_PORT")
	config.App.GRPCPort = v.GetString("GRPC_PORT")
	config.App.GRPCEnabled = v.GetBool("GRPC_ENABLED")
	config.App.ShutdownTimeoutSeconds = v.GetInt("SHUTDOWN_TIMEOUT_SECONDS")

	config.Store.Driver = strings.ToLower(v.GetString("STORE_DRIVER"))
	config.Store.Seed = v.GetBool("STORE_SEED")
	config.Store.SQLitePath = v.GetString("SQLITE_PATH")

	config.DB.Host = v.GetString("DB_HOST")
	config.DB.Port = v.GetString("DB_PORT")
	config.DB.User = v.GetString("DB_USER")
	config.DB.Password = v.GetString("DB_PASSWORD")
	config.DB.Name = v.GetString("DB_NAME")
	config.DB.SSLMode = v.GetString("DB_SSLMODE")
	config.DB.MaxOpenConns = v.GetInt("DB_MAX_OPEN_CONNS")
	config.DB.MaxIdleConns = v.GetInt("DB_MAX_IDLE_CONNS")
	config.DB.ConnMaxLifetime = v.GetInt("DB_CONN_MAX_LIFETIME_SECONDS")
	config.DB.ConnMaxIdleTime = v.GetInt("DB_CONN_MAX_IDLE_TIME_SECONDS")

	config.Redis.Enabled = v.GetBool("REDIS_ENABLED")
	config.Redis.Host = v.GetString("REDIS_HOST")
	config.Redis.Port = v.GetString("REDIS_PORT")
	config.Redis.Password = v.GetString("REDIS_PASSWORD")
	config.Redis.DB = v.GetInt("REDIS_DB")
	config.Redis.MaxRetries = v.GetInt("REDIS_MAX_RETRIES")
	config.Redis.PoolSize = v.GetInt("REDIS_POOL_SIZE")
	config.Redis.MinIdleConn = v.GetInt("REDIS_MIN_IDLE_CONN")
	config.Redis.CacheTTL = v.GetInt("REDIS_CACHE_TTL_SECONDS")
	config.Redis.KeyPrefix = v.GetString("REDIS_KEY_PREFIX")

	config.RateLimit.Enabled = v.GetBool("RATE_LIMIT_ENABLED")
	config.RateLimit.RequestsPerSecond = v.GetFloat64("RATE_LIMIT_REQUESTS_PER_SECOND")
	config.RateLimit.BurstCapacity = v.GetInt("RATE_LIMIT_BURST_CAPACITY")

	config.Logger.Level = v.GetString("LOG_LEVEL")
	config.Logger.Format = v.GetString("LOG_FORMAT")
	config.Logger.OutputPath = v.GetString("LOG_OUTPUT_PATH")
	config.Logger.SlowQuerySeconds = v.GetFloat64("LOG_SLOW_QUERY_SECONDS")
	config.Logger.EnableSampling = v.GetBool("LOG_ENABLE_SAMPLING")
	config.Logger.ServiceName = v.GetString("SERVICE_NAME")
	config.Logger.ServiceVersion = v.GetString("SERVICE_VERSION")

	config.Tracing.Enabled = v.GetBool("TRACING_ENABLED")
	config.Tracing.Exporter = strings.ToLower(v.GetString("TRACING_EXPORTER"))
	config.Tracing.OTLPEndpoint = v.GetString("TRACING_OTLP_ENDPOINT")
	config.Tracing.Insecure = v.GetBool("TRACING_INSECURE")
	config.Tracing.SampleRatio = v.GetFloat64("TRACING_SAMPLE_RATIO")
	config.Tracing.MetricsIntervalSeconds = v.GetInt("TRACING_METRICS_INTERVAL_SECONDS")

	config.Gateway.ServiceName = v.GetString("GATEWAY_SERVICE_NAME")
	config.Gateway.HTTPPort = v.GetString("GATEWAY_HTTP_PORT")
	config.Gateway.RegistryURL = v.GetString("GATEWAY_REGISTRY_URL")
	config.Gateway.RequestTimeoutSeconds = v.GetInt("GATEWAY_REQUEST_TIMEOUT_SECONDS")

	config.CORS.AllowOrigins = splitList(v.GetString("CORS_ALLOW_ORIGINS"))
	config.CORS.ExposeHeaders = splitList(v.GetString("CORS_EXPOSE_HEADERS"))

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("GRPC_PORT", "50051")
	v.SetDefault("GRPC_ENABLED", false)
	v.SetDefault("SHUTDOWN_TIMEOUT_SECONDS", 30)

	v.SetDefault("STORE_DRIVER", DriverMemory)
	v.SetDefault("STORE_SEED", true)
	v.SetDefault("SQLITE_PATH", "user-registry.db")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "user_registry")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME_SECONDS", 300)
	v.SetDefault("DB_CONN_MAX_IDLE_TIME_SECONDS", 60)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_MAX_RETRIES", 3)
	v.SetDefault("REDIS_POOL_SIZE", 10)
	v.SetDefault("REDIS_MIN_IDLE_CONN", 2)
	v.SetDefault("REDIS_CACHE_TTL_SECONDS", 300)
	v.SetDefault("REDIS_KEY_PREFIX", "user-registry")

	v.SetDefault("RATE_LIMIT_ENABLED", false)
	v.SetDefault("RATE_LIMIT_REQUESTS_PER_SECOND", 10.0)
	v.SetDefault("RATE_LIMIT_BURST_CAPACITY", 20)

	// Logger defaults depend on the environment
	if v.GetString("APP_ENV") == "production" {
		v.SetDefault("LOG_LEVEL", "info")
		v.SetDefault("LOG_FORMAT", "json")
		v.SetDefault("LOG_ENABLE_SAMPLING", true)
	} else {
		v.SetDefault("LOG_LEVEL", "debug")
		v.SetDefault("LOG_FORMAT", "console")
		v.SetDefault("LOG_ENABLE_SAMPLING", false)
	}
	v.SetDefault("LOG_OUTPUT_PATH", "stdout")
	v.SetDefault("LOG_SLOW_QUERY_SECONDS", 0.2)
	v.SetDefault("SERVICE_NAME", "user-registry-service")
	v.SetDefault("SERVICE_VERSION", "1.0.0")

	v.SetDefault("TRACING_ENABLED", false)
	v.SetDefault("TRACING_EXPORTER", "otlp")
	v.SetDefault("TRACING_OTLP_ENDPOINT", "localhost:4318")
	v.SetDefault("TRACING_INSECURE", true)
	v.SetDefault("TRACING_SAMPLE_RATIO", 1.0)
	v.SetDefault("TRACING_METRICS_INTERVAL_SECONDS", 60)

	v.SetDefault("GATEWAY_SERVICE_NAME", "gateway-service")
	v.SetDefault("GATEWAY_HTTP_PORT", "3005")
	v.SetDefault("GATEWAY_REGISTRY_URL", "http://localhost:8080")
	v.SetDefault("GATEWAY_REQUEST_TIMEOUT_SECONDS", 10)

	v.SetDefault("CORS_ALLOW_ORIGINS", "*")
	v.SetDefault("CORS_EXPOSE_HEADERS", "X-Request-ID,Traceparent")
}

// splitList parses a comma separated env value.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the configuration for values the services cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.App.HTTPPort == "" {
		errs = append(errs, errors.New("HTTP_PORT is required"))
	}
	if c.App.GRPCEnabled && c.App.GRPCPort == "" {
		errs = append(errs, errors.New("GRPC_PORT is required when GRPC_ENABLED is set"))
	}
	if c.App.ShutdownTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT_SECONDS must be positive"))
	}

	switch c.Store.Driver {
	case DriverMemory, DriverPostgres:
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver))
	}

	if c.RateLimit.Enabled {
		if !c.Redis.Enabled {
			errs = append(errs, errors.New("RATE_LIMIT_ENABLED requires REDIS_ENABLED"))
		}
		if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.BurstCapacity <= 0 {
			errs = append(errs, errors.New("rate limit rate and burst must be positive"))
		}
	}

	if c.Tracing.Enabled {
		switch c.Tracing.Exporter {
		case telemetry.ExporterOTLP, telemetry.ExporterStdout, telemetry.ExporterNone:
		default:
			errs = append(errs, fmt.Errorf("unknown TRACING_EXPORTER %q", c.Tracing.Exporter))
		}
		if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
			errs = append(errs, errors.New("TRACING_SAMPLE_RATIO must be within [0, 1]"))
		}
	}

	return errors.Join(errs...)
}

// ValidateGateway checks the settings the gateway service needs.
func (c *Config) ValidateGateway() error {
	var errs []error
	if c.Gateway.HTTPPort == "" {
		errs = append(errs, errors.New("GATEWAY_HTTP_PORT is required"))
	}
	if c.Gateway.RegistryURL == "" {
		errs = append(errs, errors.New("GATEWAY_REGISTRY_URL is required"))
	}
	if c.Gateway.RequestTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("GATEWAY_REQUEST_TIMEOUT_SECONDS must be positive"))
	}
	if c.App.ShutdownTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT_SECONDS must be positive"))
	}
	return errors.Join(errs...)
}

// DSN returns the PostgreSQL Data Source Name
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
}

// Addr returns the Redis host:port address
func (c *RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// LoggerConfig returns the logger settings for the named service.
func (c *Config) LoggerConfig(serviceName string) logger.Config {
	return logger.Config{
		Level:          c.Logger.Level,
		Format:         c.Logger.Format,
		OutputPath:     c.Logger.OutputPath,
		EnableSampling: c.Logger.EnableSampling,
		ServiceName:    serviceName,
		ServiceVersion: c.Logger.ServiceVersion,
		Environment:    c.App.Environment,
	}
}

// TelemetryConfig returns the OpenTelemetry settings for the named service.
func (c *Config) TelemetryConfig(serviceName string) telemetry.Config {
	return telemetry.Config{
		Enabled:         c.Tracing.Enabled,
		Exporter:        c.Tracing.Exporter,
		Endpoint:        c.Tracing.OTLPEndpoint,
		Insecure:        c.Tracing.Insecure,
		SampleRatio:     c.Tracing.SampleRatio,
		MetricsInterval: time.Duration(c.Tracing.MetricsIntervalSeconds) * time.Second,
		ServiceName:     serviceName,
		ServiceVersion:  c.Logger.ServiceVersion,
		Environment:     c.App.Environment,
	}
}
