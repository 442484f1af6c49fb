package config

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
	"golang.org/x/crypto/hkdf"
)

// EnvPrefix prefixes every environment override, e.g. PORTAL_BACKEND_BASE_URL.
const EnvPrefix = "PORTAL"

// Session drivers.
const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

type ServerConfig struct {
	Port            int           `mapstructure:"port" envconfig:"PORT"`
	Mode            string        `mapstructure:"mode" envconfig:"MODE"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	MaxHeaderBytes  int           `mapstructure:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes" envconfig:"MAX_BODY_BYTES"`
}

// BackendConfig points at the clinic REST API.
type BackendConfig struct {
	BaseURL            string        `mapstructure:"base_url" envconfig:"BASE_URL"`
	Timeout            time.Duration `mapstructure:"timeout" envconfig:"TIMEOUT"`
	BreakerMaxFailures int           `mapstructure:"breaker_max_failures" envconfig:"BREAKER_MAX_FAILURES"`
	BreakerTimeout     time.Duration `mapstructure:"breaker_timeout" envconfig:"BREAKER_TIMEOUT"`
	UserAgent          string        `mapstructure:"user_agent" envconfig:"USER_AGENT"`
}

type RedisConfig struct {
	URL          string `mapstructure:"url" envconfig:"URL"`
	Prefix       string `mapstructure:"prefix" envconfig:"PREFIX"`
	MaxRetries   int    `mapstructure:"max_retries" envconfig:"MAX_RETRIES"`
	PoolSize     int    `mapstructure:"pool_size" envconfig:"POOL_SIZE"`
	MinIdleConns int    `mapstructure:"min_idle_conns" envconfig:"MIN_IDLE_CONNS"`
}

type PostgresConfig struct {
	DSN             string        `mapstructure:"dsn" envconfig:"DSN"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" envconfig:"MAX_OPEN_CONNS"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" envconfig:"MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" envconfig:"CONN_MAX_LIFETIME"`
}

type SessionConfig struct {
	Driver          string         `mapstructure:"driver" envconfig:"DRIVER"`
	TTL             time.Duration  `mapstructure:"ttl" envconfig:"TTL"`
	CleanupInterval time.Duration  `mapstructure:"cleanup_interval" envconfig:"CLEANUP_INTERVAL"`
	CookieName      string         `mapstructure:"cookie_name" envconfig:"COOKIE_NAME"`
	CookieDomain    string         `mapstructure:"cookie_domain" envconfig:"COOKIE_DOMAIN"`
	CookieSecure    bool           `mapstructure:"cookie_secure" envconfig:"COOKIE_SECURE"`
	Redis           RedisConfig    `mapstructure:"redis" envconfig:"REDIS"`
	Postgres        PostgresConfig `mapstructure:"postgres" envconfig:"POSTGRES"`
}

type SecurityConfig struct {
	// CSRFSecret seeds the CSRF token key. Any length; the key is derived.
	CSRFSecret     string  `mapstructure:"csrf_secret" envconfig:"CSRF_SECRET"`
	HSTS           bool    `mapstructure:"hsts" envconfig:"HSTS"`
	LoginRateLimit float64 `mapstructure:"login_rate_limit" envconfig:"LOGIN_RATE_LIMIT"`
	LoginBurst     int     `mapstructure:"login_burst" envconfig:"LOGIN_BURST"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool   `mapstructure:"prometheus_enabled" envconfig:"PROMETHEUS_ENABLED"`
	MetricsPath       string `mapstructure:"metrics_path" envconfig:"METRICS_PATH"`
	Namespace         string `mapstructure:"namespace" envconfig:"NAMESPACE"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" envconfig:"LEVEL"`
	Format string `mapstructure:"format" envconfig:"FORMAT"`
}

type Config struct {
	Server     ServerConfig     `mapstructure:"server" envconfig:"SERVER"`
	Backend    BackendConfig    `mapstructure:"backend" envconfig:"BACKEND"`
	Session    SessionConfig    `mapstructure:"session" envconfig:"SESSION"`
	Security   SecurityConfig   `mapstructure:"security" envconfig:"SECURITY"`
	Monitoring MonitoringConfig `mapstructure:"monitoring" envconfig:"MONITORING"`
	Log        LogConfig        `mapstructure:"log" envconfig:"LOG"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.max_header_bytes", 1<<20)
	v.SetDefault("server.max_body_bytes", 64<<10)

	v.SetDefault("backend.base_url", "http://localhost:8081")
	v.SetDefault("backend.timeout", 10*time.Second)
	v.SetDefault("backend.breaker_max_failures", 5)
	v.SetDefault("backend.breaker_timeout", 30*time.Second)
	v.SetDefault("backend.user_agent", "clinic-portal")

	v.SetDefault("session.driver", DriverMemory)
	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("session.cleanup_interval", 10*time.Minute)
	v.SetDefault("session.cookie_name", "portal_session")
	v.SetDefault("session.redis.url", "redis://localhost:6379/0")
	v.SetDefault("session.redis.prefix", "portal:session:")
	v.SetDefault("session.redis.max_retries", 3)
	v.SetDefault("session.redis.pool_size", 10)
	v.SetDefault("session.postgres.max_open_conns", 10)
	v.SetDefault("session.postgres.max_idle_conns", 5)
	v.SetDefault("session.postgres.conn_max_lifetime", 30*time.Minute)

	v.SetDefault("security.login_rate_limit", 1.0)
	v.SetDefault("security.login_burst", 5)

	v.SetDefault("monitoring.prometheus_enabled", true)
	v.SetDefault("monitoring.metrics_path", "/metrics")
	v.SetDefault("monitoring.namespace", "clinic_portal")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Load reads the YAML config file and applies PORTAL_* environment
// overrides on top. With an empty path, config.yml is looked up in the
// usual places and its absence is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yml")
		v.AddConfigPath(".")           // current directory
		v.AddConfigPath("./config")    // config subdirectory
		v.AddConfigPath("/app/config") // container config directory
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the portal cannot start without.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid backend base url %q", c.Backend.BaseURL)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}

	c.Session.Driver = strings.ToLower(strings.TrimSpace(c.Session.Driver))
	switch c.Session.Driver {
	case DriverMemory:
	case DriverRedis:
		if c.Session.Redis.URL == "" {
			return errors.New("session.redis.url is required for the redis driver")
		}
	case DriverPostgres:
		if c.Session.Postgres.DSN == "" {
			return errors.New("session.postgres.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown session driver %q", c.Session.Driver)
	}
	if c.Session.TTL <= 0 {
		return errors.New("session.ttl must be positive")
	}
	return nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// CSRFKey derives the 32 byte CSRF authentication key from the configured
// secret. It returns nil when no secret is set.
func (c *Config) CSRFKey() ([]byte, error) {
	if c.Security.CSRFSecret == "" {
		return nil, nil
	}
	key := make([]byte, 32)
	r := hkdf.New(sha256.New, []byte(c.Security.CSRFSecret), nil, []byte("clinic-portal csrf"))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("failed to derive csrf key: %w", err)
	}
	return key, nil
}
