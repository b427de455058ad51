package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all gateway configuration
type Config struct {
	App       AppConfig
	HTTP      HTTPConfig
	Backend   BackendConfig
	Session   SessionConfig
	Guard     GuardConfig
	Cart      CartConfig
	Cache     CacheConfig
	Store     StoreConfig
	Redis     RedisConfig
	Database  DatabaseConfig
	Log       LogConfig
	Telemetry TelemetryConfig
	Metrics   MetricsConfig
	Profiling ProfilingConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level      string // debug, info, warn, error
	Format     string // json, console
	Output     string // stdout, stderr, or file path
	TimeFormat string // Go time layout for the time field
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// IsProduction reports whether the gateway runs with production settings.
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitBurst    int
	CORSAllowOrigins  []string
	CORSAllowMethods  []string
	CORSAllowHeaders  []string
	TrustedProxies    []string
}

// BackendConfig describes the upstream commerce API.
type BackendConfig struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int           // single retry budget for idempotent calls
	RetryDelay time.Duration // pause between attempts
	UserAgent  string
}

// SessionConfig holds cookie names and attributes for session state
type SessionConfig struct {
	AccessCookie   string // backoffice access token
	RefreshCookie  string // backoffice refresh token
	CustomerCookie string // storefront session token
	CartCookie     string // guest cart id
	Domain         string // empty = current domain
	Path           string
	Secure         bool
	SameSite       string // strict, lax, none
	MaxAge         time.Duration
}

// GuardConfig configures the admin route guard and locale routing
type GuardConfig struct {
	AllowedRoles     []string
	Locales          []string
	DefaultLocale    string
	LoginPath        string
	ForbiddenPath    string
	JWTSecret        string        // optional; claims are verified only when set
	RefreshSkew      time.Duration // refresh access tokens this close to expiry
	MeCacheKeySecret string        // keys the token hash used for the /me cache
}

// CartConfig holds cart limits
type CartConfig struct {
	MaxLineQuantity int
	MaxLines        int
	TTL             time.Duration
	Currency        string
}

// CacheConfig holds TTLs for cached backend responses
type CacheConfig struct {
	CatalogTTL time.Duration
	MeTTL      time.Duration
}

// StoreConfig selects the key-value store backing carts and preferences
type StoreConfig struct {
	Driver          string // redis, sqlite, postgres, memory
	KeyPrefix       string
	CleanupInterval time.Duration
	SQLitePath      string
	Fallback        bool // fall back to memory when the driver is unavailable
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port for the Redis client.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	LogsEnabled       bool    // Ship zap records to the collector as OTLP logs
}

// MetricsConfig holds metrics exporter configuration
type MetricsConfig struct {
	Enabled        bool          // OTLP metrics export
	ExportInterval time.Duration
	PrometheusPath string        // scrape endpoint; empty disables it
}

// ProfilingConfig holds Pyroscope continuous profiling configuration
type ProfilingConfig struct {
	Enabled           bool
	ServerAddress     string // e.g. "http://pyroscope:4040"
	ApplicationName   string
	BasicAuthUser     string
	BasicAuthPassword string
	// ProfileTypes: cpu, alloc_objects, alloc_space, inuse_objects,
	// inuse_space, goroutines, mutex_count, mutex_duration, block_count,
	// block_duration
	ProfileTypes []string
}

// Load loads configuration from a YAML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with STOREFRONT_ prefix (e.g., STOREFRONT_BACKEND_BASE_URL)
// 2. config.yaml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/storefront")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			ShutdownTimeout:   v.GetDuration("http.shutdown_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			MaxBodySize:       v.GetInt64("http.max_body_size"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
			RateLimitBurst:    v.GetInt("http.rate_limit_burst"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:  v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:  v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
		},
		Backend: BackendConfig{
			BaseURL:    v.GetString("backend.base_url"),
			Timeout:    v.GetDuration("backend.timeout"),
			RetryCount: v.GetInt("backend.retry_count"),
			RetryDelay: v.GetDuration("backend.retry_delay"),
			UserAgent:  v.GetString("backend.user_agent"),
		},
		Session: SessionConfig{
			AccessCookie:   v.GetString("session.access_cookie"),
			RefreshCookie:  v.GetString("session.refresh_cookie"),
			CustomerCookie: v.GetString("session.customer_cookie"),
			CartCookie:     v.GetString("session.cart_cookie"),
			Domain:         v.GetString("session.domain"),
			Path:           v.GetString("session.path"),
			Secure:         v.GetBool("session.secure"),
			SameSite:       v.GetString("session.same_site"),
			MaxAge:         v.GetDuration("session.max_age"),
		},
		Guard: GuardConfig{
			AllowedRoles:     v.GetStringSlice("guard.allowed_roles"),
			Locales:          v.GetStringSlice("guard.locales"),
			DefaultLocale:    v.GetString("guard.default_locale"),
			LoginPath:        v.GetString("guard.login_path"),
			ForbiddenPath:    v.GetString("guard.forbidden_path"),
			JWTSecret:        v.GetString("guard.jwt_secret"),
			RefreshSkew:      v.GetDuration("guard.refresh_skew"),
			MeCacheKeySecret: v.GetString("guard.me_cache_key_secret"),
		},
		Cart: CartConfig{
			MaxLineQuantity: v.GetInt("cart.max_line_quantity"),
			MaxLines:        v.GetInt("cart.max_lines"),
			TTL:             v.GetDuration("cart.ttl"),
			Currency:        v.GetString("cart.currency"),
		},
		Cache: CacheConfig{
			CatalogTTL: v.GetDuration("cache.catalog_ttl"),
			MeTTL:      v.GetDuration("cache.me_ttl"),
		},
		Store: StoreConfig{
			Driver:          v.GetString("store.driver"),
			KeyPrefix:       v.GetString("store.key_prefix"),
			CleanupInterval: v.GetDuration("store.cleanup_interval"),
			SQLitePath:      v.GetString("store.sqlite_path"),
			Fallback:        v.GetBool("store.fallback"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
		},
		Log: LogConfig{
			Level:      v.GetString("log.level"),
			Format:     v.GetString("log.format"),
			Output:     v.GetString("log.output"),
			TimeFormat: v.GetString("log.time_format"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
		},
		Metrics: MetricsConfig{
			Enabled:        v.GetBool("metrics.enabled"),
			ExportInterval: v.GetDuration("metrics.export_interval"),
			PrometheusPath: v.GetString("metrics.prometheus_path"),
		},
		Profiling: ProfilingConfig{
			Enabled:           v.GetBool("profiling.enabled"),
			ServerAddress:     v.GetString("profiling.server_address"),
			ApplicationName:   v.GetString("profiling.application_name"),
			BasicAuthUser:     v.GetString("profiling.basic_auth_user"),
			BasicAuthPassword: v.GetString("profiling.basic_auth_password"),
			ProfileTypes:      v.GetStringSlice("profiling.profile_types"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "storefront-gateway"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "3000"
	}

	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 30 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 30 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 10 << 20 // 10MB
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 300
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	if cfg.HTTP.RateLimitBurst == 0 {
		cfg.HTTP.RateLimitBurst = 50
	}
	// No CORS origin fallback: the page shells are same-origin, so an empty
	// list rejects cross-origin requests until origins are configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID", "Idempotency-Key"}
	}

	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = "http://localhost:8080"
	}
	cfg.Backend.BaseURL = strings.TrimRight(cfg.Backend.BaseURL, "/")
	if cfg.Backend.Timeout == 0 {
		cfg.Backend.Timeout = 15 * time.Second
	}
	if cfg.Backend.RetryCount == 0 {
		cfg.Backend.RetryCount = 1
	}
	if cfg.Backend.RetryDelay == 0 {
		cfg.Backend.RetryDelay = 200 * time.Millisecond
	}
	if cfg.Backend.UserAgent == "" {
		cfg.Backend.UserAgent = "storefront-gateway/1.0"
	}

	if cfg.Session.AccessCookie == "" {
		cfg.Session.AccessCookie = "backoffice_token"
	}
	if cfg.Session.RefreshCookie == "" {
		cfg.Session.RefreshCookie = "backoffice_refresh"
	}
	if cfg.Session.CustomerCookie == "" {
		cfg.Session.CustomerCookie = "session_token"
	}
	if cfg.Session.CartCookie == "" {
		cfg.Session.CartCookie = "cart_id"
	}
	if cfg.Session.Path == "" {
		cfg.Session.Path = "/"
	}
	if cfg.Session.SameSite == "" {
		cfg.Session.SameSite = "lax"
	}
	if cfg.Session.MaxAge == 0 {
		cfg.Session.MaxAge = 7 * 24 * time.Hour
	}

	if len(cfg.Guard.AllowedRoles) == 0 {
		cfg.Guard.AllowedRoles = []string{"admin", "manager", "staff"}
	}
	if len(cfg.Guard.Locales) == 0 {
		cfg.Guard.Locales = []string{"en", "es"}
	}
	if cfg.Guard.DefaultLocale == "" {
		cfg.Guard.DefaultLocale = cfg.Guard.Locales[0]
	}
	if cfg.Guard.LoginPath == "" {
		cfg.Guard.LoginPath = "login"
	}
	if cfg.Guard.ForbiddenPath == "" {
		cfg.Guard.ForbiddenPath = "forbidden"
	}
	if cfg.Guard.RefreshSkew == 0 {
		cfg.Guard.RefreshSkew = 30 * time.Second
	}

	if cfg.Cart.MaxLineQuantity == 0 {
		cfg.Cart.MaxLineQuantity = 99
	}
	if cfg.Cart.MaxLines == 0 {
		cfg.Cart.MaxLines = 100
	}
	if cfg.Cart.TTL == 0 {
		cfg.Cart.TTL = 30 * 24 * time.Hour
	}
	if cfg.Cart.Currency == "" {
		cfg.Cart.Currency = "USD"
	}

	if cfg.Cache.CatalogTTL == 0 {
		cfg.Cache.CatalogTTL = time.Minute
	}
	if cfg.Cache.MeTTL == 0 {
		cfg.Cache.MeTTL = 30 * time.Second
	}

	if cfg.Store.Driver == "" {
		cfg.Store.Driver = "redis"
	}
	if cfg.Store.KeyPrefix == "" {
		cfg.Store.KeyPrefix = "storefront:"
	}
	if cfg.Store.CleanupInterval == 0 {
		cfg.Store.CleanupInterval = time.Minute
	}
	if cfg.Store.SQLitePath == "" {
		cfg.Store.SQLitePath = "storefront.db"
	}

	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}

	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "storefront"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 2
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}

	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}

	if cfg.Metrics.ExportInterval == 0 {
		cfg.Metrics.ExportInterval = 60 * time.Second
	}

	if cfg.Profiling.ApplicationName == "" {
		cfg.Profiling.ApplicationName = cfg.App.Name
	}
	if len(cfg.Profiling.ProfileTypes) == 0 {
		cfg.Profiling.ProfileTypes = []string{"cpu", "alloc_space", "inuse_space", "goroutines"}
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend.base_url must be an absolute URL, got %q", c.Backend.BaseURL)
	}
	if c.Backend.RetryCount < 0 {
		return fmt.Errorf("backend.retry_count cannot be negative")
	}

	switch c.Store.Driver {
	case "redis", "sqlite", "postgres", "memory":
	default:
		return fmt.Errorf("store.driver must be one of redis, sqlite, postgres, memory; got %q", c.Store.Driver)
	}

	switch strings.ToLower(c.Session.SameSite) {
	case "strict", "lax", "none":
	default:
		return fmt.Errorf("session.same_site must be strict, lax or none; got %q", c.Session.SameSite)
	}
	if strings.EqualFold(c.Session.SameSite, "none") && !c.Session.Secure {
		return fmt.Errorf("session.same_site=none requires session.secure=true")
	}

	if !containsString(c.Guard.Locales, c.Guard.DefaultLocale) {
		return fmt.Errorf("guard.default_locale %q is not in guard.locales", c.Guard.DefaultLocale)
	}

	if c.Cart.MaxLineQuantity <= 0 {
		return fmt.Errorf("cart.max_line_quantity must be positive")
	}
	if len(c.Cart.Currency) != 3 {
		return fmt.Errorf("cart.currency must be a 3-letter ISO code")
	}

	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.App.IsProduction() {
		if u.Scheme != "https" {
			return fmt.Errorf("backend.base_url must use https in production")
		}
		if !c.Session.Secure {
			return fmt.Errorf("session.secure must be true in production (HTTPS required for secure cookies)")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.Guard.MeCacheKeySecret == "" {
			return fmt.Errorf("guard.me_cache_key_secret is required in production")
		}
		if c.Store.Driver == "postgres" && c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	if c.Profiling.Enabled && c.Profiling.ServerAddress == "" {
		return fmt.Errorf("profiling.server_address is required when profiling is enabled")
	}

	return nil
}

// DSN returns the postgres connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
