package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"golang.org/x/text/currency"
)

// Config holds all application configuration
type Config struct {
	App         AppConfig
	Source      SourceConfig
	WooCommerce WooCommerceConfig
	Store       StoreConfig
	Report      ReportConfig
	Cache       CacheConfig
	Redis       RedisConfig
	Database    DatabaseConfig
	Log         LogConfig
	HTTP        HTTPConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// SourceConfig selects where orders are pulled from
type SourceConfig struct {
	Mode    string // api, csv
	CSVPath string // used when Mode is csv
}

// WooCommerceConfig holds WooCommerce REST API settings
type WooCommerceConfig struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	PerPage        int
	Statuses       []string
	StartDate      string // RFC3339, optional lower bound
	EndDate        string // RFC3339, optional upper bound
	TimeoutSeconds int
}

// StoreMapping maps a city or state pattern to a store name. Patterns
// ending in "*" match by prefix, case-insensitively.
type StoreMapping struct {
	CityPattern  string `mapstructure:"city_pattern" json:"city_pattern" validate:"required_without=StatePattern"`
	StatePattern string `mapstructure:"state_pattern" json:"state_pattern" validate:"required_without=CityPattern"`
	Store        string `mapstructure:"store" json:"store" validate:"required"`
}

// StoreConfig holds store identification settings
type StoreConfig struct {
	IdentificationMethod string // city, metadata, billing
	MetadataField        string
	Mappings             []StoreMapping
}

// ReportConfig holds report assembly settings
type ReportConfig struct {
	Currency        string
	TopProducts     int
	TopStores       int
	TopCombinations int
}

// CacheConfig holds report cache settings
type CacheConfig struct {
	Backend string // memory, redis
	TTL     time.Duration
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// DatabaseConfig holds order snapshot database settings
type DatabaseConfig struct {
	Enabled         bool
	Driver          string // sqlite, postgres
	Path            string // sqlite file path
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	CORSAllowOrigins []string
	TrustedProxies   []string
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with SALES_ prefix (e.g., SALES_WOOCOMMERCE_CONSUMER_KEY)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("SALES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Source: SourceConfig{
			Mode:    v.GetString("source.mode"),
			CSVPath: v.GetString("source.csv_path"),
		},
		WooCommerce: WooCommerceConfig{
			BaseURL:        v.GetString("woocommerce.base_url"),
			ConsumerKey:    v.GetString("woocommerce.consumer_key"),
			ConsumerSecret: v.GetString("woocommerce.consumer_secret"),
			PerPage:        v.GetInt("woocommerce.per_page"),
			Statuses:       v.GetStringSlice("woocommerce.statuses"),
			StartDate:      v.GetString("woocommerce.start_date"),
			EndDate:        v.GetString("woocommerce.end_date"),
			TimeoutSeconds: v.GetInt("woocommerce.timeout_seconds"),
		},
		Store: StoreConfig{
			IdentificationMethod: v.GetString("store.identification_method"),
			MetadataField:        v.GetString("store.metadata_field"),
		},
		Report: ReportConfig{
			Currency:        v.GetString("report.currency"),
			TopProducts:     v.GetInt("report.top_products"),
			TopStores:       v.GetInt("report.top_stores"),
			TopCombinations: v.GetInt("report.top_combinations"),
		},
		Cache: CacheConfig{
			Backend: v.GetString("cache.backend"),
			TTL:     v.GetDuration("cache.ttl"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Database: DatabaseConfig{
			Enabled:         v.GetBool("database.enabled"),
			Driver:          v.GetString("database.driver"),
			Path:            v.GetString("database.path"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
	}

	mappings, err := loadStoreMappings(v)
	if err != nil {
		return nil, err
	}
	cfg.Store.Mappings = mappings

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadStoreMappings reads store mappings either from the
// [[store.mappings]] tables in config.toml or from the
// SALES_STORE_MAPPING environment variable holding a JSON array.
func loadStoreMappings(v *viper.Viper) ([]StoreMapping, error) {
	if raw := v.GetString("store.mapping"); raw != "" {
		var mappings []StoreMapping
		if err := json.Unmarshal([]byte(raw), &mappings); err != nil {
			return nil, fmt.Errorf("invalid store.mapping JSON: %w", err)
		}
		return mappings, nil
	}

	var mappings []StoreMapping
	if err := v.UnmarshalKey("store.mappings", &mappings); err != nil {
		return nil, fmt.Errorf("invalid store.mappings: %w", err)
	}
	return mappings, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "sales-analytics"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Source.Mode == "" {
		cfg.Source.Mode = "api"
	}
	if cfg.WooCommerce.PerPage == 0 {
		cfg.WooCommerce.PerPage = 100
	}
	if len(cfg.WooCommerce.Statuses) == 0 {
		cfg.WooCommerce.Statuses = []string{"completed"}
	}
	if cfg.WooCommerce.TimeoutSeconds == 0 {
		cfg.WooCommerce.TimeoutSeconds = 30
	}
	if cfg.Store.IdentificationMethod == "" {
		cfg.Store.IdentificationMethod = "city"
	}
	if cfg.Store.MetadataField == "" {
		cfg.Store.MetadataField = "_store_id"
	}
	if cfg.Report.Currency == "" {
		cfg.Report.Currency = "EUR"
	}
	if cfg.Report.TopProducts == 0 {
		cfg.Report.TopProducts = 10
	}
	if cfg.Report.TopStores == 0 {
		cfg.Report.TopStores = 10
	}
	if cfg.Report.TopCombinations == 0 {
		cfg.Report.TopCombinations = 20
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "memory"
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 5 * time.Minute
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "sales.db"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 30
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 10
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		if cfg.App.Env == "production" {
			cfg.Log.Format = "json"
		} else {
			cfg.Log.Format = "console"
		}
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
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
}

// validate checks the configuration for invalid combinations
func (c *Config) validate() error {
	switch c.Source.Mode {
	case "api", "csv":
	default:
		return fmt.Errorf("invalid source.mode %q: must be api or csv", c.Source.Mode)
	}

	if c.Source.Mode == "csv" && c.Source.CSVPath == "" {
		return fmt.Errorf("source.csv_path is required when source.mode is csv")
	}

	if c.Source.Mode == "api" {
		if c.WooCommerce.BaseURL == "" {
			return fmt.Errorf("woocommerce.base_url is required when source.mode is api")
		}
		u, err := url.Parse(c.WooCommerce.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("woocommerce.base_url %q is not a valid URL", c.WooCommerce.BaseURL)
		}
	}

	switch c.Store.IdentificationMethod {
	case "city", "metadata", "billing":
	default:
		return fmt.Errorf("invalid store.identification_method %q: must be city, metadata or billing", c.Store.IdentificationMethod)
	}

	if _, err := currency.ParseISO(c.Report.Currency); err != nil {
		return fmt.Errorf("invalid report.currency %q: %w", c.Report.Currency, err)
	}

	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("invalid cache.backend %q: must be memory or redis", c.Cache.Backend)
	}

	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("invalid database.driver %q: must be sqlite or postgres", c.Database.Driver)
	}

	validate := validator.New()
	for i := range c.Store.Mappings {
		if err := validate.Struct(&c.Store.Mappings[i]); err != nil {
			return fmt.Errorf("invalid store mapping at index %d: %w", i, err)
		}
	}

	return nil
}

// DSN returns the PostgreSQL connection string
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}
