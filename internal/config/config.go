// Package config loads the server and CLI configuration.
//
// SOURCES, lowest precedence first:
//  1. defaults (setDefaults)
//  2. an optional config.yaml in ., ./config or /etc/gaia
//  3. GAIA_* environment variables (server.port → GAIA_SERVER_PORT)
//  4. the deployment's historical variable names (PORT, DATABASE_URL, JWT_SECRET, ...)
//
// Every value has a usable default. An empty database.url runs the server on
// the offline store; an empty redis.addr disables rate limiting.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	OAuth     OAuthConfig     `mapstructure:"oauth"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	StaticDir       string        `mapstructure:"static_dir"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Environment     string        `mapstructure:"environment"` // development, production
}

// IsProduction reports whether the server runs with production settings.
func (c ServerConfig) IsProduction() bool {
	return c.Environment == "production"
}

// DatabaseConfig selects and tunes the SQL backend. See sqldb.ParseURL for
// the accepted URL forms.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// AuthConfig holds session configuration.
type AuthConfig struct {
	AppID       string        `mapstructure:"app_id"`
	JWTSecret   string        `mapstructure:"jwt_secret"`
	OwnerOpenID string        `mapstructure:"owner_open_id"`
	SessionTTL  time.Duration `mapstructure:"session_ttl"`
}

// OAuthConfig points at the external identity provider.
type OAuthConfig struct {
	ServerURL string        `mapstructure:"server_url"` // API used for token exchange
	PortalURL string        `mapstructure:"portal_url"` // browser-facing login page
	Timeout   time.Duration `mapstructure:"timeout"`
}

// NotifyConfig points at the owner-notification service.
type NotifyConfig struct {
	APIURL string `mapstructure:"api_url"`
	APIKey string `mapstructure:"api_key"`
}

// RedisConfig holds Redis configuration. Rate limiting is off when Addr is empty.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// RateLimitConfig sizes the per-client fixed window.
type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	Burst             int `mapstructure:"burst"`
}

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text, json
}

// Load reads configuration from an optional file, the environment and defaults.
// configFile overrides the search path when non-empty.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/gaia")
	}

	v.SetEnvPrefix("GAIA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	if err := bindLegacyEnv(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// bindLegacyEnv maps the variable names the hosted deployment already sets.
// The GAIA_ form is listed too so BindEnv does not drop it.
func bindLegacyEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		"server.port":        {"GAIA_SERVER_PORT", "PORT"},
		"server.environment": {"GAIA_SERVER_ENVIRONMENT", "NODE_ENV"},
		"database.url":       {"GAIA_DATABASE_URL", "DATABASE_URL"},
		"auth.app_id":        {"GAIA_AUTH_APP_ID", "VITE_APP_ID"},
		"auth.jwt_secret":    {"GAIA_AUTH_JWT_SECRET", "JWT_SECRET"},
		"auth.owner_open_id": {"GAIA_AUTH_OWNER_OPEN_ID", "OWNER_OPEN_ID"},
		"oauth.server_url":   {"GAIA_OAUTH_SERVER_URL", "OAUTH_SERVER_URL"},
		"oauth.portal_url":   {"GAIA_OAUTH_PORTAL_URL", "VITE_OAUTH_PORTAL_URL"},
		"notify.api_url":     {"GAIA_NOTIFY_API_URL", "BUILT_IN_FORGE_API_URL"},
		"notify.api_key":     {"GAIA_NOTIFY_API_KEY", "BUILT_IN_FORGE_API_KEY"},
		"redis.addr":         {"GAIA_REDIS_ADDR", "REDIS_ADDR"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("binding %s: %w", key, err)
		}
	}
	return nil
}

// setDefaults configures default values for all settings.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.static_dir", "web")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// Database defaults (empty URL = offline store)
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")

	// Auth defaults
	v.SetDefault("auth.app_id", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.owner_open_id", "")
	v.SetDefault("auth.session_ttl", "8760h") // one year

	v.SetDefault("oauth.server_url", "")
	v.SetDefault("oauth.portal_url", "")
	v.SetDefault("oauth.timeout", "30s")

	v.SetDefault("notify.api_url", "")
	v.SetDefault("notify.api_key", "")

	// Redis defaults (empty addr = no rate limiting)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("ratelimit.requests_per_minute", 120)
	v.SetDefault("ratelimit.burst", 30)

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:*"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Redacted returns the effective configuration as a flat key/value map with
// secrets masked, for `gaiactl config`.
func (c *Config) Redacted() map[string]any {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "********"
	}
	return map[string]any{
		"server.port":                   c.Server.Port,
		"server.static_dir":             c.Server.StaticDir,
		"server.environment":            c.Server.Environment,
		"server.read_timeout":           c.Server.ReadTimeout.String(),
		"server.write_timeout":          c.Server.WriteTimeout.String(),
		"server.idle_timeout":           c.Server.IdleTimeout.String(),
		"server.shutdown_timeout":       c.Server.ShutdownTimeout.String(),
		"database.url":                  mask(c.Database.URL),
		"database.max_open_conns":       c.Database.MaxOpenConns,
		"auth.app_id":                   c.Auth.AppID,
		"auth.jwt_secret":               mask(c.Auth.JWTSecret),
		"auth.owner_open_id":            c.Auth.OwnerOpenID,
		"auth.session_ttl":              c.Auth.SessionTTL.String(),
		"oauth.server_url":              c.OAuth.ServerURL,
		"oauth.portal_url":              c.OAuth.PortalURL,
		"oauth.timeout":                 c.OAuth.Timeout.String(),
		"notify.api_url":                c.Notify.APIURL,
		"notify.api_key":                mask(c.Notify.APIKey),
		"redis.addr":                    c.Redis.Addr,
		"ratelimit.requests_per_minute": c.RateLimit.RequestsPerMinute,
		"ratelimit.burst":               c.RateLimit.Burst,
		"cors.allowed_origins":          c.CORS.AllowedOrigins,
		"log.level":                     c.Log.Level,
		"log.format":                    c.Log.Format,
	}
}
