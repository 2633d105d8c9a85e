package config

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Log      LogConfig      `koanf:"log"`
	Auth     AuthConfig     `koanf:"auth"`
	Admin    AdminConfig    `koanf:"admin"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host       string `koanf:"host"`
	Port       int    `koanf:"port"`
	Mode       string `koanf:"mode"`
	CSRFSecret string `koanf:"csrf_secret"`
	Timeout    string `koanf:"timeout"`

	// TrustRequestID keeps a well-formed X-Request-ID set by a reverse proxy.
	TrustRequestID bool            `koanf:"trust_request_id"`
	CORS           CORSConfig      `koanf:"cors"`
	RateLimit      RateLimitConfig `koanf:"rate_limit"`
}

// CORSConfig holds CORS middleware settings.
type CORSConfig struct {
	AllowOrigins     []string `koanf:"allow_origins"`
	AllowMethods     []string `koanf:"allow_methods"`
	AllowHeaders     []string `koanf:"allow_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           string   `koanf:"max_age"`
}

// RateLimitConfig holds per-client token bucket settings. Enabled applies the
// limiter to the whole JSON API; login endpoints are always limited and fall
// back to DefaultLoginRPS and DefaultLoginBurst when RPS or Burst is zero.
type RateLimitConfig struct {
	Enabled bool    `koanf:"enabled"`
	RPS     float64 `koanf:"rps"`
	Burst   int     `koanf:"burst"`
}

// Login limiter defaults.
const (
	DefaultLoginRPS   = 1.0
	DefaultLoginBurst = 5
)

// LoginLimits returns the rate and burst applied to login endpoints.
func (r RateLimitConfig) LoginLimits() (float64, int) {
	rps, burst := r.RPS, r.Burst
	if rps <= 0 {
		rps = DefaultLoginRPS
	}
	if burst <= 0 {
		burst = DefaultLoginBurst
	}
	return rps, burst
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver   string         `koanf:"driver"`
	SQLite   SQLiteConfig   `koanf:"sqlite"`
	Postgres PostgresConfig `koanf:"postgres"`
	Pool     PoolConfig     `koanf:"pool"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path string `koanf:"path"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	DBName   string `koanf:"dbname"`
	SSLMode  string `koanf:"sslmode"`
}

// PoolConfig holds database connection pool settings.
type PoolConfig struct {
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	ConnMaxLifetime string `koanf:"conn_max_lifetime"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level           string `koanf:"level"`
	Format          string `koanf:"format"`
	Color           *bool  `koanf:"color"`
	FilePath        string `koanf:"file_path"`
	MaxSizeMB       int    `koanf:"max_size_mb"`
	RetentionDays   int    `koanf:"retention_days"`
	MaxBackups      int    `koanf:"max_backups"`
	CompressRotated *bool  `koanf:"compress_rotated"`
}

// AuthConfig holds staff authentication settings for the admin site.
type AuthConfig struct {
	Enabled     bool   `koanf:"enabled"`
	JWTSecret   string `koanf:"jwt_secret"`
	TokenExpiry string `koanf:"token_expiry"`
	Issuer      string `koanf:"issuer"`
}

// TokenTTL returns the parsed token expiry. It is only meaningful after
// Validate has accepted the config with auth enabled.
func (a AuthConfig) TokenTTL() time.Duration {
	d, _ := time.ParseDuration(a.TokenExpiry)
	return d
}

// AdminConfig holds presentation settings for the admin site.
type AdminConfig struct {
	SiteHeader string `koanf:"site_header"`
}

const defaultSiteHeader = "Site administration"

// Load reads configuration from a YAML file and overlays environment variables.
// Environment variables use the prefix "APP__" and a double underscore as the
// hierarchy separator, so APP__AUTH__TOKEN_EXPIRY=1h overrides auth.token_expiry.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}

	if err := k.Load(env.Provider("APP__", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// envKey maps APP__DATABASE__POOL__MAX_IDLE_CONNS to database.pool.max_idle_conns.
func envKey(s string) string {
	key := strings.TrimPrefix(s, "APP__")
	key = strings.ToLower(key)
	return strings.ReplaceAll(key, "__", ".")
}

// Validate normalizes values in place and rejects unsupported or inconsistent
// settings. Errors name the offending key.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateDatabase,
		c.validateDurations,
		c.validateRateLimit,
		c.validateAuth,
		c.validateLog,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}

	c.Admin.SiteHeader = strings.TrimSpace(c.Admin.SiteHeader)
	if c.Admin.SiteHeader == "" {
		c.Admin.SiteHeader = defaultSiteHeader
	}
	return nil
}

func (c *Config) validateServer() error {
	mode := strings.TrimSpace(c.Server.Mode)
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		c.Server.Mode = mode
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", c.Server.Mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", c.Server.Port)
	}

	host := strings.TrimSpace(c.Server.Host)
	if host == "" {
		return fmt.Errorf("server.host is required")
	}
	c.Server.Host = host
	return nil
}

func (c *Config) validateDatabase() error {
	db := &c.Database
	switch db.Driver {
	case "sqlite":
		path := strings.TrimSpace(db.SQLite.Path)
		if path == "" {
			return fmt.Errorf("database.sqlite.path is required when driver is sqlite")
		}
		db.SQLite.Path = path
		return nil
	case "postgres":
		return c.validatePostgres()
	default:
		return fmt.Errorf("invalid database.driver %q: must be one of %q, %q", db.Driver, "sqlite", "postgres")
	}
}

var (
	sslModes        = []string{"disable", "allow", "prefer", "require", "verify-ca", "verify-full"}
	releaseSSLModes = []string{"require", "verify-ca", "verify-full"}
)

func (c *Config) validatePostgres() error {
	pg := &c.Database.Postgres

	required := []struct {
		key   string
		value *string
	}{
		{"database.postgres.host", &pg.Host},
		{"database.postgres.user", &pg.User},
		{"database.postgres.dbname", &pg.DBName},
	}
	for _, r := range required {
		v := strings.TrimSpace(*r.value)
		if v == "" {
			return fmt.Errorf("%s is required when driver is postgres", r.key)
		}
		*r.value = v
	}

	if pg.Port < 1 || pg.Port > 65535 {
		return fmt.Errorf("invalid database.postgres.port %d: must be between 1 and 65535", pg.Port)
	}

	sslMode := strings.TrimSpace(pg.SSLMode)
	if !slices.Contains(sslModes, sslMode) {
		return fmt.Errorf("invalid database.postgres.sslmode %q: must be one of %s", pg.SSLMode, quoteAll(sslModes))
	}
	if c.Server.Mode == gin.ReleaseMode && !slices.Contains(releaseSSLModes, sslMode) {
		return fmt.Errorf("invalid database.postgres.sslmode %q for server.mode %q: must be one of %s", pg.SSLMode, gin.ReleaseMode, quoteAll(releaseSSLModes))
	}
	pg.SSLMode = sslMode
	return nil
}

// validateDurations checks the optional duration settings. Whitespace-only
// values count as unset.
func (c *Config) validateDurations() error {
	fields := []struct {
		key   string
		value *string
	}{
		{"server.timeout", &c.Server.Timeout},
		{"server.cors.max_age", &c.Server.CORS.MaxAge},
		{"database.pool.conn_max_lifetime", &c.Database.Pool.ConnMaxLifetime},
	}
	for _, f := range fields {
		*f.value = strings.TrimSpace(*f.value)
		if *f.value == "" {
			continue
		}
		if err := positiveDuration(f.key, *f.value); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateRateLimit() error {
	rl := c.Server.RateLimit
	if rl.RPS < 0 {
		return fmt.Errorf("invalid server.rate_limit.rps %v: must not be negative", rl.RPS)
	}
	if rl.Burst < 0 {
		return fmt.Errorf("invalid server.rate_limit.burst %d: must not be negative", rl.Burst)
	}
	if !rl.Enabled {
		return nil
	}
	if rl.RPS == 0 {
		return fmt.Errorf("invalid server.rate_limit.rps %v: must be positive when rate limiting is enabled", rl.RPS)
	}
	if rl.Burst == 0 {
		return fmt.Errorf("invalid server.rate_limit.burst %d: must be positive when rate limiting is enabled", rl.Burst)
	}
	return nil
}

func (c *Config) validateAuth() error {
	a := &c.Auth
	a.Issuer = strings.TrimSpace(a.Issuer)
	if a.Issuer == "" {
		a.Issuer = "myproject"
	}
	if !a.Enabled {
		return nil
	}

	secret := strings.TrimSpace(a.JWTSecret)
	if secret == "" {
		return fmt.Errorf("auth.jwt_secret is required when auth is enabled")
	}
	if len(secret) < 32 {
		return fmt.Errorf("invalid auth.jwt_secret: must be at least 32 characters")
	}
	if c.Server.Mode == gin.ReleaseMode && CountSecretClasses(secret) < 3 {
		return fmt.Errorf("auth.jwt_secret must include at least 3 character classes (lowercase, uppercase, digit, symbol) in release mode")
	}
	a.JWTSecret = secret

	expiry := strings.TrimSpace(a.TokenExpiry)
	if expiry == "" {
		return fmt.Errorf("auth.token_expiry is required when auth is enabled")
	}
	if err := positiveDuration("auth.token_expiry", expiry); err != nil {
		return err
	}
	a.TokenExpiry = expiry
	return nil
}

func (c *Config) validateLog() error {
	level := strings.ToLower(strings.TrimSpace(c.Log.Level))
	switch level {
	case "debug", "info", "warn", "error":
		c.Log.Level = level
	default:
		return fmt.Errorf("invalid log.level %q: must be one of %q, %q, %q, %q", c.Log.Level, "debug", "info", "warn", "error")
	}

	format := strings.ToLower(strings.TrimSpace(c.Log.Format))
	switch format {
	case "text", "json":
		c.Log.Format = format
	default:
		return fmt.Errorf("invalid log.format %q: must be one of %q, %q", c.Log.Format, "text", "json")
	}
	return nil
}

func positiveDuration(key, value string) error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if d <= 0 {
		return fmt.Errorf("invalid %s %q: must be greater than 0", key, value)
	}
	return nil
}

func quoteAll(list []string) string {
	quoted := make([]string, len(list))
	for i, s := range list {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(quoted, ", ")
}

// CountSecretClasses counts how many character classes (lowercase, uppercase,
// digit, symbol) are present in secret.
func CountSecretClasses(secret string) int {
	var lower, upper, digit, symbol int
	for _, r := range secret {
		switch {
		case unicode.IsLower(r):
			lower = 1
		case unicode.IsUpper(r):
			upper = 1
		case unicode.IsDigit(r):
			digit = 1
		default:
			symbol = 1
		}
	}
	return lower + upper + digit + symbol
}
