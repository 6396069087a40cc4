package internal

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Security      SecurityConfig      `mapstructure:"security"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Client        ClientConfig        `mapstructure:"client"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	OpenAPIPath       string        `mapstructure:"openapi_path"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Source          string        `mapstructure:"source"`
}

type SecurityConfig struct {
	JWTKey                     string        `mapstructure:"jwt_key"`
	Issuer                     string        `mapstructure:"issuer"`
	Audience                   string        `mapstructure:"audience"`
	AccessTokenDuration        time.Duration `mapstructure:"access_token_duration"`
	RefreshTokenExpirationDays int           `mapstructure:"refresh_token_expiration_days"`
	BCryptCost                 int           `mapstructure:"bcrypt_cost"`
}

type ObservabilityConfig struct {
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LoggingConfig struct {
	Env    string `mapstructure:"env"`
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ClientConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	TokenFile string        `mapstructure:"token_file"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// SetDefaults fills zero values with the service defaults.
func (c *Config) SetDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.OpenAPIPath == "" {
		c.Server.OpenAPIPath = "./api/openapi.yml"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.ReadHeaderTimeout == 0 {
		c.Server.ReadHeaderTimeout = 5 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Security.AccessTokenDuration == 0 {
		c.Security.AccessTokenDuration = 30 * time.Minute
	}
	if c.Security.RefreshTokenExpirationDays == 0 {
		c.Security.RefreshTokenExpirationDays = 7
	}
	if c.Security.BCryptCost == 0 {
		c.Security.BCryptCost = 10
	}
	if c.Observability.Metrics.Path == "" {
		c.Observability.Metrics.Path = "/metrics"
	}
	if c.Observability.Logging.Env == "" {
		c.Observability.Logging.Env = "development"
	}
	if c.Client.BaseURL == "" {
		c.Client.BaseURL = fmt.Sprintf("http://localhost:%d", c.Server.Port)
	}
	if c.Client.TokenFile == "" {
		c.Client.TokenFile = ".shifts-logger-token"
	}
	if c.Client.Timeout == 0 {
		c.Client.Timeout = 10 * time.Second
	}
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.Source == "" {
		return errors.New("source is required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *SecurityConfig) Validate() error {
	if len(c.JWTKey) < 32 {
		return errors.New("jwt_key must be at least 32 characters")
	}
	if c.Issuer == "" {
		return errors.New("issuer is required")
	}
	if c.Audience == "" {
		return errors.New("audience is required")
	}
	if c.RefreshTokenExpirationDays < 1 {
		return errors.New("refresh_token_expiration_days must be at least 1")
	}
	return nil
}

// RefreshTokenTTL is the refresh session lifetime.
func (c *SecurityConfig) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshTokenExpirationDays) * 24 * time.Hour
}
