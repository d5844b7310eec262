// internal/common/config/config.go
package config

import (
	"fmt"

	"wanted-applier/internal/models"
)

// Config is the main application configuration struct.
type Config struct {
	Account       AccountConfig      `mapstructure:"account"`
	Searches      map[string]int     `mapstructure:"searches"`
	FilterWords   []string           `mapstructure:"filter_words"`
	RequiredWords []string           `mapstructure:"required_words"`
	API           APIConfig          `mapstructure:"api"`
	Concurrency   ConcurrencyConfig  `mapstructure:"concurrency"`
	Logging       LoggingConfig      `mapstructure:"logging"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Metrics       MetricsConfig      `mapstructure:"metrics"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Registry      RegistryConfig     `mapstructure:"registry"`
}

// AccountConfig holds the board account. Password is only ever read from the
// environment or the command line and is never written back to the file.
type AccountConfig struct {
	Email      string `mapstructure:"email"`
	Password   string `mapstructure:"password"`
	CacheToken bool   `mapstructure:"cache_token"`
	Token      string `mapstructure:"token"`
	TokenExp   int64  `mapstructure:"token_exp"` // unix seconds
}

// Session returns the cached session, or nil when none is stored.
func (a AccountConfig) Session() *models.Session {
	if a.Token == "" {
		return nil
	}
	return &models.Session{Token: a.Token, Expiry: a.TokenExp}
}

type APIConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	IDURL    string `mapstructure:"id_url"`
	ClientID string `mapstructure:"client_id"`
	Timeout  int    `mapstructure:"timeout"` // milliseconds
}

type ConcurrencyConfig struct {
	Workers int `mapstructure:"workers"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// Enabled reports whether the application ledger is configured.
func (p PostgresConfig) Enabled() bool {
	return p.Host != "" && p.Database != ""
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address   string `mapstructure:"address"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

func (r RedisConfig) Enabled() bool {
	return r.Address != ""
}

type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	Job            string `mapstructure:"job"`
}

// NotificationConfig holds settings for the run summary.
type NotificationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
	Email struct {
		Enabled bool     `mapstructure:"enabled"`
		From    string   `mapstructure:"from"`
		To      []string `mapstructure:"to"`
	} `mapstructure:"email"`
	SMS struct {
		Enabled  bool   `mapstructure:"enabled"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sms"`
}

// Enabled reports whether any summary channel is switched on.
func (n NotificationConfig) Enabled() bool {
	return n.Email.Enabled || n.SMS.Enabled
}

type RegistryConfig struct {
	Path string `mapstructure:"path"`
}
