package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the triage service
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	NATS        NATSConfig        `mapstructure:"nats"`
	Stream      StreamConfig      `mapstructure:"stream"`
	Classifier  ClassifierConfig  `mapstructure:"classifier"`
	Agent       AgentConfig       `mapstructure:"agent"`
	Suppression SuppressionConfig `mapstructure:"suppression"`
	DLQ         DLQConfig         `mapstructure:"dlq"`
	Database    DatabaseConfig    `mapstructure:"database"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// LoggingConfig holds structured logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// NATSConfig holds message broker connection settings
type NATSConfig struct {
	URL  string `mapstructure:"url"`
	Name string `mapstructure:"name"`
}

// StreamConfig holds the inbound event stream binding
type StreamConfig struct {
	Name          string        `mapstructure:"name"`
	Subject       string        `mapstructure:"subject"`
	Group         string        `mapstructure:"group"`
	AckWait       time.Duration `mapstructure:"ack_wait"`
	MaxDeliver    int           `mapstructure:"max_deliver"`
	MaxAckPending int           `mapstructure:"max_ack_pending"`
}

// ClassifierConfig holds incident classification policy
type ClassifierConfig struct {
	CriticalEventTypes []string `mapstructure:"critical_event_types"`
	SubstringFallback  bool     `mapstructure:"substring_fallback"`
}

// AgentConfig holds the triage agent endpoint settings
type AgentConfig struct {
	Transport string          `mapstructure:"transport"` // http or nats
	URL       string          `mapstructure:"url"`
	Subject   string          `mapstructure:"subject"`
	Timeout   time.Duration   `mapstructure:"timeout"`
	Auth      AgentAuthConfig `mapstructure:"auth"`
}

// AgentAuthConfig holds service token settings for agent calls
type AgentAuthConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Secret   string        `mapstructure:"secret"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

// SuppressionConfig holds the Redis-backed incident dedup window
type SuppressionConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	RedisURL string        `mapstructure:"redis_url"`
	Window   time.Duration `mapstructure:"window"`
}

// DLQConfig holds the dead-letter queue settings
type DLQConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// DatabaseConfig holds outcome persistence settings
type DatabaseConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// PostgresConfig holds PostgreSQL connection settings
type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"sslmode"`
}

// ConnString builds a pgx-compatible connection string
func (p PostgresConfig) ConnString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode,
	)
}

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.port", 8086)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.name", "aegis-triage")

	v.SetDefault("stream.name", "PLATFORM_EVENTS")
	v.SetDefault("stream.subject", "events.platform")
	v.SetDefault("stream.group", "aegis-triage")
	v.SetDefault("stream.ack_wait", "30s")
	v.SetDefault("stream.max_deliver", 3)
	v.SetDefault("stream.max_ack_pending", 1)

	v.SetDefault("classifier.critical_event_types", []string{"payment_failed"})
	v.SetDefault("classifier.substring_fallback", false)

	v.SetDefault("agent.transport", "http")
	v.SetDefault("agent.url", "http://localhost:50051")
	v.SetDefault("agent.subject", "triage.agent.incident")
	v.SetDefault("agent.timeout", "30s")
	v.SetDefault("agent.auth.enabled", false)
	v.SetDefault("agent.auth.token_ttl", "5m")

	v.SetDefault("suppression.enabled", false)
	v.SetDefault("suppression.redis_url", "redis://localhost:6379/0")
	v.SetDefault("suppression.window", "5m")

	v.SetDefault("dlq.enabled", true)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.user", "aegis")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.postgres.database", "aegis_triage")
	v.SetDefault("database.postgres.sslmode", "disable")

	// Read from config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override file config
	v.SetEnvPrefix("TRIAGE")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Agent.Transport != "http" && cfg.Agent.Transport != "nats" {
		return nil, fmt.Errorf("unknown agent transport: %s (supported: http, nats)", cfg.Agent.Transport)
	}

	return &cfg, nil
}
