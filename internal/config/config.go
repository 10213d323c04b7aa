package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the agent
type Config struct {
	Server  ServerConfig
	API     APIConfig
	Stream  StreamConfig
	Kafka   KafkaConfig
	Logging LoggingConfig
}

// ServerConfig holds the local HTTP surface configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// APIConfig holds the platform REST API configuration
type APIConfig struct {
	BaseURL   string
	Token     string
	TokenFile string
	Timeout   time.Duration
}

// StreamConfig holds the notification stream configuration
type StreamConfig struct {
	URL                  string
	BaseReconnectDelay   time.Duration
	MaxReconnectDelay    time.Duration
	MaxReconnectAttempts int
	WriteTimeout         time.Duration
}

// KafkaConfig holds the optional UHF reader-event source configuration
type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
	GroupID string
}

// LoggingConfig holds logging specific configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig loads the configuration from file and environment variables
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("api.baseURL is required")
	}
	if cfg.Stream.URL == "" {
		return nil, fmt.Errorf("stream.url is required")
	}

	return &cfg, nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8090")
	v.SetDefault("server.readTimeout", "10s")
	v.SetDefault("server.writeTimeout", "10s")
	v.SetDefault("server.idleTimeout", "120s")

	// REST API defaults
	v.SetDefault("api.timeout", "10s")

	// Stream defaults
	v.SetDefault("stream.baseReconnectDelay", "1s")
	v.SetDefault("stream.maxReconnectDelay", "30s")
	v.SetDefault("stream.maxReconnectAttempts", 5)
	v.SetDefault("stream.writeTimeout", "5s")

	// Kafka defaults
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.topic", "uhf-reader-events")
	v.SetDefault("kafka.groupId", "inventory-dashboard-agent")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
