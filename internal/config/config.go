package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Server   ServerConfig   `envPrefix:"SERVER_"`
	Database DatabaseConfig `envPrefix:"DATABASE_"`
	Loyalty  LoyaltyConfig  `envPrefix:"LOYALTY_"`
	Kafka    KafkaConfig    `envPrefix:"KAFKA_"`
	Session  SessionConfig  `envPrefix:"SESSION_"`
}

type ServerConfig struct {
	Port string `env:"PORT" envDefault:"8080"`
	Host string `env:"HOST" envDefault:"0.0.0.0"`

	// Regexp of origins allowed to embed the widget. Empty disables CORS.
	CORSOrigins string `env:"CORS_ORIGINS"`
}

// SessionConfig drives the abandonment sweeper.
type SessionConfig struct {
	IdleTimeout   time.Duration `env:"IDLE_TIMEOUT" envDefault:"30m"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"5m"`
}

func (c ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

type DatabaseConfig struct {
	URI      string `env:"URI" envDefault:"mongodb://localhost:27017"`
	Database string `env:"DATABASE" envDefault:"lealbot"`
}

type LoyaltyConfig struct {
	BaseURL string        `env:"BASE_URL,required"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

type KafkaConfig struct {
	Enabled bool     `env:"ENABLED" envDefault:"false"`
	Brokers []string `env:"BROKERS" envDefault:"localhost:9092"`
	Topic   string   `env:"TOPIC" envDefault:"lealbot.events"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
