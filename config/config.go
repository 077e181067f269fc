package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Session  SessionConfig  `yaml:"session"`
	Booking  BookingConfig  `yaml:"booking"`
	Search   SearchConfig   `yaml:"search"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers           []string `yaml:"brokers"`
	ReservationsTopic string   `yaml:"reservations_topic"`
	GroupID           string   `yaml:"group_id"`
}

type SessionConfig struct {
	TTLMinutes int `yaml:"ttl_minutes"`
}

func (s SessionConfig) TTL() time.Duration {
	if s.TTLMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(s.TTLMinutes) * time.Minute
}

// BookingConfig bounds the retry loop applied to serialization conflicts.
type BookingConfig struct {
	MaxAttempts   int `yaml:"max_attempts"`
	RetryBaseMSec int `yaml:"retry_base_ms"`
}

func (b BookingConfig) Attempts() int {
	if b.MaxAttempts <= 0 {
		return 5
	}
	return b.MaxAttempts
}

func (b BookingConfig) RetryBase() time.Duration {
	if b.RetryBaseMSec <= 0 {
		return 25 * time.Millisecond
	}
	return time.Duration(b.RetryBaseMSec) * time.Millisecond
}

type SearchConfig struct {
	CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
	DefaultCount    int `yaml:"default_count"`
}

func (s SearchConfig) CacheTTL() time.Duration {
	if s.CacheTTLSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.CacheTTLSeconds) * time.Second
}

func (s SearchConfig) Count() int {
	if s.DefaultCount <= 0 {
		return 20
	}
	return s.DefaultCount
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}
