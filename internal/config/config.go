package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv   string
	Location *time.Location
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Broker   BrokerConfig
	Auth     AuthConfig
	Punch    PunchConfig
	CORS     CORSConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host        string
	User        string
	Password    string
	Name        string
	Port        string
	SSLMode     string
	MaxRetries  int
	AutoMigrate bool
}

type RedisConfig struct {
	// Addr kosong berarti cache dan idempotency dimatikan
	Addr     string
	Password string
	DB       int
}

type BrokerConfig struct {
	Kind          string // kafka or nats
	KafkaBrokers  []string
	NATSURL       string
	PollInterval  time.Duration
	ConsumerGroup string
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type PunchConfig struct {
	OncePerDay   bool
	MinShift     time.Duration
	MaxBreak     time.Duration
	RecentWindow time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

const (
	BrokerKafka = "kafka"
	BrokerNATS  = "nats"
)

// Load reads the process environment. Call godotenv.Load beforehand when a
// .env file should take part.
func Load() (*Config, error) {
	tz := getEnv("APP_TIMEZONE", "Asia/Kolkata")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", tz, err)
	}

	cfg := &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		Location: loc,
		Server: ServerConfig{
			Port:         getEnv("PORT", "5000"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 5*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			Name:        getEnv("DB_NAME", "derma"),
			Port:        getEnv("DB_PORT", "5432"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			MaxRetries:  getInt("DB_MAX_RETRIES", 5),
			AutoMigrate: getBool("DB_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getInt("REDIS_DB", 0),
		},
		Broker: BrokerConfig{
			Kind:          strings.ToLower(getEnv("EVENT_BROKER", BrokerKafka)),
			KafkaBrokers:  getList("KAFKA_BROKER", nil),
			NATSURL:       getEnv("NATS_URL", ""),
			PollInterval:  getDuration("OUTBOX_POLL_INTERVAL", 3*time.Second),
			ConsumerGroup: getEnv("CONSUMER_GROUP", "go-derma-audit"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			TokenTTL:  getDuration("TOKEN_TTL", time.Hour),
		},
		Punch: PunchConfig{
			OncePerDay:   getBool("PUNCH_ONCE_PER_DAY", true),
			MinShift:     getDuration("PUNCH_MIN_SHIFT", 7*time.Hour),
			MaxBreak:     getDuration("PUNCH_MAX_BREAK", 60*time.Minute),
			RecentWindow: getDuration("PUNCH_RECENT_WINDOW", 30*24*time.Hour),
		},
		CORS: CORSConfig{
			AllowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	switch c.Broker.Kind {
	case BrokerKafka, BrokerNATS:
	default:
		return fmt.Errorf("unsupported EVENT_BROKER %q", c.Broker.Kind)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// getList splits a comma separated value, dropping blanks.
func getList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
