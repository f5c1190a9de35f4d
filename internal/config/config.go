package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Relational drivers and event brokers.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"

	BrokerNone     = "none"
	BrokerRabbitMQ = "rabbitmq"
	BrokerKafka    = "kafka"
)

type Config struct {
	Server     Server     `yaml:"server"`
	Relational Relational `yaml:"relational"`
	Mongo      Mongo      `yaml:"mongo"`
	JWT        JWT        `yaml:"jwt"`
	Upstream   Upstream   `yaml:"upstream"`
	Auth       Auth       `yaml:"auth"`
	Events     Events     `yaml:"events"`
	Dashboard  Dashboard  `yaml:"dashboard"`
}

type Server struct {
	Port        string   `yaml:"port"`
	LogLevel    string   `yaml:"log_level"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type Relational struct {
	Driver   string   `yaml:"driver"`
	Postgres Database `yaml:"postgres"`
	MySQL    Database `yaml:"mysql"`
}

type Database struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

type Mongo struct {
	URL      string `yaml:"url"`
	Database string `yaml:"database"`
}

type JWT struct {
	Secret          string `yaml:"secret"`
	SecretBase64    string `yaml:"-"`
	ExpirationHours int    `yaml:"expiration_hours"`
}

type Upstream struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

type Auth struct {
	LegacyHash string `yaml:"legacy_hash"`
}

type Events struct {
	Broker       string `yaml:"broker"`
	RabbitMQURL  string `yaml:"rabbitmq_url"`
	Exchange     string `yaml:"exchange"`
	KafkaBrokers string `yaml:"kafka_brokers"`
	KafkaTopic   string `yaml:"kafka_topic"`
}

type Dashboard struct {
	Timezone string `yaml:"timezone"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Server: Server{
			Port:        "8001",
			LogLevel:    "info",
			CORSOrigins: []string{"*"},
		},
		Relational: Relational{
			Driver: DriverMySQL,
			Postgres: Database{
				Host:    "localhost",
				Port:    "5432",
				SSLMode: "disable",
			},
			MySQL: Database{
				Host: "localhost",
				Port: "3306",
			},
		},
		Mongo: Mongo{
			URL:      "mongodb://localhost:27017",
			Database: "pos_relay",
		},
		JWT: JWT{
			ExpirationHours: 24,
		},
		Upstream: Upstream{
			Timeout: 30 * time.Second,
		},
		Auth: Auth{
			LegacyHash: "md5",
		},
		Events: Events{
			Broker:     BrokerNone,
			Exchange:   "order_events",
			KafkaTopic: "order-events",
		},
		Dashboard: Dashboard{
			Timezone: "Local",
		},
	}
}

// Load builds the configuration from defaults, then the YAML file at path when
// path is not empty, then environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.LogLevel = getEnv("LOG_LEVEL", c.Server.LogLevel)
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		c.Server.CORSOrigins = splitList(origins)
	}

	c.Relational.Driver = strings.ToLower(getEnv("RELATIONAL_DRIVER", c.Relational.Driver))
	applyDatabaseEnv("POSTGRES", &c.Relational.Postgres)
	c.Relational.Postgres.SSLMode = getEnv("POSTGRES_SSL", c.Relational.Postgres.SSLMode)
	applyDatabaseEnv("MYSQL", &c.Relational.MySQL)

	c.Mongo.URL = getEnv("MONGO_URL", c.Mongo.URL)
	c.Mongo.Database = getEnv("MONGO_DB", c.Mongo.Database)

	c.JWT.Secret = getEnv("JWT_SECRET", c.JWT.Secret)
	c.JWT.SecretBase64 = getEnv("JWT_SECRET_BASE64", c.JWT.SecretBase64)
	if v := os.Getenv("JWT_EXPIRATION_HOURS"); v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid JWT_EXPIRATION_HOURS %q: %w", v, err)
		}
		c.JWT.ExpirationHours = hours
	}

	c.Upstream.BaseURL = getEnv("UPSTREAM_BASE_URL", c.Upstream.BaseURL)
	c.Upstream.APIKey = getEnv("UPSTREAM_API_KEY", c.Upstream.APIKey)
	if v := os.Getenv("UPSTREAM_TIMEOUT"); v != "" {
		timeout, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid UPSTREAM_TIMEOUT %q: %w", v, err)
		}
		c.Upstream.Timeout = timeout
	}

	c.Auth.LegacyHash = strings.ToLower(getEnv("LEGACY_HASH", c.Auth.LegacyHash))

	c.Events.Broker = strings.ToLower(getEnv("EVENTS_BROKER", c.Events.Broker))
	c.Events.RabbitMQURL = getEnv("RABBITMQ_URL", c.Events.RabbitMQURL)
	c.Events.Exchange = getEnv("RABBITMQ_EXCHANGE", c.Events.Exchange)
	c.Events.KafkaBrokers = getEnv("KAFKA_BROKERS", c.Events.KafkaBrokers)
	c.Events.KafkaTopic = getEnv("KAFKA_TOPIC", c.Events.KafkaTopic)

	c.Dashboard.Timezone = getEnv("DASHBOARD_TIMEZONE", c.Dashboard.Timezone)

	return nil
}

// Validate reports every missing or inconsistent setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.JWT.Secret == "" && c.JWT.SecretBase64 == "" {
		errs = append(errs, errors.New("JWT_SECRET or JWT_SECRET_BASE64 is required"))
	}
	if c.JWT.ExpirationHours <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRATION_HOURS must be positive"))
	}
	if c.Upstream.BaseURL == "" {
		errs = append(errs, errors.New("UPSTREAM_BASE_URL is required"))
	}
	if c.Upstream.APIKey == "" {
		errs = append(errs, errors.New("UPSTREAM_API_KEY is required"))
	}
	if c.Mongo.URL == "" || c.Mongo.Database == "" {
		errs = append(errs, errors.New("MONGO_URL and MONGO_DB are required"))
	}

	switch c.Relational.Driver {
	case DriverPostgres:
		errs = append(errs, c.Relational.Postgres.validate("POSTGRES")...)
	case DriverMySQL:
		errs = append(errs, c.Relational.MySQL.validate("MYSQL")...)
	default:
		errs = append(errs, fmt.Errorf("RELATIONAL_DRIVER must be %s or %s, got %q", DriverPostgres, DriverMySQL, c.Relational.Driver))
	}

	switch c.Events.Broker {
	case BrokerNone, "":
	case BrokerRabbitMQ:
		if c.Events.RabbitMQURL == "" {
			errs = append(errs, errors.New("RABBITMQ_URL is required for the rabbitmq broker"))
		}
	case BrokerKafka:
		if c.Events.KafkaBrokers == "" || c.Events.KafkaTopic == "" {
			errs = append(errs, errors.New("KAFKA_BROKERS and KAFKA_TOPIC are required for the kafka broker"))
		}
	default:
		errs = append(errs, fmt.Errorf("EVENTS_BROKER must be none, rabbitmq or kafka, got %q", c.Events.Broker))
	}

	if _, err := time.LoadLocation(c.Dashboard.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("invalid DASHBOARD_TIMEZONE: %w", err))
	}

	return errors.Join(errs...)
}

// Location returns the dashboard time zone. Validate must have passed.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Dashboard.Timezone)
	if err != nil {
		return time.Local
	}

	return loc
}

// TokenTTL returns the session token lifetime.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWT.ExpirationHours) * time.Hour
}

// LogLevel maps the configured level name to a slog level, defaulting to info.
func (c *Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Server.LogLevel)); err != nil {
		return slog.LevelInfo
	}

	return level
}

// PostgresDSN renders the pgx connection string.
func (c *Config) PostgresDSN() string {
	pg := c.Relational.Postgres
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		pg.User,
		pg.Password,
		pg.Host,
		pg.Port,
		pg.Database,
		pg.SSLMode,
	)
}

func (d Database) validate(prefix string) []error {
	var errs []error
	if d.Host == "" {
		errs = append(errs, fmt.Errorf("%s_HOST is required", prefix))
	}
	if d.User == "" {
		errs = append(errs, fmt.Errorf("%s_USER is required", prefix))
	}
	if d.Database == "" {
		errs = append(errs, fmt.Errorf("%s_DB is required", prefix))
	}

	return errs
}

func applyDatabaseEnv(prefix string, d *Database) {
	d.Host = getEnv(prefix+"_HOST", d.Host)
	d.Port = getEnv(prefix+"_PORT", d.Port)
	d.User = getEnv(prefix+"_USER", d.User)
	d.Password = getEnv(prefix+"_PASSWORD", d.Password)
	d.Database = getEnv(prefix+"_DB", d.Database)
}

// parseDuration accepts Go durations ("45s") and bare seconds ("45").
func parseDuration(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}

	return time.ParseDuration(v)
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}

	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
