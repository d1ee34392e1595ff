// Package config loads runtime settings from defaults, an optional .env file
// and the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Ledger   LedgerConfig
	QR       QRConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	PublicURL       string
}

// SwaggerURL is where the generated API document is served.
func (s ServerConfig) SwaggerURL() string {
	return strings.TrimRight(s.PublicURL, "/") + "/swagger/doc.json"
}

type StorageConfig struct {
	Driver        string
	CustomersFile string
	AccountsFile  string
	PreserveRates bool
	RedisPrefix   string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func (c RedisConfig) Addr() string { return c.Host + ":" + c.Port }

type JWTConfig struct {
	SecretKey   string
	ExpiryHours int
}

type LedgerConfig struct {
	Currency string
	BIC      string
}

type QRConfig struct {
	TTL time.Duration
}

type LogConfig struct {
	Level  string
	Pretty bool
}

// Logger builds a zerolog logger writing to out.
func (c LogConfig) Logger(out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(c.Level))
	if err != nil || c.Level == "" {
		level = zerolog.InfoLevel
	}
	if c.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

var envBindings = map[string]string{
	"server.port":             "PORT",
	"server.public_url":       "SERVER_PUBLIC_URL",
	"server.request_timeout":  "SERVER_REQUEST_TIMEOUT",
	"server.shutdown_timeout": "SERVER_SHUTDOWN_TIMEOUT",

	"storage.driver":         "STORAGE_DRIVER",
	"storage.customers_file": "STORAGE_CUSTOMERS_FILE",
	"storage.accounts_file":  "STORAGE_ACCOUNTS_FILE",
	"storage.preserve_rates": "STORAGE_PRESERVE_RATES",
	"storage.redis_prefix":   "STORAGE_REDIS_PREFIX",

	"database.host":     "DATABASE_HOST",
	"database.port":     "DATABASE_PORT",
	"database.user":     "DATABASE_USER",
	"database.password": "DATABASE_PASSWORD",
	"database.name":     "DATABASE_NAME",
	"database.ssl_mode": "DATABASE_SSL_MODE",

	"redis.host":     "REDIS_HOST",
	"redis.port":     "REDIS_PORT",
	"redis.password": "REDIS_PASSWORD",
	"redis.db":       "REDIS_DB",

	"jwt.secret_key":   "JWT_SECRET_KEY",
	"jwt.expiry_hours": "JWT_EXPIRY_HOURS",

	"ledger.currency": "LEDGER_CURRENCY",
	"ledger.bic":      "LEDGER_BIC",
	"qr.ttl":          "QR_TTL",
	"log.level":       "LOG_LEVEL",
	"log.pretty":      "LOG_PRETTY",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.request_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("storage.driver", DriverFile)
	v.SetDefault("storage.customers_file", "bank_customers.csv")
	v.SetDefault("storage.accounts_file", "bank_accounts.csv")
	v.SetDefault("storage.preserve_rates", true)
	v.SetDefault("storage.redis_prefix", "ledger")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.name", "branch_ledger")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Minute*5)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.expiry_hours", 12)
	v.SetDefault("ledger.currency", "INR")
	v.SetDefault("ledger.bic", "RURALPAY")
	v.SetDefault("qr.ttl", 5*time.Minute)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}

// Load reads envFile when it exists, then builds the config from defaults and
// environment variables. Variables already set in the environment win over
// the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", envFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetString("server.port"),
			ReadTimeout:     v.GetDuration("server.read_timeout"),
			WriteTimeout:    v.GetDuration("server.write_timeout"),
			IdleTimeout:     v.GetDuration("server.idle_timeout"),
			RequestTimeout:  v.GetDuration("server.request_timeout"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
			PublicURL:       v.GetString("server.public_url"),
		},
		Storage: StorageConfig{
			Driver:        strings.ToLower(v.GetString("storage.driver")),
			CustomersFile: v.GetString("storage.customers_file"),
			AccountsFile:  v.GetString("storage.accounts_file"),
			PreserveRates: v.GetBool("storage.preserve_rates"),
			RedisPrefix:   v.GetString("storage.redis_prefix"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetString("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			Name:            v.GetString("database.name"),
			SSLMode:         v.GetString("database.ssl_mode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetString("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			SecretKey:   v.GetString("jwt.secret_key"),
			ExpiryHours: v.GetInt("jwt.expiry_hours"),
		},
		Ledger: LedgerConfig{
			Currency: v.GetString("ledger.currency"),
			BIC:      v.GetString("ledger.bic"),
		},
		QR:  QRConfig{TTL: v.GetDuration("qr.ttl")},
		Log: LogConfig{Level: v.GetString("log.level"), Pretty: v.GetBool("log.pretty")},
	}
	if cfg.Server.PublicURL == "" {
		cfg.Server.PublicURL = "http://localhost:" + cfg.Server.Port
	}

	switch cfg.Storage.Driver {
	case DriverFile, DriverPostgres, DriverRedis:
	default:
		return nil, fmt.Errorf("storage.driver %q: want file, postgres or redis", cfg.Storage.Driver)
	}
	return cfg, nil
}
