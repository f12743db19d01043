// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

type Config struct {
	ServerPort int    `env:"PORT" envDefault:"8000"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	GinMode    string `env:"GIN_MODE" envDefault:"release"`

	DB DBConfig `envPrefix:"DB_"`
	// DATABASE_URL целиком перекрывает DB_HOST/DB_USER/...
	DatabaseURL string `env:"DATABASE_URL"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"./data/expenses.db"`

	Dashboard DashboardConfig

	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
}

type DBConfig struct {
	Backend  string `env:"BACKEND" envDefault:"postgres"`
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"5432"`
	User     string `env:"USER" envDefault:"postgres"`
	Password string `env:"PASSWORD"`
	Name     string `env:"NAME" envDefault:"expense_manager"`
	SSLMode  string `env:"SSLMODE" envDefault:"disable"`
}

type DashboardConfig struct {
	Port             int           `env:"DASHBOARD_PORT" envDefault:"8501"`
	APIURL           string        `env:"API_URL" envDefault:"http://localhost:8000"`
	AnalyticsTimeout time.Duration `env:"ANALYTICS_TIMEOUT" envDefault:"10s"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	return cfg
}

func (c Config) Validate() error {
	var problems []string

	if c.ServerPort < 1 || c.ServerPort > 65535 {
		problems = append(problems, fmt.Sprintf("invalid PORT %d", c.ServerPort))
	}
	if c.Dashboard.Port < 1 || c.Dashboard.Port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid DASHBOARD_PORT %d", c.Dashboard.Port))
	}
	if c.Dashboard.AnalyticsTimeout <= 0 {
		problems = append(problems, "ANALYTICS_TIMEOUT must be positive")
	}
	if _, err := url.ParseRequestURI(c.Dashboard.APIURL); err != nil {
		problems = append(problems, fmt.Sprintf("invalid API_URL %q", c.Dashboard.APIURL))
	}

	switch c.DB.Backend {
	case BackendPostgres:
		if c.DatabaseURL == "" && (c.DB.Host == "" || c.DB.Name == "") {
			problems = append(problems, "DB_HOST and DB_NAME are required for the postgres backend")
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			problems = append(problems, "SQLITE_PATH is required for the sqlite backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown DB_BACKEND %q: must be %s or %s", c.DB.Backend, BackendPostgres, BackendSQLite))
	}

	if len(problems) > 0 {
		return fmt.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// DSN returns DATABASE_URL when set, otherwise a postgres URL built from the DB_* parts.
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DB.User, c.DB.Password),
		Host:     net.JoinHostPort(c.DB.Host, strconv.Itoa(c.DB.Port)),
		Path:     "/" + c.DB.Name,
		RawQuery: url.Values{"sslmode": {c.DB.SSLMode}}.Encode(),
	}
	return u.String()
}

// Addr — адрес API-сервера для router.Run
func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.ServerPort)
}

func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
